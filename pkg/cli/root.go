// Package cli implements the iolib command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"iolib/internal/config"
	"iolib/internal/domain"
	"iolib/internal/ftpclient"
	"iolib/internal/gcp"
	"iolib/internal/objectstore"
	"iolib/internal/service/ftp"
)

var (
	version = "dev"
	commit  = "none"
)

// DriveClient is the combined files and permissions capability of Drive.
type DriveClient interface {
	domain.DriveFiles
	domain.DrivePermissions
}

// Backends builds the remote clients commands talk to. Tests replace them
// with in-memory fakes.
type Backends struct {
	Warehouse func(ctx context.Context, creds gcp.Credentials) (domain.Warehouse, error)
	Drive     func(ctx context.Context, creds gcp.Credentials) (DriveClient, error)
	Sheets    func(ctx context.Context, creds gcp.Credentials, readOnly bool) (domain.SheetValues, error)
	Store     func(ctx context.Context, scheme string, cfg objectstore.Config) (domain.ObjectStore, error)
	DialFTP   ftp.Dialer
}

// DefaultBackends returns the production clients.
func DefaultBackends() Backends {
	return Backends{
		Warehouse: func(ctx context.Context, creds gcp.Credentials) (domain.Warehouse, error) {
			return gcp.NewBigQuery(ctx, creds)
		},
		Drive: func(ctx context.Context, creds gcp.Credentials) (DriveClient, error) {
			return gcp.NewDrive(ctx, creds)
		},
		Sheets: func(ctx context.Context, creds gcp.Credentials, readOnly bool) (domain.SheetValues, error) {
			return gcp.NewSheets(ctx, creds, readOnly)
		},
		Store:   objectstore.Open,
		DialFTP: ftpclient.Dial,
	}
}

// Execute runs the CLI.
func Execute() int {
	rootCmd := newRootCmd(DefaultBackends())
	if err := rootCmd.Execute(); err != nil {
		output, _ := rootCmd.PersistentFlags().GetString("output")
		if output == "json" {
			_ = printJSON(os.Stdout, errorObject(err))
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

// errorObject renders err for JSON output with its category.
func errorObject(err error) map[string]any {
	obj := map[string]any{"error": err.Error()}
	var (
		validation *domain.ValidationError
		conflict   *domain.ConflictError
		tableNF    *domain.TableNotFoundError
		notFound   *domain.NotFoundError
		write      *domain.WriteError
	)
	switch {
	case errors.As(err, &validation):
		obj["type"] = "validation"
	case errors.As(err, &conflict):
		obj["type"] = "conflict"
	case errors.As(err, &tableNF):
		obj["type"] = "not_found"
		obj["errors"] = tableNF.Errors
	case errors.As(err, &notFound):
		obj["type"] = "not_found"
	case errors.As(err, &write):
		obj["type"] = "write"
		obj["failures"] = write.Payload
	}
	return obj
}

// app holds the settings resolved once per invocation.
type app struct {
	backends Backends

	keyFile string
	project string
	output  string
	profile string
	verbose bool

	cfg    *config.Config
	prof   Profile
	logger *slog.Logger
}

func (a *app) creds() gcp.Credentials {
	return gcp.Credentials{KeyFile: a.keyFile, ProjectID: a.project}
}

func (a *app) storeConfig() objectstore.Config {
	c := objectstore.Config{GCP: a.creds()}
	if a.cfg.HasS3Config() {
		c.S3 = objectstore.S3Config{
			Region:    *a.cfg.S3Region,
			KeyID:     *a.cfg.S3KeyID,
			Secret:    *a.cfg.S3Secret,
			PathStyle: a.cfg.S3Endpoint != nil,
		}
		if a.cfg.S3Endpoint != nil {
			c.S3.Endpoint = *a.cfg.S3Endpoint
		}
	}
	if a.cfg.HasAzureConfig() {
		c.Azure = objectstore.AzureConfig{Account: *a.cfg.AzureAccount, Key: *a.cfg.AzureKey}
	}
	return c
}

// resolve applies precedence flag > env > profile > default.
func (a *app) resolve(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return err
	}
	a.cfg = cfg

	uc, err := loadUserConfigOrDefault()
	if err != nil {
		return err
	}
	if a.profile != "" {
		if a.prof, err = uc.Profile(a.profile); err != nil {
			return err
		}
	} else {
		a.prof = uc.ActiveProfile("")
	}

	flags := cmd.Flags()
	if !flags.Changed("key-file") {
		a.keyFile = firstNonEmpty(cfg.KeyFile, a.prof.KeyFile)
	}
	if !flags.Changed("project") {
		a.project = firstNonEmpty(cfg.Project, a.prof.Project)
	}
	if !flags.Changed("output") {
		a.output = firstNonEmpty(cfg.Output, a.prof.Output)
	}
	if err := validateOutputFormat(a.output); err != nil {
		return err
	}

	level := cfg.SlogLevel()
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = newLogger(cmd.ErrOrStderr(), cfg.LogFormat, level)
	for _, w := range cfg.Warnings {
		a.logger.Warn(w)
	}
	return nil
}

func newLogger(w io.Writer, format string, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func closeClient(c any) {
	if closer, ok := c.(io.Closer); ok {
		_ = closer.Close()
	}
}

func newRootCmd(backends Backends) *cobra.Command {
	a := &app{backends: backends}

	rootCmd := &cobra.Command{
		Use:           "iolib",
		Short:         "Read and write tabular data across BigQuery, storage, Drive, Sheets and FTP",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.resolve(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.keyFile, "key-file", "", "Service account key file (default: application default credentials)")
	rootCmd.PersistentFlags().StringVar(&a.project, "project", "", "Project override")
	rootCmd.PersistentFlags().StringVarP(&a.output, "output", "o", "", "Output format (table, csv, json); default table on a terminal, csv otherwise")
	rootCmd.PersistentFlags().StringVarP(&a.profile, "profile", "p", "", "Config profile to use")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Debug logging")

	rootCmd.AddCommand(newBigQueryCmd(a))
	rootCmd.AddCommand(newDriveCmd(a))
	rootCmd.AddCommand(newSheetsCmd(a))
	rootCmd.AddCommand(newStorageCmd(a))
	rootCmd.AddCommand(newFTPCmd(a))
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			default:
				return fmt.Errorf("unsupported shell: %s", args[0])
			}
		},
	}
}
