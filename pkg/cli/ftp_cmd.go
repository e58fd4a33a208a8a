package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"iolib/internal/service/ftp"
)

// ftpFlags are the connection flags shared by the ftp subcommands.
type ftpFlags struct {
	host     string
	user     string
	password string
	tls      bool
	timeout  time.Duration
}

func (f *ftpFlags) connectOptions(cmd *cobra.Command, a *app) ftp.ConnectOptions {
	opts := ftp.ConnectOptions{
		Host:     f.host,
		User:     f.user,
		Password: f.password,
		Timeout:  f.timeout,
		TLS:      f.tls,
	}
	if !cmd.Flags().Changed("host") {
		opts.Host = firstNonEmpty(a.cfg.FTPHost, a.prof.FTPHost)
	}
	if !cmd.Flags().Changed("user") {
		opts.User = firstNonEmpty(a.cfg.FTPUser, a.prof.FTPUser)
	}
	if !cmd.Flags().Changed("password") {
		opts.Password = a.cfg.FTPPassword
	}
	return opts
}

func newFTPCmd(a *app) *cobra.Command {
	flags := &ftpFlags{}
	cmd := &cobra.Command{
		Use:   "ftp",
		Short: "List, read and write CSV files on an FTP server",
	}
	cmd.PersistentFlags().StringVar(&flags.host, "host", "", "Server host[:port] (env FTP_HOST)")
	cmd.PersistentFlags().StringVar(&flags.user, "user", "", "Login user (env FTP_USER); empty skips login")
	cmd.PersistentFlags().StringVar(&flags.password, "password", "", "Login password (env FTP_PASSWORD)")
	cmd.PersistentFlags().BoolVar(&flags.tls, "tls", false, "Use explicit FTPS")
	cmd.PersistentFlags().DurationVar(&flags.timeout, "timeout", 30*time.Second, "Connection timeout")

	cmd.AddCommand(newFTPListCmd(a, flags))
	cmd.AddCommand(newFTPReadCmd(a, flags))
	cmd.AddCommand(newFTPWriteCmd(a, flags))
	return cmd
}

func newFTPListCmd(a *app, flags *ftpFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list [DIR]",
		Short: "List the names in a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "/"
			if len(args) == 1 {
				dir = args[0]
			}
			f, err := ftp.NewService(a.backends.DialFTP, a.logger).List(cmd.Context(), flags.connectOptions(cmd, a), dir)
			if err != nil {
				return err
			}
			return printFrame(cmd.OutOrStdout(), f, a.output)
		},
	}
}

func newFTPReadCmd(a *app, flags *ftpFlags) *cobra.Command {
	var csvOpts csvFlags
	cmd := &cobra.Command{
		Use:   "read PATH",
		Short: "Read a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := ftp.NewService(a.backends.DialFTP, a.logger).Read(cmd.Context(), flags.connectOptions(cmd, a), args[0], csvOpts.options())
			if err != nil {
				return err
			}
			return printFrame(cmd.OutOrStdout(), f, a.output)
		},
	}
	csvOpts.register(cmd.Flags())
	return cmd
}

func newFTPWriteCmd(a *app, flags *ftpFlags) *cobra.Command {
	var (
		input   string
		csvOpts csvFlags
	)
	cmd := &cobra.Command{
		Use:   "write PATH",
		Short: "Upload a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := readCSVInput(input, cmd.InOrStdin(), csvOpts.options())
			if err != nil {
				return err
			}
			svc := ftp.NewService(a.backends.DialFTP, a.logger)
			if err := svc.Write(cmd.Context(), flags.connectOptions(cmd, a), f, args[0], csvOpts.options()); err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), a.output,
				map[string]string{"status": "ok", "path": args[0]},
				fmt.Sprintf("Stored %d rows at %s", f.Len(), args[0]))
		},
	}
	cmd.Flags().StringVar(&input, "input", "-", "CSV input file")
	csvOpts.register(cmd.Flags())
	return cmd
}
