package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration profiles",
		// Profiles must stay editable when the environment is misconfigured.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	}

	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigSetProfileCmd())
	cmd.AddCommand(newConfigUseProfileCmd())

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := LoadUserConfig()
			if errors.Is(err, fs.ErrNotExist) {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "No configuration found at %s\n", ConfigPath())
			}
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), cfg)
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}
			_, _ = fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

func newConfigSetProfileCmd() *cobra.Command {
	var (
		name string
		p    Profile
	)

	cmd := &cobra.Command{
		Use:   "set-profile",
		Short: "Create or update a configuration profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if name == "" {
				return fmt.Errorf("--name is required")
			}
			flags := cmd.Flags()
			if flags.Changed("default-output") {
				if err := validateOutputFormat(p.Output); err != nil {
					return err
				}
			}

			cfg, err := loadUserConfigOrDefault()
			if err != nil {
				return err
			}

			cur := cfg.Profiles[name]
			if flags.Changed("default-key-file") {
				cur.KeyFile = p.KeyFile
			}
			if flags.Changed("default-project") {
				cur.Project = p.Project
			}
			if flags.Changed("default-output") {
				cur.Output = p.Output
			}
			if flags.Changed("ftp-host") {
				cur.FTPHost = p.FTPHost
			}
			if flags.Changed("ftp-user") {
				cur.FTPUser = p.FTPUser
			}
			cfg.Profiles[name] = cur

			if err := SaveUserConfig(cfg); err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), getOutputFormat(cmd),
				map[string]string{"status": "ok", "profile": name, "path": ConfigPath()},
				fmt.Sprintf("Profile %q saved to %s", name, ConfigPath()))
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Profile name (required)")
	cmd.Flags().StringVar(&p.KeyFile, "default-key-file", "", "Service account key file")
	cmd.Flags().StringVar(&p.Project, "default-project", "", "Project override")
	cmd.Flags().StringVar(&p.Output, "default-output", "", "Default output format")
	cmd.Flags().StringVar(&p.FTPHost, "ftp-host", "", "Default FTP host")
	cmd.Flags().StringVar(&p.FTPUser, "ftp-user", "", "Default FTP user")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newConfigUseProfileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use-profile <name>",
		Short: "Set the active configuration profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadUserConfig()
			if err != nil {
				return fmt.Errorf("no config found: %w", err)
			}
			name := args[0]
			if _, err := cfg.Profile(name); err != nil {
				return err
			}
			cfg.CurrentProfile = name
			if err := SaveUserConfig(cfg); err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), getOutputFormat(cmd),
				map[string]string{"status": "ok", "active_profile": name},
				fmt.Sprintf("Active profile set to %q", name))
		},
	}
}
