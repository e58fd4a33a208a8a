package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"iolib/internal/domain"
	"iolib/internal/service/drive"
	"iolib/internal/tabular"
)

func newDriveCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drive",
		Short: "List files and manage sharing permissions",
	}
	cmd.AddCommand(newDriveListCmd(a))
	cmd.AddCommand(newDrivePermissionsCmd(a))
	return cmd
}

func newDriveListCmd(a *app) *cobra.Command {
	var q domain.FileQuery

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List files matching a name, folder and MIME type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := a.backends.Drive(cmd.Context(), a.creds())
			if err != nil {
				return err
			}
			f, err := drive.NewService(client, a.logger).List(cmd.Context(), q)
			if err != nil {
				return err
			}
			return printFrame(cmd.OutOrStdout(), f, a.output)
		},
	}
	cmd.Flags().StringVar(&q.Name, "name", "", "Exact file name")
	cmd.Flags().StringVar(&q.FolderID, "folder", "", "Parent folder id")
	cmd.Flags().StringVar(&q.MIMEType, "mime-type", "", "MIME type")
	cmd.Flags().StringVar(&q.DriveID, "drive-id", "", "Shared drive id")
	return cmd
}

func newDrivePermissionsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "permissions",
		Aliases: []string{"perms"},
		Short:   "Manage the permissions of a file or folder",
	}
	cmd.AddCommand(newPermissionsListCmd(a))
	cmd.AddCommand(newPermissionsCreateCmd(a))
	cmd.AddCommand(newPermissionsDeleteCmd(a))
	cmd.AddCommand(newPermissionsSyncCmd(a))
	return cmd
}

func (a *app) permissionService(cmd *cobra.Command) (*drive.PermissionService, error) {
	client, err := a.backends.Drive(cmd.Context(), a.creds())
	if err != nil {
		return nil, err
	}
	return drive.NewPermissionService(client, a.logger), nil
}

func newPermissionsListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list ITEM_ID",
		Short: "List permissions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.permissionService(cmd)
			if err != nil {
				return err
			}
			perms, err := svc.List(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printFrame(cmd.OutOrStdout(), domain.PermissionsFrame(perms), a.output)
		},
	}
}

func newPermissionsCreateCmd(a *app) *cobra.Command {
	var p struct{ email, role, typ string }

	cmd := &cobra.Command{
		Use:   "create ITEM_ID",
		Short: "Grant a permission without sending a notification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.permissionService(cmd)
			if err != nil {
				return err
			}
			id, err := svc.Create(cmd.Context(), args[0], domain.DesiredPermission{
				Email: p.email,
				Role:  domain.Role(p.role),
				Type:  domain.PermissionType(p.typ),
			})
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), a.output, map[string]string{"id": id}, id)
		},
	}
	cmd.Flags().StringVar(&p.email, "email", "", "Grantee email address")
	cmd.Flags().StringVar(&p.role, "role", "", "writer, commenter or reader")
	cmd.Flags().StringVar(&p.typ, "type", "", "user (default), group, domain or anyone")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}

func newPermissionsDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ITEM_ID PERMISSION_ID",
		Short: "Remove a permission",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.permissionService(cmd)
			if err != nil {
				return err
			}
			if err := svc.Delete(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), a.output,
				map[string]string{"status": "deleted", "id": args[1]},
				fmt.Sprintf("Deleted permission %s", args[1]))
		},
	}
}

func newPermissionsSyncCmd(a *app) *cobra.Command {
	var file, mode string

	cmd := &cobra.Command{
		Use:   "sync ITEM_ID",
		Short: "Reconcile permissions with a desired set",
		Long: "Reads the desired permissions from --file (CSV, YAML or JSON records with keys email, role " +
			"and optionally type). update only creates and updates; replace also removes every other " +
			"permission except owners.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			desired, err := loadPermissions(file, cmd.InOrStdin())
			if err != nil {
				return err
			}
			svc, err := a.permissionService(cmd)
			if err != nil {
				return err
			}
			if err := svc.Sync(cmd.Context(), args[0], desired, domain.SyncMode(mode)); err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), a.output,
				map[string]string{"status": "ok", "item": args[0], "mode": mode},
				fmt.Sprintf("Permissions of %s synced (%s)", args[0], mode))
		},
	}
	cmd.Flags().StringVar(&file, "file", "-", "Desired permissions file")
	cmd.Flags().StringVar(&mode, "mode", string(domain.SyncUpdate), "update or replace")
	return cmd
}

// loadPermissions reads desired permissions from CSV, or from YAML/JSON
// records for any other extension. Stdin is read as YAML.
func loadPermissions(path string, stdin io.Reader) ([]domain.DesiredPermission, error) {
	if tabular.IsCSV(path) {
		f, err := readCSVInput(path, stdin, tabular.CSVOptions{})
		if err != nil {
			return nil, err
		}
		return drive.PermissionsFromFrame(f)
	}

	rc, err := openInput(path, stdin)
	if err != nil {
		return nil, err
	}
	defer rc.Close() //nolint:errcheck
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read permissions: %w", err)
	}
	var records []map[string]any
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse permissions %s: %w", strings.TrimPrefix(filepath.Ext(path), "."), err)
	}
	return drive.PermissionsFromRecords(records)
}
