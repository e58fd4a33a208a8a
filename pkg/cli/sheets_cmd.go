package cli

import (
	"github.com/spf13/cobra"

	"iolib/internal/domain"
	"iolib/internal/service/sheets"
)

func newSheetsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Read and write spreadsheets",
	}
	cmd.AddCommand(newSheetsReadCmd(a))
	cmd.AddCommand(newSheetsWriteCmd(a))
	return cmd
}

func newSheetsReadCmd(a *app) *cobra.Command {
	var (
		sheet    string
		noHeader bool
	)

	cmd := &cobra.Command{
		Use:   "read SPREADSHEET_ID",
		Short: "Read a sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := a.backends.Sheets(cmd.Context(), a.creds(), true)
			if err != nil {
				return err
			}
			f, err := sheets.NewService(nil, values, a.logger).Read(cmd.Context(), args[0], sheet, !noHeader)
			if err != nil {
				return err
			}
			return printFrame(cmd.OutOrStdout(), f, a.output)
		},
	}
	cmd.Flags().StringVar(&sheet, "sheet", "Sheet1", "Sheet name")
	cmd.Flags().BoolVar(&noHeader, "no-header", false, "Treat the first row as data")
	return cmd
}

func newSheetsWriteCmd(a *app) *cobra.Command {
	var (
		input    string
		ifExists string
		opts     sheets.WriteOptions
		csvOpts  csvFlags
	)

	cmd := &cobra.Command{
		Use:   "write NAME",
		Short: "Create a spreadsheet from a CSV file",
		Long:  "Creates a spreadsheet called NAME from --input. --if-exists replace deletes an existing spreadsheet of that name first.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := readCSVInput(input, cmd.InOrStdin(), csvOpts.options())
			if err != nil {
				return err
			}
			client, err := a.backends.Drive(cmd.Context(), a.creds())
			if err != nil {
				return err
			}
			values, err := a.backends.Sheets(cmd.Context(), a.creds(), false)
			if err != nil {
				return err
			}
			opts.IfExists = domain.IfExists(ifExists)
			id, err := sheets.NewService(client, values, a.logger).Write(cmd.Context(), f, args[0], opts)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), a.output, map[string]string{"id": id, "name": args[0]}, id)
		},
	}
	cmd.Flags().StringVar(&input, "input", "-", "CSV input file")
	cmd.Flags().StringVar(&ifExists, "if-exists", string(domain.IfExistsFail), "fail or replace")
	cmd.Flags().StringVar(&opts.FolderID, "folder", "", "Parent folder id")
	cmd.Flags().StringVar(&opts.DriveID, "drive-id", "", "Shared drive id")
	csvOpts.register(cmd.Flags())
	return cmd
}
