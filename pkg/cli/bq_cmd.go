package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"google.golang.org/api/iterator"

	"iolib/internal/domain"
	"iolib/internal/service/warehouse"
	"iolib/internal/tabular"
)

func newBigQueryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bq",
		Short: "Read and write warehouse tables",
	}
	cmd.AddCommand(newBigQueryReadCmd(a))
	cmd.AddCommand(newBigQueryIReadCmd(a))
	cmd.AddCommand(newBigQueryWriteCmd(a))
	return cmd
}

func tableArg(args []string) warehouse.TableInput {
	if len(args) == 0 {
		return warehouse.TableInput{}
	}
	return warehouse.TableName(args[0])
}

func datasetArg(name string) warehouse.DatasetInput {
	if name == "" {
		return warehouse.DatasetInput{}
	}
	return warehouse.DatasetName(name)
}

func newBigQueryReadCmd(a *app) *cobra.Command {
	var dataset, query string

	cmd := &cobra.Command{
		Use:   "read [TABLE_ID]",
		Short: "Run a query, or read a whole table",
		Long: "Reads TABLE_ID (resource, dataset.resource or project.dataset.resource). " +
			"--query may reference the table as {table_id}; without a table --query is required.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wh, err := a.backends.Warehouse(cmd.Context(), a.creds())
			if err != nil {
				return err
			}
			defer closeClient(wh)

			f, err := warehouse.Read(cmd.Context(), wh, warehouse.ReadRequest{
				Table:   tableArg(args),
				Dataset: datasetArg(dataset),
				Project: a.project,
				Query:   query,
			}, a.logger)
			if err != nil {
				return err
			}
			return printFrame(cmd.OutOrStdout(), f, a.output)
		},
	}
	cmd.Flags().StringVar(&dataset, "dataset", "", "Dataset of TABLE_ID when it has no dataset part")
	cmd.Flags().StringVar(&query, "query", "", "Query to run")
	return cmd
}

func newBigQueryIReadCmd(a *app) *cobra.Command {
	var dataset, query string

	cmd := &cobra.Command{
		Use:   "iread [TABLE_ID]",
		Short: "Stream query rows as JSON lines",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wh, err := a.backends.Warehouse(cmd.Context(), a.creds())
			if err != nil {
				return err
			}
			defer closeClient(wh)

			it, err := warehouse.IRead(cmd.Context(), wh, warehouse.ReadRequest{
				Table:   tableArg(args),
				Dataset: datasetArg(dataset),
				Project: a.project,
				Query:   query,
			}, a.logger)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			rows := warehouse.Shape(it, warehouse.RowAsMap)
			for {
				row, err := rows.Next()
				if errors.Is(err, iterator.Done) {
					return nil
				}
				if err != nil {
					return err
				}
				if err := enc.Encode(row); err != nil {
					return err
				}
			}
		},
	}
	cmd.Flags().StringVar(&dataset, "dataset", "", "Dataset of TABLE_ID when it has no dataset part")
	cmd.Flags().StringVar(&query, "query", "", "Query to run")
	return cmd
}

func newBigQueryWriteCmd(a *app) *cobra.Command {
	var (
		dataset    string
		schemaFile string
		input      string
		ifExists   string
		batchSize  int
		positional bool
		csvOpts    csvFlags
	)

	cmd := &cobra.Command{
		Use:   "write TABLE_ID",
		Short: "Write a CSV file into a table",
		Long: "Writes --input (CSV, - for stdin) into TABLE_ID. A missing table is created from --schema-file. " +
			"--if-exists is fail, replace or append.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var schema domain.Schema
			if schemaFile != "" {
				s, err := warehouse.LoadSchemaFile(schemaFile)
				if err != nil {
					return err
				}
				schema = s
			}
			f, err := readCSVInput(input, cmd.InOrStdin(), csvOpts.options())
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("batch-size") {
				batchSize = a.cfg.BatchSize
			}

			wh, err := a.backends.Warehouse(cmd.Context(), a.creds())
			if err != nil {
				return err
			}
			defer closeClient(wh)

			req := warehouse.WriteRequest{
				Table:   warehouse.TableName(args[0]),
				Dataset: datasetArg(dataset),
				Project: a.project,
				Schema:  schema,
				Options: warehouse.WriteOptions{
					IfExists:  domain.IfExists(ifExists),
					BatchSize: batchSize,
				},
			}
			if positional {
				req.Rows = f.Rows
			} else {
				req.Frame = f
			}
			if err := warehouse.Write(cmd.Context(), wh, req, a.logger); err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), a.output,
				map[string]string{"status": "ok", "table": args[0], "rows": fmt.Sprint(f.Len())},
				fmt.Sprintf("Wrote %d rows to %s", f.Len(), args[0]))
		},
	}
	cmd.Flags().StringVar(&dataset, "dataset", "", "Dataset of TABLE_ID when it has no dataset part")
	cmd.Flags().StringVar(&schemaFile, "schema-file", "", "JSON or YAML schema used when the table is created")
	cmd.Flags().StringVar(&input, "input", "-", "CSV input file")
	cmd.Flags().StringVar(&ifExists, "if-exists", string(domain.IfExistsFail), "fail, replace or append")
	cmd.Flags().IntVar(&batchSize, "batch-size", warehouse.DefaultBatchSize, "Rows per insert request")
	cmd.Flags().BoolVar(&positional, "positional", false, "Send CSV rows positionally in order of the table schema")
	csvOpts.register(cmd.Flags())
	return cmd
}

// csvFlags are the CSV parsing flags shared by every command reading CSV.
type csvFlags struct {
	delimiter string
	encoding  string
	usecols   []string
}

func (c *csvFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&c.delimiter, "delimiter", ",", "Field delimiter")
	fs.StringVar(&c.encoding, "encoding", "utf-8", "Character encoding")
	fs.StringSliceVar(&c.usecols, "usecols", nil, "Only keep these columns")
}

func (c *csvFlags) options() tabular.CSVOptions {
	opts := tabular.CSVOptions{Encoding: c.encoding, UseCols: c.usecols}
	if r := []rune(c.delimiter); len(r) > 0 {
		opts.Delimiter = r[0]
	}
	return opts
}
