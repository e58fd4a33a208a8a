package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"iolib/internal/domain"
	"iolib/internal/tabular"
)

// getOutputFormat returns the output flag as given on the command line.
func getOutputFormat(cmd *cobra.Command) string {
	v, _ := cmd.Root().PersistentFlags().GetString("output")
	return v
}

func validateOutputFormat(output string) error {
	switch output {
	case "", "table", "csv", "json":
		return nil
	}
	return fmt.Errorf("unsupported output format %q: use 'table', 'csv' or 'json'", output)
}

// effectiveFormat picks table for a terminal and csv for pipes and files
// when no format was chosen.
func effectiveFormat(format string, w io.Writer) string {
	if format != "" {
		return format
	}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return "table"
	}
	return "csv"
}

// printFrame renders f in the given format.
func printFrame(w io.Writer, f *domain.Frame, format string) error {
	switch effectiveFormat(format, w) {
	case "json":
		return printJSON(w, f.Records())
	case "table":
		return printTable(w, f)
	default:
		return tabular.WriteCSV(w, f, tabular.CSVOptions{})
	}
}

func printTable(w io.Writer, f *domain.Frame) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := make([]string, len(f.Columns))
	for i, c := range f.Columns {
		header[i] = strings.ToUpper(c)
	}
	_, _ = fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range f.Rows {
		cells := make([]string, len(f.Columns))
		for i := range cells {
			if i < len(row) {
				cells[i] = tabular.FormatCSVCell(row[i])
			}
		}
		_, _ = fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printResult prints a single identifier, or an object in JSON mode.
func printResult(w io.Writer, format string, obj map[string]string, text string) error {
	if format == "json" {
		return printJSON(w, obj)
	}
	_, err := fmt.Fprintln(w, text)
	return err
}

// openInput opens path for reading; "-" is stdin.
func openInput(path string, stdin io.Reader) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(stdin), nil
	}
	f, err := os.Open(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	return f, nil
}

func readCSVInput(path string, stdin io.Reader, opts tabular.CSVOptions) (*domain.Frame, error) {
	rc, err := openInput(path, stdin)
	if err != nil {
		return nil, err
	}
	defer rc.Close() //nolint:errcheck
	f, err := tabular.ReadCSV(rc, opts)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return f, nil
}
