// Package tabular converts delimited text to and from frames.
package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"

	"iolib/internal/domain"
)

// CSVOptions controls CSV decoding and encoding. The zero value reads and
// writes comma-separated UTF-8 with a header row.
type CSVOptions struct {
	// Delimiter defaults to ','.
	Delimiter rune
	// Encoding is a WHATWG label such as "latin1" or "windows-1252".
	Encoding string
	// UseCols keeps only the named columns, in file order.
	UseCols []string
}

func (o CSVOptions) delimiter() rune {
	if o.Delimiter == 0 {
		return ','
	}
	return o.Delimiter
}

// Codec resolves a character encoding label. Empty and UTF-8 labels return
// the identity codec.
func Codec(label string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "", "utf-8", "utf8":
		return unicode.UTF8, nil
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, domain.ErrValidation(domain.ErrInvalidInput, "unknown encoding %q", label)
	}
	return enc, nil
}

// IsCSV reports whether name carries a .csv extension, case-insensitively.
func IsCSV(name string) bool {
	i := strings.LastIndex(name, ".")
	return i >= 0 && strings.EqualFold(name[i+1:], "csv")
}

// ReadCSV parses r into a frame. The first record names the columns. Empty
// cells become nil, and a column whose every value parses as an integer
// (or number, or boolean) is converted to int64 (or float64, or bool).
func ReadCSV(r io.Reader, opts CSVOptions) (*domain.Frame, error) {
	enc, err := Codec(opts.Encoding)
	if err != nil {
		return nil, err
	}
	cr := csv.NewReader(enc.NewDecoder().Reader(r))
	cr.Comma = opts.delimiter()
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return domain.NewFrame(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	keep := make([]int, 0, len(header))
	if len(opts.UseCols) == 0 {
		for i := range header {
			keep = append(keep, i)
		}
	} else {
		for i, h := range header {
			for _, c := range opts.UseCols {
				if h == c {
					keep = append(keep, i)
					break
				}
			}
		}
		if len(keep) != len(opts.UseCols) {
			return nil, domain.ErrValidation(domain.ErrInvalidInput, "usecols %v do not match columns %v", opts.UseCols, header)
		}
	}

	columns := make([]string, len(keep))
	for i, j := range keep {
		columns[i] = header[j]
	}
	raw := make([][]string, 0)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		row := make([]string, len(keep))
		for i, j := range keep {
			if j < len(rec) {
				row[i] = rec[j]
			}
		}
		raw = append(raw, row)
	}

	f := domain.NewFrame(columns...)
	f.Rows = make([][]any, len(raw))
	for i := range raw {
		f.Rows[i] = make([]any, len(columns))
	}
	for j := range columns {
		convert := inferColumn(raw, j)
		for i, row := range raw {
			f.Rows[i][j] = convert(row[j])
		}
	}
	return f, nil
}

// inferColumn picks the narrowest conversion every non-empty cell of
// column j accepts.
func inferColumn(raw [][]string, j int) func(string) any {
	ints, floats, bools := true, true, true
	for _, row := range raw {
		s := row[j]
		if s == "" {
			continue
		}
		if ints {
			if _, err := strconv.ParseInt(s, 10, 64); err != nil {
				ints = false
			}
		}
		if floats {
			if _, err := strconv.ParseFloat(s, 64); err != nil {
				floats = false
			}
		}
		if bools {
			if _, ok := parseBool(s); !ok {
				bools = false
			}
		}
	}
	return func(s string) any {
		if s == "" {
			return nil
		}
		switch {
		case ints:
			n, _ := strconv.ParseInt(s, 10, 64)
			return n
		case floats:
			x, _ := strconv.ParseFloat(s, 64)
			return x
		case bools:
			b, _ := parseBool(s)
			return b
		}
		return s
	}
}

func parseBool(s string) (bool, bool) {
	switch s {
	case "True", "true", "TRUE":
		return true, true
	case "False", "false", "FALSE":
		return false, true
	}
	return false, false
}

// WriteCSV writes f with a header row and no index column. Missing values are
// written as empty cells.
func WriteCSV(w io.Writer, f *domain.Frame, opts CSVOptions) error {
	enc, err := Codec(opts.Encoding)
	if err != nil {
		return err
	}
	ew := enc.NewEncoder().Writer(w)
	cw := csv.NewWriter(ew)
	cw.Comma = opts.delimiter()

	if err := cw.Write(f.Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	record := make([]string, f.Width())
	for _, row := range f.Rows {
		for i := range record {
			record[i] = ""
			if i < len(row) {
				record[i] = FormatCSVCell(row[i])
			}
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// EncodeCSV is WriteCSV into a buffer.
func EncodeCSV(f *domain.Frame, opts CSVOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, f, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FormatCSVCell renders one cell.
func FormatCSVCell(v any) string {
	switch x := domain.NormalizeMissing(v).(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case bool:
		if x {
			return "True"
		}
		return "False"
	case time.Time:
		if x.Nanosecond() != 0 {
			return x.Format("2006-01-02 15:04:05.000000")
		}
		return x.Format("2006-01-02 15:04:05")
	case civil.Date:
		return x.String()
	case []byte:
		return string(x)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
