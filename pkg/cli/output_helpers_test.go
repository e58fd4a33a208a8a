package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iolib/internal/domain"
)

func sampleFrame() *domain.Frame {
	f := domain.NewFrame("id", "name", "score")
	f.Append(int64(1), "alice", 1.5)
	f.Append(int64(2), nil, true)
	return f
}

func TestValidateOutputFormat(t *testing.T) {
	for _, ok := range []string{"", "table", "csv", "json"} {
		assert.NoError(t, validateOutputFormat(ok), ok)
	}
	assert.EqualError(t, validateOutputFormat("yaml"), `unsupported output format "yaml": use 'table', 'csv' or 'json'`)
}

func TestEffectiveFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, "json", effectiveFormat("json", &buf))
	assert.Equal(t, "csv", effectiveFormat("", &buf))
}

func TestPrintFrame(t *testing.T) {
	t.Run("csv", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, printFrame(&buf, sampleFrame(), "csv"))
		assert.Equal(t, "id,name,score\n1,alice,1.5\n2,,True\n", buf.String())
	})

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, printFrame(&buf, sampleFrame(), "table"))
		lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
		require.Len(t, lines, 3)
		assert.Equal(t, []string{"ID", "NAME", "SCORE"}, strings.Fields(lines[0]))
		assert.Equal(t, []string{"1", "alice", "1.5"}, strings.Fields(lines[1]))
		assert.Equal(t, []string{"2", "True"}, strings.Fields(lines[2]))
	})

	t.Run("json_records", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, printFrame(&buf, sampleFrame(), "json"))
		assert.JSONEq(t, `[{"id":1,"name":"alice","score":1.5},{"id":2,"name":null,"score":true}]`, buf.String())
	})

	t.Run("empty_frame_csv", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, printFrame(&buf, domain.NewFrame("a"), "csv"))
		assert.Equal(t, "a\n", buf.String())
	})
}

func TestPrintResult(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printResult(&buf, "", map[string]string{"id": "x"}, "x"))
	assert.Equal(t, "x\n", buf.String())

	buf.Reset()
	require.NoError(t, printResult(&buf, "json", map[string]string{"id": "x"}, "x"))
	assert.JSONEq(t, `{"id":"x"}`, buf.String())
}

func TestCSVFlags_Options(t *testing.T) {
	c := csvFlags{delimiter: ";", encoding: "latin1", usecols: []string{"a"}}
	opts := c.options()
	assert.Equal(t, ';', opts.Delimiter)
	assert.Equal(t, "latin1", opts.Encoding)
	assert.Equal(t, []string{"a"}, opts.UseCols)

	assert.Zero(t, (&csvFlags{}).options().Delimiter)
}
