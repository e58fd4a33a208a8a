package warehouse

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iolib/internal/domain"
)

func TestParseSchema(t *testing.T) {
	t.Run("flat_and_nested", func(t *testing.T) {
		got, err := ParseSchema([]map[string]any{
			{"name": "id", "field_type": "integer", "mode": "required"},
			{"name": "tags", "type": "RECORD", "mode": "REPEATED", "fields": []any{
				map[string]any{"name": "k", "type": "string"},
			}},
		})
		require.NoError(t, err)
		assert.Equal(t, domain.Schema{
			{Name: "id", Type: "INTEGER", Mode: "REQUIRED"},
			{Name: "tags", Type: "RECORD", Mode: "REPEATED", Fields: []domain.SchemaField{{Name: "k", Type: "STRING"}}},
		}, got)
	})

	t.Run("unknown_key", func(t *testing.T) {
		_, err := ParseSchema([]map[string]any{{"name": "id", "type": "INTEGER", "size": 4}})
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("missing_type", func(t *testing.T) {
		_, err := ParseSchema([]map[string]any{{"name": "id"}})
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestLoadSchemaFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("json", func(t *testing.T) {
		path := filepath.Join(dir, "schema.json")
		require.NoError(t, os.WriteFile(path, []byte(`[{"name": "id", "type": "INTEGER"}]`), 0o600))

		got, err := LoadSchemaFile(path)
		require.NoError(t, err)
		assert.Equal(t, domain.Schema{{Name: "id", Type: "INTEGER"}}, got)
	})

	t.Run("yaml", func(t *testing.T) {
		path := filepath.Join(dir, "schema.yaml")
		require.NoError(t, os.WriteFile(path, []byte("- name: id\n  type: integer\n  mode: nullable\n"), 0o600))

		got, err := LoadSchemaFile(path)
		require.NoError(t, err)
		assert.Equal(t, domain.Schema{{Name: "id", Type: "INTEGER", Mode: "NULLABLE"}}, got)
	})

	t.Run("missing_file", func(t *testing.T) {
		_, err := LoadSchemaFile(filepath.Join(dir, "nope.json"))
		require.Error(t, err)
	})
}
