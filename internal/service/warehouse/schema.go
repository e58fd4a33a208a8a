package warehouse

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"iolib/internal/domain"
)

// ParseSchema builds a schema from generic field descriptions with the keys
// name, type (or field_type), mode, description and fields.
func ParseSchema(fields []map[string]any) (domain.Schema, error) {
	schema := make(domain.Schema, 0, len(fields))
	for i, raw := range fields {
		f, err := parseField(raw)
		if err != nil {
			return nil, fmt.Errorf("schema field %d: %w", i, err)
		}
		schema = append(schema, f)
	}
	return schema, nil
}

func parseField(raw map[string]any) (domain.SchemaField, error) {
	var f domain.SchemaField
	for k, v := range raw {
		switch k {
		case "name":
			f.Name = fmt.Sprint(v)
		case "type", "field_type":
			f.Type = strings.ToUpper(fmt.Sprint(v))
		case "mode":
			f.Mode = strings.ToUpper(fmt.Sprint(v))
		case "description":
			f.Description = fmt.Sprint(v)
		case "fields":
			nested, ok := v.([]any)
			if !ok {
				return f, domain.ErrValidation(domain.ErrInvalidInput, "fields of %q must be a list", f.Name)
			}
			for _, n := range nested {
				m, ok := n.(map[string]any)
				if !ok {
					return f, domain.ErrValidation(domain.ErrInvalidInput, "nested field of %q must be a mapping", f.Name)
				}
				sub, err := parseField(m)
				if err != nil {
					return f, err
				}
				f.Fields = append(f.Fields, sub)
			}
		default:
			return f, domain.ErrValidation(domain.ErrInvalidInput, "unknown schema key %q", k)
		}
	}
	if f.Name == "" {
		return f, domain.ErrValidation(domain.ErrInvalidInput, "schema field without name")
	}
	if f.Type == "" {
		return f, domain.ErrValidation(domain.ErrInvalidInput, "schema field %q without type", f.Name)
	}
	return f, nil
}

// LoadSchemaFile reads a JSON or YAML list of field descriptions.
func LoadSchemaFile(path string) (domain.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	var fields []map[string]any
	if err := yaml.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("parse schema %s: %w", path, err)
	}
	return ParseSchema(fields)
}
