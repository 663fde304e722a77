package source

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ecmwf/anemoi-transform-sub000/internal/pathutil"
	"github.com/ecmwf/anemoi-transform-sub000/pkg/field"
	"github.com/ecmwf/anemoi-transform-sub000/pkg/transform"
)

// NewFile builds the file source: the same document shape the inline source
// takes, read from a JSON or YAML file. The path is validated at
// construction; the file itself is read when the source runs.
func NewFile(cfg map[string]any) (transform.Transform, error) {
	if err := checkInputs("file", cfg, []string{"path"}, "format"); err != nil {
		return nil, err
	}
	path, ok := cfg["path"].(string)
	if !ok || path == "" {
		return nil, fmt.Errorf(`source "file": option "path" must be a non-empty string`)
	}
	if err := pathutil.Validate(path); err != nil {
		return nil, fmt.Errorf(`source "file": %w`, err)
	}

	format := ""
	if v, ok := cfg["format"]; ok {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf(`source "file": option "format" must be a string`)
		}
		if s != "json" && s != "yaml" {
			return nil, fmt.Errorf(`source "file": unsupported document format %q (use "json" or "yaml")`, s)
		}
		format = s
	}
	if format == "" {
		format = formatFromExtension(path)
	}
	if format == "" {
		return nil, fmt.Errorf(`source "file": cannot determine the document format of %q (set the "format" option to "json" or "yaml")`, path)
	}

	return newSource("file", func() (field.List, error) {
		return readFields(path, format)
	}), nil
}

func formatFromExtension(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	}
	return ""
}

func readFields(path, format string) (field.List, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading field document: %w", err)
	}

	var doc any
	switch format {
	case "json":
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing JSON field document %s: %w", path, err)
		}
	case "yaml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing YAML field document %s: %w", path, err)
		}
	}

	docs, err := fieldDocs(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	fields, err := decodeFields(docs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return fields, nil
}

// fieldDocs accepts either a top-level list of field documents or a mapping
// holding one under "fields", matching the inline source's configuration
// shape.
func fieldDocs(doc any) ([]any, error) {
	switch d := doc.(type) {
	case []any:
		return d, nil
	case map[string]any:
		if list, ok := d["fields"].([]any); ok {
			return list, nil
		}
	}
	return nil, errors.New(`document must be a list of field documents or a mapping with a "fields" list`)
}
