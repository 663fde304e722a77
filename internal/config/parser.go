package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseFile reads a workflow document, decodes it, and validates it against
// the embedded schema. The format comes from the file extension; files with
// an unknown extension are sniffed from their content.
func ParseFile(path string) *Result {
	result := &Result{FilePath: path}

	content, err := os.ReadFile(path)
	if err != nil {
		result.ParseErrors = append(result.ParseErrors, ParseError{
			Path:    path,
			Message: fmt.Sprintf("failed to read file: %v", err),
			Type:    ErrorTypeIO,
		})
		return result
	}

	parsed := parseDocument(string(content), DetectFormat(path))
	for i := range parsed.Errors {
		if parsed.Errors[i].Path == "" {
			parsed.Errors[i].Path = path
		}
	}
	result.Data = parsed.Data
	result.ParseErrors = parsed.Errors
	result.Format = parsed.Format

	if !parsed.IsValid() {
		return result
	}
	result.ValidationErrors = ValidateDocument(parsed.Data).Errors
	return result
}

// ParseString decodes a workflow document held in a string and validates it.
// An empty format triggers content sniffing.
func ParseString(content, format string) *Result {
	parsed := parseDocument(content, format)
	result := &Result{
		Data:        parsed.Data,
		ParseErrors: parsed.Errors,
		Format:      parsed.Format,
	}
	if !parsed.IsValid() {
		return result
	}
	result.ValidationErrors = ValidateDocument(parsed.Data).Errors
	return result
}

// parseDocument decodes content in the given format, sniffing when the
// format is empty.
func parseDocument(content, format string) *ParseResult {
	if format == "" {
		switch {
		case IsJSON(content):
			format = "json"
		case IsYAML(content):
			format = "yaml"
		default:
			return &ParseResult{Errors: []ParseError{{
				Message: "unable to detect document format: not valid JSON or YAML",
				Type:    ErrorTypeFormat,
			}}}
		}
	}
	switch format {
	case "json":
		return ParseJSONString(content)
	case "yaml":
		return ParseYAMLString(content)
	}
	return &ParseResult{Format: format, Errors: []ParseError{{
		Message: fmt.Sprintf("unsupported format: %s", format),
		Type:    ErrorTypeFormat,
	}}}
}

// ParseJSONString decodes a JSON workflow document. The top level must be an
// object.
func ParseJSONString(content string) *ParseResult {
	result := &ParseResult{Format: "json"}

	content = strings.TrimSpace(content)
	if content == "" {
		result.Errors = append(result.Errors, ParseError{
			Message: "empty content: expected a JSON object",
			Type:    ErrorTypeSyntax,
		})
		return result
	}

	var data any
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		result.Errors = append(result.Errors, describeJSONError(err, content))
		return result
	}
	if data == nil {
		return result
	}

	dataMap, ok := data.(map[string]any)
	if !ok {
		result.Errors = append(result.Errors, ParseError{
			Message: fmt.Sprintf("invalid document: expected a JSON object, got %T", data),
			Type:    ErrorTypeFormat,
		})
		return result
	}
	result.Data = dataMap
	return result
}

// describeJSONError extracts position information from a JSON decoding
// error.
func describeJSONError(err error, content string) ParseError {
	parseErr := ParseError{
		Message: err.Error(),
		Type:    ErrorTypeSyntax,
	}
	if syntaxErr, ok := err.(*json.SyntaxError); ok {
		parseErr.Offset = syntaxErr.Offset
		parseErr.Line, parseErr.Column = offsetToLineColumn(content, syntaxErr.Offset)
		parseErr.Message = fmt.Sprintf("JSON syntax error at offset %d: %s", syntaxErr.Offset, syntaxErr.Error())
	}
	if typeErr, ok := err.(*json.UnmarshalTypeError); ok {
		parseErr.Offset = typeErr.Offset
		parseErr.Line, parseErr.Column = offsetToLineColumn(content, typeErr.Offset)
		parseErr.Message = fmt.Sprintf("type error at field '%s': expected %s, got %s",
			typeErr.Field, typeErr.Type.String(), typeErr.Value)
	}
	return parseErr
}

// offsetToLineColumn converts a byte offset to 1-based line and column
// numbers.
func offsetToLineColumn(content string, offset int64) (line, column int) {
	if offset <= 0 {
		return 1, 1
	}
	line, column = 1, 1
	for i := int64(0); i < offset && i < int64(len(content)); i++ {
		if content[i] == '\n' {
			line++
			column = 1
		} else {
			column++
		}
	}
	return line, column
}

// ParseYAMLString decodes a YAML workflow document. The top level must be a
// mapping.
func ParseYAMLString(content string) *ParseResult {
	result := &ParseResult{Format: "yaml"}

	if strings.TrimSpace(content) == "" {
		result.Errors = append(result.Errors, ParseError{
			Message: "empty content: expected a YAML document",
			Type:    ErrorTypeSyntax,
		})
		return result
	}

	var data any
	if err := yaml.Unmarshal([]byte(content), &data); err != nil {
		result.Errors = append(result.Errors, describeYAMLError(err))
		return result
	}
	if data == nil {
		// comments-only or null document
		return result
	}

	dataMap, ok := data.(map[string]any)
	if !ok {
		result.Errors = append(result.Errors, ParseError{
			Message: fmt.Sprintf("invalid document: expected a YAML mapping, got %T", data),
			Type:    ErrorTypeFormat,
		})
		return result
	}
	result.Data = dataMap
	return result
}

// describeYAMLError extracts position information from a YAML decoding
// error. The yaml.v3 library only exposes the line, inside the message.
func describeYAMLError(err error) ParseError {
	parseErr := ParseError{
		Message: err.Error(),
		Type:    ErrorTypeSyntax,
	}
	if typeErr, ok := err.(*yaml.TypeError); ok {
		parseErr.Message = fmt.Sprintf("YAML type error: %s", strings.Join(typeErr.Errors, "; "))
	}
	if strings.Contains(err.Error(), "yaml: line ") {
		var line int
		if _, scanErr := fmt.Sscanf(err.Error(), "yaml: line %d:", &line); scanErr == nil {
			parseErr.Line = line
		}
	}
	return parseErr
}

// DetectFormat maps a file extension to a document format. It returns an
// empty string when the extension decides nothing.
func DetectFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	}
	return ""
}

// IsJSON reports whether the content looks like a JSON document.
func IsJSON(content string) bool {
	content = strings.TrimSpace(content)
	if content == "" {
		return false
	}
	return strings.HasPrefix(content, "{") || strings.HasPrefix(content, "[")
}

// IsYAML reports whether the content parses as a non-empty YAML document.
// JSON is also valid YAML, so sniff for JSON first.
func IsYAML(content string) bool {
	content = strings.TrimSpace(content)
	if content == "" {
		return false
	}
	var data any
	return yaml.Unmarshal([]byte(content), &data) == nil && data != nil
}
