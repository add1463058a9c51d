package storage

import (
	"bytes"
	"fmt"
	"path/filepath"
	"text/template"
)

// Output naming templates. Placeholders in %(...)s and {...} form are left
// for the external tool to fill in.
const (
	ToolOutputTemplate    = "{{.Brand}} - %(title)s.%(ext)s"
	SpotdlOutputTemplate  = "{{.Brand}} - {artist} - {title}.{output-ext}"
	ResolvedNameTemplate  = "{{.Brand}} - {{.Artist}} - {{.Title}}"
	ResolvedTitleTemplate = "{{.Artist}} - {{.Title}}"
)

// NameTemplateData holds the data for name template execution
type NameTemplateData struct {
	Brand  string
	Artist string
	Title  string
}

// BuildName executes the template and returns the resulting name
func BuildName(templateStr string, data *NameTemplateData) (string, error) {
	tmpl, err := template.New("name").Option("missingkey=error").Parse(templateStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

// BuildOutputPath builds the tool's output argument: dir joined with the
// executed template.
func BuildOutputPath(dir, templateStr string, data *NameTemplateData) (string, error) {
	name, err := BuildName(templateStr, data)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}
