package summarizer

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Formatter turns a Summary into file content.
type Formatter interface {
	Format(summary *Summary) string
}

// FormatFunc adapts a function to Formatter.
type FormatFunc func(summary *Summary) string

func (f FormatFunc) Format(summary *Summary) string {
	return f(summary)
}

// JSONFormatter renders the summary for machines: CI jobs pick up the
// frame count and capture reason from it.
var JSONFormatter = FormatFunc(func(s *Summary) string {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return ""
	}
	return string(data) + "\n"
})

// YAMLFormatter renders the summary in the same layout as JSONFormatter.
var YAMLFormatter = FormatFunc(func(s *Summary) string {
	data, err := yaml.Marshal(s)
	if err != nil {
		return ""
	}
	return string(data)
})

// ForPath picks a formatter from the file extension: .json and .yaml/.yml
// get structured output, anything else Markdown.
func ForPath(path string, opts ...MarkdownOption) Formatter {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSONFormatter
	case ".yaml", ".yml":
		return YAMLFormatter
	}
	return NewMarkdownFormatter(opts...)
}
