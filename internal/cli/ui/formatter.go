package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// OutputFormat is the value of --format
type OutputFormat string

const (
	FormatPretty OutputFormat = "pretty"
	FormatJSON   OutputFormat = "json"
	FormatYAML   OutputFormat = "yaml"
)

var formatAliases = map[string]OutputFormat{
	"":       FormatPretty,
	"pretty": FormatPretty,
	"table":  FormatPretty,
	"json":   FormatJSON,
	"yaml":   FormatYAML,
	"yml":    FormatYAML,
}

// ParseFormat resolves a --format value, aliases included
func ParseFormat(s string) (OutputFormat, error) {
	f, ok := formatAliases[s]
	if !ok {
		return "", fmt.Errorf("unsupported format: %s (use pretty, json or yaml)", s)
	}
	return f, nil
}

// Formatter writes command results. Structured formatters encode plans,
// runs and argument lists as documents on stdout; the pretty formatter
// expects callers to render tables themselves and only prints strings.
type Formatter interface {
	Output(data any) error
	IsStructured() bool
}

type formatter struct {
	format OutputFormat
	out    io.Writer
}

// NewFormatter creates a formatter writing to out
func NewFormatter(format OutputFormat, out io.Writer) (Formatter, error) {
	switch format {
	case FormatPretty, FormatJSON, FormatYAML:
		return &formatter{format: format, out: out}, nil
	}
	return nil, fmt.Errorf("unsupported format: %s", format)
}

func (f *formatter) IsStructured() bool {
	return f.format != FormatPretty
}

func (f *formatter) Output(data any) error {
	switch f.format {
	case FormatJSON:
		enc := json.NewEncoder(f.out)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case FormatYAML:
		enc := yaml.NewEncoder(f.out)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return err
		}
		return enc.Close()
	}
	if s, ok := data.(string); ok {
		_, err := io.WriteString(f.out, s)
		return err
	}
	_, err := fmt.Fprintln(f.out, data)
	return err
}

// GlobalFormatter serves the command being executed; the root command
// replaces it from --format before any subcommand runs
var GlobalFormatter Formatter = &formatter{format: FormatPretty, out: os.Stdout}

// SetGlobalFormatter points GlobalFormatter at Out in the given format
func SetGlobalFormatter(format OutputFormat) error {
	f, err := NewFormatter(format, Out)
	if err != nil {
		return err
	}
	GlobalFormatter = f
	return nil
}
