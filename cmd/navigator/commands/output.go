package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/itchyny/gojq"
	"gopkg.in/yaml.v3"
)

// Output formats
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func setLogger(l *slog.Logger) { slog.SetDefault(l) }

// render writes result in the selected format. text renders the human form
// and is only called for the text format without a jq filter.
func (o *options) render(w io.Writer, result any, text func(io.Writer) error) error {
	if o.jq != "" {
		return runJQ(w, o.jq, result)
	}

	switch o.format {
	case formatText, "":
		return text(w)
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case formatYAML:
		generic, err := toGeneric(result)
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(generic)
		if err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}
		_, err = w.Write(data)
		return err
	default:
		return fmt.Errorf("unsupported output format: %s", o.format)
	}
}

// toGeneric converts result to the maps and slices of its JSON form, so YAML
// and jq see the same keys as the HTTP API.
func toGeneric(result any) (any, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// runJQ applies expr to the JSON form of result. Strings are printed raw,
// everything else as compact JSON, one value per line.
func runJQ(w io.Writer, expr string, result any) error {
	query, err := gojq.Parse(expr)
	if err != nil {
		return fmt.Errorf("invalid jq expression %q: %w", expr, err)
	}
	input, err := toGeneric(result)
	if err != nil {
		return err
	}

	iter := query.Run(input)
	for {
		v, ok := iter.Next()
		if !ok {
			return nil
		}
		if err, ok := v.(error); ok {
			return fmt.Errorf("jq: %w", err)
		}
		if s, ok := v.(string); ok {
			fmt.Fprintln(w, s)
			continue
		}
		line, err := json.Marshal(v)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(line))
	}
}
