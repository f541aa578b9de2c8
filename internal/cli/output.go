package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/rshade/wardboard/internal/config"
)

// Output formats.
const (
	OutputTable  = "table"
	OutputJSON   = "json"
	OutputNDJSON = "ndjson"
)

const tabPadding = 2

// resolveOutputFormat applies the configured default and validates the result.
func resolveOutputFormat(override string) (string, error) {
	format := strings.ToLower(config.GetOutputFormat(override))
	switch format {
	case OutputTable, OutputJSON, OutputNDJSON:
		return format, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s (valid: table, json, ndjson)", format)
	}
}

// writeTable writes headers and rows aligned with a tabwriter.
func writeTable(w io.Writer, headers []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)

	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	rules := make([]string, len(headers))
	for i, h := range headers {
		rules[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(tw, strings.Join(rules, "\t"))

	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// writeNDJSON writes each item as one JSON line.
func writeNDJSON[T any](w io.Writer, items []T) error {
	for _, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("marshaling row: %w", err)
		}
		if _, err = fmt.Fprintf(w, "%s\n", data); err != nil {
			return fmt.Errorf("writing NDJSON line: %w", err)
		}
	}
	return nil
}
