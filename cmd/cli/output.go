package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/itchyny/gojq"
	"github.com/spf13/cobra"
	"github.com/urbanflow/client/internal/client"
	"github.com/urbanflow/client/internal/common"
	"github.com/urbanflow/client/internal/config"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

var labelCaser = cases.Title(language.English)

// render prints the data of a successful response, or returns the envelope
// failure as an error.
func render[T any](cmd *cobra.Command, resp client.Response[T]) error {
	if err := resp.Err(); err != nil {
		return err
	}
	return printData(cmd, resp.Data)
}

// printData normalizes data to plain JSON values, applies the --query
// expression if one was given and writes the result in the selected format.
func printData(cmd *cobra.Command, data any) error {

	var normalized any
	if err := common.ConvertInterfaceToInterface(data, &normalized); err != nil {
		return fmt.Errorf("failed to convert response data: %w", err)
	}

	results := []any{normalized}

	expression, _ := cmd.Flags().GetString("query")
	if len(strings.TrimSpace(expression)) > 0 {
		queried, err := runQuery(expression, normalized)
		if err != nil {
			return err
		}
		results = queried
	}

	format := config.OutputFormatJSON
	if cfg != nil {
		format = cfg.GetOutputFormat()
	}

	for _, result := range results {
		if err := writeFormatted(cmd.OutOrStdout(), format, result); err != nil {
			return err
		}
	}

	return nil
}

func runQuery(expression string, input any) ([]any, error) {

	query, err := gojq.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid query %q: %w", expression, err)
	}

	var results []any

	iter := query.Run(input)
	for {
		value, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := value.(error); ok {
			return nil, fmt.Errorf("query failed: %w", err)
		}
		results = append(results, value)
	}

	return results, nil
}

func writeFormatted(w io.Writer, format string, value any) error {

	switch format {
	case config.OutputFormatYAML:
		data, err := yaml.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		fmt.Fprint(w, string(data))
	default:
		data, err := json.MarshalIndent(value, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		fmt.Fprintln(w, string(data))
	}

	return nil
}

// humanizeKey turns "expires_at" into "Expires At".
func humanizeKey(key string) string {
	return labelCaser.String(strings.ReplaceAll(key, "_", " "))
}

// printFields writes key/value rows with humanized labels in key order.
func printFields(w io.Writer, fields map[string]string) {

	keys := make([]string, 0, len(fields))
	width := 0
	for key := range fields {
		keys = append(keys, key)
		width = max(width, len(key))
	}
	sort.Strings(keys)

	for _, key := range keys {
		label := fmt.Sprintf("%-*s", width+1, humanizeKey(key)+":")
		fmt.Fprintf(w, "%s %s\n", headerStyle.Render(label), fields[key])
	}
}
