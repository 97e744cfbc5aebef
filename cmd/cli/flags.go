package cli

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// parseKeyValues splits "key<sep>value" pairs. Keys are trimmed, values are
// kept as given apart from surrounding whitespace.
func parseKeyValues(pairs []string, sep string) (map[string]string, error) {

	values := make(map[string]string, len(pairs))

	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, sep)
		key = strings.TrimSpace(key)
		if !found || len(key) == 0 {
			return nil, fmt.Errorf("invalid value %q, expected key%svalue", pair, sep)
		}
		values[key] = strings.TrimSpace(value)
	}

	return values, nil
}

// uuidArg requires exactly one argument that parses as a UUID.
func uuidArg(name string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("expected exactly one %s", name)
		}
		if _, err := uuid.Parse(args[0]); err != nil {
			return fmt.Errorf("invalid %s %q: must be a UUID", name, args[0])
		}
		return nil
	}
}

func getFilterFlag(cmd *cobra.Command) (map[string]string, error) {
	filters, err := cmd.Flags().GetStringArray("filter")
	if err != nil {
		return nil, err
	}
	return parseKeyValues(filters, "=")
}
