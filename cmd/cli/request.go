package cli

import (
	"net/http"
	"strings"

	"github.com/spf13/cobra"
	"github.com/urbanflow/client/internal/client"
	"github.com/urbanflow/client/internal/common"
)

/*
Sends an arbitrary call through the same client as every other command,
so the session token, header rules and response handling all apply. Used
for endpoints without a dedicated command, for example:

	urbanflow request /v1/analytics/overview/
	urbanflow request /v1/auth/profile/ -X PATCH -d '{"first_name":"Rita"}'
*/
func newRequestCommand() *cobra.Command {

	requestCmd := &cobra.Command{
		Use:   "request <path>",
		Short: "Call any API endpoint relative to the base URL",
		Args:  cobra.ExactArgs(1),
		RunE:  runRequest,
	}

	requestCmd.Flags().StringP("method", "X", http.MethodGet, "HTTP method")
	requestCmd.Flags().StringP("data", "d", "", "JSON or YAML body, or @file to read it from a file")
	requestCmd.Flags().StringArrayP("header", "H", nil, "Extra header as 'Name: value' (repeatable)")
	requestCmd.Flags().StringArray("param", nil, "Query parameter as key=value (repeatable)")

	return requestCmd
}

func runRequest(cmd *cobra.Command, args []string) error {

	flags := cmd.Flags()

	method, _ := flags.GetString("method")
	data, _ := flags.GetString("data")
	headerPairs, _ := flags.GetStringArray("header")
	paramPairs, _ := flags.GetStringArray("param")

	headers, err := parseKeyValues(headerPairs, ":")
	if err != nil {
		return err
	}

	params, err := parseKeyValues(paramPairs, "=")
	if err != nil {
		return err
	}

	var body any
	if len(data) > 0 {
		if path, found := strings.CutPrefix(data, "@"); found {
			body, err = common.ReadPayloadFile(path)
		} else {
			body, err = common.ReadPayload([]byte(data))
		}
		if err != nil {
			return err
		}
	}

	endpoint := args[0]
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}

	return render(cmd, apiClient.Request(cmd.Context(), endpoint, client.RequestOptions{
		Method:  method,
		Body:    body,
		Headers: headers,
		Query:   client.Query(params),
	}))
}
