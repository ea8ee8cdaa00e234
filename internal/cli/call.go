package cli

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"ovhapi/ovh"
)

var callMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete}

func newCallCmd(a *app, method string) *cobra.Command {
	var (
		params []string
		data   string
		noAuth bool
		batch  bool
	)
	withBody := method == http.MethodPost || method == http.MethodPut

	cmd := &cobra.Command{
		Use:   strings.ToLower(method) + " <path>",
		Short: "Send a " + method + " request and print the response body",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := parseParams(params)
			if err != nil {
				return err
			}
			opts := []ovh.CallOption{ovh.WithQuery(query)}
			if noAuth {
				opts = append(opts, ovh.WithoutAuth())
			}
			if batch {
				opts = append(opts, ovh.AsBatch())
			}
			var body []byte
			if withBody && cmd.Flags().Changed("data") {
				body = []byte(data)
			}

			start := time.Now()
			resp, err := a.client.Call(cmd.Context(), method, args[0], body, opts...)
			if err != nil {
				return err
			}
			a.log.Debug("call done", "method", method, "path", args[0], "bytes", len(resp), "elapsed", time.Since(start))

			out := cmd.OutOrStdout()
			_, _ = out.Write(resp)
			if len(resp) > 0 && resp[len(resp)-1] != '\n' {
				fmt.Fprintln(out)
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&params, "param", nil, "query parameter key=value (repeatable, keys must be unique)")
	cmd.Flags().BoolVar(&noAuth, "no-auth", false, "send the call without signature")
	cmd.Flags().BoolVar(&batch, "batch", false, "address several resources separated by the parameter separator")
	if withBody {
		cmd.Flags().StringVar(&data, "data", "", "JSON request body")
	}
	return cmd
}

// parseParams turns key=value pairs into query parameters.
func parseParams(pairs []string) (*ovh.QueryParams, error) {
	q := &ovh.QueryParams{}
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid parameter %q, expected key=value", p)
		}
		if err := q.Add(k, v); err != nil {
			return nil, err
		}
	}
	return q, nil
}
