package cli

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"ovhapi/ovh"
)

func newTimeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "time",
		Short: "Print the server time and the local clock offset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var server int64
			if err := a.client.Get(ctx, ovh.EndpointTime, &server, ovh.WithoutAuth()); err != nil {
				return fmt.Errorf("fetch server time: %w", err)
			}
			delta, err := a.client.TimeDelta(ctx)
			if err != nil {
				return fmt.Errorf("compute time delta: %w", err)
			}
			a.log.Debug("clock synchronised", "method", http.MethodGet, "path", ovh.EndpointTime, "delta", delta)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Server time: %d (%s)\n", server, time.Unix(server, 0).UTC().Format(time.RFC3339))
			fmt.Fprintf(out, "Delta: %ds\n", delta)
			return nil
		},
	}
}
