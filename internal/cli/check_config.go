package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newCheckConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check-config",
		Short: "Validate the configuration and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			cfg := a.cfg

			fmt.Fprintln(out, "✓ Configuration is valid!")
			fmt.Fprintf(out, "  - Endpoint: %s (%s)\n", cfg.Endpoint, a.client.Endpoint())
			if len(cfg.ConfigFiles) > 0 {
				fmt.Fprintf(out, "  - Config files: %s\n", strings.Join(cfg.ConfigFiles, ", "))
			} else {
				fmt.Fprintln(out, "  - Config files: none")
			}
			fmt.Fprintf(out, "  - Application key: %s\n", isSet(cfg.ApplicationKey))
			fmt.Fprintf(out, "  - Application secret: %s\n", isSet(cfg.ApplicationSecret))
			fmt.Fprintf(out, "  - Consumer key: %s\n", isSet(cfg.ConsumerKey))
			fmt.Fprintf(out, "  - Timeout: %s\n", cfg.Timeout)

			if cfg.ApplicationSecret == "" || cfg.ConsumerKey == "" {
				fmt.Fprintln(out, "[WARNING] Authenticated calls need an application secret and a consumer key")
			}
			return nil
		},
	}
}

func isSet(v string) string {
	if v == "" {
		return "not set"
	}
	return "set"
}
