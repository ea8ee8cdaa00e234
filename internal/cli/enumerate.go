package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"ovhapi/ovh"
)

func newEnumerateCmd(a *app) *cobra.Command {
	var (
		template    string
		params      []string
		childParams []string
		noAuth      bool
	)
	cmd := &cobra.Command{
		Use:   "enumerate <path>",
		Short: "List the identifiers under a path and print every child resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parent, err := parseParams(params)
			if err != nil {
				return err
			}
			child, err := parseParams(childParams)
			if err != nil {
				return err
			}
			seq, err := a.client.Enumerate(cmd.Context(), args[0], ovh.EnumerateOptions{
				ParentQuery:    parent,
				ChildQuery:     child,
				ChildURLFormat: template,
				NoAuth:         noAuth,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			n := 0
			for body, err := range seq {
				if err != nil {
					return fmt.Errorf("enumerate %s: %w", args[0], err)
				}
				n++
				fmt.Fprintln(out, string(body))
			}
			a.log.Debug("enumeration done", "path", args[0], "children", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&template, "template", "", `child URL with one "*" placeholder (default "<path>/*")`)
	cmd.Flags().StringArrayVar(&params, "param", nil, "query parameter of the listing call key=value (repeatable)")
	cmd.Flags().StringArrayVar(&childParams, "child-param", nil, "query parameter of every child call key=value (repeatable)")
	cmd.Flags().BoolVar(&noAuth, "no-auth", false, "send the calls without signature")
	return cmd
}
