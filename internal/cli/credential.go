package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ovhapi/ovh"
)

func newCredentialCmd(a *app) *cobra.Command {
	var (
		rules     []string
		recursive []string
		redirect  string
	)
	cmd := &cobra.Command{
		Use:   "credential",
		Short: "Request a new consumer key for a set of access rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(rules) == 0 && len(recursive) == 0 {
				return fmt.Errorf("at least one --rule or --recursive-rule is required")
			}
			req := &ovh.CredentialRequest{Redirection: redirect}
			for _, r := range rules {
				methods, path, err := parseRule(r)
				if err != nil {
					return err
				}
				req.AddRules(methods, path)
			}
			for _, r := range recursive {
				methods, path, err := parseRule(r)
				if err != nil {
					return err
				}
				req.AddRecursiveRules(methods, path)
			}

			res, err := a.client.RequestConsumerKey(cmd.Context(), req)
			if err != nil {
				return err
			}
			a.log.Info("consumer key requested", "rules", len(req.AccessRules), "state", res.State)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Validation URL: %s\n", res.ValidationURL)
			fmt.Fprintf(out, "Consumer key: %s\n", res.ConsumerKey)
			if res.State != "" {
				fmt.Fprintf(out, "State: %s\n", res.State)
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&rules, "rule", nil, "access rule METHOD[,METHOD...]:/path (repeatable)")
	cmd.Flags().StringArrayVar(&recursive, "recursive-rule", nil, "access rule covering /path and everything below it (repeatable)")
	cmd.Flags().StringVar(&redirect, "redirect", "", "URL the user is sent to after validation")
	return cmd
}

// parseRule reads "GET,POST:/me" into its methods and path.
func parseRule(s string) ([]string, string, error) {
	m, path, ok := strings.Cut(s, ":")
	if !ok || m == "" || !strings.HasPrefix(path, "/") {
		return nil, "", fmt.Errorf("invalid rule %q, expected METHOD:/path", s)
	}
	methods := strings.Split(m, ",")
	for i, method := range methods {
		methods[i] = strings.TrimSpace(method)
		if methods[i] == "" {
			return nil, "", fmt.Errorf("invalid rule %q, empty method", s)
		}
	}
	return methods, path, nil
}
