package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ovhapi/internal/config"
	"ovhapi/internal/logging"
	"ovhapi/ovh"
)

// app is filled by the root command before any subcommand runs.
type app struct {
	configFile string

	// configOpts and clientOpts are extended by tests.
	configOpts config.Options
	clientOpts []ovh.Option

	cfg      config.Config
	client   *ovh.Client
	log      *slog.Logger
	closeLog func()
}

func (a *app) setup(cmd *cobra.Command) error {
	opts := a.configOpts
	opts.ConfigFile = a.configFile
	opts.Flags = cmd.Flags()

	cfg, err := config.Load(opts)
	if err != nil {
		return err
	}
	a.cfg = cfg

	l, closeFn, err := logging.Configure(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		return err
	}
	a.log, a.closeLog = l, closeFn

	c, err := cfg.NewClient(a.clientOpts...)
	if err != nil {
		return err
	}
	a.client = c
	a.log.Debug("configuration loaded", "endpoint", cfg.Endpoint, "files", cfg.ConfigFiles, "timeout", cfg.Timeout)
	return nil
}

func (a *app) close() {
	if a.closeLog != nil {
		a.closeLog()
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "ovhapi",
		Short:         "Signed calls against the OVH REST API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "INI configuration file (default $HOME/"+config.ConfigFileName+" then ./"+config.ConfigFileName+")")
	pf.String("endpoint", "", "API endpoint name, e.g. ovh-eu")
	pf.String("application-key", "", "application key")
	pf.String("application-secret", "", "application secret")
	pf.String("consumer-key", "", "consumer key")
	pf.Duration("timeout", 0, "per-call timeout (default 3m0s)")
	pf.String("log-level", "", "trace, debug, info, warn or error")
	pf.String("log-format", "", "terminal, json or logfmt")
	pf.String("log-file", "", "also write logs to this file")

	root.AddCommand(newCheckConfigCmd(a))
	root.AddCommand(newTimeCmd(a))
	for _, m := range callMethods {
		root.AddCommand(newCallCmd(a, m))
	}
	root.AddCommand(newCredentialCmd(a))
	root.AddCommand(newEnumerateCmd(a))
	return root
}

func Execute() int {
	a := &app{}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(a)
	if err := root.ExecuteContext(ctx); err != nil {
		reportError(os.Stderr, err)
		return 1
	}
	return 0
}

func reportError(w io.Writer, err error) {
	var apiErr *ovh.Error
	if errors.As(err, &apiErr) {
		logging.Logger().Error("request failed", "kind", apiErr.Kind.String(), "status", apiErr.StatusCode, "code", apiErr.ErrorCode)
	}
	_, _ = fmt.Fprintln(w, err)
}
