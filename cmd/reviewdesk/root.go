package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"basegraph.app/reviewdesk/common/id"
	"basegraph.app/reviewdesk/common/logger"
	"basegraph.app/reviewdesk/core/config"
	"basegraph.app/reviewdesk/internal/service"
)

// app carries what every subcommand needs once the root has initialized.
type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	verbose bool
	raw     bool

	loadServices func(ctx context.Context) (*service.Services, error)
	services     *service.Services
	render       renderFunc

	// idle chat sessions are pruned by long-running commands
	sessionIdleTTL  time.Duration
	janitorInterval time.Duration
}

func newApp(in io.Reader, out, errOut io.Writer) *app {
	a := &app{in: in, out: out, errOut: errOut, janitorInterval: time.Minute}
	a.loadServices = a.servicesFromEnv
	return a
}

// startJanitor prunes idle chat sessions until the returned stop func is called.
func (a *app) startJanitor(ctx context.Context) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	go a.services.Sessions().RunJanitor(ctx, a.janitorInterval, a.sessionIdleTTL)
	return cancel
}

func (a *app) servicesFromEnv(ctx context.Context) (*service.Services, error) {
	cfg, err := config.Load(config.ServiceTypeCLI)
	if err != nil {
		return nil, err
	}

	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	logger.SetupCLI(cfg, a.errOut, level)
	a.sessionIdleTTL = cfg.Chat.IdleTTL

	if err := id.Init(1); err != nil {
		return nil, err
	}
	return service.NewServicesFromConfig(ctx, cfg, service.NewMetrics(prometheus.NewRegistry()))
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "reviewdesk",
		Short:         "Analyze customer reviews and draft replies with an LLM",
		Long:          `reviewdesk extracts structured insight from customer reviews, drafts replies in the reviewer's language and chats about them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			services, err := a.loadServices(cmd.Context())
			if err != nil {
				return err
			}
			a.services = services
			a.render = newRenderer(a.out, a.raw)
			return nil
		},
	}
	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log debug output to stderr")
	root.PersistentFlags().BoolVar(&a.raw, "raw", false, "Print plain text instead of rendered markdown")

	root.AddCommand(
		newAnalyzeCmd(a),
		newPipelineCmd(a),
		newChatCmd(a),
		newMCPCmd(a),
	)
	return root
}
