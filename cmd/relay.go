package cmd

import (
	"os/signal"
	"syscall"

	"backoffice/pkg/logger"

	"github.com/spf13/cobra"
)

func NewRelayCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "relay",
		Short: "Publish pending outbox events to the configured sink",
		Long: `Run the outbox relay alone. Events written by the unit of work when
"outbox" is listed in notify.sinks are delivered to notify.relay.sink.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.Load()
			if err != nil {
				return err
			}

			app, err := NewBuilder(cfg).WithoutHTTP().WithRelay(true).Build()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			defer app.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return app.Run(ctx)
		},
	}
}
