package cmd

import (
	"os/signal"
	"syscall"

	"backoffice/pkg/logger"

	"github.com/spf13/cobra"
)

type ServeOptions struct {
	*RootOptions
	Relay bool
}

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API. With --relay (or notify.relay.enabled) the outbox
relay runs in the same process.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.Load()
			if err != nil {
				return err
			}

			builder := NewBuilder(cfg)
			if cmd.Flags().Changed("relay") {
				builder.WithRelay(opts.Relay)
			}
			app, err := builder.Build()
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

	cmd.Flags().BoolVar(&opts.Relay, "relay", false, "also run the outbox relay")
	return cmd
}
