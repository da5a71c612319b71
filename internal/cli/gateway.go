package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/soyeahso/adlad/internal/config"
	"github.com/soyeahso/adlad/internal/gateway"
	"github.com/spf13/cobra"
)

func newGatewayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gateway",
		Short: "Manage the adlad gateway server",
	}

	cmd.AddCommand(newGatewayRunCmd())
	return cmd
}

func newGatewayRunCmd() *cobra.Command {
	var (
		port int
		bind string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the gateway server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, cmdLog, err := loadConfig(log, func(cfg *config.Config) {
				if port != 0 {
					cfg.Gateway.Port = port
				}
				if bind != "" {
					cfg.Gateway.Bind = bind
				}
			})
			if err != nil {
				return err
			}

			if err := paths.EnsureDirs(); err != nil {
				return err
			}

			rt, err := newRuntime(cfg, "", cmdLog)
			if err != nil {
				return err
			}
			defer rt.Close()

			srv := gateway.New(cfg.Gateway, rt.coord, cmdLog,
				gateway.WithHooks(rt.hooks),
				gateway.WithHistory(rt.history),
				gateway.WithPlugins(rt.plugins),
			)

			// Block until SIGINT/SIGTERM
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return srv.Start(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "override gateway port")
	cmd.Flags().StringVar(&bind, "bind", "", "override bind mode (auto, lan, loopback, custom)")

	return cmd
}
