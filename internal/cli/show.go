package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/soyeahso/adlad/internal/ad"
	"github.com/spf13/cobra"
)

func newShowCmd() *cobra.Command {
	var (
		pluginName string
		count      int
	)

	cmd := &cobra.Command{
		Use:   "show <full-screen|rewarded>",
		Short: "Show an ad through the active plugin and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := ad.ParseKind(args[0])
			if err != nil {
				return err
			}
			if count < 1 {
				return fmt.Errorf("--count must be at least 1")
			}

			cfg, cmdLog, err := loadConfig(log)
			if err != nil {
				return err
			}

			rt, err := newRuntime(cfg, pluginName, cmdLog)
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			enc := json.NewEncoder(cmd.OutOrStdout())
			for range count {
				res := rt.coord.ShowAd(ctx, kind)
				if err := enc.Encode(res); err != nil {
					return err
				}
				if ctx.Err() != nil {
					return context.Cause(ctx)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&pluginName, "plugin", "", "override the active plugin")
	cmd.Flags().IntVar(&count, "count", 1, "number of ads to show one after another")

	return cmd
}
