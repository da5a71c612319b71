package cli

import (
	"fmt"

	"github.com/soyeahso/adlad/internal/config"
	"github.com/soyeahso/adlad/internal/plugins"
	"github.com/soyeahso/adlad/internal/version"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show adlad status and configuration summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "adlad %s (commit %s)\n\n", version.Version, version.Commit)

			fmt.Fprintf(out, "Config:  %s\n", paths.Config)
			fmt.Fprintf(out, "Data:    %s\n", paths.Data)
			fmt.Fprintln(out)

			cfg, err := config.Load(paths.Config)
			if err != nil {
				fmt.Fprintf(out, "Config:  error loading: %v\n", err)
				return nil
			}

			fmt.Fprintf(out, "Gateway: port=%d bind=%s auth=%s\n",
				cfg.Gateway.Port, cfg.Gateway.Bind, cfg.Gateway.Auth.Mode)
			fmt.Fprintf(out, "History: store=%s limit=%d\n", cfg.History.Store, cfg.History.Limit)

			d := cfg.Plugins.Dummy
			fmt.Fprintf(out, "Dummy:   initDelay=%s adDuration=%s failInit=%v failKinds=%v unsupported=%v\n",
				d.InitDelay, d.AdDuration, d.FailInit, d.FailKinds, d.Unsupported)

			reg, err := plugins.NewRegistry(cfg.Plugins, log)
			switch {
			case err != nil:
				fmt.Fprintf(out, "Plugin:  %s (error: %v)\n", cfg.Plugin, err)
			case reg.Get(cfg.Plugin) == nil:
				fmt.Fprintf(out, "Plugin:  %s (not found, ads disabled)\n", cfg.Plugin)
			default:
				fmt.Fprintf(out, "Plugin:  %s\n", cfg.Plugin)
			}
			if reg != nil {
				reg.CloseAll()
			}

			issues := config.Validate(&cfg)
			if len(issues) > 0 {
				fmt.Fprintf(out, "\nValidation issues (%d):\n", len(issues))
				for _, issue := range issues {
					fmt.Fprintf(out, "  - %s: %s\n", issue.Path, issue.Message)
				}
			}

			return nil
		},
	}

	return cmd
}
