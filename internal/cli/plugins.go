package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/soyeahso/adlad/internal/plugins"
	"github.com/spf13/cobra"
)

func newPluginsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plugins",
		Short: "List the built-in ad plugins and their capabilities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, cmdLog, err := loadConfig(log)
			if err != nil {
				return err
			}

			reg, err := plugins.NewRegistry(cfg.Plugins, cmdLog)
			if err != nil {
				return err
			}
			defer reg.CloseAll()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tACTIVE\tCAPABILITIES")
			for _, info := range reg.Info() {
				active := ""
				if info.Name == cfg.Plugin {
					active = "*"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", info.Name, active, strings.Join(info.Capabilities, ", "))
			}
			return w.Flush()
		},
	}
}
