package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// algorithmsCommand lists the algorithms the rendering service offers.
func (c *CLI) algorithmsCommand() *cobra.Command {
	var showParams bool

	cmd := &cobra.Command{
		Use:   "algorithms",
		Short: "List the algorithms offered by the rendering service",
		Args:  usageArgs(0, ""),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			jobs, err := c.newJobClient(cfg)
			if err != nil {
				return err
			}
			algos, err := jobs.Algorithms(cmd.Context())
			if err != nil {
				return err
			}
			if len(algos) == 0 {
				printInfo("No algorithms available")
				return nil
			}

			for _, a := range algos {
				name := a.Name
				if a.Name == cfg.Algorithm {
					name = StyleHighlight.Render(name) + StyleDim.Render(" (default)")
				}
				fmt.Println(StyleTitle.Render("•") + " " + name)
				if a.Description != "" {
					printDetail("%s", a.Description)
				}
				if !showParams {
					continue
				}
				for _, p := range a.CustomParameters {
					line := p.Name
					if p.DefaultValue != "" {
						line += "=" + p.DefaultValue
					}
					if p.Description != "" {
						line += "  " + p.Description
					}
					printDetail("  %s", line)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&showParams, "parameters", "p", false, "also list each algorithm's custom parameters")
	return cmd
}

// serverStatusCommand shows the rendering service's health report.
func (c *CLI) serverStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "server-status",
		Short: "Show the health of the rendering service",
		Args:  usageArgs(0, ""),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			jobs, err := c.newJobClient(cfg)
			if err != nil {
				return err
			}
			st, err := jobs.ServerStatus(cmd.Context())
			if err != nil {
				return err
			}

			printKeyValue("Service", StyleLink.Render(jobs.BaseURL()))
			printKeyValue("Status", st.Status)
			if st.RestVersion != "" {
				printKeyValue("Version", st.RestVersion)
			}
			if len(st.Load) > 0 {
				loads := make([]string, len(st.Load))
				for i, l := range st.Load {
					loads[i] = strconv.FormatFloat(l, 'f', 2, 64)
				}
				printKeyValue("Load", strings.Join(loads, " "))
			}
			printKeyValue("Disk full", fmt.Sprintf("%d%%", st.PercentDiskFull))
			printKeyValue("Queued", strconv.Itoa(st.QueuedTasks))
			printKeyValue("Completed", strconv.Itoa(st.CompletedTasks))
			printKeyValue("Canceled", strconv.Itoa(st.CanceledTasks))
			if st.Message != "" {
				printWarning("%s", st.Message)
			}
			return nil
		},
	}
}
