package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/cximage/internal/config"
)

// configCommand prints the effective configuration as TOML. The output is a
// valid config file, so it can seed one:
//
//	cximage config > ~/.config/cximage/config.toml
func (c *CLI) configCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  usageArgs(0, ""),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			path := config.DefaultPath()
			if c.global.configPath != "" {
				path = c.global.configPath
			}
			c.Logger.Info("effective configuration", "file", path)
			return cfg.Redacted().WriteTOML(cmd.OutOrStdout())
		},
	}
}
