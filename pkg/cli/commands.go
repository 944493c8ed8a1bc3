package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type configDump struct {
	Sources  []string               `yaml:"sources"`
	Settings map[string]interface{} `yaml:"settings"`
}

func (c *CLI) newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration and the files it was read from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dump := configDump{
				Sources:  c.view.Sources(),
				Settings: c.view.Settings(),
			}
			if dump.Sources == nil {
				dump.Sources = []string{}
			}

			out, err := yaml.Marshal(dump)
			if err != nil {
				return fmt.Errorf("failed to encode configuration: %w", err)
			}
			_, err = c.output.Write(out)
			return err
		},
	}
}

func (c *CLI) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(c.output, "baldr v%s\n", c.config.Version)
			return err
		},
	}
}
