package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configFlags optionFlags

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the resolved reporter options",
	Long: `Print the options report would use, after layering the defaults,
the config file, DROMUS_* environment variables and the given flags.

Examples:
  dromus config
  DROMUS_SHOW_TIMINGS=false dromus config --stack-traces`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := resolveProfile(cmd, &configFlags, stdoutFile(cmd))
		if err != nil {
			return err
		}
		opts := profile.Options()
		if opts.IsDefault() {
			logger.Info("every option is at its default")
		}
		data, err := yaml.Marshal(opts)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	configFlags.register(configCmd)
}
