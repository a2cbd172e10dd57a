package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/abdul-hamid-achik/dromus/packages/core/config"
	"github.com/spf13/cobra"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Write a config file with the default options",
	Long: `Write dromus.yaml with every option set to its default, ready to edit.

Examples:
  dromus init
  dromus init --force`,
	Args: cobra.MaximumNArgs(1),
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing config file")
}

func initCommand(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}

	if !forceInit {
		for _, name := range config.ConfigFilenames {
			existing := filepath.Join(dir, name)
			if _, err := os.Stat(existing); err == nil {
				return withExitCode(ExitConfigError, fmt.Errorf("file already exists: %s (use --force to overwrite)", existing))
			}
		}
	}

	configFile := filepath.Join(dir, "dromus.yaml")
	if err := config.Defaults().SaveConfig(configFile); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)
	return nil
}
