package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/abdul-hamid-achik/dromus/packages/core/logging"
	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var (
	logLevelFlag string
	configFlag   string

	logger = logging.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "dromus",
	Short: "Readable test output for go test -json.",
	Long: `dromus renders test runner events as a nested, configurable report:
one line per suite and case, failure messages with trimmed stack traces,
timings and a final summary.

Pipe the JSON output of go test into it:

  go test -json ./... | dromus report`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logging.ParseLevel(logLevelFlag)
		if err != nil {
			return withExitCode(ExitUsageError, err)
		}
		logger = logging.New(level, cmd.ErrOrStderr())
		return nil
	},
}

func Execute(v, bt string) {
	version = v
	buildTime = bt
	os.Exit(run(os.Args[1:]))
}

// run executes the root command and maps its error to an exit code
func run(args []string) int {
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	if err == nil {
		return ExitSuccess
	}

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		if exitErr.err != nil {
			fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", exitErr.err)
		}
		return exitErr.code
	}
	fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
	return ExitUsageError
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", getEnvString("DROMUS_LOG_LEVEL", slog.LevelWarn.String()), "Diagnostics level: debug, info, warn, error (env: DROMUS_LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", getEnvString("DROMUS_CONFIG", ""), "Path to config file (env: DROMUS_CONFIG)")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return withExitCode(ExitUsageError, err)
	})

	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
}
