package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/abdul-hamid-achik/dromus/packages/core/config"
	"github.com/abdul-hamid-achik/dromus/packages/core/logging"
	"github.com/abdul-hamid-achik/dromus/packages/gotest"
	"github.com/abdul-hamid-achik/dromus/packages/output"
	"github.com/abdul-hamid-achik/dromus/packages/reporter"
	"github.com/abdul-hamid-achik/dromus/packages/stats"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report [file...]",
	Short: "Render go test -json output",
	Long: `Render the JSON event stream of go test as a readable report.

Input is read from the given files in order, or from stdin when no file
is given or the file is "-". Each package is reported as a suite; tests
running when the input ends are reported as interrupted.

Examples:
  go test -json ./... | dromus report
  dromus report test-output.json --stack-traces --max-stack-trace-depth 5
  dromus report --follow test-output.json
  go test -json ./... | dromus report --output json`,
	RunE: reportCommand,
}

var (
	reportFlags    optionFlags
	followFlag     bool
	outputFlag     string
	slowestFlag    int
	allowEmptyFlag bool
)

func init() {
	reportFlags.register(reportCmd)
	reportCmd.Flags().BoolVarP(&followFlag, "follow", "f", false, "Keep reading the file as it grows until interrupted")
	reportCmd.Flags().StringVarP(&outputFlag, "output", "o", getEnvString("DROMUS_OUTPUT", "console"), "Output format: console, json, log (env: DROMUS_OUTPUT)")
	reportCmd.Flags().IntVar(&slowestFlag, "slowest", stats.DefaultSlowest, "Number of slowest cases listed in the summary")
	reportCmd.Flags().BoolVar(&allowEmptyFlag, "allow-empty", getEnvBool("DROMUS_ALLOW_EMPTY", true), "Succeed when no tests were run (env: DROMUS_ALLOW_EMPTY)")
}

func reportCommand(cmd *cobra.Command, args []string) error {
	if followFlag && len(args) != 1 {
		return withExitCode(ExitUsageError, errors.New("--follow needs exactly one file"))
	}

	stdout := stdoutFile(cmd)
	profile, err := resolveProfile(cmd, &reportFlags, stdout)
	if err != nil {
		return err
	}

	sessionID := uuid.NewString()
	sink, err := newSink(outputFlag, cmd.OutOrStdout(), profile, sessionID)
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}

	session := reporter.NewSession(profile, sink,
		reporter.WithLogger(logger),
		reporter.WithSessionID(sessionID),
		reporter.WithVersion(version),
		reporter.WithWidth(output.TerminalWidth(profile.TerminalWidth(), stdout)),
		reporter.WithSlowest(slowestFlag),
	)
	if err := session.Start(); err != nil {
		return withExitCode(ExitInputError, err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conv := gotest.NewConverter(session, gotest.WithLogger(logger))
	readErr := readInput(ctx, cmd, conv, args)
	if err := conv.Close(); err != nil {
		logger.Debug("closing input", "error", err)
	}

	summary, err := session.Finish()
	if err != nil {
		logger.Warn("event stream was not well formed", "error", err)
	}
	if readErr != nil {
		return withExitCode(ExitInputError, readErr)
	}

	if summary.Failed() || (summary.Counts.Total() == 0 && !allowEmptyFlag) {
		return withExitCode(ExitTestFailure, nil)
	}
	return nil
}

func readInput(ctx context.Context, cmd *cobra.Command, conv *gotest.Converter, args []string) error {
	if followFlag {
		return conv.Follow(ctx, args[0])
	}
	if len(args) == 0 {
		args = []string{"-"}
	}

	for _, path := range args {
		err := consumePath(ctx, cmd, conv, path)
		if errors.Is(err, context.Canceled) {
			logger.Info("interrupted, reporting what was received")
			return nil
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func consumePath(ctx context.Context, cmd *cobra.Command, conv *gotest.Converter, path string) error {
	if path == "-" {
		return conv.Consume(ctx, cmd.InOrStdin())
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return conv.Consume(ctx, f)
}

func newSink(format string, w io.Writer, profile config.Profile, sessionID string) (output.Sink, error) {
	switch strings.ToLower(format) {
	case "", "console":
		return output.NewConsoleSink(
			output.WithWriter(w),
			output.WithNoColor(!profile.UseColors()),
		), nil
	case "json":
		return output.NewJSONSink(
			output.JSONWithWriter(w),
			output.JSONWithSession(sessionID),
		), nil
	case "log":
		return output.NewLogSink(logging.New(slog.LevelInfo, w).With("session", sessionID), slog.LevelInfo), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (use console, json or log)", format)
	}
}
