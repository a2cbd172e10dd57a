package cmd

import (
	"os"

	"github.com/abdul-hamid-achik/dromus/packages/core/config"
	"github.com/abdul-hamid-achik/dromus/packages/output"
	"github.com/spf13/cobra"
)

// optionFlags holds the reporter option flags shared by report and config
type optionFlags struct {
	showExceptions      bool
	showStackTraces     bool
	showFullStackTraces bool
	maxStackTraceDepth  int
	showTimings         bool
	useColors           bool
	noColor             bool
	passSymbol          string
	failSymbol          string
	skipSymbol          string
	interruptedSymbol   string
	showModuleNames     bool
	showMethodNames     bool
	terminalWidth       int
}

func (f *optionFlags) register(cmd *cobra.Command) {
	d := config.Defaults()
	fs := cmd.Flags()
	fs.BoolVar(&f.showExceptions, "exceptions", *d.ShowExceptions, "Show failure messages")
	fs.BoolVar(&f.showStackTraces, "stack-traces", *d.ShowStackTraces, "Show stack frames under failure messages")
	fs.BoolVar(&f.showFullStackTraces, "full-stack-traces", *d.ShowFullStackTraces, "Show every frame and the full cause chain")
	fs.IntVar(&f.maxStackTraceDepth, "max-stack-trace-depth", *d.MaxStackTraceDepth, "Maximum frames shown per failure")
	fs.BoolVar(&f.showTimings, "timings", *d.ShowTimings, "Show durations")
	fs.BoolVar(&f.useColors, "color", *d.UseColors, "Colour the output (detected when not set)")
	fs.BoolVar(&f.noColor, "no-color", false, "Disable colored output")
	fs.StringVar(&f.passSymbol, "pass-symbol", *d.PassSymbol, "Symbol for passed cases")
	fs.StringVar(&f.failSymbol, "fail-symbol", *d.FailSymbol, "Symbol for failed cases")
	fs.StringVar(&f.skipSymbol, "skip-symbol", *d.SkipSymbol, "Symbol for skipped cases")
	fs.StringVar(&f.interruptedSymbol, "interrupted-symbol", *d.InterruptedSymbol, "Symbol for interrupted cases")
	fs.BoolVar(&f.showModuleNames, "module-names", *d.ShowModuleNames, "Prefix cases with their suite's short name")
	fs.BoolVar(&f.showMethodNames, "method-names", *d.ShowMethodNames, "Show case names")
	fs.IntVar(&f.terminalWidth, "width", *d.TerminalWidth, "Terminal width for headings, 0 to detect")
}

// layer returns the options whose flags were set on the command line
func (f *optionFlags) layer(cmd *cobra.Command) *config.Options {
	fs := cmd.Flags()
	o := &config.Options{}
	if fs.Changed("exceptions") {
		o.ShowExceptions = config.BoolPtr(f.showExceptions)
	}
	if fs.Changed("stack-traces") {
		o.ShowStackTraces = config.BoolPtr(f.showStackTraces)
	}
	if fs.Changed("full-stack-traces") {
		o.ShowFullStackTraces = config.BoolPtr(f.showFullStackTraces)
	}
	if fs.Changed("max-stack-trace-depth") {
		o.MaxStackTraceDepth = config.IntPtr(f.maxStackTraceDepth)
	}
	if fs.Changed("timings") {
		o.ShowTimings = config.BoolPtr(f.showTimings)
	}
	if fs.Changed("color") {
		o.UseColors = config.BoolPtr(f.useColors)
	}
	if fs.Changed("no-color") && f.noColor {
		o.UseColors = config.BoolPtr(false)
	}
	if fs.Changed("pass-symbol") {
		o.PassSymbol = config.StringPtr(f.passSymbol)
	}
	if fs.Changed("fail-symbol") {
		o.FailSymbol = config.StringPtr(f.failSymbol)
	}
	if fs.Changed("skip-symbol") {
		o.SkipSymbol = config.StringPtr(f.skipSymbol)
	}
	if fs.Changed("interrupted-symbol") {
		o.InterruptedSymbol = config.StringPtr(f.interruptedSymbol)
	}
	if fs.Changed("module-names") {
		o.ShowModuleNames = config.BoolPtr(f.showModuleNames)
	}
	if fs.Changed("method-names") {
		o.ShowMethodNames = config.BoolPtr(f.showMethodNames)
	}
	if fs.Changed("width") {
		o.TerminalWidth = config.IntPtr(f.terminalWidth)
	}
	return o
}

// resolveProfile layers the config file, DROMUS_* environment variables
// and explicit flags. Colours are turned off for non-terminal output unless
// some layer asked for them.
func resolveProfile(cmd *cobra.Command, flags *optionFlags, out *os.File) (config.Profile, error) {
	file, err := config.LoadConfig(configFlag)
	if err != nil {
		return config.Profile{}, withExitCode(ExitConfigError, err)
	}
	env, err := config.FromEnv(os.LookupEnv)
	if err != nil {
		return config.Profile{}, withExitCode(ExitConfigError, err)
	}

	merged := config.Merge(file, env, flags.layer(cmd))
	if merged.UseColors == nil && !output.ColorsSupported(out) {
		merged.UseColors = config.BoolPtr(false)
	}
	profile, warnings := config.ResolveWithWarnings(merged)
	for _, w := range warnings {
		logger.Warn("config", "warning", w)
	}
	return profile, nil
}

// stdoutFile returns the command's output as a file when it is one, so
// terminal detection sees redirections
func stdoutFile(cmd *cobra.Command) *os.File {
	if f, ok := cmd.OutOrStdout().(*os.File); ok {
		return f
	}
	return nil
}

// Environment variable helpers
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}
