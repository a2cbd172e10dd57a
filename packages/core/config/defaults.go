package config

const (
	DefaultMaxStackTraceDepth = 10
	DefaultPassSymbol         = "💚"
	DefaultFailSymbol         = "💔"
	DefaultSkipSymbol         = "💤"
	DefaultInterruptedSymbol  = "⛔"
)

// Defaults returns a layer with every option set to its compiled-in value
func Defaults() *Options {
	return &Options{
		ShowExceptions:      BoolPtr(true),
		ShowStackTraces:     BoolPtr(false),
		ShowFullStackTraces: BoolPtr(false),
		MaxStackTraceDepth:  IntPtr(DefaultMaxStackTraceDepth),
		ShowTimings:         BoolPtr(true),
		UseColors:           BoolPtr(true),
		PassSymbol:          StringPtr(DefaultPassSymbol),
		FailSymbol:          StringPtr(DefaultFailSymbol),
		SkipSymbol:          StringPtr(DefaultSkipSymbol),
		InterruptedSymbol:   StringPtr(DefaultInterruptedSymbol),
		ShowModuleNames:     BoolPtr(false),
		ShowMethodNames:     BoolPtr(true),
		TerminalWidth:       IntPtr(0),
	}
}

// IsDefault returns true if the resolved options match defaults
func (o *Options) IsDefault() bool {
	return Merge(Defaults(), o).Profile() == Defaults().Profile()
}
