package config

// Profile is the resolved, immutable display configuration of one
// reporting session. The zero value renders nothing but symbols; use
// Resolve to build one.
type Profile struct {
	showExceptions      bool
	showStackTraces     bool
	showFullStackTraces bool
	maxStackTraceDepth  int
	showTimings         bool
	useColors           bool
	passSymbol          string
	failSymbol          string
	skipSymbol          string
	interruptedSymbol   string
	showModuleNames     bool
	showMethodNames     bool
	terminalWidth       int
}

func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

func getInt(i *int, defaultVal int) int {
	if i == nil {
		return defaultVal
	}
	return *i
}

func getString(s *string, defaultVal string) string {
	if s == nil {
		return defaultVal
	}
	return *s
}

// Profile freezes the layer into a Profile. Unset options take their
// compiled-in defaults.
func (o *Options) Profile() Profile {
	d := Defaults()
	return Profile{
		showExceptions:      getBool(o.ShowExceptions, *d.ShowExceptions),
		showStackTraces:     getBool(o.ShowStackTraces, *d.ShowStackTraces),
		showFullStackTraces: getBool(o.ShowFullStackTraces, *d.ShowFullStackTraces),
		maxStackTraceDepth:  max(getInt(o.MaxStackTraceDepth, *d.MaxStackTraceDepth), 0),
		showTimings:         getBool(o.ShowTimings, *d.ShowTimings),
		useColors:           getBool(o.UseColors, *d.UseColors),
		passSymbol:          getString(o.PassSymbol, *d.PassSymbol),
		failSymbol:          getString(o.FailSymbol, *d.FailSymbol),
		skipSymbol:          getString(o.SkipSymbol, *d.SkipSymbol),
		interruptedSymbol:   getString(o.InterruptedSymbol, *d.InterruptedSymbol),
		showModuleNames:     getBool(o.ShowModuleNames, *d.ShowModuleNames),
		showMethodNames:     getBool(o.ShowMethodNames, *d.ShowMethodNames),
		terminalWidth:       max(getInt(o.TerminalWidth, *d.TerminalWidth), 0),
	}
}

func (p Profile) ShowExceptions() bool      { return p.showExceptions }
func (p Profile) ShowStackTraces() bool     { return p.showStackTraces }
func (p Profile) ShowFullStackTraces() bool { return p.showFullStackTraces }

// MaxStackTraceDepth is ignored when ShowFullStackTraces is set
func (p Profile) MaxStackTraceDepth() int { return p.maxStackTraceDepth }

func (p Profile) ShowTimings() bool         { return p.showTimings }
func (p Profile) UseColors() bool           { return p.useColors }
func (p Profile) PassSymbol() string        { return p.passSymbol }
func (p Profile) FailSymbol() string        { return p.failSymbol }
func (p Profile) SkipSymbol() string        { return p.skipSymbol }
func (p Profile) InterruptedSymbol() string { return p.interruptedSymbol }
func (p Profile) ShowModuleNames() bool     { return p.showModuleNames }
func (p Profile) ShowMethodNames() bool     { return p.showMethodNames }

// TerminalWidth is 0 when the width should be detected
func (p Profile) TerminalWidth() int { return p.terminalWidth }

// Options returns a fully populated layer equal to the profile
func (p Profile) Options() *Options {
	return &Options{
		ShowExceptions:      BoolPtr(p.showExceptions),
		ShowStackTraces:     BoolPtr(p.showStackTraces),
		ShowFullStackTraces: BoolPtr(p.showFullStackTraces),
		MaxStackTraceDepth:  IntPtr(p.maxStackTraceDepth),
		ShowTimings:         BoolPtr(p.showTimings),
		UseColors:           BoolPtr(p.useColors),
		PassSymbol:          StringPtr(p.passSymbol),
		FailSymbol:          StringPtr(p.failSymbol),
		SkipSymbol:          StringPtr(p.skipSymbol),
		InterruptedSymbol:   StringPtr(p.interruptedSymbol),
		ShowModuleNames:     BoolPtr(p.showModuleNames),
		ShowMethodNames:     BoolPtr(p.showMethodNames),
		TerminalWidth:       IntPtr(p.terminalWidth),
	}
}
