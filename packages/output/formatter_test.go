package output

import (
	"testing"
	"time"

	"github.com/abdul-hamid-achik/dromus/packages/core/config"
	"github.com/abdul-hamid-achik/dromus/packages/core/event"
	"github.com/abdul-hamid-achik/dromus/packages/core/tracker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProfile(overrides config.Options) config.Profile {
	base := &config.Options{
		PassSymbol:        config.StringPtr("+"),
		FailSymbol:        config.StringPtr("x"),
		SkipSymbol:        config.StringPtr("-"),
		InterruptedSymbol: config.StringPtr("!"),
		UseColors:         config.BoolPtr(false),
	}
	return config.Resolve(base, &overrides)
}

func fiveFrames() []event.StackFrame {
	return []event.StackFrame{
		{Symbol: "a.f1", Location: "a.go:1"},
		{Symbol: "a.f2", Location: "a.go:2"},
		{Symbol: "a.f3", Location: "a.go:3"},
		{Symbol: "a.f4", Location: "a.go:4"},
		{Symbol: "a.f5", Location: "a.go:5"},
	}
}

// finishedCase runs a single case through a tracker under one suite
func finishedCase(t *testing.T, name string, outcome event.Outcome, failure *event.Failure, d time.Duration) *tracker.Node {
	t.Helper()
	tr := tracker.New()
	tr.SuiteStart("io.example.MathTests")
	tr.CaseStart(name)
	done, err := tr.CaseFinish(outcome, failure, d)
	require.NoError(t, err)
	return done.Node
}

func TestFormatter_CaseResult(t *testing.T) {
	tests := []struct {
		name    string
		outcome event.Outcome
		opts    config.Options
		want    string
	}{
		{"passed with timing", event.Passed, config.Options{}, "+ adds (12ms)"},
		{"failed", event.Failed, config.Options{ShowExceptions: config.BoolPtr(false)}, "x adds (12ms)"},
		{"skipped no timing", event.Skipped, config.Options{ShowTimings: config.BoolPtr(false)}, "- adds"},
		{"module names", event.Passed, config.Options{ShowModuleNames: config.BoolPtr(true)}, "+ MathTests.adds (12ms)"},
		{"module only", event.Passed, config.Options{ShowModuleNames: config.BoolPtr(true), ShowMethodNames: config.BoolPtr(false)}, "+ MathTests (12ms)"},
		{"symbol only", event.Passed, config.Options{ShowMethodNames: config.BoolPtr(false), ShowTimings: config.BoolPtr(false)}, "+"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFormatter(testProfile(tt.opts))
			n := finishedCase(t, "adds", tt.outcome, &event.Failure{Message: "boom"}, 12*time.Millisecond)

			lines := f.CaseResult(n)
			require.Len(t, lines, 1)
			assert.Equal(t, tt.want, lines[0].Text())
			assert.Equal(t, 1, lines[0].Indent)
			assert.Equal(t, ColorNone, lines[0].Class)
		})
	}
}

func TestFormatter_TruncatedFailureBlock(t *testing.T) {
	f := NewFormatter(testProfile(config.Options{
		ShowExceptions:      config.BoolPtr(true),
		ShowStackTraces:     config.BoolPtr(true),
		ShowFullStackTraces: config.BoolPtr(false),
		MaxStackTraceDepth:  config.IntPtr(2),
		ShowTimings:         config.BoolPtr(true),
	}))
	n := finishedCase(t, "divides", event.Failed, &event.Failure{Message: "division by zero", Frames: fiveFrames()}, 3*time.Millisecond)

	lines := f.CaseResult(n)
	require.Len(t, lines, 5)
	assert.Equal(t, []string{
		"x divides (3ms)",
		"division by zero",
		"at a.f1 (a.go:1)",
		"at a.f2 (a.go:2)",
		"... 3 more",
	}, Texts(lines))
	for _, l := range lines[1:] {
		assert.Equal(t, lines[0].Indent+1, l.Indent)
	}
}

func TestFormatter_ExceptionsHidden(t *testing.T) {
	f := NewFormatter(testProfile(config.Options{ShowExceptions: config.BoolPtr(false), ShowFullStackTraces: config.BoolPtr(true)}))
	n := finishedCase(t, "divides", event.Failed, &event.Failure{Message: "boom", Frames: fiveFrames()}, 0)

	assert.Equal(t, []string{"x divides (0ms)"}, Texts(f.CaseResult(n)))
}

func TestFormatter_MultilineMessage(t *testing.T) {
	f := NewFormatter(testProfile(config.Options{ShowTimings: config.BoolPtr(false)}))
	n := finishedCase(t, "c", event.Failed, &event.Failure{Message: "first\nsecond"}, 0)

	lines := f.CaseResult(n)
	assert.Equal(t, []string{"x c", "first", "second"}, Texts(lines))
	assert.Equal(t, 2, lines[2].Indent)
}

func TestFormatter_PassedCaseIgnoresFailure(t *testing.T) {
	f := NewFormatter(testProfile(config.Options{}))
	n := finishedCase(t, "c", event.Passed, &event.Failure{Message: "stale"}, 0)
	assert.Len(t, f.CaseResult(n), 1)
}

func TestFormatter_ColorIntents(t *testing.T) {
	f := NewFormatter(testProfile(config.Options{UseColors: config.BoolPtr(true)}))

	tests := map[event.Outcome]Color{
		event.Passed:  ColorGreen,
		event.Failed:  ColorRed,
		event.Skipped: ColorYellow,
	}
	for outcome, want := range tests {
		t.Run(outcome.String(), func(t *testing.T) {
			n := finishedCase(t, "c", outcome, nil, 0)
			lines := f.CaseResult(n)
			assert.Equal(t, want, lines[0].Class)
			assert.Equal(t, want, lines[0].Segments[0].Color)
		})
	}
}

func TestFormatter_SuiteSummary(t *testing.T) {
	f := NewFormatter(testProfile(config.Options{ShowTimings: config.BoolPtr(true)}))

	tr := tracker.New()
	tr.SuiteStart("root")
	suite := tr.SuiteStart("MathTests")
	for _, d := range []time.Duration{1, 2, 3} {
		tr.CaseStart("c")
		_, err := tr.CaseFinish(event.Passed, nil, d*time.Millisecond)
		require.NoError(t, err)
	}
	_, err := tr.SuiteFinish(time.Second)
	require.NoError(t, err)

	header := f.SuiteHeader(suite)
	assert.Equal(t, []string{"MathTests"}, Texts(header))
	assert.Equal(t, 1, header[0].Indent)

	lines := f.SuiteSummary(suite)
	assert.Equal(t, []string{"+ MathTests: 3 passed, 0 failed, 0 skipped (6ms)"}, Texts(lines))
	assert.Equal(t, 1, lines[0].Indent)
}

func TestFormatter_Interrupted(t *testing.T) {
	f := NewFormatter(testProfile(config.Options{ShowTimings: config.BoolPtr(false)}))

	tr := tracker.New()
	tr.SuiteStart("suite")
	tr.CaseStart("hung")
	drained := tr.Drain()
	require.Len(t, drained, 2)

	assert.Equal(t, []string{"! hung [interrupted]"}, Texts(f.Interrupted(drained[0])))
	assert.Equal(t, []string{"! suite: 0 passed, 0 failed, 0 skipped, 1 interrupted [interrupted]"}, Texts(f.Interrupted(drained[1])))
}

func TestFormatter_Idempotent(t *testing.T) {
	f := NewFormatter(testProfile(config.Options{ShowStackTraces: config.BoolPtr(true)}))
	n := finishedCase(t, "c", event.Failed, &event.Failure{Message: "boom", Frames: fiveFrames()}, time.Millisecond)
	assert.Equal(t, f.CaseResult(n), f.CaseResult(n))
}

func TestFormatter_SymbolPadding(t *testing.T) {
	f := NewFormatter(testProfile(config.Options{
		PassSymbol:  config.StringPtr("+"),
		FailSymbol:  config.StringPtr("💔"),
		ShowTimings: config.BoolPtr(false),
	}))
	n := finishedCase(t, "c", event.Passed, nil, 0)
	// the pass symbol is padded to the width of the widest symbol
	assert.Equal(t, "+  c", f.CaseResult(n)[0].Text())
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0ms", formatDuration(0))
	assert.Equal(t, "999ms", formatDuration(999*time.Millisecond))
	assert.Equal(t, "1.500s", formatDuration(1500*time.Millisecond))
}
