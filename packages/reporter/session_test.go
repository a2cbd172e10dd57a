package reporter

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/dromus/packages/core/config"
	"github.com/abdul-hamid-achik/dromus/packages/core/event"
	"github.com/abdul-hamid-achik/dromus/packages/core/tracker"
	"github.com/abdul-hamid-achik/dromus/packages/output"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu     sync.Mutex
	blocks [][]string
}

func (r *recordingSink) Write(lines []output.Line) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blocks = append(r.blocks, output.Texts(lines))
	return nil
}

func (r *recordingSink) last() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.blocks) == 0 {
		return nil
	}
	return r.blocks[len(r.blocks)-1]
}

func (r *recordingSink) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.blocks)
}

type failingSink struct{}

func (failingSink) Write([]output.Line) error {
	return errors.New("disk full")
}

func stepClock(step time.Duration) func() time.Time {
	var mu sync.Mutex
	now := time.Unix(0, 0)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(step)
		return now
	}
}

func testProfile(overrides config.Options) config.Profile {
	base := &config.Options{
		PassSymbol:        config.StringPtr("+"),
		FailSymbol:        config.StringPtr("x"),
		SkipSymbol:        config.StringPtr("-"),
		InterruptedSymbol: config.StringPtr("!"),
		UseColors:         config.BoolPtr(false),
		TerminalWidth:     config.IntPtr(10),
	}
	return config.Resolve(base, &overrides)
}

func newTestSession(t *testing.T, overrides config.Options, opts ...Option) (*Session, *recordingSink) {
	t.Helper()
	sink := &recordingSink{}
	opts = append([]Option{WithClock(stepClock(time.Millisecond))}, opts...)
	return NewSession(testProfile(overrides), sink, opts...), sink
}

func TestSession_SuiteWithThreeCases(t *testing.T) {
	s, sink := newTestSession(t, config.Options{})
	require.NoError(t, s.Start())
	assert.Equal(t, []string{"", "==========", DefaultTitle, "----------"}, sink.last())

	w := s.Worker("w1")
	require.NoError(t, w.OnSuiteStart("io.example.MathTests"))
	assert.Equal(t, []string{"io.example.MathTests"}, sink.last())

	for i, name := range []string{"a", "b", "c"} {
		require.NoError(t, w.OnCaseStart(name))
		d := time.Duration(i+1) * time.Millisecond
		require.NoError(t, w.OnCaseFinish(event.Passed, nil, d))
		assert.Equal(t, []string{fmt.Sprintf("+ %s (%dms)", name, i+1)}, sink.last())
	}
	assert.Equal(t, []string{"io.example.MathTests"}, w.Path())

	require.NoError(t, w.OnSuiteFinish(10*time.Millisecond))
	assert.Equal(t, []string{"+ io.example.MathTests: 3 passed, 0 failed, 0 skipped (6ms)"}, sink.last())
	assert.Zero(t, w.Depth())

	summary, err := s.Finish()
	require.NoError(t, err)
	assert.Equal(t, tracker.Counts{Passed: 3}, summary.Counts)
	assert.EqualValues(t, 3, summary.Timings.Count)
	assert.False(t, summary.Failed())

	final := sink.last()
	assert.Contains(t, final, "Total: 3 tests, + 3 passed, x 0 failed, - 0 skipped")
	assert.Equal(t, "✨ All tests passed!", final[len(final)-1])
}

func TestSession_FailureBlock(t *testing.T) {
	s, sink := newTestSession(t, config.Options{
		ShowStackTraces:    config.BoolPtr(true),
		MaxStackTraceDepth: config.IntPtr(2),
	})
	w := s.Worker("w1")
	require.NoError(t, w.OnSuiteStart("suite"))
	require.NoError(t, w.OnCaseStart("divides"))

	failure := &event.Failure{Message: "division by zero"}
	for i := 1; i <= 5; i++ {
		failure.Frames = append(failure.Frames, event.StackFrame{
			Symbol:   fmt.Sprintf("calc.f%d", i),
			Location: fmt.Sprintf("calc.go:%d", i),
		})
	}
	require.NoError(t, w.OnCaseFinish(event.Failed, failure, 3*time.Millisecond))

	block := sink.last()
	require.Len(t, block, 5)
	assert.Equal(t, "x divides (3ms)", block[0])
	assert.Equal(t, "division by zero", block[1])
	assert.Equal(t, "... 3 more", block[4])

	summary, err := s.Finish()
	require.NoError(t, err)
	assert.True(t, summary.Failed())
	final := sink.last()
	assert.Equal(t, "❌ Some tests failed.", final[len(final)-1])
}

func TestSession_ProtocolErrors(t *testing.T) {
	s, sink := newTestSession(t, config.Options{})
	w := s.Worker("w1")

	before := sink.count()
	err := w.OnCaseFinish(event.Passed, nil, time.Millisecond)
	require.Error(t, err)
	assert.ErrorIs(t, err, tracker.ErrProtocol)
	assert.Equal(t, before, sink.count(), "discarded event writes nothing")

	err = w.OnSuiteFinish(0)
	assert.ErrorIs(t, err, tracker.ErrProtocol)

	_, err = s.Finish()
	require.Error(t, err)
	assert.ErrorIs(t, err, tracker.ErrProtocol)

	var perr *tracker.ProtocolError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, event.TypeCaseFinish, perr.Event)
}

func TestSession_MismatchedFinish(t *testing.T) {
	s, sink := newTestSession(t, config.Options{ShowTimings: config.BoolPtr(false)})
	w := s.Worker("w1")
	require.NoError(t, w.OnSuiteStart("suite"))
	require.NoError(t, w.OnCaseStart("hung"))

	err := w.OnSuiteFinish(time.Second)
	assert.ErrorIs(t, err, tracker.ErrProtocol)
	assert.Equal(t, []string{
		"! hung [interrupted]",
		"x suite: 0 passed, 0 failed, 0 skipped, 1 interrupted",
	}, sink.last())

	summary, err := s.Finish()
	assert.Error(t, err)
	assert.Equal(t, tracker.Counts{Interrupted: 1}, summary.Counts)
}

func TestSession_FinishDrainsOpenNodes(t *testing.T) {
	s, sink := newTestSession(t, config.Options{ShowTimings: config.BoolPtr(false)})
	w := s.Worker("w1")
	require.NoError(t, w.OnSuiteStart("suite"))
	require.NoError(t, w.OnCaseStart("done"))
	require.NoError(t, w.OnCaseFinish(event.Passed, nil, time.Millisecond))
	require.NoError(t, w.OnCaseStart("hung"))

	summary, err := s.Finish()
	assert.ErrorIs(t, err, tracker.ErrProtocol)
	assert.Equal(t, tracker.Counts{Passed: 1, Interrupted: 1}, summary.Counts)
	assert.True(t, summary.Failed())

	require.GreaterOrEqual(t, sink.count(), 2)
	sink.mu.Lock()
	drained := sink.blocks[len(sink.blocks)-2]
	sink.mu.Unlock()
	assert.Equal(t, []string{
		"! hung [interrupted]",
		"! suite: 1 passed, 0 failed, 0 skipped, 1 interrupted [interrupted]",
	}, drained)
}

func TestSession_EventsAfterFinish(t *testing.T) {
	s, _ := newTestSession(t, config.Options{})
	w := s.Worker("w1")
	_, err := s.Finish()
	require.NoError(t, err)

	assert.ErrorIs(t, w.OnSuiteStart("late"), ErrFinished)
	assert.ErrorIs(t, w.OnCaseStart("late"), ErrFinished)
	assert.ErrorIs(t, w.OnCaseFinish(event.Passed, nil, 0), ErrFinished)
	assert.ErrorIs(t, w.OnSuiteFinish(0), ErrFinished)
}

func TestSession_CaseWithoutSuite(t *testing.T) {
	s, sink := newTestSession(t, config.Options{ShowTimings: config.BoolPtr(false)})
	w := s.Worker("w1")
	require.NoError(t, w.OnCaseStart("lonely"))
	require.NoError(t, w.OnCaseFinish(event.Skipped, nil, 0))
	assert.Equal(t, []string{"- lonely"}, sink.last())

	summary, err := s.Finish()
	require.NoError(t, err)
	assert.Equal(t, tracker.Counts{Skipped: 1}, summary.Counts)
}

func TestSession_SinkFailure(t *testing.T) {
	s := NewSession(testProfile(config.Options{}), failingSink{})
	err := s.Worker("w1").OnSuiteStart("suite")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestSession_WorkerRegistry(t *testing.T) {
	s, _ := newTestSession(t, config.Options{})
	a := s.Worker("a")
	assert.Same(t, a, s.Worker("a"))
	assert.NotSame(t, a, s.Worker("b"))
	assert.Equal(t, "a", a.ID())
}

func TestSession_Options(t *testing.T) {
	s, sink := newTestSession(t, config.Options{}, WithVersion("1.2.3"), WithWidth(4), WithSessionID("fixed"))
	require.NoError(t, s.Start())

	assert.Equal(t, "fixed", s.ID())
	assert.Equal(t, []string{"", "====", DefaultTitle + " (version: 1.2.3)", "----"}, sink.last())
}

func TestWorker_Handle(t *testing.T) {
	s, sink := newTestSession(t, config.Options{ShowTimings: config.BoolPtr(false)})
	w := s.Worker("w1")

	events := []event.Event{
		event.SuiteStart("suite"),
		event.CaseStart("a"),
		event.CaseFinish(event.Passed, nil, time.Millisecond),
		event.SuiteFinish(time.Millisecond),
	}
	for _, e := range events {
		require.NoError(t, w.Handle(e))
	}
	assert.Equal(t, []string{"+ suite: 1 passed, 0 failed, 0 skipped"}, sink.last())
}

func TestSession_ConcurrentWorkers(t *testing.T) {
	var buf bytes.Buffer
	sink := output.NewConsoleSink(output.WithWriter(&buf), output.WithNoColor(true))
	s := NewSession(testProfile(config.Options{ShowTimings: config.BoolPtr(false)}), sink)

	const workers = 4
	const cases = 25
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			w := s.Worker(id)
			_ = w.OnSuiteStart(id)
			for c := 0; c < cases; c++ {
				name := fmt.Sprintf("%s-c%d", id, c)
				_ = w.OnCaseStart(name)
				if c%5 == 0 {
					_ = w.OnCaseFinish(event.Failed, &event.Failure{Message: "boom " + name}, time.Millisecond)
				} else {
					_ = w.OnCaseFinish(event.Passed, nil, time.Millisecond)
				}
			}
			_ = w.OnSuiteFinish(0)
		}(fmt.Sprintf("w%d", i))
	}
	wg.Wait()

	summary, err := s.Finish()
	require.NoError(t, err)
	assert.Equal(t, tracker.Counts{Passed: 80, Failed: 20}, summary.Counts)

	lines := strings.Split(buf.String(), "\n")
	failures := 0
	for i, line := range lines {
		msg, ok := strings.CutPrefix(line, "    boom ")
		if !ok {
			continue
		}
		failures++
		require.Greater(t, i, 0)
		assert.Equal(t, "  x "+msg, lines[i-1])
	}
	assert.Equal(t, 20, failures)

	for i := 0; i < workers; i++ {
		assert.Contains(t, buf.String(), fmt.Sprintf("x w%d: 20 passed, 5 failed, 0 skipped\n", i))
	}
}

func TestSession_FinishWhileWorkersRun(t *testing.T) {
	s, _ := newTestSession(t, config.Options{})

	const workers = 8
	opened := make([]int, workers)
	var running, done sync.WaitGroup
	for i := 0; i < workers; i++ {
		running.Add(1)
		done.Add(1)
		go func(i int) {
			defer done.Done()
			w := s.Worker(fmt.Sprintf("w%d", i))
			first := true
			for n := 0; ; n++ {
				if errors.Is(w.OnSuiteStart("suite"), ErrFinished) {
					break
				}
				if err := w.OnCaseStart(fmt.Sprintf("c%d", n)); errors.Is(err, ErrFinished) {
					break
				}
				opened[i]++
				if first {
					first = false
					running.Done()
				}
				if errors.Is(w.OnCaseFinish(event.Passed, nil, time.Millisecond), ErrFinished) {
					break
				}
				if errors.Is(w.OnSuiteFinish(0), ErrFinished) {
					break
				}
			}
			if first {
				running.Done()
			}
		}(i)
	}

	running.Wait()
	summary, _ := s.Finish()
	done.Wait()

	total := 0
	for i, n := range opened {
		total += n
		assert.Zero(t, s.Worker(fmt.Sprintf("w%d", i)).Depth())
	}
	assert.Positive(t, total)
	assert.Equal(t, total, summary.Counts.Passed+summary.Counts.Interrupted)
	assert.Zero(t, summary.Counts.Failed)
}
