package reporter

import (
	"log/slog"
	"sync"
	"time"

	"github.com/abdul-hamid-achik/dromus/packages/core/event"
	"github.com/abdul-hamid-achik/dromus/packages/core/tracker"
	"github.com/abdul-hamid-achik/dromus/packages/output"
	"github.com/hashicorp/go-multierror"
)

// Worker receives the lifecycle events of one execution thread. Every call
// writes at most one block to the sink. Returned errors are protocol or
// sink errors; the worker keeps going after either.
type Worker struct {
	id      string
	session *Session
	logger  *slog.Logger

	// mu guards tracker and is held from the finished check to the end of
	// each call, so Finish never drains a stack mid-update
	mu      sync.Mutex
	tracker *tracker.Tracker
}

func (w *Worker) ID() string {
	return w.id
}

// Depth returns the number of suites and cases currently open
func (w *Worker) Depth() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.tracker.Depth()
}

// Path returns the names of the open nodes, outermost first
func (w *Worker) Path() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.tracker.Path()
}

// Handle dispatches a lifecycle event to the matching call
func (w *Worker) Handle(e event.Event) error {
	switch e.Type {
	case event.TypeSuiteStart:
		return w.OnSuiteStart(e.Name)
	case event.TypeCaseStart:
		return w.OnCaseStart(e.Name)
	case event.TypeCaseFinish:
		return w.OnCaseFinish(e.Outcome, e.Failure, e.Duration)
	case event.TypeSuiteFinish:
		return w.OnSuiteFinish(e.Duration)
	default:
		w.logger.Warn("unknown event type", "event", string(e.Type))
		return nil
	}
}

// OnSuiteStart opens a suite and writes its header
func (w *Worker) OnSuiteStart(name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.session.isFinished() {
		return ErrFinished
	}
	n := w.tracker.SuiteStart(name)
	return w.session.write(w.session.formatter.SuiteHeader(n))
}

// OnCaseStart opens a case. Nothing is written until it finishes.
func (w *Worker) OnCaseStart(name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.session.isFinished() {
		return ErrFinished
	}
	w.tracker.CaseStart(name)
	return nil
}

// OnCaseFinish closes the innermost case and writes its result line and
// exception block
func (w *Worker) OnCaseFinish(outcome event.Outcome, failure *event.Failure, d time.Duration) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.session.isFinished() {
		return ErrFinished
	}
	c, err := w.tracker.CaseFinish(outcome, failure, d)
	if c.Node != nil {
		suite := ""
		if c.Node.Parent != nil {
			suite = c.Node.Parent.Name
		}
		w.session.timings.Record(suite, c.Node.Name, c.Node.Duration)
	}
	return w.complete(c, err, w.session.formatter.CaseResult)
}

// OnSuiteFinish closes the innermost suite and writes its summary line
func (w *Worker) OnSuiteFinish(d time.Duration) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.session.isFinished() {
		return ErrFinished
	}
	c, err := w.tracker.SuiteFinish(d)
	return w.complete(c, err, w.session.formatter.SuiteSummary)
}

// drain closes whatever is still open once the session has finished
func (w *Worker) drain() ([]*tracker.Node, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.tracker.Drain(), w.tracker.Err()
}

func (w *Worker) complete(c tracker.Completion, protoErr error, render func(*tracker.Node) []output.Line) error {
	f := w.session.formatter

	var lines []output.Line
	for _, n := range c.Interrupted {
		lines = append(lines, f.Interrupted(n)...)
	}
	if c.Node != nil {
		lines = append(lines, render(c.Node)...)
	}

	w.session.closed(c.Interrupted...)
	if c.Node != nil {
		w.session.closed(c.Node)
	}

	return multierror.Append(protoErr, w.session.write(lines)).ErrorOrNil()
}
