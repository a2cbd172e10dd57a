package tracker

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/abdul-hamid-achik/dromus/packages/core/event"
	"github.com/abdul-hamid-achik/dromus/packages/core/logging"
	"github.com/hashicorp/go-multierror"
)

// Completion is the result of a finish event
type Completion struct {
	// Node is the finished node, nil when the event was discarded
	Node *Node
	// Interrupted holds nodes that were open above Node and were closed
	// by a mismatched finish, innermost first
	Interrupted []*Node
}

// Tracker maintains the active-path stack of one worker. It is not safe
// for concurrent use; every worker owns its own Tracker.
type Tracker struct {
	stack  []*Node
	clock  func() time.Time
	logger *slog.Logger
	errs   *multierror.Error
}

// Option configures a Tracker
type Option func(*Tracker)

// WithClock sets the source of node start times
func WithClock(clock func() time.Time) Option {
	return func(t *Tracker) {
		t.clock = clock
	}
}

// WithLogger sets the logger used to report protocol errors
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tracker) {
		t.logger = logger
	}
}

// New creates an empty tracker
func New(opts ...Option) *Tracker {
	t := &Tracker{
		clock:  time.Now,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SuiteStart opens a suite below the current stack top
func (t *Tracker) SuiteStart(name string) *Node {
	return t.push(name, event.Suite)
}

// CaseStart opens a case below the current stack top. Cases may nest
// under cases, as Go subtests do.
func (t *Tracker) CaseStart(name string) *Node {
	return t.push(name, event.Case)
}

// CaseFinish closes the innermost open case
func (t *Tracker) CaseFinish(outcome event.Outcome, failure *event.Failure, d time.Duration) (Completion, error) {
	var outcomeErr error
	if !outcome.Terminal() {
		outcomeErr = t.record(event.TypeCaseFinish, "outcome "+outcome.String()+" is not a verdict")
		outcome = event.Interrupted
	}
	c, err := t.finish(event.TypeCaseFinish, event.Case, outcome, failure, d)
	if err == nil {
		err = outcomeErr
	}
	return c, err
}

// SuiteFinish closes the innermost open suite. The duration is kept on the
// node; suite summaries report the descendant case total instead.
func (t *Tracker) SuiteFinish(d time.Duration) (Completion, error) {
	return t.finish(event.TypeSuiteFinish, event.Suite, event.Passed, nil, d)
}

// Drain closes every open node as Interrupted, innermost first. It is
// called when the session ends; a non-empty stack is recorded as a
// protocol error.
func (t *Tracker) Drain() []*Node {
	if len(t.stack) > 0 {
		t.record(TypeSessionEnd, fmt.Sprintf("%d open nodes reported as interrupted", len(t.stack)))
	}
	var drained []*Node
	for len(t.stack) > 0 {
		drained = append(drained, t.interrupt())
	}
	return drained
}

// Depth returns the number of open nodes
func (t *Tracker) Depth() int {
	return len(t.stack)
}

// Empty reports whether no node is open
func (t *Tracker) Empty() bool {
	return len(t.stack) == 0
}

// Top returns the innermost open node, or nil
func (t *Tracker) Top() *Node {
	if len(t.stack) == 0 {
		return nil
	}
	return t.stack[len(t.stack)-1]
}

// Path returns the names of the open nodes, outermost first
func (t *Tracker) Path() []string {
	path := make([]string, len(t.stack))
	for i, n := range t.stack {
		path[i] = n.Name
	}
	return path
}

// Err returns every protocol error recorded so far, or nil
func (t *Tracker) Err() error {
	return t.errs.ErrorOrNil()
}

func (t *Tracker) push(name string, kind event.Kind) *Node {
	node := &Node{
		Name:      name,
		Kind:      kind,
		StartTime: t.clock(),
		Outcome:   event.Pending,
		Depth:     len(t.stack),
	}
	if parent := t.Top(); parent != nil {
		node.Parent = parent
		parent.Children = append(parent.Children, node)
	}
	t.stack = append(t.stack, node)
	return node
}

func (t *Tracker) finish(typ event.Type, kind event.Kind, outcome event.Outcome, failure *event.Failure, d time.Duration) (Completion, error) {
	idx := -1
	for i := len(t.stack) - 1; i >= 0; i-- {
		if t.stack[i].Kind == kind {
			idx = i
			break
		}
	}

	if idx < 0 {
		return Completion{}, t.record(typ, "no open "+kind.String()+", event discarded")
	}

	var err error
	var interrupted []*Node
	if idx != len(t.stack)-1 {
		err = t.record(typ, "innermost open node is a "+t.Top().Kind.String()+", closing nearest "+kind.String())
		for len(t.stack)-1 > idx {
			interrupted = append(interrupted, t.interrupt())
		}
	}

	if d < 0 {
		d = 0
	}
	node := t.pop(outcome, failure, d)
	return Completion{Node: node, Interrupted: interrupted}, err
}

func (t *Tracker) interrupt() *Node {
	top := t.Top()
	return t.pop(event.Interrupted, nil, max(t.clock().Sub(top.StartTime), 0))
}

// pop closes the stack top and folds its aggregates into the new top
func (t *Tracker) pop(outcome event.Outcome, failure *event.Failure, d time.Duration) *Node {
	node := t.stack[len(t.stack)-1]
	t.stack[len(t.stack)-1] = nil
	t.stack = t.stack[:len(t.stack)-1]

	node.Duration = d
	if node.Kind == event.Case {
		node.Outcome = outcome
		node.Failure = failure
	} else if outcome == event.Interrupted {
		node.Outcome = event.Interrupted
	} else {
		node.Outcome = suiteOutcome(node.Counts)
	}

	if parent := node.Parent; parent != nil {
		parent.Counts.Add(node.Counts)
		parent.Total += node.Total
		if node.Kind == event.Case {
			parent.Counts.add(node.Outcome)
			parent.Total += node.Duration
		}
	}
	return node
}

// suiteOutcome derives a suite's outcome from its cases
func suiteOutcome(c Counts) event.Outcome {
	switch {
	case c.Failed > 0 || c.Interrupted > 0:
		return event.Failed
	case c.Passed == 0 && c.Skipped > 0:
		return event.Skipped
	default:
		return event.Passed
	}
}

func (t *Tracker) record(typ event.Type, reason string) error {
	err := &ProtocolError{Event: typ, Reason: reason}
	if top := t.Top(); top != nil {
		err.Top = top.Name
	}
	t.errs = multierror.Append(t.errs, err)
	t.logger.Warn("protocol error", "event", string(typ), "depth", len(t.stack), "error", err)
	return err
}
