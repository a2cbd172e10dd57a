package event

import "time"

// Outcome is the result state of a test node
type Outcome int

const (
	// Pending means no finish event has been seen yet
	Pending Outcome = iota
	Passed
	Failed
	Skipped
	// Interrupted marks a node that was still open when the session ended
	// or when a mismatched finish event closed one of its ancestors
	Interrupted
)

func (o Outcome) String() string {
	switch o {
	case Pending:
		return "pending"
	case Passed:
		return "passed"
	case Failed:
		return "failed"
	case Skipped:
		return "skipped"
	case Interrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

// Terminal reports whether the outcome can be supplied by a finish event
func (o Outcome) Terminal() bool {
	return o == Passed || o == Failed || o == Skipped
}

// Kind distinguishes suites from cases
type Kind int

const (
	Suite Kind = iota
	Case
)

func (k Kind) String() string {
	if k == Suite {
		return "suite"
	}
	return "case"
}

// Type identifies a lifecycle event
type Type string

const (
	TypeSuiteStart  Type = "suite_start"
	TypeCaseStart   Type = "case_start"
	TypeCaseFinish  Type = "case_finish"
	TypeSuiteFinish Type = "suite_finish"
)

// Event is one lifecycle notification from a test runner. Name is set on
// start events; Outcome, Failure and Duration on finish events.
type Event struct {
	Type     Type
	Name     string
	Outcome  Outcome
	Failure  *Failure
	Duration time.Duration
}

// SuiteStart creates a suite start event
func SuiteStart(name string) Event {
	return Event{Type: TypeSuiteStart, Name: name}
}

// CaseStart creates a case start event
func CaseStart(name string) Event {
	return Event{Type: TypeCaseStart, Name: name}
}

// CaseFinish creates a case finish event
func CaseFinish(outcome Outcome, failure *Failure, d time.Duration) Event {
	return Event{Type: TypeCaseFinish, Outcome: outcome, Failure: failure, Duration: d}
}

// SuiteFinish creates a suite finish event
func SuiteFinish(d time.Duration) Event {
	return Event{Type: TypeSuiteFinish, Duration: d}
}

// Kind returns the node kind the event applies to
func (e Event) Kind() Kind {
	if e.Type == TypeSuiteStart || e.Type == TypeSuiteFinish {
		return Suite
	}
	return Case
}
