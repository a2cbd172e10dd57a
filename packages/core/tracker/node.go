package tracker

import (
	"strings"
	"time"

	"github.com/abdul-hamid-achik/dromus/packages/core/event"
)

// Counts tallies descendant case outcomes
type Counts struct {
	Passed      int `json:"passed"`
	Failed      int `json:"failed"`
	Skipped     int `json:"skipped"`
	Interrupted int `json:"interrupted,omitempty"`
}

// Total returns the number of cases counted
func (c Counts) Total() int {
	return c.Passed + c.Failed + c.Skipped + c.Interrupted
}

func (c *Counts) add(o event.Outcome) {
	switch o {
	case event.Passed:
		c.Passed++
	case event.Failed:
		c.Failed++
	case event.Skipped:
		c.Skipped++
	case event.Interrupted:
		c.Interrupted++
	}
}

// Add accumulates other into c
func (c *Counts) Add(other Counts) {
	c.Passed += other.Passed
	c.Failed += other.Failed
	c.Skipped += other.Skipped
	c.Interrupted += other.Interrupted
}

// Node is one suite or case on a worker's active path. It is owned by the
// Tracker until its finish event pops it.
type Node struct {
	Name      string
	Kind      event.Kind
	StartTime time.Time
	Children  []*Node // discovery order
	Outcome   event.Outcome
	Failure   *event.Failure

	// Duration is the elapsed time supplied by the finish event
	Duration time.Duration
	// Total is the sum of durations of all descendant cases
	Total time.Duration
	// Counts tallies the outcomes of all descendant cases
	Counts Counts

	Depth  int // number of ancestors
	Parent *Node
}

// Elapsed is the time shown for the node: its own duration for a case,
// the descendant total for a suite
func (n *Node) Elapsed() time.Duration {
	if n.Kind == event.Suite {
		return n.Total
	}
	return n.Duration
}

// ShortName strips a package or class qualifier from the name,
// e.g. "io.example.MathTests" -> "MathTests"
func (n *Node) ShortName() string {
	name := strings.TrimRight(n.Name, "./")
	if i := strings.LastIndexAny(name, "./"); i >= 0 {
		return name[i+1:]
	}
	return name
}

// Path returns the names from the root to this node
func (n *Node) Path() []string {
	var path []string
	for cur := n; cur != nil; cur = cur.Parent {
		path = append([]string{cur.Name}, path...)
	}
	return path
}

// Tally returns the counts the node contributes to its ancestors: its
// descendant counts plus, for a closed case, its own outcome
func (n *Node) Tally() Counts {
	c := n.Counts
	if n.Kind == event.Case {
		c.add(n.Outcome)
	}
	return c
}
