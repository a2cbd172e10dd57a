// Package event defines the test lifecycle vocabulary shared by the tracker,
// the renderers and the runner adapters.
//
// It provides:
//   - Outcome and Kind, closed enumerations matched exhaustively by renderers
//   - Event, a tagged variant for suite/case start and finish notifications
//   - Failure, StackFrame and Cause describing a failed case
package event
