// Package tracker follows the nesting of suites and cases for one worker.
//
// Start events push a Node onto the active-path stack; finish events pop it,
// record its outcome and fold its case durations and outcome counts into the
// parent. Malformed sequences never panic: they are recorded as
// ProtocolErrors and the tracker carries on with the nearest sensible state.
// Nodes still open when the session ends are drained as Interrupted.
package tracker
