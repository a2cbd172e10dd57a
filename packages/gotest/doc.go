// Package gotest feeds `go test -json` output into a reporter session.
//
// Every package in the stream becomes a suite on its own worker, so
// packages tested in parallel never share a stack. Tests are buffered until
// they finish because parallel tests interleave their events; each finished
// test is then reported as one case. Failure output is parsed into a
// message and frames: testify blocks, t.Error locations and panic traces
// are understood.
package gotest
