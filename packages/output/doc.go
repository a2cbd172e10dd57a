// Package output renders tracker nodes into lines and writes them to sinks.
//
// The Formatter produces Lines carrying colour intents rather than escape
// codes. Sinks decide how to show them:
//   - ConsoleSink: indented text, ANSI colours via fatih/color
//   - JSONSink: one JSON object per line with the colour class as data
//   - LogSink: one structured log record per line
//
// Every sink writes one event's block atomically, so concurrent workers
// can share a sink without interleaving their lines.
package output
