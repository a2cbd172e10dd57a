// Package stats aggregates case durations of a reporting session into
// percentiles and a list of the slowest cases.
package stats
