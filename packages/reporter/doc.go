// Package reporter ties trackers, the formatter and a sink together.
//
// A Session owns the shared sink and the session-wide statistics. Each
// concurrent source of events gets its own Worker, which owns one tracker
// and turns every lifecycle call into one block of lines written to the
// sink. Workers share nothing but the sink and the session totals.
//
//	s := reporter.NewSession(profile, sink)
//	s.Start()
//	w := s.Worker("pkg")
//	w.OnSuiteStart("pkg")
//	w.OnCaseStart("TestAdd")
//	w.OnCaseFinish(event.Passed, nil, 3*time.Millisecond)
//	w.OnSuiteFinish(3 * time.Millisecond)
//	summary, err := s.Finish()
package reporter
