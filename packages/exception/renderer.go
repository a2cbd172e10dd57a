package exception

import (
	"fmt"

	"github.com/abdul-hamid-achik/dromus/packages/core/config"
	"github.com/abdul-hamid-achik/dromus/packages/core/event"
)

const (
	framePrefix = "at "
	causePrefix = "Caused by: "
)

// Render turns a failure into display lines according to the profile:
//   - nothing when exceptions are hidden or there is no failure
//   - the message alone when stack traces are off or the depth is 0
//   - up to MaxStackTraceDepth outermost frames, then "... N more" if cut
//   - with full stack traces, every frame plus every cause and its frames
//
// The message is never truncated.
func Render(failure *event.Failure, profile config.Profile) []string {
	if failure == nil || !profile.ShowExceptions() {
		return nil
	}

	lines := []string{failure.DisplayMessage()}

	if profile.ShowFullStackTraces() {
		lines = appendFrames(lines, failure.Frames)
		for _, cause := range failure.Causes {
			lines = append(lines, causePrefix+cause.DisplayMessage())
			lines = appendFrames(lines, cause.Frames)
		}
		return lines
	}

	if !profile.ShowStackTraces() {
		return lines
	}

	depth := profile.MaxStackTraceDepth()
	if depth <= 0 {
		return lines
	}

	frames := failure.Frames
	if len(frames) <= depth {
		return appendFrames(lines, frames)
	}

	lines = appendFrames(lines, frames[:depth])
	return append(lines, TruncationMarker(len(frames)-depth))
}

// TruncationMarker is the line emitted after the last shown frame when n
// frames were cut
func TruncationMarker(n int) string {
	return fmt.Sprintf("... %d more", n)
}

func appendFrames(lines []string, frames []event.StackFrame) []string {
	for _, f := range frames {
		lines = append(lines, framePrefix+f.String())
	}
	return lines
}
