package event

import "strings"

// NoMessage replaces a missing failure message
const NoMessage = "<no message>"

// UnknownSymbol replaces a missing frame symbol
const UnknownSymbol = "<unknown>"

// StackFrame is one entry of a stack trace
type StackFrame struct {
	Location string `json:"location,omitempty"` // file:line
	Symbol   string `json:"symbol,omitempty"`   // function name
}

// String renders the frame as "symbol (location)"
func (f StackFrame) String() string {
	symbol := f.Symbol
	if symbol == "" {
		symbol = UnknownSymbol
	}
	if f.Location == "" {
		return symbol
	}
	return symbol + " (" + f.Location + ")"
}

// Cause is one nested error in a failure's cause chain
type Cause struct {
	Message string       `json:"message"`
	Frames  []StackFrame `json:"frames,omitempty"`
}

// Failure describes why a case failed. Causes are ordered outermost first.
type Failure struct {
	Message string       `json:"message"`
	Frames  []StackFrame `json:"frames,omitempty"`
	Causes  []Cause      `json:"causes,omitempty"`
}

// DisplayMessage returns the message, or a placeholder when it is blank.
// Safe on a nil receiver.
func (f *Failure) DisplayMessage() string {
	if f == nil {
		return NoMessage
	}
	return displayMessage(f.Message)
}

// DisplayMessage returns the cause message, or a placeholder when it is blank
func (c Cause) DisplayMessage() string {
	return displayMessage(c.Message)
}

func displayMessage(msg string) string {
	if strings.TrimSpace(msg) == "" {
		return NoMessage
	}
	return msg
}
