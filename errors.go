package jsdeobfuscator

import (
	"fmt"

	"github.com/fxnatic/jsdeobfuscator/internal/codeframe"
)

// InputError reports that code is not valid JavaScript — spec.md §7's
// first error kind, raised during the initial parse. Fatal: the pipeline
// never runs against unparseable input.
type InputError struct {
	Message string
	Source  string
	Line    int
	Col     int
}

func (e *InputError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("input error: %s", e.Message)
	}
	return fmt.Sprintf("input error: %s\n%s", e.Message, e.Frame())
}

// Frame renders the source excerpt around the error, or "" if no position
// was recovered.
func (e *InputError) Frame() string {
	if e.Line == 0 {
		return ""
	}
	return codeframe.Format(e.Source, e.Line, e.Col, 2)
}

func newInputError(source string, cause error) *InputError {
	e := &InputError{Message: cause.Error(), Source: source}
	if line, col, ok := codeframe.ExtractPosition(cause.Error()); ok {
		e.Line, e.Col = line, col
	}
	return e
}

// InternalError reports that a rewrite produced code the parser no longer
// accepts — spec.md §7's second error kind. Fatal. When DebugPath is
// non-empty, the failing intermediate source has already been written
// there for postmortem inspection.
type InternalError struct {
	Message   string
	Source    string
	Line, Col int
	DebugPath string
}

func (e *InternalError) Error() string {
	msg := fmt.Sprintf("internal error: %s", e.Message)
	if e.DebugPath != "" {
		msg += fmt.Sprintf(" (dumped to %s)", e.DebugPath)
	}
	if frame := e.Frame(); frame != "" {
		msg += "\n" + frame
	}
	return msg
}

func (e *InternalError) Frame() string {
	if e.Line == 0 {
		return ""
	}
	return codeframe.Format(e.Source, e.Line, e.Col, 2)
}

func newInternalError(source string, cause error) *InternalError {
	e := &InternalError{Message: cause.Error(), Source: source}
	if line, col, ok := codeframe.ExtractPosition(cause.Error()); ok {
		e.Line, e.Col = line, col
	}
	return e
}

// DecodeError aggregates every decoder call site the sandbox failed to
// resolve during one Deobfuscate call — spec.md §7's third error kind.
// Unlike InputError/InternalError this is recoverable: the pipeline still
// returns a Result, with the affected call sites left unchanged, and
// DecodeError is returned alongside it (not in place of it) so a caller
// can decide whether an unresolved decoder call is fatal for their use
// case.
type DecodeError struct {
	Failures []DecodeFailure
}

// DecodeFailure is one unresolved decoder call site: its printed source
// and why the sandbox couldn't produce a value for it.
type DecodeFailure struct {
	Source  string
	Message string
}

func (e *DecodeError) Error() string {
	if len(e.Failures) == 1 {
		return fmt.Sprintf("decrypt failed: %s", e.Failures[0].Message)
	}
	return fmt.Sprintf("decrypt failed: %d call sites could not be resolved", len(e.Failures))
}
