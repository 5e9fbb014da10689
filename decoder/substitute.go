package decoder

import (
	"fmt"

	"github.com/t14raptor/go-fast/ast"

	"github.com/fxnatic/jsdeobfuscator/sandbox"
)

// DecodeError records one decoder call site the sandboxed executor could
// not resolve to a string — spec.md §7's recovery path for a sandbox
// evaluation that throws, times out, or returns the wrong shape.
//
// spec.md describes tagging the unresolved call with a leading
// `decrypt failed: <message>` source comment. go-fast's ast package — as
// used throughout the teacher and every other retrieved example — exposes
// no comment node on any expression or statement, so there is nothing to
// attach that comment to without inventing an API go-fast doesn't have.
// The call site is left unchanged in the tree, and the failure is
// reported here instead; the root package logs each one through zap at
// the same point it would otherwise have written the comment.
type DecodeError struct {
	Call    *PendingCall
	Message string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decrypt failed: %s", e.Message)
}

// Substitute replaces every pending call whose resolved value is a string
// with a string-literal call site, and reports every other outcome as a
// DecodeError rather than editing the tree. The returned int is the
// number of call sites actually substituted, for the caller's
// transform.State.Changes counter.
func Substitute(pending []*PendingCall, results []sandbox.Value) (changes int, errs []*DecodeError) {
	for i, pc := range pending {
		if i >= len(results) {
			errs = append(errs, &DecodeError{Call: pc, Message: "no result returned for this call site"})
			continue
		}
		v := results[i]
		if v.Kind != sandbox.KindString {
			errs = append(errs, &DecodeError{Call: pc, Message: fmt.Sprintf("decoder returned a %s, not a string", v.Kind)})
			continue
		}
		pc.Path.ReplaceWith(&ast.StringLiteral{Value: v.String})
		changes++
	}
	return changes, errs
}
