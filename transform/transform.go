// Package transform runs the rewrite library to a fixed point, the way
// spec.md §4.3 describes: apply every transform in order, count how many
// edits each made, and repeat the whole ordered list until a full pass
// makes no edits at all (or an iteration cap is hit, which is reported as
// a fatal error rather than silently accepted — a non-converging transform
// is a bug, not a valid outcome).
package transform

import (
	"fmt"

	"github.com/t14raptor/go-fast/ast"

	"github.com/fxnatic/jsdeobfuscator/traverse"
)

// Transform is one named rewrite rule: a factory that, given a fresh
// per-run State, returns the VisitorMap traverse.Visit should dispatch to.
// Building the VisitorMap fresh per call lets a transform close over
// run-local state (an accumulator, a lookup table) without leaking it
// across runs.
type Transform struct {
	Name string
	// NeedsScope requests that traverse.Visit build Path.Scope()/Binding
	// information for this transform's pass. Transforms that only pattern-
	// match on shape (no identifier resolution) should leave this false to
	// skip the extra hoisting scan.
	NeedsScope bool
	// Visitor receives the program being transformed in addition to the
	// run's State, so a transform that needs to know about a binding's
	// uses *anywhere* in the program (not just the ones already walked by
	// the time its own callback fires - Path.Scope()'s Binding is only
	// ever partially populated mid-walk) can run traverse.BuildScope up
	// front and close over the result, the same full-program-first shape
	// the decoder subsystem's locators use.
	Visitor func(state *State, program *ast.Program) traverse.VisitorMap
}

// State is the mutable, per-pass bookkeeping a transform's visitor
// callbacks share: how many edits they made, for the fixpoint runner to
// add into its change total.
type State struct {
	Changes int
}

// ApplyTransform runs t once over program and returns how many edits it
// made.
func ApplyTransform(program *ast.Program, t Transform) int {
	state := &State{}
	visitors := t.Visitor(state, program)
	traverse.Visit(program, visitors, traverse.Options{Scope: t.NeedsScope})
	return state.Changes
}

// ConvergenceError reports that ApplyTransforms hit its iteration cap
// without a transform-free pass, which the fixpoint contract treats as a
// bug in one of the transforms (a rewrite that keeps "fixing" its own
// output) rather than a recoverable input condition.
type ConvergenceError struct {
	IterationCap int
	LastPass     map[string]int
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("transform pipeline did not converge after %d iterations (last pass: %v)", e.IterationCap, e.LastPass)
}

// Options controls ApplyTransforms' fixpoint loop.
type Options struct {
	// IterationCap bounds how many full passes over the transform list are
	// attempted before giving up with a ConvergenceError. Zero means use
	// the default of 100, generous for any obfuscator output the decoder
	// subsystem is expected to see.
	IterationCap int
	// OnPass, if non-nil, is called after every full pass with the
	// per-transform change counts from that pass, for callers that want to
	// log progress (the orchestrator does, via zap).
	OnPass func(pass int, changes map[string]int)
}

// ApplyTransforms runs every transform in ts, in order, repeatedly, until
// one full pass makes zero total edits. Transform order within a pass is
// significant and is the caller's to choose; ApplyTransforms never
// reorders.
func ApplyTransforms(program *ast.Program, ts []Transform, opts Options) (int, error) {
	cap := opts.IterationCap
	if cap <= 0 {
		cap = 100
	}

	total := 0
	lastPass := map[string]int{}
	for iter := 0; iter < cap; iter++ {
		passChanges := map[string]int{}
		passTotal := 0
		for _, t := range ts {
			n := ApplyTransform(program, t)
			passChanges[t.Name] = n
			passTotal += n
		}
		total += passTotal
		lastPass = passChanges
		if opts.OnPass != nil {
			opts.OnPass(iter+1, passChanges)
		}
		if passTotal == 0 {
			return total, nil
		}
	}
	return total, &ConvergenceError{IterationCap: cap, LastPass: lastPass}
}
