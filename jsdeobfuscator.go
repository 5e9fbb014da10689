// Package jsdeobfuscator is the root orchestrator: spec.md §6's
// `deobfuscate(code, options) → {code, changes}` entry point, wiring the
// fixpoint rewrite pipeline (package rewrite) together with the decoder
// subsystem (package decoder) and the comment-marker scan.
package jsdeobfuscator

import (
	"context"
	"os"

	"github.com/t14raptor/go-fast/ast"
	fastgen "github.com/t14raptor/go-fast/generator"
	"github.com/t14raptor/go-fast/parser"
	"go.uber.org/zap"

	"github.com/fxnatic/jsdeobfuscator/decoder"
	"github.com/fxnatic/jsdeobfuscator/rewrite"
	"github.com/fxnatic/jsdeobfuscator/transform"
	"github.com/fxnatic/jsdeobfuscator/traverse"
)

// pipeline is the ordered transform list package rewrite's SPEC_FULL §4.4
// mapping names, run to a fixpoint by transform.ApplyTransforms.
// SequenceSplit runs first so later passes see individually rewritable
// statements instead of comma expressions; ControlFlowUnflatten and
// IndirectionCollapse run before ConstantInline/ObjectCluster so the
// statements and call sites they expose get folded/clustered in the same
// round instead of waiting for the next one; ConstantInline and
// UnusedDecl run last so they see every literal BinaryEval/ObjectCluster
// exposed, including the now-dead counter declarator
// ControlFlowUnflatten leaves behind. decoderNames is threaded through so
// IndirectionCollapse never inlines away a designated decoder's own
// wrapper (see its doc comment).
func pipeline(decoderNames map[string]bool) []transform.Transform {
	return []transform.Transform{
		rewrite.SequenceSplit(),
		rewrite.BinaryEval(),
		rewrite.DeadBranch(),
		rewrite.ControlFlowUnflatten(),
		rewrite.SelfInvoke(),
		rewrite.IndirectionCollapse(0, decoderNames),
		rewrite.ObjectCluster(),
		rewrite.StringCanonicalize(),
		rewrite.ConstantInline(),
		rewrite.UnusedDecl(),
	}
}

// Deobfuscate parses code, runs it through the rewrite pipeline and the
// decoder subsystem to a fixpoint, and prints the result.
func Deobfuscate(ctx context.Context, code string, opts Options) (Result, error) {
	log := opts.logger()

	program, err := parser.ParseFile(code)
	if err != nil {
		ie := newInputError(code, err)
		log.Error("input failed to parse", zap.Error(ie))
		return Result{}, ie
	}

	topts := transform.Options{
		IterationCap: opts.IterationCap,
		OnPass: func(pass int, changes map[string]int) {
			log.Debug("transform pass", zap.Int("pass", pass), zap.Any("changes", changes))
		},
	}

	total := 0
	var failures []DecodeFailure

	// decoderNames accumulates every name the decoder subsystem has ever
	// treated as a designated or located decoder entry point, across
	// rounds: seeded from opts.Decoders, then widened each round by
	// runDecoderRound's own tracked set so a decoder only located in round
	// 1 is still protected from IndirectionCollapse in round 2.
	decoderNames := map[string]bool{}
	for _, n := range opts.Decoders {
		decoderNames[n] = true
	}

	// Rounds alternate a full rewrite fixpoint with one decoder-resolution
	// pass: substituting a decoder call can expose new constant-foldable
	// or dead code (the opposite is also true — folding can simplify a
	// decoder call's arguments into literals PendingCalls can finally
	// accept) so each round feeds the next. Real single-layer decoders
	// settle in two rounds; the cap guards against a pathological input
	// that never stops exposing new decoder calls.
	const maxRounds = 3
	for round := 0; round < maxRounds; round++ {
		n, err := transform.ApplyTransforms(program, pipeline(decoderNames), topts)
		total += n
		if err != nil {
			return Result{}, err
		}

		if ie := checkReparses(program, opts.DebugDir); ie != nil {
			log.Error("rewrite produced unparseable output", zap.Error(ie))
			return Result{}, ie
		}

		resolved, roundFailures, tracked, fatal := runDecoderRound(ctx, program, opts, log)
		total += resolved
		failures = append(failures, roundFailures...)
		for n := range tracked {
			decoderNames[n] = true
		}
		if fatal != nil {
			return Result{}, fatal
		}
		if n == 0 && resolved == 0 {
			break
		}
	}

	marks := rewrite.Marks(program, opts.MarkKeywords)
	exported := make([]MarkedStatement, len(marks))
	for i, m := range marks {
		exported[i] = MarkedStatement{Reason: m.Reason, Source: m.Source}
		log.Info("marked statement for review", zap.String("reason", m.Reason), zap.String("source", m.Source))
	}

	out := fastgen.Generate(program)

	var resultErr error
	if len(failures) > 0 {
		resultErr = &DecodeError{Failures: failures}
		log.Warn("some decoder calls could not be resolved", zap.Int("count", len(failures)))
	}
	return Result{Code: out, Changes: total, Marks: exported}, resultErr
}

// checkReparses is spec.md §7's InternalError guard: every round's output
// must still be valid JS, or the driver aborts and dumps the failing
// intermediate for postmortem inspection.
func checkReparses(program *ast.Program, debugDir string) *InternalError {
	src := fastgen.Generate(program)
	if _, err := parser.ParseFile(src); err == nil {
		return nil
	} else {
		ie := newInternalError(src, err)
		ie.DebugPath = writeDebugDump(debugDir, src)
		return ie
	}
}

func writeDebugDump(debugDir, src string) string {
	if debugDir == "" {
		return ""
	}
	f, err := os.CreateTemp(debugDir, "jsdeobfuscator-debug-*.js")
	if err != nil {
		return ""
	}
	defer f.Close()
	_, _ = f.WriteString(src)
	return f.Name()
}

// runDecoderRound performs spec.md §4.5's designated-decoder renaming,
// locates a decoder (by call count, then by big array, per §4.5's two
// strategies tried in order), and resolves every eligible call site
// through the sandbox in one batch. resolved is the number of call sites
// rewritten to string literals, suitable for the caller's change counter.
// fatal is non-nil only for a sandbox wiring problem severe enough to
// abort the whole run (not an individual unresolved call, which becomes a
// DecodeFailure instead). tracked is every name this round treated as a
// decoder entry point, returned so the caller can keep protecting it from
// IndirectionCollapse in later rounds even after set.Names() itself is
// out of scope.
func runDecoderRound(ctx context.Context, program *ast.Program, opts Options, log *zap.Logger) (resolved int, failures []DecodeFailure, tracked map[string]bool, fatal error) {
	sc := traverse.BuildScope(program)

	renamed := applyDesignatedDecoderRenaming(sc, opts.Decoders)
	if renamed > 0 {
		log.Debug("renamed designated decoder aliases", zap.Int("count", renamed))
	}

	set := locateDecoder(sc, opts, log)
	for _, name := range opts.Decoders {
		if set == nil {
			set = decoder.NewDecryptFnSet(&decoder.Candidate{Name: name})
		}
	}
	if set == nil {
		return 0, nil, nil, nil
	}
	set.CollectAliases(sc)

	tracked = map[string]bool{}
	for _, n := range set.Names() {
		tracked[n] = true
	}
	for _, n := range opts.Decoders {
		tracked[n] = true
	}

	pending := decoder.PendingCalls(sc, tracked)
	if len(pending) == 0 {
		return 0, nil, tracked, nil
	}
	if opts.Sandbox == nil {
		log.Warn("decoder located but no sandbox configured; leaving call sites unresolved", zap.Int("pending", len(pending)))
		for _, pc := range pending {
			failures = append(failures, DecodeFailure{Source: decoder.PrintCall(pc.Call), Message: "no sandbox configured"})
		}
		return 0, failures, tracked, nil
	}

	setup := decoder.SetupCode(program, tracked)
	results, err := decoder.Execute(ctx, opts.Sandbox, setup, pending)
	if err != nil {
		for _, pc := range pending {
			failures = append(failures, DecodeFailure{Source: decoder.PrintCall(pc.Call), Message: err.Error()})
		}
		return 0, failures, tracked, nil
	}

	n, decErrs := decoder.Substitute(pending, results)
	for _, de := range decErrs {
		failures = append(failures, DecodeFailure{Source: decoder.PrintCall(de.Call.Call), Message: de.Message})
	}
	return n, failures, tracked, nil
}

func locateDecoder(sc *traverse.Scope, opts Options, log *zap.Logger) *decoder.DecryptFnSet {
	if byCount := decoder.LocateByCallCount(sc, opts.callCountThreshold()); len(byCount) > 0 {
		return decoder.NewDecryptFnSet(byCount[0])
	}
	byArray := decoder.LocateByBigArray(sc, opts.arraySizeThreshold(), false, func(name string) {
		log.Warn("big array found outside any function scope, leaving it alone", zap.String("name", name))
	})
	for _, c := range byArray {
		if c.Role == decoder.RoleDecoder {
			return decoder.NewDecryptFnSet(c)
		}
	}
	return nil
}

// applyDesignatedDecoderRenaming implements spec.md §4.5's last rule: for
// every `let alias = decoder;` where decoder is a caller-supplied name,
// redirect alias's references to decoder directly. The now-unreferenced
// alias declarator is left for rewrite.UnusedDecl to clean up on the next
// fixpoint round rather than duplicating that removal logic here.
func applyDesignatedDecoderRenaming(sc *traverse.Scope, decoderNames []string) int {
	wanted := map[string]bool{}
	for _, n := range decoderNames {
		wanted[n] = true
	}
	if len(wanted) == 0 {
		return 0
	}
	changes := 0
	for _, b := range sc.Bindings {
		if b.Init == nil {
			continue
		}
		id, ok := b.Init.Expr.(*ast.Identifier)
		if !ok || !wanted[id.Name] {
			continue
		}
		target := id.Name
		for _, ref := range b.ReferencePaths {
			if ref.Expr == nil {
				continue
			}
			ref.ReplaceWith(&ast.Identifier{Name: target})
			changes++
		}
	}
	return changes
}
