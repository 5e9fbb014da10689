package jsdeobfuscator

import (
	"go.uber.org/zap"

	"github.com/fxnatic/jsdeobfuscator/sandbox"
)

// Options controls one Deobfuscate call, matching spec.md §6's entry
// point plus the ambient additions (Logger, DebugDir) a Go embedding of
// this engine needs.
type Options struct {
	// Decoders, when non-empty, names decoder functions the caller already
	// knows about. Every `let alias = decoder;` declarator for a name in
	// this list is removed and alias's references are renamed to decoder
	// directly (spec.md §4.5's "designated decoder renaming").
	Decoders []string

	// Sandbox evaluates decoder call sites. Required whenever the input
	// turns out to use string-array decoding; if a decoder is located but
	// Sandbox is nil, every one of its call sites is reported as a
	// DecodeFailure instead of being resolved.
	Sandbox sandbox.Sandbox

	// CallCountThreshold is decoder.LocateByCallCount's threshold. Zero
	// means the spec.md §4.5 default of 100.
	CallCountThreshold int
	// ArraySizeThreshold is decoder.LocateByBigArray's minimum element
	// count. Zero means the spec.md §4.5 default of 100.
	ArraySizeThreshold int

	// IterationCap bounds the fixpoint loop. Zero means transform.Options's
	// default of 100.
	IterationCap int

	// MarkKeywords is the case-insensitive substring list rewrite.Marks
	// checks identifiers and string literals against.
	MarkKeywords []string

	// Logger receives structured progress/diagnostic output. Defaults to
	// a no-op logger, the same default the wasm-runtime engine package in
	// this pack's example set uses for an injectable *zap.Logger.
	Logger *zap.Logger

	// DebugDir, if non-empty, is where an InternalError's failing
	// intermediate source is written. Library callers opt in; the CLI
	// passes its --debug-dir flag here, which is empty unless given.
	DebugDir string
}

func (o Options) logger() *zap.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return zap.NewNop()
}

func (o Options) callCountThreshold() int {
	if o.CallCountThreshold > 0 {
		return o.CallCountThreshold
	}
	return 100
}

func (o Options) arraySizeThreshold() int {
	if o.ArraySizeThreshold > 0 {
		return o.ArraySizeThreshold
	}
	return 100
}

// Result is Deobfuscate's return value: spec.md §6's `{code, changes}`
// plus the marks the comment-marker pass found (see rewrite.Marks for why
// these are returned rather than written into the source as comments).
type Result struct {
	Code    string
	Changes int
	Marks   []MarkedStatement
}

// MarkedStatement is one exported rewrite.Mark, kept as its own type so
// callers outside this module don't need to import the rewrite package
// just to read Result.Marks.
type MarkedStatement struct {
	Reason string
	Source string
}
