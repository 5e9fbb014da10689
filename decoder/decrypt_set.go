package decoder

import (
	"github.com/t14raptor/go-fast/ast"

	"github.com/fxnatic/jsdeobfuscator/traverse"
)

// DecryptFnSet is the generalized form of deob.go's
// `deobVisitor.aliases map[string]struct{}`: the set of identifier names
// that all ultimately resolve to one located decoder function, including
// any `var alias = decoderFn;` indirection the obfuscator introduced to
// defeat naive "find the one function everyone calls" detection.
type DecryptFnSet struct {
	Primary *Candidate
	aliases map[string]bool
}

// NewDecryptFnSet seeds a set from a located decoder candidate.
func NewDecryptFnSet(c *Candidate) *DecryptFnSet {
	s := &DecryptFnSet{Primary: c, aliases: map[string]bool{}}
	if c != nil {
		s.aliases[c.Name] = true
	}
	return s
}

// CollectAliases scans scope for `var alias = <name already in the set>;`
// declarations and folds the alias's name into the set, the same
// recognition deob.go's collectAliases/aliasCollector perform for the
// Cloudflare decoder specifically, generalized to any tracked name.
func (s *DecryptFnSet) CollectAliases(scope *traverse.Scope) {
	changed := true
	for changed {
		changed = false
		for name, b := range scope.Bindings {
			if s.aliases[name] {
				continue
			}
			if b.Init == nil {
				continue
			}
			id, ok := b.Init.Expr.(*ast.Identifier)
			if !ok || !s.aliases[id.Name] {
				continue
			}
			s.aliases[name] = true
			changed = true
		}
	}
}

// Has reports whether name is the decoder or one of its known aliases.
func (s *DecryptFnSet) Has(name string) bool {
	return s.aliases[name]
}

// Names returns every tracked name, primary plus aliases.
func (s *DecryptFnSet) Names() []string {
	out := make([]string, 0, len(s.aliases))
	for n := range s.aliases {
		out = append(out, n)
	}
	return out
}
