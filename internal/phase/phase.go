// Package phase defines the fixed, ordered sequence of whole-build semantic
// phases. A phase is a barrier: no statement begins phase k+1 until every
// statement of every source in the build has completed phase k.
package phase

import "fmt"

// Phase is one ordered stage of semantic analysis.
type Phase int

const (
	// None is the state of a statement that has not completed any phase.
	None Phase = iota
	Init
	SourcePreLinkage
	SourceLinkage
	StatementDefinition
	FullDeclaration
	EffectiveModel
)

var names = map[Phase]string{
	None:                "none",
	Init:                "init",
	SourcePreLinkage:    "source-pre-linkage",
	SourceLinkage:       "source-linkage",
	StatementDefinition: "statement-definition",
	FullDeclaration:     "full-declaration",
	EffectiveModel:      "effective-model",
}

// All returns every real phase in execution order.
func All() []Phase {
	return []Phase{Init, SourcePreLinkage, SourceLinkage, StatementDefinition, FullDeclaration, EffectiveModel}
}

func (p Phase) String() string {
	if n, ok := names[p]; ok {
		return n
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Prev returns the preceding phase, or None.
func (p Phase) Prev() Phase {
	if p <= None {
		return None
	}
	return p - 1
}

// Next returns the following phase. The terminal phase is its own successor.
func (p Phase) Next() Phase {
	if p >= EffectiveModel {
		return EffectiveModel
	}
	return p + 1
}

// IsTerminal reports whether p is the last phase.
func (p Phase) IsTerminal() bool {
	return p == EffectiveModel
}

// Parse resolves a phase name as returned by String.
func Parse(s string) (Phase, error) {
	for p, n := range names {
		if n == s && p != None {
			return p, nil
		}
	}
	return None, fmt.Errorf("unknown phase %q", s)
}
