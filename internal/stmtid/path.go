package stmtid

import (
	"slices"
	"strings"
)

// Path is an absolute path through the schema tree, one QName per step.
// A nil Path denotes a statement that is not part of the schema tree.
type Path []QName

// PathOf builds a path from the given steps.
func PathOf(steps ...QName) Path {
	return Path(slices.Clone(steps))
}

// Child returns a new path extended by one step. The receiver is not modified.
func (p Path) Child(step QName) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, step)
}

// Parent returns the path without its last step.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return nil
	}
	return p[:len(p)-1]
}

// Last returns the final step of the path.
func (p Path) Last() (QName, bool) {
	if len(p) == 0 {
		return QName{}, false
	}
	return p[len(p)-1], true
}

// Equal reports whether two paths have identical steps.
func (p Path) Equal(other Path) bool {
	return slices.Equal(p, other)
}

// String renders the path as `/step/step` with each step in Clark notation.
// The result is stable and is used as the schema-tree index key.
func (p Path) String() string {
	if len(p) == 0 {
		return "/"
	}
	var sb strings.Builder
	for _, step := range p {
		sb.WriteByte('/')
		sb.WriteString(step.String())
	}
	return sb.String()
}

// PathIn builds a path whose every step is qualified by the same module.
func PathIn(m Module, locals ...string) Path {
	out := make(Path, len(locals))
	for i, l := range locals {
		out[i] = NewQName(m, l)
	}
	return out
}
