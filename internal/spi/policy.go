package spi

import (
	"fmt"
	"sort"

	"github.com/specialistvlad/stmtreactor/internal/stmtid"
)

// CopyPolicy governs how a statement is reused at instantiation sites. The
// zero value is deliberately invalid; registries reject it.
type CopyPolicy int

const (
	CopyUnset CopyPolicy = iota
	ContextIndependent
	DeclaredCopy
	IgnoreCopy
)

func (p CopyPolicy) String() string {
	switch p {
	case ContextIndependent:
		return "context-independent"
	case DeclaredCopy:
		return "declared-copy"
	case IgnoreCopy:
		return "ignore"
	default:
		return "unset"
	}
}

// CopyType records which construct instantiated a copy. It affects
// diagnostics only.
type CopyType int

const (
	// CopyUses is an instantiation through a reference construct.
	CopyUses CopyType = iota + 1
	// CopyInclude is a restatement of a submodule into its module.
	CopyInclude
)

func (t CopyType) String() string {
	switch t {
	case CopyUses:
		return "uses"
	case CopyInclude:
		return "include"
	default:
		return fmt.Sprintf("copy(%d)", int(t))
	}
}

// TreeMembership says whether a statement is a node of the schema tree and
// of the data tree.
type TreeMembership int

const (
	NotInTree TreeMembership = iota
	// SchemaOnly nodes (choice, case) appear in schema paths but are
	// transparent in data paths.
	SchemaOnly
	SchemaAndData
)

// Traits are fixed properties of a support.
type Traits struct {
	Tree TreeMembership
	// Root marks statements that may be the root of a source document.
	Root bool
	// Publishes marks roots that appear in the model's module map.
	Publishes bool
}

// Unbounded is the Max of a cardinality without an upper limit.
const Unbounded = -1

// Cardinality bounds the number of occurrences of one substatement.
type Cardinality struct {
	Min int
	Max int
}

var (
	Optional   = Cardinality{Min: 0, Max: 1}
	Mandatory  = Cardinality{Min: 1, Max: 1}
	Any        = Cardinality{Min: 0, Max: Unbounded}
	AtLeastOne = Cardinality{Min: 1, Max: Unbounded}
)

// Allows reports whether n occurrences are within bounds.
func (c Cardinality) Allows(n int) bool {
	return n >= c.Min && (c.Max == Unbounded || n <= c.Max)
}

// SubstatementRules maps each allowed built-in substatement to its
// cardinality. Extension statements are always allowed and never counted.
type SubstatementRules map[stmtid.QName]Cardinality

// Rules creates an empty rule set.
func Rules() SubstatementRules {
	return SubstatementRules{}
}

// With adds a built-in keyword and returns the receiver.
func (r SubstatementRules) With(keyword string, c Cardinality) SubstatementRules {
	r[stmtid.Builtin(keyword)] = c
	return r
}

// Clone returns an independent copy, so version variants can extend a
// shared base.
func (r SubstatementRules) Clone() SubstatementRules {
	out := make(SubstatementRules, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Keywords lists the allowed keywords in sorted order.
func (r SubstatementRules) Keywords() []stmtid.QName {
	out := make([]stmtid.QName, 0, len(r))
	for k := range r {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// Violation is one broken substatement rule.
type Violation struct {
	Keyword    stmtid.QName
	Count      int
	Rule       Cardinality
	Unexpected bool
}

// Check validates the keywords of a statement's children, given in source
// order. Unexpected keywords are reported first, in source order, then
// count violations in keyword order.
func (r SubstatementRules) Check(children []stmtid.QName) (Violation, bool) {
	counts := make(map[stmtid.QName]int)
	for _, k := range children {
		if !k.IsBuiltin() {
			continue
		}
		if _, ok := r[k]; !ok {
			return Violation{Keyword: k, Count: 1, Unexpected: true}, false
		}
		counts[k]++
	}
	for _, k := range r.Keywords() {
		rule := r[k]
		if !rule.Allows(counts[k]) {
			return Violation{Keyword: k, Count: counts[k], Rule: rule}, false
		}
	}
	return Violation{}, true
}
