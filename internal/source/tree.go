package source

import (
	"fmt"
	"strconv"
)

// Ref is an approximate text position, used for diagnostics only.
type Ref struct {
	File   string
	Line   int
	Column int
}

func (r Ref) String() string {
	if r.File == "" {
		return "<unknown>"
	}
	if r.Line == 0 {
		return r.File
	}
	return r.File + ":" + strconv.Itoa(r.Line) + ":" + strconv.Itoa(r.Column)
}

// Statement is one parsed statement: keyword, raw argument text and children
// in source order. Front-ends produce these; the reactor never modifies them.
type Statement struct {
	Keyword  string
	Argument string
	Ref      Ref
	Children []*Statement
}

// Child returns the first direct child with the given keyword.
func (s *Statement) Child(keyword string) (*Statement, bool) {
	for _, c := range s.Children {
		if c.Keyword == keyword {
			return c, true
		}
	}
	return nil, false
}

// ChildrenOf returns every direct child with the given keyword.
func (s *Statement) ChildrenOf(keyword string) []*Statement {
	var out []*Statement
	for _, c := range s.Children {
		if c.Keyword == keyword {
			out = append(out, c)
		}
	}
	return out
}

// Tree is a fully parsed source document.
type Tree struct {
	ID      Identifier
	Version Version
	Root    *Statement
}

// NewTree derives the identifier and language version of a parsed document
// from its root statement.
func NewTree(root *Statement) (*Tree, error) {
	if root == nil {
		return nil, fmt.Errorf("document has no root statement")
	}
	if root.Argument == "" {
		return nil, fmt.Errorf("%s: root statement %q has no name", root.Ref, root.Keyword)
	}

	var revisions []string
	for _, r := range root.ChildrenOf("revision") {
		if err := ValidateRevision(r.Argument); err != nil {
			return nil, fmt.Errorf("%s: %w", r.Ref, err)
		}
		revisions = append(revisions, r.Argument)
	}

	version := Version1
	if yv, ok := root.Child("yang-version"); ok {
		v, err := ParseVersion(yv.Argument)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", yv.Ref, err)
		}
		version = v
	}

	return &Tree{
		ID:      NewIdentifier(root.Argument, LatestRevision(revisions)),
		Version: version,
		Root:    root,
	}, nil
}
