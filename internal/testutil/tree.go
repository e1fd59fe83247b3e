package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/stmtreactor/internal/ctxlog"
	"github.com/specialistvlad/stmtreactor/internal/registry"
	"github.com/specialistvlad/stmtreactor/internal/source"
	"github.com/specialistvlad/stmtreactor/internal/stmt"
)

// S builds a parsed statement.
func S(keyword, argument string, children ...*source.Statement) *source.Statement {
	return &source.Statement{Keyword: keyword, Argument: argument, Children: children}
}

// Module builds a module root in namespace "urn:test:<name>".
func Module(name, prefix string, body ...*source.Statement) *source.Statement {
	header := []*source.Statement{
		S("namespace", "urn:test:"+name),
		S("prefix", prefix),
	}
	return S("module", name, append(header, body...)...)
}

// Submodule builds a submodule root belonging to module owner.
func Submodule(name, owner, prefix string, body ...*source.Statement) *source.Statement {
	header := []*source.Statement{S("belongs-to", owner, S("prefix", prefix))}
	return S("submodule", name, append(header, body...)...)
}

// Import builds an import statement.
func Import(module, prefix string) *source.Statement {
	return S("import", module, S("prefix", prefix))
}

// Leaf builds a leaf of the given type.
func Leaf(name, typ string, body ...*source.Statement) *source.Statement {
	return S("leaf", name, append([]*source.Statement{S("type", typ)}, body...)...)
}

// Tree turns a root statement into a document. Statements without a
// position are numbered line by line in document order, in file
// "<root argument>.yang".
func Tree(t *testing.T, root *source.Statement) *source.Tree {
	t.Helper()
	file := root.Argument + ".yang"
	line := 0
	var number func(s *source.Statement)
	number = func(s *source.Statement) {
		line++
		if s.Ref == (source.Ref{}) {
			s.Ref = source.Ref{File: file, Line: line, Column: 1}
		}
		for _, c := range s.Children {
			number(c)
		}
	}
	number(root)

	tree, err := source.NewTree(root)
	require.NoError(t, err)
	return tree
}

// Trees turns every root into a document.
func Trees(t *testing.T, roots ...*source.Statement) []*source.Tree {
	t.Helper()
	out := make([]*source.Tree, len(roots))
	for i, r := range roots {
		out[i] = Tree(t, r)
	}
	return out
}

// Registry builds a registry holding the built-in statements and mods.
func Registry(t *testing.T, mods ...registry.Module) *registry.Registry {
	t.Helper()
	return buildRegistry(t, stmt.Bundle{}, mods)
}

// LenientRegistry is Registry with undefined extensions skipped instead of
// reported.
func LenientRegistry(t *testing.T, mods ...registry.Module) *registry.Registry {
	t.Helper()
	return buildRegistry(t, stmt.Bundle{Lenient: true}, mods)
}

func buildRegistry(t *testing.T, builtin stmt.Bundle, mods []registry.Module) *registry.Registry {
	t.Helper()
	reg, err := registry.NewBuilder().
		Install(builtin).
		Install(mods...).
		Build()
	require.NoError(t, err)
	return reg
}

// NewContext returns a context carrying a logger that writes into buf.
func NewContext(buf *SafeBuffer) context.Context {
	return ctxlog.WithLogger(context.Background(), NewLogger(buf))
}
