package model

import (
	"testing"

	"github.com/specialistvlad/stmtreactor/internal/phase"
	"github.com/specialistvlad/stmtreactor/internal/source"
	"github.com/specialistvlad/stmtreactor/internal/stmtid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_IndexesSchemaAndDataTrees(t *testing.T) {
	mod := stmtid.NewModule("urn:a", "")
	path := func(locals ...string) stmtid.Path { return stmtid.PathIn(mod, locals...) }

	leafB := &Effective{Keyword: stmtid.Builtin("leaf"), Argument: "b", Path: path("c", "ch", "cs", "b"), DataPath: path("c", "b")}
	caseCS := &Effective{Keyword: stmtid.Builtin("case"), Argument: "cs", Path: path("c", "ch", "cs"), Substatements: []*Effective{leafB}}
	choice := &Effective{Keyword: stmtid.Builtin("choice"), Argument: "ch", Path: path("c", "ch"), Substatements: []*Effective{caseCS}}
	leafA := &Effective{Keyword: stmtid.Builtin("leaf"), Argument: "a", Path: path("c", "a"), DataPath: path("c", "a")}
	container := &Effective{Keyword: stmtid.Builtin("container"), Argument: "c", Path: path("c"), DataPath: path("c"), Substatements: []*Effective{leafA, choice}}
	root := &Effective{Keyword: stmtid.Builtin("module"), Argument: "a", Substatements: []*Effective{container}}

	b := NewBuilder(phase.EffectiveModel)
	require.NoError(t, b.AddModule(&Module{Identity: mod, Name: "a", Source: source.Identifier{Name: "a"}, Effective: root}))
	m := b.Build()

	got, ok := m.FindSchema(path("c", "ch", "cs", "b"))
	require.True(t, ok)
	assert.Same(t, leafB, got)

	got, ok = m.FindData(path("c", "b"))
	require.True(t, ok)
	assert.Same(t, leafB, got)

	_, ok = m.FindData(path("c", "ch"))
	assert.False(t, ok, "choice is not a data node")

	assert.Len(t, m.SchemaPaths(), 5)
	assert.Len(t, m.DataPaths(), 3)
	assert.Equal(t, phase.EffectiveModel, m.Phase())

	mod2, ok := m.Module(mod)
	require.True(t, ok)
	assert.Same(t, root, mod2.Effective)
	byName, ok := m.ModuleByName("a")
	require.True(t, ok)
	assert.Same(t, mod2, byName)
}

func TestBuilder_RejectsDuplicateModule(t *testing.T) {
	id := stmtid.NewModule("urn:a", "2020-01-01")
	b := NewBuilder(phase.FullDeclaration)
	require.NoError(t, b.AddModule(&Module{Identity: id, Name: "a"}))
	assert.Error(t, b.AddModule(&Module{Identity: id, Name: "a"}))
}

func TestBuilder_RejectsRepeatedDataPath(t *testing.T) {
	mod := stmtid.NewModule("urn:a", "")
	path := func(locals ...string) stmtid.Path { return stmtid.PathIn(mod, locals...) }

	direct := &Effective{Keyword: stmtid.Builtin("leaf"), Argument: "x", Path: path("x"), DataPath: path("x"),
		Ref: source.Ref{File: "a.hcl", Line: 2}}
	inCase := &Effective{Keyword: stmtid.Builtin("leaf"), Argument: "x", Path: path("ch", "k", "x"), DataPath: path("x"),
		Ref: source.Ref{File: "a.hcl", Line: 5}}
	caseK := &Effective{Keyword: stmtid.Builtin("case"), Argument: "k", Path: path("ch", "k"), Substatements: []*Effective{inCase}}
	choice := &Effective{Keyword: stmtid.Builtin("choice"), Argument: "ch", Path: path("ch"), Substatements: []*Effective{caseK}}
	root := &Effective{Keyword: stmtid.Builtin("module"), Argument: "a", Substatements: []*Effective{direct, choice}}

	err := NewBuilder(phase.EffectiveModel).AddModule(&Module{Identity: mod, Name: "a", Effective: root})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data path /{urn:a}x indexed twice")
	assert.Contains(t, err.Error(), "a.hcl:5")
}

func TestModules_SortedAndLatestByName(t *testing.T) {
	b := NewBuilder(phase.FullDeclaration)
	for _, rev := range []string{"2021-01-01", "2019-01-01"} {
		require.NoError(t, b.AddModule(&Module{
			Identity: stmtid.NewModule("urn:m", rev),
			Name:     "m",
			Source:   source.Identifier{Name: "m", Revision: rev},
		}))
	}
	require.NoError(t, b.AddModule(&Module{Identity: stmtid.NewModule("urn:a", ""), Name: "a", Source: source.Identifier{Name: "a"}}))
	m := b.Build()

	mods := m.Modules()
	require.Len(t, mods, 3)
	assert.Equal(t, "a", mods[0].Name)
	assert.Equal(t, "2019-01-01", mods[1].Source.Revision)

	latest, ok := m.ModuleByName("m")
	require.True(t, ok)
	assert.Equal(t, "2021-01-01", latest.Source.Revision)
}

func TestEffective_Helpers(t *testing.T) {
	typ := &Effective{Keyword: stmtid.Builtin("type"), Argument: "string"}
	desc := &Effective{Keyword: stmtid.Builtin("description"), Argument: "d"}
	leaf := &Effective{Keyword: stmtid.Builtin("leaf"), Argument: "x", Substatements: []*Effective{typ, desc}}

	got, ok := leaf.Find(stmtid.Builtin("type"))
	require.True(t, ok)
	assert.Same(t, typ, got)
	assert.Len(t, leaf.FindAll(stmtid.Builtin("description")), 1)
	assert.Equal(t, "x", leaf.ArgumentString())
	assert.Equal(t, "", (&Effective{}).ArgumentString())
	assert.Equal(t, "true", (&Effective{Argument: true}).ArgumentString())

	visited := 0
	leaf.Walk(func(*Effective) bool { visited++; return true })
	assert.Equal(t, 3, visited)
}
