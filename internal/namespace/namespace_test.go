package namespace

import (
	"testing"

	"github.com/specialistvlad/stmtreactor/internal/diag"
	"github.com/specialistvlad/stmtreactor/internal/phase"
	"github.com/specialistvlad/stmtreactor/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBuild and fakeNode model just enough of a statement tree to drive the
// store.
type fakeBuild struct {
	set    *Set
	global *Table
	phase  phase.Phase
}

type fakeNode struct {
	build   *fakeBuild
	parent  *fakeNode
	root    *fakeNode
	line    int
	local   *Table // source-local, only on roots
	subtree *Table
}

func newFakeBuild(defs ...Definition) *fakeBuild {
	set := NewSet(defs...)
	return &fakeBuild{set: set, global: set.NewTable(), phase: phase.Init}
}

func (b *fakeBuild) root(line int) *fakeNode {
	n := &fakeNode{build: b, line: line, local: b.set.NewTable()}
	n.root = n
	return n
}

func (n *fakeNode) child(line int) *fakeNode {
	return &fakeNode{build: n.build, parent: n, root: n.root, line: line}
}

func (n *fakeNode) Table(scope Scope) *Table {
	switch scope {
	case Global:
		return n.build.global
	case SourceLocal:
		return n.root.local
	default:
		if n.subtree == nil {
			n.subtree = n.build.set.NewTable()
		}
		return n.subtree
	}
}

func (n *fakeNode) ParentHost() Host {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

func (n *fakeNode) Site() diag.Site {
	return diag.Site{Source: source.Identifier{Name: "a"}, Ref: source.Ref{File: "a.hcl", Line: n.line}}
}

func (n *fakeNode) CurrentPhase() phase.Phase { return n.build.phase }

func TestGlobalAndSourceLocal(t *testing.T) {
	modules := New[string, int]("module", Global)
	prefixes := New[string, string]("prefix", SourceLocal)
	b := newFakeBuild(modules, prefixes)

	a := b.root(1)
	other := b.root(1)

	require.NoError(t, modules.Bind(a, "a", 1))
	v, ok := modules.Lookup(other, "a")
	require.True(t, ok, "global bindings are visible from every source")
	assert.Equal(t, 1, v)

	require.NoError(t, prefixes.Bind(a.child(2), "p", "urn:p"))
	_, ok = prefixes.Lookup(other, "p")
	assert.False(t, ok, "source-local bindings stay in their source")
	got, ok := prefixes.Lookup(a.child(5).child(6), "p")
	require.True(t, ok)
	assert.Equal(t, "urn:p", got)
}

func TestDuplicateBindingNamesBothSites(t *testing.T) {
	nodes := New[string, string]("schema node", Subtree)
	b := newFakeBuild(nodes)
	root := b.root(1)

	require.NoError(t, nodes.Bind(root.child(3), "x", "first"))
	err := nodes.Bind(root.child(7), "x", "second")

	require.Error(t, err)
	var dup *diag.DuplicateDefinitionError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, 3, dup.First.Ref.Line)
	assert.Equal(t, 7, dup.Second.Ref.Line)
	assert.Equal(t, "x", dup.Key)

	v, _ := nodes.Lookup(root, "x")
	assert.Equal(t, "first", v, "the original binding is kept")
}

func TestBindAtAncestor(t *testing.T) {
	nodes := New[string, string]("data node", Subtree)
	b := newFakeBuild(nodes)
	container := b.root(1).child(2)
	direct := container.child(3)
	nested := container.child(4).child(5).child(6)

	require.NoError(t, nodes.BindAt(container, direct, "x", "direct"))
	err := nodes.BindAt(container, nested, "x", "nested")

	var dup *diag.DuplicateDefinitionError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, 3, dup.First.Ref.Line)
	assert.Equal(t, 6, dup.Second.Ref.Line)

	v, ok := nodes.LookupLocal(container, "x")
	require.True(t, ok, "the binding lives in the owner's table")
	assert.Equal(t, "direct", v)
	_, ok = nodes.LookupLocal(nested.parent, "x")
	assert.False(t, ok)
}

func TestSubtreeScope(t *testing.T) {
	typedefs := New[string, string]("typedef", Subtree)
	b := newFakeBuild(typedefs)
	root := b.root(1)
	container := root.child(2)
	typedef := container.child(3)
	leaf := container.child(4)
	leafType := leaf.child(5)
	sibling := root.child(9)

	require.NoError(t, typedefs.Bind(typedef, "t", "in container"))

	v, ok := typedefs.Lookup(leafType, "t")
	require.True(t, ok, "descendants of the binding's parent see it")
	assert.Equal(t, "in container", v)

	_, ok = typedefs.Lookup(sibling, "t")
	assert.False(t, ok, "statements outside the subtree do not")

	_, ok = typedefs.LookupLocal(container, "t")
	assert.True(t, ok)
	_, ok = typedefs.LookupLocal(leaf, "t")
	assert.False(t, ok, "LookupLocal does not walk ancestors")

	require.NoError(t, typedefs.Bind(leaf.child(6), "t", "shadow"))
	v, _ = typedefs.Lookup(leafType, "t")
	assert.Equal(t, "shadow", v, "nearest scope wins")
}

func TestDerivedRecomputes(t *testing.T) {
	modules := New[string, int]("module", Global)
	latest := NewDerived("latest module", func(h Host, name string) (int, bool) {
		best, found := 0, false
		for _, e := range modules.Entries(h) {
			if len(e.Key) >= len(name) && e.Key[:len(name)] == name && e.Value > best {
				best, found = e.Value, true
			}
		}
		return best, found
	})
	b := newFakeBuild(modules, latest)
	root := b.root(1)

	_, ok := latest.Lookup(root, "a")
	assert.False(t, ok)

	require.NoError(t, modules.Bind(root, "a@1", 1))
	v, ok := latest.Lookup(root, "a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	require.NoError(t, modules.Bind(root, "a@2", 2))
	v, _ = latest.Lookup(root, "a")
	assert.Equal(t, 2, v, "derived view follows new bindings")

	assert.Nil(t, latest.Entries(root))
	assert.Panics(t, func() { _ = latest.Bind(root, "a", 3) })
}

func TestPhaseFiltering(t *testing.T) {
	ns := New[string, string]("identity", Global)
	b := newFakeBuild(ns)
	root := b.root(1)

	b.phase = phase.StatementDefinition
	require.NoError(t, ns.Bind(root, "id", "v"))
	assert.Len(t, ns.Entries(root), 1)

	b.phase = phase.SourceLinkage
	_, ok := ns.Lookup(root, "id")
	assert.False(t, ok, "entries bound in a later phase are invisible")
	assert.Empty(t, ns.Entries(root))

	b.phase = phase.EffectiveModel
	_, ok = ns.Lookup(root, "id")
	assert.True(t, ok)
}

func TestRegistrationIsEnforced(t *testing.T) {
	registered := New[string, int]("registered", Global)
	stray := New[string, int]("stray", Global)
	b := newFakeBuild(registered)
	root := b.root(1)

	assert.Panics(t, func() { _ = stray.Bind(root, "k", 1) })
	assert.Panics(t, func() { stray.Lookup(root, "k") })
	assert.Panics(t, func() { b.set.Register(New[int, int]("registered", Global)) })
	assert.NotPanics(t, func() { registered.Lookup(root, "k") })
}

func TestGenerationCountsBindings(t *testing.T) {
	ns := New[string, int]("n", Global)
	b := newFakeBuild(ns)
	root := b.root(1)

	start := b.set.Generation()
	require.NoError(t, ns.Bind(root, "a", 1))
	require.Error(t, ns.Bind(root, "a", 2))
	assert.Equal(t, start+1, b.set.Generation(), "failed binds do not count")
	assert.Equal(t, 1, root.Table(Global).Len())
}
