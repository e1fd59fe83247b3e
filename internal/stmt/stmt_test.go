package stmt_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/stmtreactor/internal/diag"
	"github.com/specialistvlad/stmtreactor/internal/model"
	"github.com/specialistvlad/stmtreactor/internal/phase"
	"github.com/specialistvlad/stmtreactor/internal/reactor"
	"github.com/specialistvlad/stmtreactor/internal/registry"
	"github.com/specialistvlad/stmtreactor/internal/source"
	"github.com/specialistvlad/stmtreactor/internal/stmt"
	"github.com/specialistvlad/stmtreactor/internal/stmtid"
	"github.com/specialistvlad/stmtreactor/internal/testutil"
)

var (
	modA = stmtid.NewModule("urn:test:a", "")
	modB = stmtid.NewModule("urn:test:b", "")
	S    = testutil.S
)

type buildResult struct {
	model *model.Model
	err   error
	logs  *testutil.SafeBuffer
}

func build(t *testing.T, reg *registry.Registry, opts []reactor.Option, roots ...*source.Statement) buildResult {
	t.Helper()
	logs := &testutil.SafeBuffer{}
	m, err := reactor.New(reg, opts...).Build(testutil.NewContext(logs), testutil.Trees(t, roots...)...)
	return buildResult{model: m, err: err, logs: logs}
}

func mustBuild(t *testing.T, roots ...*source.Statement) *model.Model {
	t.Helper()
	r := build(t, testutil.Registry(t), nil, roots...)
	require.NoError(t, r.err)
	require.NotNil(t, r.model)
	return r.model
}

func schemaNode(t *testing.T, m *model.Model, mod stmtid.Module, locals ...string) *model.Effective {
	t.Helper()
	path := stmtid.PathIn(mod, locals...)
	e, ok := m.FindSchema(path)
	require.True(t, ok, "no schema node at %s; have %v", path, m.SchemaPaths())
	return e
}

func typeOf(t *testing.T, e *model.Effective) *model.Effective {
	t.Helper()
	typ, ok := e.Find(stmtid.Builtin("type"))
	require.True(t, ok, "%s has no type", e.ArgumentString())
	return typ
}

func TestLeafIsIndexedByPath(t *testing.T) {
	m := mustBuild(t, testutil.Module("a", "a", testutil.Leaf("x", "string")))

	leaf := schemaNode(t, m, modA, "x")
	assert.Equal(t, stmtid.Builtin("leaf"), leaf.Keyword)
	assert.Equal(t, "x", leaf.ArgumentString())
	assert.Equal(t, modA, leaf.Module)
	assert.Nil(t, leaf.Instantiation)
	assert.Equal(t, &stmt.ResolvedType{Builtin: "string"}, typeOf(t, leaf).Value)

	data, ok := m.FindData(stmtid.PathIn(modA, "x"))
	require.True(t, ok)
	assert.Same(t, leaf, data)

	mod, ok := m.ModuleByName("a")
	require.True(t, ok)
	assert.Equal(t, modA, mod.Identity)
	require.NotNil(t, mod.Declared)
	require.NotNil(t, mod.Effective)
}

func TestMissingImportIsUnresolved(t *testing.T) {
	r := build(t, testutil.Registry(t), nil,
		testutil.Module("a", "a", testutil.Import("b", "b"), testutil.Leaf("x", "string")))

	require.Nil(t, r.model)
	u := testutil.RequireUnresolved(t, r.err)
	require.Len(t, u.Obligations, 1)
	ob := u.Obligations[0]
	assert.Equal(t, `import module "b"`, ob.Description)
	assert.Equal(t, phase.SourceLinkage, ob.Phase)
	assert.Equal(t, []string{`module "b" to complete source-linkage`}, ob.Unmet)
	assert.Equal(t, source.NewIdentifier("a", ""), ob.Site.Source)
	assert.Equal(t, []source.Identifier{source.NewIdentifier("a", "")}, u.Sources())
	assert.False(t, diag.IsFatal(r.err))
}

func TestImportedTypedefAndIdentity(t *testing.T) {
	b := testutil.Module("b", "b",
		S("typedef", "name", S("type", "string")),
		S("identity", "base-id"),
	)
	a := testutil.Module("a", "pa",
		testutil.Import("b", "pb"),
		S("identity", "derived", S("base", "pb:base-id")),
		testutil.Leaf("x", "pb:name"),
	)
	m := mustBuild(t, a, b)

	assert.Equal(t, &stmt.ResolvedType{Builtin: "string", Typedefs: []stmtid.QName{stmtid.NewQName(modB, "name")}},
		typeOf(t, schemaNode(t, m, modA, "x")).Value)

	modCtx, ok := m.Module(modA)
	require.True(t, ok)
	id, ok := modCtx.Effective.Find(stmtid.Builtin("identity"))
	require.True(t, ok)
	base, ok := id.Find(stmtid.Builtin("base"))
	require.True(t, ok)
	assert.Equal(t, stmtid.NewQName(modB, "base-id"), base.Value)

	imp, ok := modCtx.Effective.Find(stmtid.Builtin("import"))
	require.True(t, ok)
	assert.Equal(t, source.NewIdentifier("b", ""), imp.Value)
}

func TestImportPicksRevision(t *testing.T) {
	older := testutil.Module("b", "b", S("revision", "2020-01-01"), testutil.Leaf("old", "string"))
	newer := testutil.Module("b", "b", S("revision", "2021-06-30"), testutil.Leaf("new", "string"))

	testCases := []struct {
		name   string
		imp    *source.Statement
		expect source.Identifier
	}{
		{
			name:   "latest without revision-date",
			imp:    testutil.Import("b", "b"),
			expect: source.NewIdentifier("b", "2021-06-30"),
		},
		{
			name:   "exact revision-date",
			imp:    S("import", "b", S("prefix", "b"), S("revision-date", "2020-01-01")),
			expect: source.NewIdentifier("b", "2020-01-01"),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := mustBuild(t, testutil.Module("a", "a", tc.imp), older, newer)

			a, ok := m.Module(modA)
			require.True(t, ok)
			imp, ok := a.Effective.Find(stmtid.Builtin("import"))
			require.True(t, ok)
			assert.Equal(t, tc.expect, imp.Value)

			latest, ok := m.ModuleByName("b")
			require.True(t, ok)
			assert.Equal(t, "2021-06-30", latest.Source.Revision)
			assert.Len(t, m.Modules(), 3)
		})
	}
}

func TestImportCycleIsUnresolved(t *testing.T) {
	r := build(t, testutil.Registry(t), nil,
		testutil.Module("a", "a", testutil.Import("b", "b")),
		testutil.Module("b", "b", testutil.Import("a", "a")),
	)

	u := testutil.RequireUnresolved(t, r.err)
	require.Len(t, u.Obligations, 2)
	assert.Equal(t, `import module "b"`, u.Obligations[0].Description)
	assert.Equal(t, `import module "a"`, u.Obligations[1].Description)
	assert.Len(t, u.Excluded, 2)
}

func TestGroupingInstantiation(t *testing.T) {
	m := mustBuild(t, testutil.Module("a", "a",
		S("grouping", "g", testutil.Leaf("x", "string", S("description", "shared"))),
		S("container", "c1", S("uses", "g")),
		S("container", "c2", S("uses", "g")),
	))

	x1 := schemaNode(t, m, modA, "c1", "x")
	x2 := schemaNode(t, m, modA, "c2", "x")

	// Context-independent substatements are shared between positions.
	assert.Same(t, typeOf(t, x1), typeOf(t, x2))
	d1, _ := x1.Find(stmtid.Builtin("description"))
	d2, _ := x2.Find(stmtid.Builtin("description"))
	require.NotNil(t, d1)
	assert.Same(t, d1, d2)

	// Schema nodes are recomputed for each position.
	assert.NotSame(t, x1, x2)
	assert.Same(t, x1.Declared, x2.Declared)
	assert.Equal(t, modA, x1.Module)
	require.NotNil(t, x1.Instantiation)
	assert.Equal(t, "uses", x1.Instantiation.Kind)

	// uses leaves no effective statement of its own.
	c1 := schemaNode(t, m, modA, "c1")
	_, hasUses := c1.Find(stmtid.Builtin("uses"))
	assert.False(t, hasUses)
	require.Len(t, c1.Substatements, 1)
	assert.Same(t, x1, c1.Substatements[0])
}

func TestNestedGroupings(t *testing.T) {
	m := mustBuild(t, testutil.Module("a", "a",
		S("container", "c", S("uses", "outer")),
		S("grouping", "outer", S("uses", "inner"), testutil.Leaf("x", "string")),
		S("grouping", "inner", testutil.Leaf("y", "uint8")),
	))

	c := schemaNode(t, m, modA, "c")
	var names []string
	for _, s := range c.Substatements {
		names = append(names, s.ArgumentString())
	}
	assert.Equal(t, []string{"y", "x"}, names)
	assert.Equal(t, &stmt.ResolvedType{Builtin: "uint8"}, typeOf(t, schemaNode(t, m, modA, "c", "y")).Value)
}

func TestRecursiveGroupingIsUnresolved(t *testing.T) {
	r := build(t, testutil.Registry(t), nil, testutil.Module("a", "a",
		S("grouping", "g", testutil.Leaf("x", "string"), S("container", "more", S("uses", "g"))),
		S("container", "c", S("uses", "g")),
	))

	u := testutil.RequireUnresolved(t, r.err)
	require.NotEmpty(t, u.Obligations)
	for _, ob := range u.Obligations {
		assert.Equal(t, `expand uses "g"`, ob.Description)
		assert.Equal(t, phase.FullDeclaration, ob.Phase)
	}
}

func TestTypedefs(t *testing.T) {
	t.Run("chain", func(t *testing.T) {
		m := mustBuild(t, testutil.Module("a", "a",
			S("typedef", "t1", S("type", "t2")),
			S("typedef", "t2", S("type", "uint8")),
			testutil.Leaf("x", "t1"),
		))
		assert.Equal(t, &stmt.ResolvedType{
			Builtin:  "uint8",
			Typedefs: []stmtid.QName{stmtid.NewQName(modA, "t1"), stmtid.NewQName(modA, "t2")},
		}, typeOf(t, schemaNode(t, m, modA, "x")).Value)
	})

	t.Run("scoped", func(t *testing.T) {
		m := mustBuild(t, testutil.Module("a", "a",
			S("container", "c",
				S("typedef", "local", S("type", "boolean")),
				testutil.Leaf("x", "local"),
			),
		))
		rt := typeOf(t, schemaNode(t, m, modA, "c", "x")).Value.(*stmt.ResolvedType)
		assert.Equal(t, "boolean", rt.Builtin)
		assert.Equal(t, "{urn:test:a}local (boolean)", rt.String())
	})

	t.Run("cycle", func(t *testing.T) {
		r := build(t, testutil.Registry(t), nil, testutil.Module("a", "a",
			S("typedef", "t1", S("type", "t2")),
			S("typedef", "t2", S("type", "t1")),
			testutil.Leaf("x", "t1"),
		))
		u := testutil.RequireUnresolved(t, r.err)
		require.Len(t, u.Obligations, 3)
		assert.Equal(t, `resolve type "t2"`, u.Obligations[0].Description)
	})

	t.Run("shadowing a built-in type", func(t *testing.T) {
		r := build(t, testutil.Registry(t), nil, testutil.Module("a", "a",
			S("typedef", "string", S("type", "uint8")),
		))
		var stmtErr *diag.StatementError
		require.ErrorAs(t, r.err, &stmtErr)
		assert.Contains(t, stmtErr.Error(), "shadows a built-in type")
	})
}

func TestSubmoduleIsRestated(t *testing.T) {
	m := mustBuild(t,
		testutil.Module("a", "a", S("include", "a-sub"), testutil.Leaf("x", "string")),
		testutil.Submodule("a-sub", "a", "a",
			S("typedef", "shared", S("type", "int32")),
			testutil.Leaf("y", "shared"),
		),
	)

	y := schemaNode(t, m, modA, "y")
	require.NotNil(t, y.Instantiation)
	assert.Equal(t, "include", y.Instantiation.Kind)
	assert.Equal(t, source.NewIdentifier("a-sub", ""), y.Source)
	assert.Equal(t, modA, y.Module)
	assert.Equal(t, "int32", typeOf(t, y).Value.(*stmt.ResolvedType).Builtin)
	schemaNode(t, m, modA, "x")

	// Submodules are not published on their own.
	assert.Len(t, m.Modules(), 1)
}

func TestSubmoduleOfAnotherModule(t *testing.T) {
	r := build(t, testutil.Registry(t), nil,
		testutil.Module("a", "a", S("include", "b-sub")),
		testutil.Module("b", "b"),
		testutil.Submodule("b-sub", "b", "b"),
	)
	var stmtErr *diag.StatementError
	require.ErrorAs(t, r.err, &stmtErr)
	assert.Contains(t, stmtErr.Error(), `belongs to "b", not "a"`)
}

func TestChoiceIsTransparentInData(t *testing.T) {
	m := mustBuild(t, testutil.Module("a", "a",
		S("container", "c",
			S("choice", "ch",
				S("case", "k", testutil.Leaf("x", "string")),
			),
		),
	))

	byData, ok := m.FindData(stmtid.PathIn(modA, "c", "x"))
	require.True(t, ok, "data paths: %v", m.DataPaths())
	assert.Same(t, schemaNode(t, m, modA, "c", "ch", "k", "x"), byData)

	_, ok = m.FindData(stmtid.PathIn(modA, "c", "ch"))
	assert.False(t, ok)
}

func TestListKeys(t *testing.T) {
	testCases := []struct {
		name  string
		list  *source.Statement
		unmet string
	}{
		{
			name: "key is a leaf",
			list: S("list", "l", S("key", "id"), testutil.Leaf("id", "string"), testutil.Leaf("v", "string")),
		},
		{
			name: "key inside a choice",
			list: S("list", "l", S("key", "id"), S("choice", "ch", testutil.Leaf("id", "string"))),
		},
		{
			name: "key from a grouping",
			list: S("list", "l", S("key", "id"), S("uses", "ids")),
		},
		{
			name:  "key missing",
			list:  S("list", "l", S("key", "missing"), testutil.Leaf("id", "string")),
			unmet: `key leaf "missing"`,
		},
		{
			name:  "key is a container",
			list:  S("list", "l", S("key", "id"), S("container", "id")),
			unmet: `key leaf "id"`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := build(t, testutil.Registry(t), nil, testutil.Module("a", "a",
				S("grouping", "ids", testutil.Leaf("id", "string")),
				tc.list,
			))
			if tc.unmet == "" {
				require.NoError(t, r.err)
				schemaNode(t, r.model, modA, "l")
				return
			}
			u := testutil.RequireUnresolved(t, r.err)
			require.Len(t, u.Obligations, 1)
			assert.Equal(t, phase.EffectiveModel, u.Obligations[0].Phase)
			assert.Equal(t, []string{tc.unmet}, u.Obligations[0].Unmet)
		})
	}
}

func TestExtensions(t *testing.T) {
	t.Run("defined in the same module", func(t *testing.T) {
		m := mustBuild(t, testutil.Module("a", "a",
			S("extension", "note", S("argument", "text")),
			S("a:note", "hello"),
		))
		a, _ := m.Module(modA)
		e, ok := a.Effective.Find(stmtid.NewQName(modA, "note"))
		require.True(t, ok)
		assert.Equal(t, "hello", e.ArgumentString())
	})

	t.Run("defined in an imported module", func(t *testing.T) {
		m := mustBuild(t,
			testutil.Module("a", "a", testutil.Import("b", "ext"), testutil.Leaf("x", "string", S("ext:note", "on a leaf"))),
			testutil.Module("b", "b", S("extension", "note")),
		)
		_, ok := schemaNode(t, m, modA, "x").Find(stmtid.NewQName(modB, "note"))
		assert.True(t, ok)
	})

	t.Run("undefined", func(t *testing.T) {
		r := build(t, testutil.Registry(t), nil, testutil.Module("a", "a", S("a:missing", "x")))
		u := testutil.RequireUnresolved(t, r.err)
		require.Len(t, u.Obligations, 1)
		assert.Equal(t, `resolve extension "a:missing"`, u.Obligations[0].Description)
	})

	t.Run("undefined in lenient mode", func(t *testing.T) {
		r := build(t, testutil.LenientRegistry(t), nil, testutil.Module("a", "a",
			S("a:missing", "x"),
			testutil.Leaf("x", "string"),
		))
		require.NoError(t, r.err)
		a, _ := r.model.Module(modA)
		_, ok := a.Effective.Find(stmtid.NewQName(modA, "missing"))
		assert.False(t, ok)
		assert.Contains(t, r.logs.String(), "Extension is not defined; statement skipped.")
	})

	t.Run("unbound prefix", func(t *testing.T) {
		r := build(t, testutil.Registry(t), nil, testutil.Module("a", "a", S("zz:thing", "x")))
		u := testutil.RequireUnresolved(t, r.err)
		require.Len(t, u.Obligations, 1)
		assert.Equal(t, `resolve keyword "zz:thing"`, u.Obligations[0].Description)
		require.Len(t, u.Excluded, 1)
		assert.Equal(t, "zz:thing", u.Excluded[0].Keyword)
	})
}

func TestVersionSpecificStatements(t *testing.T) {
	v1 := build(t, testutil.Registry(t), nil, testutil.Module("a", "a", S("anydata", "blob")))
	var undef *diag.UndefinedStatementError
	require.ErrorAs(t, v1.err, &undef)
	assert.Equal(t, "anydata", undef.Keyword)

	m := mustBuild(t, testutil.Module("a", "a", S("yang-version", "1.1"), S("anydata", "blob")))
	schemaNode(t, m, modA, "blob")

	imp := S("import", "b", S("prefix", "b"), S("description", "only in 1.1"))
	v1Import := build(t, testutil.Registry(t), nil, testutil.Module("a", "a", imp), testutil.Module("b", "b"))
	var sub *diag.InvalidSubstatementError
	require.ErrorAs(t, v1Import.err, &sub)
	assert.Equal(t, "description", sub.Substatement)
}

func TestIfFeatureResolves(t *testing.T) {
	m := mustBuild(t, testutil.Module("a", "a",
		S("yang-version", "1.1"),
		S("feature", "fast"),
		S("feature", "safe"),
		S("container", "c", S("if-feature", "fast and not (safe or fast)")),
	))

	c := schemaNode(t, m, modA, "c")
	gate, ok := c.Find(stmtid.Builtin("if-feature"))
	require.True(t, ok)
	cond, ok := gate.Value.(*stmt.FeatureCondition)
	require.True(t, ok, "if-feature value is %T", gate.Value)
	assert.Equal(t, "fast and not (safe or fast)", cond.String())
	assert.Equal(t, map[stmt.Ref]stmtid.QName{
		{Name: "fast"}: stmtid.NewQName(modA, "fast"),
		{Name: "safe"}: stmtid.NewQName(modA, "safe"),
	}, cond.Features)

	a, _ := m.Module(modA)
	feature, ok := a.Effective.Find(stmtid.Builtin("feature"))
	require.True(t, ok)
	assert.Equal(t, stmtid.NewQName(modA, "fast"), feature.Value)
}

func TestIfFeatureUndefined(t *testing.T) {
	r := build(t, testutil.Registry(t), nil, testutil.Module("a", "a",
		S("container", "c", S("if-feature", "no-such-feature")),
	))

	u := testutil.RequireUnresolved(t, r.err)
	require.Len(t, u.Obligations, 1)
	assert.Equal(t, `resolve if-feature "no-such-feature"`, u.Obligations[0].Description)
	assert.Equal(t, []string{`feature "no-such-feature"`}, u.Obligations[0].Unmet)
}

func TestIfFeatureSyntax(t *testing.T) {
	testCases := []struct {
		name        string
		version     string
		expr        string
		errContains string
	}{
		{name: "expression in version 1", version: "1", expr: "fast and safe", errContains: "must name a single feature in language version 1"},
		{name: "dangling operator", version: "1.1", expr: "fast and", errContains: "unexpected end of expression"},
		{name: "unbalanced parenthesis", version: "1.1", expr: "(fast or safe", errContains: "missing closing parenthesis"},
		{name: "operator first", version: "1.1", expr: "or fast", errContains: `unexpected "or"`},
		{name: "trailing token", version: "1.1", expr: "fast safe", errContains: `unexpected "safe"`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := build(t, testutil.Registry(t), nil, testutil.Module("a", "a",
				S("yang-version", tc.version),
				S("feature", "fast"),
				S("feature", "safe"),
				S("container", "c", S("if-feature", tc.expr)),
			))
			var syntax *diag.ArgumentSyntaxError
			require.ErrorAs(t, r.err, &syntax)
			assert.Equal(t, "if-feature", syntax.Keyword)
			assert.ErrorContains(t, r.err, tc.errContains)
		})
	}
}

func TestSupportedFeaturesPrune(t *testing.T) {
	lib := testutil.Module("b", "b", S("feature", "remote"))
	root := func() *source.Statement {
		return testutil.Module("a", "a",
			S("yang-version", "1.1"),
			testutil.Import("b", "p"),
			S("feature", "fast"),
			S("feature", "safe"),
			S("grouping", "g", testutil.Leaf("q", "string", S("if-feature", "safe"))),
			S("container", "c",
				testutil.Leaf("plain", "string"),
				testutil.Leaf("fast", "string", S("if-feature", "fast")),
				testutil.Leaf("safe", "string", S("if-feature", "safe")),
				testutil.Leaf("either", "string", S("if-feature", "fast or safe")),
				testutil.Leaf("unsafe", "string", S("if-feature", "not fast")),
				testutil.Leaf("remote", "string", S("if-feature", "p:remote")),
				S("uses", "g"),
			),
		)
	}
	present := func(m *model.Model) []string {
		var out []string
		for _, name := range []string{"plain", "fast", "safe", "either", "unsafe", "remote", "q"} {
			if _, ok := m.FindSchema(stmtid.PathIn(modA, "c", name)); ok {
				out = append(out, name)
			}
		}
		return out
	}

	all := build(t, testutil.Registry(t), nil, root(), lib)
	require.NoError(t, all.err)
	assert.Equal(t, []string{"plain", "fast", "safe", "either", "unsafe", "remote", "q"}, present(all.model),
		"every feature is supported by default")

	opts := []reactor.Option{reactor.WithSupportedFeatures(
		stmtid.NewQName(modA, "fast"),
		stmtid.NewQName(stmtid.NewModule("urn:test:b", "2020-01-01"), "remote"),
	)}
	some := build(t, testutil.Registry(t), opts, root(), lib)
	require.NoError(t, some.err)
	assert.Equal(t, []string{"plain", "fast", "either", "remote"}, present(some.model))
	_, ok := some.model.FindData(stmtid.PathIn(modA, "c", "safe"))
	assert.False(t, ok, "pruned nodes leave the data tree too")
	assert.Contains(t, some.logs.String(), "Statement left out by if-feature.")

	none := build(t, testutil.Registry(t), []reactor.Option{reactor.WithSupportedFeatures()}, root(), lib)
	require.NoError(t, none.err)
	assert.Equal(t, []string{"plain", "unsafe"}, present(none.model))
}

func TestFatalDiagnostics(t *testing.T) {
	testCases := []struct {
		name   string
		roots  []*source.Statement
		target any
		check  func(t *testing.T, err error)
	}{
		{
			name:   "missing mandatory type",
			roots:  []*source.Statement{testutil.Module("a", "a", S("leaf", "x"))},
			target: new(*diag.InvalidSubstatementError),
			check: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "leaf requires at least 1 type, found 0")
			},
		},
		{
			name:   "two types",
			roots:  []*source.Statement{testutil.Module("a", "a", testutil.Leaf("x", "string", S("type", "int8")))},
			target: new(*diag.InvalidSubstatementError),
			check: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "leaf allows at most 1 type, found 2")
			},
		},
		{
			name:   "invalid boolean",
			roots:  []*source.Statement{testutil.Module("a", "a", testutil.Leaf("x", "string", S("config", "yes")))},
			target: new(*diag.ArgumentSyntaxError),
			check: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), `"yes" is not a boolean`)
			},
		},
		{
			name:   "invalid identifier",
			roots:  []*source.Statement{testutil.Module("a", "a", testutil.Leaf("1x", "string"))},
			target: new(*diag.ArgumentSyntaxError),
		},
		{
			name:   "unknown built-in keyword",
			roots:  []*source.Statement{testutil.Module("a", "a", S("gizmo", "x"))},
			target: new(*diag.UndefinedStatementError),
		},
		{
			name:   "unexpected substatement",
			roots:  []*source.Statement{testutil.Module("a", "a", testutil.Leaf("x", "string", S("key", "x")))},
			target: new(*diag.InvalidSubstatementError),
			check: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "key is not allowed in leaf")
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := build(t, testutil.Registry(t), nil, tc.roots...)
			require.Error(t, r.err)
			assert.True(t, diag.IsFatal(r.err), "expected a fatal diagnostic, got %v", r.err)
			require.ErrorAs(t, r.err, tc.target)
			if tc.check != nil {
				tc.check(t, r.err)
			}
		})
	}
}

func TestDuplicateTopLevelName(t *testing.T) {
	r := build(t, testutil.Registry(t), nil, testutil.Module("a", "a",
		testutil.Leaf("x", "string"),
		testutil.Leaf("x", "int8"),
	))

	var dup *diag.DuplicateDefinitionError
	require.ErrorAs(t, r.err, &dup)
	assert.Equal(t, "schema-node", dup.Namespace)
	assert.Equal(t, "x", dup.Key)
	id := source.NewIdentifier("a", "")
	assert.Equal(t, diag.Site{Source: id, Ref: source.Ref{File: "a.yang", Line: 4, Column: 1}}, dup.First)
	assert.Equal(t, diag.Site{Source: id, Ref: source.Ref{File: "a.yang", Line: 6, Column: 1}}, dup.Second)
}

func TestNameCollidesThroughChoice(t *testing.T) {
	r := build(t, testutil.Registry(t), nil, testutil.Module("a", "a",
		S("container", "c",
			testutil.Leaf("x", "string"),
			S("choice", "ch", S("case", "k", testutil.Leaf("x", "int8"))),
		),
	))

	var dup *diag.DuplicateDefinitionError
	require.ErrorAs(t, r.err, &dup)
	assert.Equal(t, "data-node", dup.Namespace)
	assert.Equal(t, "x", dup.Key)
	assert.Equal(t, 5, dup.First.Ref.Line)
	assert.Equal(t, 9, dup.Second.Ref.Line)
}

func TestNestedContainerOpensDataScope(t *testing.T) {
	r := build(t, testutil.Registry(t), nil, testutil.Module("a", "a",
		S("container", "c",
			S("choice", "ch",
				S("case", "k", testutil.Leaf("x", "int8")),
				S("case", "l", testutil.Leaf("y", "int8")),
			),
			S("container", "d", testutil.Leaf("x", "string")),
		),
	))
	require.NoError(t, r.err)

	x, ok := r.model.FindData(stmtid.PathIn(modA, "c", "x"))
	require.True(t, ok)
	assert.Equal(t, stmtid.PathIn(modA, "c", "ch", "k", "x"), x.Path)
	_, ok = r.model.FindData(stmtid.PathIn(modA, "c", "d", "x"))
	assert.True(t, ok, "a nested container opens its own data scope")
}

func TestInstantiatedNameCollides(t *testing.T) {
	r := build(t, testutil.Registry(t), nil, testutil.Module("a", "a",
		S("grouping", "g", testutil.Leaf("x", "string")),
		S("container", "c", testutil.Leaf("x", "string"), S("uses", "g")),
	))

	var dup *diag.DuplicateDefinitionError
	require.ErrorAs(t, r.err, &dup)
	assert.Equal(t, "x", dup.Key)
}

func TestDeclaredOnlyBuild(t *testing.T) {
	r := build(t, testutil.Registry(t), []reactor.Option{reactor.WithTargetPhase(phase.FullDeclaration)},
		testutil.Module("a", "a", S("grouping", "g", testutil.Leaf("x", "string")), S("container", "c", S("uses", "g"))))
	require.NoError(t, r.err)

	assert.Equal(t, phase.FullDeclaration, r.model.Phase())
	assert.Empty(t, r.model.SchemaPaths())
	a, ok := r.model.Module(modA)
	require.True(t, ok)
	assert.Nil(t, a.Effective)
	require.NotNil(t, a.Declared)

	// The declared view holds what was written; c has its uses, not x.
	var c *model.Declared
	for _, d := range a.Declared.Substatements {
		if d.Keyword == stmtid.Builtin("container") {
			c = d
		}
	}
	require.NotNil(t, c)
	require.Len(t, c.Substatements, 1)
	assert.Equal(t, stmtid.Builtin("uses"), c.Substatements[0].Keyword)
	assert.Equal(t, stmt.Ref{Name: "g"}, c.Substatements[0].Argument)
}

func TestLazyFetch(t *testing.T) {
	lib := source.NewMapProvider(
		testutil.Tree(t, testutil.Module("b", "b", testutil.Import("c", "c"), testutil.Leaf("y", "string"))),
		testutil.Tree(t, testutil.Module("c", "c", S("typedef", "ct", S("type", "string")))),
	)

	r := build(t, testutil.Registry(t), []reactor.Option{reactor.WithProvider(lib)},
		testutil.Module("a", "a", testutil.Import("b", "b"), testutil.Leaf("x", "string")))
	require.NoError(t, r.err)
	assert.Len(t, r.model.Modules(), 3)
	schemaNode(t, r.model, modB, "y")
	assert.Contains(t, r.logs.String(), "Source fetched.")
}

func TestLazyFetchFailure(t *testing.T) {
	broken := source.ProviderFunc(func(_ context.Context, id source.Identifier) (*source.Tree, error) {
		return nil, errors.New("disk on fire")
	})

	r := build(t, testutil.Registry(t), []reactor.Option{reactor.WithProvider(broken)},
		testutil.Module("a", "a", testutil.Import("b", "b")))

	var fetchErr *diag.FetchError
	require.ErrorAs(t, r.err, &fetchErr)
	assert.Equal(t, source.NewIdentifier("b", ""), fetchErr.Requested)
	assert.Equal(t, source.NewIdentifier("a", ""), fetchErr.Requester.Source)
	assert.ErrorContains(t, r.err, "disk on fire")
}
