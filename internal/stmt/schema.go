package stmt

import (
	"fmt"

	"github.com/specialistvlad/stmtreactor/internal/phase"
	"github.com/specialistvlad/stmtreactor/internal/spi"
	"github.com/specialistvlad/stmtreactor/internal/stmtid"
)

// schemaNode is a node of the schema tree. Its identifier is bound among its
// siblings at full declaration, after instantiations through uses and
// include have joined them, so restated and authored nodes collide the same
// way. Data-tree nodes are also bound in their data scope, which spans
// choice and case.
type schemaNode struct {
	spi.BaseSupport
}

func newSchemaNode(keyword string, tree spi.TreeMembership, subs spi.SubstatementRules) *schemaNode {
	return &schemaNode{spi.BaseSupport{
		Keyword: stmtid.Builtin(keyword),
		Rules:   subs,
		Policy:  spi.DeclaredCopy,
		Trait:   spi.Traits{Tree: tree},
		Parse:   parseIdentifier,
	}}
}

// newImplicitNode is a schema node whose identifier is its keyword.
func newImplicitNode(keyword string, subs spi.SubstatementRules) *schemaNode {
	s := newSchemaNode(keyword, spi.SchemaAndData, subs)
	s.Parse = func(_ spi.Context, raw string) (any, error) {
		if raw != "" {
			return nil, fmt.Errorf("%s takes no argument", keyword)
		}
		return keyword, nil
	}
	return s
}

func (s *schemaNode) OnPhase(ctx spi.Mutable, p phase.Phase) error {
	if p != phase.FullDeclaration {
		return nil
	}
	name := ctx.Argument().(string)
	if err := ChildSchema.Bind(ctx, name, ctx); err != nil {
		return err
	}
	if s.Trait.Tree != spi.SchemaAndData {
		return nil
	}
	if scope := dataScope(ctx); scope != nil {
		return DataNode.BindAt(scope, ctx, name, ctx)
	}
	return nil
}

// keySupport checks at the effective-model phase that every key names a
// leaf of its list, looking through choice and case.
type keySupport struct {
	spi.BaseSupport
}

func newKey(rules) *keySupport {
	return &keySupport{spi.BaseSupport{
		Keyword: stmtid.Builtin(kwKey),
		Policy:  spi.DeclaredCopy,
		Parse:   parseKey,
	}}
}

func (s *keySupport) OnPhase(ctx spi.Mutable, p phase.Phase) error {
	if p != phase.EffectiveModel {
		return nil
	}
	list := ctx.Parent()
	a := ctx.NewAction(phase.EffectiveModel, fmt.Sprintf("validate key %q of list %q", ctx.RawArgument(), list.RawArgument()))
	for _, name := range ctx.Argument().([]string) {
		_, local, _ := stmtid.ParseIdentifierRef(name)
		spi.Require(a, fmt.Sprintf("key leaf %q", local), func() (spi.Context, bool) {
			n, ok := DataChild.Lookup(list, local)
			return n, ok && n.Keyword() == stmtid.Builtin(kwLeaf)
		})
	}
	a.Apply(func() error { return nil })
	return nil
}

func (r rules) schemaSupports() []spi.Support {
	out := []spi.Support{
		newSchemaNode(kwContainer, spi.SchemaAndData, r.container()),
		newSchemaNode(kwLeaf, spi.SchemaAndData, r.leaf()),
		newSchemaNode(kwLeafList, spi.SchemaAndData, r.leafList()),
		newSchemaNode(kwList, spi.SchemaAndData, r.list()),
		newSchemaNode(kwChoice, spi.SchemaOnly, r.choice()),
		newSchemaNode(kwCase, spi.SchemaOnly, r.caseStmt()),
		newSchemaNode(kwAnyxml, spi.SchemaAndData, r.anyNode()),
		newSchemaNode(kwRpc, spi.SchemaAndData, r.operation()),
		newSchemaNode(kwNotification, spi.SchemaAndData, r.notification()),
		newImplicitNode(kwInput, r.inputOutput()),
		newImplicitNode(kwOutput, r.inputOutput()),
	}
	if r.is11() {
		out = append(out,
			newSchemaNode(kwAnydata, spi.SchemaAndData, r.anyNode()),
			newSchemaNode(kwAction, spi.SchemaAndData, r.operation()),
		)
	}
	return out
}
