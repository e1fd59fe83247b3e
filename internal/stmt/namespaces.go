package stmt

import (
	"github.com/specialistvlad/stmtreactor/internal/namespace"
	"github.com/specialistvlad/stmtreactor/internal/source"
	"github.com/specialistvlad/stmtreactor/internal/spi"
	"github.com/specialistvlad/stmtreactor/internal/stmtid"
)

var (
	// ModuleByID maps a module's source identifier to its root statement.
	ModuleByID = namespace.New[source.Identifier, spi.Context]("module", namespace.Global)
	// SubmoduleByID maps a submodule's source identifier to its root
	// statement.
	SubmoduleByID = namespace.New[source.Identifier, spi.Context]("submodule", namespace.Global)

	// LatestModule resolves a module name to its latest revision in the build.
	LatestModule = namespace.NewDerived("latest-module", latestOf(ModuleByID))
	// LatestSubmodule resolves a submodule name to its latest revision.
	LatestSubmodule = namespace.NewDerived("latest-submodule", latestOf(SubmoduleByID))

	// Typedef and Grouping hold lexically scoped definitions; a definition
	// is visible to its siblings and their descendants.
	Typedef  = namespace.New[string, spi.Context]("typedef", namespace.Subtree)
	Grouping = namespace.New[string, spi.Context]("grouping", namespace.Subtree)
	// ModuleTypedef and ModuleGrouping hold the top-level definitions of
	// every module, including those contributed by its submodules, for
	// references through a prefix.
	ModuleTypedef  = namespace.New[stmtid.QName, spi.Context]("module-typedef", namespace.Global)
	ModuleGrouping = namespace.New[stmtid.QName, spi.Context]("module-grouping", namespace.Global)

	Identity  = namespace.New[stmtid.QName, spi.Context]("identity", namespace.Global)
	Extension = namespace.New[stmtid.QName, spi.Context]("extension", namespace.Global)
	Feature   = namespace.New[stmtid.QName, spi.Context]("feature", namespace.Global)

	// ChildSchema binds the schema-tree children of a statement by
	// identifier.
	ChildSchema = namespace.New[string, spi.Context]("schema-node", namespace.Subtree)
	// DataNode binds data-tree nodes in the scope of their nearest data-tree
	// ancestor, so a node under choice or case collides with a sibling of
	// the choice.
	DataNode = namespace.New[string, spi.Context]("data-node", namespace.Subtree)
	// DataChild resolves a data-tree child by identifier, looking through
	// choice and case.
	DataChild = namespace.NewDerived("data-child", dataChild)
)

// Namespaces lists every namespace the built-in supports use.
func Namespaces() []namespace.Definition {
	return []namespace.Definition{
		ModuleByID, SubmoduleByID, LatestModule, LatestSubmodule,
		Typedef, Grouping, ModuleTypedef, ModuleGrouping,
		Identity, Extension, Feature, ChildSchema, DataNode, DataChild,
	}
}

func latestOf(ns *namespace.Namespace[source.Identifier, spi.Context]) func(namespace.Host, string) (spi.Context, bool) {
	return func(h namespace.Host, name string) (spi.Context, bool) {
		var best spi.Context
		var bestID source.Identifier
		for _, e := range ns.Entries(h) {
			if e.Key.Name != name {
				continue
			}
			if best == nil || bestID.Revision < e.Key.Revision {
				best, bestID = e.Value, e.Key
			}
		}
		return best, best != nil
	}
}

func dataChild(h namespace.Host, name string) (spi.Context, bool) {
	c, ok := h.(spi.Context)
	if !ok {
		return nil, false
	}
	for _, child := range c.Substatements() {
		s := child.Support()
		if s == nil {
			continue
		}
		switch s.Traits().Tree {
		case spi.SchemaAndData:
			if schemaName(child) == name {
				return child, true
			}
		case spi.SchemaOnly:
			if found, ok := dataChild(child, name); ok {
				return found, true
			}
		}
	}
	return nil, false
}

// dataScope returns the statement whose data-tree children include c: the
// nearest ancestor that is not a choice or case.
func dataScope(c spi.Context) spi.Context {
	for p := c.Parent(); p != nil; p = p.Parent() {
		if s := p.Support(); s == nil || s.Traits().Tree != spi.SchemaOnly {
			return p
		}
	}
	return nil
}

func schemaName(c spi.Context) string {
	if name, ok := c.Argument().(string); ok {
		return name
	}
	return c.Keyword().Local
}
