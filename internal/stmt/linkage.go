package stmt

import (
	"fmt"

	"github.com/specialistvlad/stmtreactor/internal/model"
	"github.com/specialistvlad/stmtreactor/internal/phase"
	"github.com/specialistvlad/stmtreactor/internal/source"
	"github.com/specialistvlad/stmtreactor/internal/spi"
	"github.com/specialistvlad/stmtreactor/internal/stmtid"
)

func childArg(ctx spi.Context, keyword string) (any, bool) {
	kw := stmtid.Builtin(keyword)
	for _, c := range ctx.DeclaredSubstatements() {
		if c.Keyword() == kw {
			return c.Argument(), true
		}
	}
	return nil, false
}

func childString(ctx spi.Context, keyword string) string {
	if v, ok := childArg(ctx, keyword); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func latestRevision(ctx spi.Context) string {
	var revs []string
	kw := stmtid.Builtin(kwRevision)
	for _, c := range ctx.DeclaredSubstatements() {
		if c.Keyword() == kw {
			revs = append(revs, c.RawArgument())
		}
	}
	return source.LatestRevision(revs)
}

// requested is the source an import or include names.
func requested(ctx spi.Context) source.Identifier {
	return source.NewIdentifier(ctx.RawArgument(), childString(ctx, kwRevisionDate))
}

// lookupRoot finds a module or submodule root by requested identifier.
func lookupRoot(ctx spi.Context, id source.Identifier, submodule bool) (spi.Context, bool) {
	exact, latest := ModuleByID, LatestModule
	if submodule {
		exact, latest = SubmoduleByID, LatestSubmodule
	}
	if id.Revision != "" {
		return exact.Lookup(ctx, id)
	}
	return latest.Lookup(ctx, id.Name)
}

// moduleSupport is the root of a module document. At pre-linkage it fixes
// the module's namespace and revision and makes the module and its own
// prefix known.
type moduleSupport struct {
	spi.BaseSupport
}

func newModule(r rules) *moduleSupport {
	return &moduleSupport{spi.BaseSupport{
		Keyword: stmtid.Builtin(kwModule),
		Rules:   r.module(),
		Policy:  spi.DeclaredCopy,
		Trait:   spi.Traits{Root: true, Publishes: true},
		Parse:   parseIdentifier,
	}}
}

func (s *moduleSupport) OnPhase(ctx spi.Mutable, p phase.Phase) error {
	if p != phase.SourcePreLinkage {
		return nil
	}
	mod := stmtid.NewModule(childString(ctx, kwNamespace), latestRevision(ctx))
	ctx.SetModule(mod)
	if err := ModuleByID.Bind(ctx, ctx.Source(), ctx); err != nil {
		return err
	}
	return spi.PrefixToModule.Bind(ctx, childString(ctx, kwPrefix), mod)
}

// submoduleSupport is the root of a submodule document. Its names are
// qualified by the module it belongs to, which is fetched if needed.
type submoduleSupport struct {
	spi.BaseSupport
}

func newSubmodule(r rules) *submoduleSupport {
	return &submoduleSupport{spi.BaseSupport{
		Keyword: stmtid.Builtin(kwSubmodule),
		Rules:   r.submodule(),
		Policy:  spi.DeclaredCopy,
		Trait:   spi.Traits{Root: true},
		Parse:   parseIdentifier,
	}}
}

func (s *submoduleSupport) OnPhase(ctx spi.Mutable, p phase.Phase) error {
	if p != phase.SourcePreLinkage {
		return nil
	}
	if err := SubmoduleByID.Bind(ctx, ctx.Source(), ctx); err != nil {
		return err
	}

	var belongsTo spi.Context
	for _, c := range ctx.DeclaredSubstatements() {
		if c.Keyword() == stmtid.Builtin(kwBelongsTo) {
			belongsTo = c
		}
	}
	if belongsTo == nil {
		// Reported by the cardinality check at full declaration.
		return nil
	}
	parentName := belongsTo.RawArgument()
	prefix := childString(belongsTo, kwPrefix)
	ctx.RequireSource(source.NewIdentifier(parentName, ""))

	a := ctx.NewAction(phase.SourceLinkage, fmt.Sprintf("link submodule %q to module %q", ctx.RawArgument(), parentName))
	parent := spi.Require(a, fmt.Sprintf("module %q to complete %s", parentName, phase.SourcePreLinkage), func() (spi.Context, bool) {
		m, ok := LatestModule.Lookup(ctx, parentName)
		return m, ok && m.Phase() >= phase.SourcePreLinkage
	})
	a.Apply(func() error {
		mod := parent.Get().Module()
		ctx.SetModule(mod)
		return spi.PrefixToModule.Bind(ctx, prefix, mod)
	})
	return nil
}

// belongsTo is resolved by its submodule root.
func newBelongsTo(rules) spi.Support {
	return &spi.BaseSupport{
		Keyword: stmtid.Builtin(kwBelongsTo),
		Rules:   spi.Rules().With(kwPrefix, spi.Mandatory),
		Policy:  spi.DeclaredCopy,
		Parse:   parseIdentifier,
	}
}

// importSupport requests the imported module and binds its prefix once the
// module has completed source linkage. Mutually importing modules therefore
// never link and are reported as unresolved.
type importSupport struct {
	spi.BaseSupport
}

func newImport(r rules) *importSupport {
	return &importSupport{spi.BaseSupport{
		Keyword: stmtid.Builtin(kwImport),
		Rules:   r.importStmt(),
		Policy:  spi.DeclaredCopy,
		Parse:   parseIdentifier,
	}}
}

func (s *importSupport) OnPhase(ctx spi.Mutable, p phase.Phase) error {
	if p != phase.SourcePreLinkage {
		return nil
	}
	id := requested(ctx)
	prefix := childString(ctx, kwPrefix)
	ctx.RequireSource(id)

	a := ctx.NewAction(phase.SourceLinkage, fmt.Sprintf("import module %q", id))
	target := spi.Require(a, fmt.Sprintf("module %q to complete %s", id, phase.SourceLinkage), func() (spi.Context, bool) {
		m, ok := lookupRoot(ctx, id, false)
		return m, ok && m.Phase() >= phase.SourceLinkage
	})
	a.Apply(func() error {
		m := target.Get()
		ctx.SetState(m.Source())
		return spi.PrefixToModule.Bind(ctx, prefix, m.Module())
	})
	return nil
}

func (s *importSupport) BuildEffective(ctx spi.Context, decl *model.Declared, subs []*model.Effective) (*model.Effective, error) {
	e := spi.NewEffective(ctx, decl, subs)
	e.Value = ctx.State()
	return e, nil
}

// includeSupport requests a submodule and, once the submodule is fully
// declared, restates its schema tree into the including module.
type includeSupport struct {
	spi.BaseSupport
}

func newInclude(r rules) *includeSupport {
	return &includeSupport{spi.BaseSupport{
		Keyword: stmtid.Builtin(kwInclude),
		Rules:   r.includeStmt(),
		Policy:  spi.DeclaredCopy,
		Parse:   parseIdentifier,
	}}
}

func (s *includeSupport) OnPhase(ctx spi.Mutable, p phase.Phase) error {
	if p != phase.SourcePreLinkage {
		return nil
	}
	id := requested(ctx)
	ctx.RequireSource(id)

	link := ctx.NewAction(phase.SourceLinkage, fmt.Sprintf("include submodule %q", id))
	sub := spi.Require(link, fmt.Sprintf("submodule %q", id), func() (spi.Context, bool) {
		return lookupRoot(ctx, id, true)
	})
	link.Apply(func() error {
		root := sub.Get()
		ctx.SetState(root.Source())
		if owner, want := belongsToName(root), moduleName(ctx); owner != want {
			return fmt.Errorf("submodule %q belongs to %q, not %q", id, owner, want)
		}

		restate := ctx.NewAction(phase.FullDeclaration, fmt.Sprintf("restate submodule %q", id))
		declared := spi.RequirePhase(restate, root, phase.FullDeclaration)
		restate.Apply(func() error {
			for _, child := range declared.Get().Substatements() {
				if !inTree(child) {
					continue
				}
				if _, err := ctx.InstantiateAfter(child, spi.CopyInclude, ctx.Module()); err != nil {
					return err
				}
			}
			return nil
		})
		return nil
	})
	return nil
}

func (s *includeSupport) BuildEffective(ctx spi.Context, decl *model.Declared, subs []*model.Effective) (*model.Effective, error) {
	e := spi.NewEffective(ctx, decl, subs)
	e.Value = ctx.State()
	return e, nil
}

func belongsToName(root spi.Context) string {
	for _, c := range root.DeclaredSubstatements() {
		if c.Keyword() == stmtid.Builtin(kwBelongsTo) {
			return c.RawArgument()
		}
	}
	return ""
}

// moduleName is the name of the module ctx's document is part of.
func moduleName(ctx spi.Context) string {
	root := ctx.Root()
	if root.Keyword() == stmtid.Builtin(kwSubmodule) {
		return belongsToName(root)
	}
	return root.RawArgument()
}

func inTree(c spi.Context) bool {
	s := c.Support()
	return s != nil && s.Traits().Tree != spi.NotInTree
}
