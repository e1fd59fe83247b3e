package stmt

import (
	"fmt"

	"github.com/specialistvlad/stmtreactor/internal/model"
	"github.com/specialistvlad/stmtreactor/internal/namespace"
	"github.com/specialistvlad/stmtreactor/internal/phase"
	"github.com/specialistvlad/stmtreactor/internal/spi"
	"github.com/specialistvlad/stmtreactor/internal/stmtid"
)

var builtinTypes = map[string]bool{
	"binary": true, "bits": true, "boolean": true, "decimal64": true,
	"empty": true, "enumeration": true, "identityref": true,
	"instance-identifier": true, "int8": true, "int16": true, "int32": true,
	"int64": true, "leafref": true, "string": true, "uint8": true,
	"uint16": true, "uint32": true, "uint64": true, "union": true,
}

// ResolvedType is the effective value of a type statement.
type ResolvedType struct {
	// Builtin is the built-in type the chain of typedefs ends in.
	Builtin string
	// Typedefs lists the derived types from the nearest outwards.
	Typedefs []stmtid.QName
}

func (t *ResolvedType) String() string {
	if len(t.Typedefs) == 0 {
		return t.Builtin
	}
	return fmt.Sprintf("%s (%s)", t.Typedefs[0], t.Builtin)
}

// targetModule returns the module a reference points into.
func targetModule(ctx spi.Context, r Ref) (stmtid.Module, bool) {
	if r.Prefix == "" {
		return ctx.Module(), true
	}
	return spi.PrefixToModule.Lookup(ctx, r.Prefix)
}

// lookupDefinition resolves r by lexical scope when it points into ctx's own
// module, then among the top-level definitions of the target module.
func lookupDefinition(ctx spi.Context, lexical *namespace.Namespace[string, spi.Context], top *namespace.Namespace[stmtid.QName, spi.Context], r Ref) (spi.Context, bool) {
	mod, ok := targetModule(ctx, r)
	if !ok {
		return nil, false
	}
	if mod == ctx.Module() {
		if d, ok := lexical.Lookup(ctx, r.Name); ok {
			return d, true
		}
	}
	return top.Lookup(ctx, stmtid.NewQName(mod, r.Name))
}

// bindDefinition binds a typedef or grouping in its scope and, at the top
// level of a document, in the table of its module.
func bindDefinition(ctx spi.Mutable, lexical *namespace.Namespace[string, spi.Context], top *namespace.Namespace[stmtid.QName, spi.Context]) error {
	name := ctx.Argument().(string)
	if err := lexical.Bind(ctx, name, ctx); err != nil {
		return err
	}
	if parent := ctx.Parent(); parent != nil && parent.Parent() == nil {
		return top.Bind(ctx, stmtid.NewQName(ctx.Module(), name), ctx)
	}
	return nil
}

type typedefSupport struct {
	spi.BaseSupport
}

func newTypedef(r rules) *typedefSupport {
	return &typedefSupport{spi.BaseSupport{
		Keyword: stmtid.Builtin(kwTypedef),
		Rules:   r.typedef(),
		Policy:  spi.ContextIndependent,
		Parse:   parseIdentifier,
	}}
}

func (s *typedefSupport) OnPhase(ctx spi.Mutable, p phase.Phase) error {
	if p != phase.StatementDefinition {
		return nil
	}
	if builtinTypes[ctx.Argument().(string)] {
		return fmt.Errorf("typedef %q shadows a built-in type", ctx.RawArgument())
	}
	return bindDefinition(ctx, Typedef, ModuleTypedef)
}

// typeSupport resolves a type reference to its built-in base. A reference to
// a typedef resolves once the typedef's own type has, so circular typedefs
// stay unresolved.
type typeSupport struct {
	spi.BaseSupport
}

func newType(r rules) *typeSupport {
	return &typeSupport{spi.BaseSupport{
		Keyword: stmtid.Builtin(kwType),
		Rules:   r.typeStmt(),
		Policy:  spi.ContextIndependent,
		Parse:   parseRef,
	}}
}

func (s *typeSupport) OnPhase(ctx spi.Mutable, p phase.Phase) error {
	if p != phase.StatementDefinition {
		return nil
	}
	ref := ctx.Argument().(Ref)
	if ref.Prefix == "" && builtinTypes[ref.Name] {
		ctx.SetState(&ResolvedType{Builtin: ref.Name})
		return nil
	}

	a := ctx.NewAction(phase.FullDeclaration, fmt.Sprintf("resolve type %q", ref))
	typedef := spi.Require(a, fmt.Sprintf("typedef %q", ref), func() (spi.Context, bool) {
		td, ok := lookupDefinition(ctx, Typedef, ModuleTypedef, ref)
		if !ok {
			return nil, false
		}
		inner := innerType(td)
		return td, inner != nil && inner.State() != nil
	})
	a.Apply(func() error {
		td := typedef.Get()
		base := innerType(td).State().(*ResolvedType)
		chain := append([]stmtid.QName{stmtid.NewQName(td.Module(), td.RawArgument())}, base.Typedefs...)
		ctx.SetState(&ResolvedType{Builtin: base.Builtin, Typedefs: chain})
		return nil
	})
	return nil
}

func (s *typeSupport) BuildEffective(ctx spi.Context, decl *model.Declared, subs []*model.Effective) (*model.Effective, error) {
	e := spi.NewEffective(ctx, decl, subs)
	e.Value = ctx.State()
	return e, nil
}

func innerType(typedef spi.Context) spi.Context {
	for _, c := range typedef.Substatements() {
		if c.Keyword() == stmtid.Builtin(kwType) {
			return c
		}
	}
	return nil
}

type groupingSupport struct {
	spi.BaseSupport
}

func newGrouping(r rules) *groupingSupport {
	return &groupingSupport{spi.BaseSupport{
		Keyword: stmtid.Builtin(kwGrouping),
		Rules:   r.grouping(),
		Policy:  spi.DeclaredCopy,
		Parse:   parseIdentifier,
	}}
}

func (s *groupingSupport) OnPhase(ctx spi.Mutable, p phase.Phase) error {
	if p != phase.StatementDefinition {
		return nil
	}
	return bindDefinition(ctx, Grouping, ModuleGrouping)
}

// usesSupport instantiates a grouping's schema tree at its own position. It
// waits for the grouping to be fully declared, so uses nested in the
// grouping are expanded first and a grouping that uses itself never is.
type usesSupport struct {
	spi.BaseSupport
}

func newUses(r rules) *usesSupport {
	return &usesSupport{spi.BaseSupport{
		Keyword: stmtid.Builtin(kwUses),
		Rules:   r.uses(),
		Policy:  spi.IgnoreCopy,
		Parse:   parseRef,
	}}
}

func (s *usesSupport) OnPhase(ctx spi.Mutable, p phase.Phase) error {
	if p != phase.FullDeclaration {
		return nil
	}
	ref := ctx.Argument().(Ref)
	a := ctx.NewAction(phase.FullDeclaration, fmt.Sprintf("expand uses %q", ref))
	grouping := spi.Require(a, fmt.Sprintf("grouping %q to complete %s", ref, phase.FullDeclaration), func() (spi.Context, bool) {
		g, ok := lookupDefinition(ctx, Grouping, ModuleGrouping, ref)
		return g, ok && g.Phase() >= phase.FullDeclaration
	})
	a.Apply(func() error {
		g := grouping.Get()
		for _, child := range g.Substatements() {
			if !inTree(child) {
				continue
			}
			if _, err := ctx.InstantiateAfter(child, spi.CopyUses, ctx.Module()); err != nil {
				return err
			}
		}
		ctx.Logger().Debug("Grouping instantiated.", "grouping", g.Site().String())
		return nil
	})
	return nil
}

// uses leaves no effective statement; its instantiations stand in its place.
func (s *usesSupport) BuildEffective(spi.Context, *model.Declared, []*model.Effective) (*model.Effective, error) {
	return nil, nil
}

type identitySupport struct {
	spi.BaseSupport
}

func newIdentity(r rules) *identitySupport {
	return &identitySupport{spi.BaseSupport{
		Keyword: stmtid.Builtin(kwIdentity),
		Rules:   r.identity(),
		Policy:  spi.ContextIndependent,
		Parse:   parseIdentifier,
	}}
}

func (s *identitySupport) OnPhase(ctx spi.Mutable, p phase.Phase) error {
	if p != phase.StatementDefinition {
		return nil
	}
	return Identity.Bind(ctx, stmtid.NewQName(ctx.Module(), ctx.RawArgument()), ctx)
}

// baseSupport resolves an identity reference of an identity or an
// identityref type.
type baseSupport struct {
	spi.BaseSupport
}

func newBase(rules) *baseSupport {
	return &baseSupport{spi.BaseSupport{
		Keyword: stmtid.Builtin(kwBase),
		Policy:  spi.ContextIndependent,
		Parse:   parseRef,
	}}
}

func (s *baseSupport) OnPhase(ctx spi.Mutable, p phase.Phase) error {
	if p != phase.StatementDefinition {
		return nil
	}
	ref := ctx.Argument().(Ref)
	a := ctx.NewAction(phase.FullDeclaration, fmt.Sprintf("resolve base identity %q", ref))
	identity := spi.Require(a, fmt.Sprintf("identity %q", ref), func() (spi.Context, bool) {
		mod, ok := targetModule(ctx, ref)
		if !ok {
			return nil, false
		}
		return Identity.Lookup(ctx, stmtid.NewQName(mod, ref.Name))
	})
	a.Apply(func() error {
		id := identity.Get()
		ctx.SetState(stmtid.NewQName(id.Module(), id.RawArgument()))
		return nil
	})
	return nil
}

func (s *baseSupport) BuildEffective(ctx spi.Context, decl *model.Declared, subs []*model.Effective) (*model.Effective, error) {
	e := spi.NewEffective(ctx, decl, subs)
	e.Value = ctx.State()
	return e, nil
}

type extensionSupport struct {
	spi.BaseSupport
}

func newExtension(r rules) *extensionSupport {
	return &extensionSupport{spi.BaseSupport{
		Keyword: stmtid.Builtin(kwExtension),
		Rules:   r.extension(),
		Policy:  spi.ContextIndependent,
		Parse:   parseIdentifier,
	}}
}

func (s *extensionSupport) OnPhase(ctx spi.Mutable, p phase.Phase) error {
	if p != phase.StatementDefinition {
		return nil
	}
	return Extension.Bind(ctx, stmtid.NewQName(ctx.Module(), ctx.RawArgument()), ctx)
}
