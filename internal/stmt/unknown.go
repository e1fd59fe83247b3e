package stmt

import (
	"fmt"

	"github.com/specialistvlad/stmtreactor/internal/model"
	"github.com/specialistvlad/stmtreactor/internal/phase"
	"github.com/specialistvlad/stmtreactor/internal/spi"
)

type skipped struct{}

// unknownSupport handles extension statements that have no dedicated
// support. The extension must be defined by the module its prefix names.
// In lenient mode an undefined extension is dropped from the effective
// model with a warning instead.
type unknownSupport struct {
	spi.BaseSupport
	lenient bool
}

func newUnknown(lenient bool) *unknownSupport {
	return &unknownSupport{
		BaseSupport: spi.BaseSupport{Policy: spi.DeclaredCopy},
		lenient:     lenient,
	}
}

func (s *unknownSupport) OnPhase(ctx spi.Mutable, p phase.Phase) error {
	switch {
	case p == phase.StatementDefinition && !s.lenient:
		a := ctx.NewAction(phase.FullDeclaration, fmt.Sprintf("resolve extension %q", ctx.RawKeyword()))
		spi.RequireBinding(a, ctx, Extension, ctx.Keyword())
		a.Apply(func() error { return nil })
	case p == phase.EffectiveModel && s.lenient:
		if _, ok := Extension.Lookup(ctx, ctx.Keyword()); !ok {
			ctx.Logger().Warn("Extension is not defined; statement skipped.", "extension", ctx.Keyword().String())
			ctx.SetState(skipped{})
		}
	}
	return nil
}

func (s *unknownSupport) BuildEffective(ctx spi.Context, decl *model.Declared, subs []*model.Effective) (*model.Effective, error) {
	if _, ok := ctx.State().(skipped); ok {
		return nil, nil
	}
	return spi.NewEffective(ctx, decl, subs), nil
}
