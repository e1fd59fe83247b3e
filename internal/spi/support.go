package spi

import (
	"github.com/specialistvlad/stmtreactor/internal/model"
	"github.com/specialistvlad/stmtreactor/internal/phase"
	"github.com/specialistvlad/stmtreactor/internal/stmtid"
)

// Support implements one statement keyword.
type Support interface {
	Definition() stmtid.QName
	Traits() Traits
	CopyPolicy() CopyPolicy
	Substatements() SubstatementRules

	// ParseArgument turns the raw argument into its typed form. Failures are
	// reported as argument syntax errors.
	ParseArgument(ctx Context, raw string) (any, error)

	// OnAdded runs once, when the statement's context is created.
	OnAdded(ctx Mutable) error
	// OnPhase runs once per phase, before the statement's children.
	OnPhase(ctx Mutable, p phase.Phase) error

	BuildDeclared(ctx Context, subs []*model.Declared) (*model.Declared, error)
	// BuildEffective may return nil to leave the statement out of its
	// parent's effective substatements.
	BuildEffective(ctx Context, decl *model.Declared, subs []*model.Effective) (*model.Effective, error)
}

// FeatureGate is implemented by the state of statements that make their
// parent conditional on features. A statement with an unsatisfied gate among
// its substatements is left out of the effective model.
type FeatureGate interface {
	Satisfied(supported func(stmtid.QName) bool) bool
}

// BaseSupport implements Support with no-op hooks and the default
// factories. Concrete supports embed it and override what they need.
type BaseSupport struct {
	Keyword stmtid.QName
	Rules   SubstatementRules
	Policy  CopyPolicy
	Trait   Traits
	// Parse converts the raw argument. Nil keeps the raw string.
	Parse func(ctx Context, raw string) (any, error)
}

func (s *BaseSupport) Definition() stmtid.QName { return s.Keyword }
func (s *BaseSupport) Traits() Traits { return s.Trait }
func (s *BaseSupport) CopyPolicy() CopyPolicy { return s.Policy }

func (s *BaseSupport) Substatements() SubstatementRules {
	if s.Rules == nil {
		return SubstatementRules{}
	}
	return s.Rules
}

func (s *BaseSupport) ParseArgument(ctx Context, raw string) (any, error) {
	if s.Parse == nil {
		return raw, nil
	}
	return s.Parse(ctx, raw)
}

func (s *BaseSupport) OnAdded(Mutable) error { return nil }
func (s *BaseSupport) OnPhase(Mutable, phase.Phase) error { return nil }

func (s *BaseSupport) BuildDeclared(ctx Context, subs []*model.Declared) (*model.Declared, error) {
	return NewDeclared(ctx, subs), nil
}

func (s *BaseSupport) BuildEffective(ctx Context, decl *model.Declared, subs []*model.Effective) (*model.Effective, error) {
	return NewEffective(ctx, decl, subs), nil
}

// NewDeclared fills a Declared node from ctx.
func NewDeclared(ctx Context, subs []*model.Declared) *model.Declared {
	return &model.Declared{
		Keyword:       ctx.Keyword(),
		RawArgument:   ctx.RawArgument(),
		Argument:      ctx.Argument(),
		Source:        ctx.Source(),
		Ref:           ctx.Ref(),
		Substatements: subs,
	}
}

// NewEffective fills an Effective node from ctx.
func NewEffective(ctx Context, decl *model.Declared, subs []*model.Effective) *model.Effective {
	e := &model.Effective{
		Keyword:       ctx.Keyword(),
		Argument:      ctx.Argument(),
		Module:        ctx.Module(),
		Path:          ctx.Path(),
		DataPath:      ctx.DataPath(),
		Declared:      decl,
		Source:        ctx.Source(),
		Ref:           ctx.Ref(),
		Substatements: subs,
	}
	if o := ctx.Origin(); o != nil {
		e.Instantiation = &model.Instantiation{
			Kind:   o.Kind.String(),
			Source: o.Anchor.Source(),
			Ref:    o.Anchor.Ref(),
		}
	}
	return e
}
