package openconfig

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/stmtreactor/internal/model"
	"github.com/specialistvlad/stmtreactor/internal/phase"
	"github.com/specialistvlad/stmtreactor/internal/spi"
	"github.com/specialistvlad/stmtreactor/internal/stmtid"
)

// hashedValue marks a leaf or leaf-list whose value is stored hashed, such
// as a password.
type hashedValue struct {
	spi.BaseSupport
}

func newHashedValue() *hashedValue {
	return &hashedValue{spi.BaseSupport{
		Keyword: keyword("openconfig-hashed-value"),
		Policy:  spi.ContextIndependent,
		Parse: func(_ spi.Context, raw string) (any, error) {
			if raw != "" {
				return nil, errors.New("statement takes no argument")
			}
			return nil, nil
		},
	}}
}

func (s *hashedValue) OnPhase(ctx spi.Mutable, p phase.Phase) error {
	if p != phase.StatementDefinition {
		return nil
	}
	parent := ctx.Parent()
	if parent == nil {
		return nil
	}
	switch parent.Keyword() {
	case stmtid.Builtin("leaf"), stmtid.Builtin("leaf-list"), stmtid.Builtin("typedef"):
		return nil
	}
	return fmt.Errorf("%s is not allowed in %s", ctx.RawKeyword(), parent.RawKeyword())
}

func (s *hashedValue) BuildEffective(ctx spi.Context, decl *model.Declared, subs []*model.Effective) (*model.Effective, error) {
	e := spi.NewEffective(ctx, decl, subs)
	e.Value = true
	return e, nil
}

// IsHashed reports whether a schema node carries openconfig-hashed-value.
func IsHashed(e *model.Effective) bool {
	for _, s := range e.Substatements {
		if s.Keyword.Module.Namespace == Namespace && s.Keyword.Local == "openconfig-hashed-value" {
			return true
		}
	}
	return false
}
