// Package nacm supports the extension statements of the NETCONF access
// control model, default-deny-write and default-deny-all.
package nacm

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/stmtreactor/internal/model"
	"github.com/specialistvlad/stmtreactor/internal/phase"
	"github.com/specialistvlad/stmtreactor/internal/registry"
	"github.com/specialistvlad/stmtreactor/internal/spi"
	"github.com/specialistvlad/stmtreactor/internal/stmtid"
)

// Namespace is the namespace of the ietf-netconf-acm module.
const Namespace = "urn:ietf:params:xml:ns:yang:ietf-netconf-acm"

// Access is the operation class a default-deny statement protects.
type Access string

const (
	DenyWrite Access = "write"
	DenyAll   Access = "all"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

var _ registry.Module = Module{}

// Register adds both statements to every language version. They are bound
// to any revision of ietf-netconf-acm.
func (Module) Register(b *registry.Builder) {
	b.RegisterCommon(newDefaultDeny("default-deny-write", DenyWrite))
	b.RegisterCommon(newDefaultDeny("default-deny-all", DenyAll))
}

var operations = map[string]bool{"rpc": true, "action": true, "notification": true, "input": true, "output": true}

type defaultDeny struct {
	spi.BaseSupport
	access Access
}

func newDefaultDeny(keyword string, access Access) *defaultDeny {
	return &defaultDeny{
		BaseSupport: spi.BaseSupport{
			Keyword: stmtid.NewQName(stmtid.NewModule(Namespace, ""), keyword),
			Policy:  spi.ContextIndependent,
			Parse:   parseEmpty,
		},
		access: access,
	}
}

func parseEmpty(_ spi.Context, raw string) (any, error) {
	if raw != "" {
		return nil, errors.New("statement takes no argument")
	}
	return nil, nil
}

func (s *defaultDeny) OnPhase(ctx spi.Mutable, p phase.Phase) error {
	if p != phase.StatementDefinition {
		return nil
	}
	parent := ctx.Parent()
	if parent == nil || parent.Support() == nil || parent.Support().Traits().Tree == spi.NotInTree {
		return fmt.Errorf("%s must be a substatement of a data definition", ctx.RawKeyword())
	}
	// Operations have no write access to protect.
	if s.access == DenyWrite && operations[parent.Keyword().Local] && parent.Keyword().IsBuiltin() {
		return fmt.Errorf("%s is not allowed in %s", ctx.RawKeyword(), parent.RawKeyword())
	}
	return nil
}

func (s *defaultDeny) BuildEffective(ctx spi.Context, decl *model.Declared, subs []*model.Effective) (*model.Effective, error) {
	e := spi.NewEffective(ctx, decl, subs)
	e.Value = s.access
	return e, nil
}

// DefaultDeny returns the strictest default-deny statement among the
// substatements of a schema node.
func DefaultDeny(e *model.Effective) (Access, bool) {
	var found Access
	for _, s := range e.Substatements {
		if s.Keyword.Module.Namespace != Namespace {
			continue
		}
		access, ok := s.Value.(Access)
		if !ok {
			continue
		}
		if access == DenyAll {
			return DenyAll, true
		}
		found = access
	}
	return found, found != ""
}
