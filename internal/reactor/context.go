package reactor

import (
	"fmt"
	"log/slog"

	"github.com/specialistvlad/stmtreactor/internal/diag"
	"github.com/specialistvlad/stmtreactor/internal/namespace"
	"github.com/specialistvlad/stmtreactor/internal/phase"
	"github.com/specialistvlad/stmtreactor/internal/source"
	"github.com/specialistvlad/stmtreactor/internal/spi"
	"github.com/specialistvlad/stmtreactor/internal/stmtid"
)

const noParent = -1

// stmtCtx is one statement context in the build arena.
type stmtCtx struct {
	b        *Build
	id       int
	parent   int
	root     int
	children []int

	raw     stmtid.Keyword
	keyword stmtid.QName
	rawArg  string
	arg     any
	ref     source.Ref
	src     source.Identifier
	version source.Version
	// support is nil for a prefixed keyword until it is resolved at
	// StatementDefinition.
	support spi.Support

	module    stmtid.Module
	moduleSet bool
	state     any

	completed phase.Phase
	hooked    phase.Phase
	failed    bool

	// aliasOf is set on context-independent instantiations; everything
	// but the position is the target's.
	aliasOf  *stmtCtx
	// template is the statement this context was instantiated from.
	template *stmtCtx
	origin   *spi.Origin
	// copies counts the instantiations this context anchored, so the next
	// one is placed after them.
	copies   int

	actions []*action
	subtree *namespace.Table
}

var _ spi.Mutable = (*stmtCtx)(nil)

func (c *stmtCtx) Keyword() stmtid.QName      { return c.keyword }
func (c *stmtCtx) RawKeyword() stmtid.Keyword { return c.raw }
func (c *stmtCtx) RawArgument() string        { return c.rawArg }
func (c *stmtCtx) Argument() any              { return c.arg }
func (c *stmtCtx) Ref() source.Ref            { return c.ref }
func (c *stmtCtx) Source() source.Identifier  { return c.src }
func (c *stmtCtx) Version() source.Version    { return c.version }
func (c *stmtCtx) Phase() phase.Phase         { return c.completed }
func (c *stmtCtx) Support() spi.Support       { return c.support }
func (c *stmtCtx) Origin() *spi.Origin        { return c.origin }
func (c *stmtCtx) State() any                 { return c.state }

func (c *stmtCtx) Module() stmtid.Module {
	for cur := c; cur != nil; cur = cur.parentCtx() {
		if cur.moduleSet {
			return cur.module
		}
	}
	return stmtid.Module{}
}

func (c *stmtCtx) parentCtx() *stmtCtx {
	if c.parent == noParent {
		return nil
	}
	return c.b.arena[c.parent]
}

func (c *stmtCtx) Parent() spi.Context {
	if p := c.parentCtx(); p != nil {
		return p
	}
	return nil
}

func (c *stmtCtx) Root() spi.Context {
	return c.b.arena[c.root]
}

func (c *stmtCtx) Substatements() []spi.Context {
	out := make([]spi.Context, 0, len(c.children))
	for _, id := range c.children {
		if child := c.b.arena[id]; !child.failed {
			out = append(out, child)
		}
	}
	return out
}

func (c *stmtCtx) DeclaredSubstatements() []spi.Context {
	var out []spi.Context
	for _, id := range c.children {
		if child := c.b.arena[id]; child.origin == nil && !child.failed {
			out = append(out, child)
		}
	}
	return out
}

func (c *stmtCtx) tree() spi.TreeMembership {
	if c.support == nil {
		return spi.NotInTree
	}
	return c.support.Traits().Tree
}

func (c *stmtCtx) isRoot() bool { return c.parent == noParent }

// schemaName is the local name of the schema node. Schema-tree supports
// parse their argument to the node's identifier.
func (c *stmtCtx) schemaName() string {
	if name, ok := c.arg.(string); ok && name != "" {
		return name
	}
	return c.keyword.Local
}

func (c *stmtCtx) Path() stmtid.Path {
	if c.tree() == spi.NotInTree {
		return nil
	}
	p := c.parentCtx()
	if p == nil {
		return nil
	}
	var base stmtid.Path
	switch {
	case p.isRoot():
		base = stmtid.Path{}
	default:
		base = p.Path()
		if base == nil {
			return nil
		}
	}
	return base.Child(stmtid.NewQName(c.Module(), c.schemaName()))
}

func (c *stmtCtx) DataPath() stmtid.Path {
	if c.tree() != spi.SchemaAndData {
		return nil
	}
	for p := c.parentCtx(); p != nil; p = p.parentCtx() {
		if p.isRoot() {
			return stmtid.Path{stmtid.NewQName(c.Module(), c.schemaName())}
		}
		switch p.tree() {
		case spi.SchemaOnly:
			continue
		case spi.SchemaAndData:
			base := p.DataPath()
			if base == nil {
				return nil
			}
			return base.Child(stmtid.NewQName(c.Module(), c.schemaName()))
		default:
			return nil
		}
	}
	return nil
}

// namespace.Host

func (c *stmtCtx) Table(scope namespace.Scope) *namespace.Table {
	switch scope {
	case namespace.Global:
		return c.b.global
	case namespace.SourceLocal:
		// Keyed by source, so copies keep resolving prefixes the way their
		// template's document declares them.
		t, ok := c.b.locals[c.src]
		if !ok {
			t = c.b.set.NewTable()
			c.b.locals[c.src] = t
		}
		return t
	default:
		if c.subtree == nil {
			c.subtree = c.b.set.NewTable()
		}
		return c.subtree
	}
}

func (c *stmtCtx) ParentHost() namespace.Host {
	if p := c.parentCtx(); p != nil {
		return p
	}
	return nil
}

func (c *stmtCtx) Site() diag.Site {
	return diag.Site{Source: c.src, Ref: c.ref}
}

func (c *stmtCtx) CurrentPhase() phase.Phase {
	return c.b.current
}

// spi.Mutable

func (c *stmtCtx) SetModule(m stmtid.Module) {
	c.b.mustMutate("SetModule")
	c.module, c.moduleSet = m, true
	c.b.changed()
}

func (c *stmtCtx) SetState(v any) {
	c.b.mustMutate("SetState")
	c.state = v
	c.b.changed()
}

func (c *stmtCtx) NewAction(deadline phase.Phase, description string) spi.Action {
	c.b.mustMutate("NewAction")
	if deadline < c.b.current {
		panic(fmt.Sprintf("action %q registered in %s with past deadline %s", description, c.b.current, deadline))
	}
	a := &action{owner: c, deadline: deadline, description: description, registered: c.b.current}
	c.actions = append(c.actions, a)
	c.b.actions = append(c.b.actions, a)
	return a
}

func (c *stmtCtx) RequireSource(id source.Identifier) {
	c.b.mustMutate("RequireSource")
	switch c.b.current {
	case phase.None, phase.Init, phase.SourcePreLinkage:
	default:
		panic(fmt.Sprintf("source %s requested during %s; sources may only be requested before %s",
			id, c.b.current, phase.SourceLinkage))
	}
	c.b.requestSource(id, c)
}

func (c *stmtCtx) Logger() *slog.Logger {
	return c.b.logger.With("keyword", c.raw.String(), "argument", c.rawArg, "site", c.Site().String())
}

func (c *stmtCtx) String() string {
	return fmt.Sprintf("%s %q at %s", c.raw, c.rawArg, c.Site())
}

// hasPendingBy reports whether c owns an action due by p that has not run.
func (c *stmtCtx) hasPendingBy(p phase.Phase) bool {
	for _, a := range c.actions {
		if !a.done && a.deadline <= p {
			return true
		}
	}
	return false
}
