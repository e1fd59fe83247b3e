package reactor

import (
	"fmt"
	"slices"

	"github.com/specialistvlad/stmtreactor/internal/spi"
	"github.com/specialistvlad/stmtreactor/internal/stmtid"
)

// InstantiateAfter implements spi.Mutable. The copy is inserted into c's
// parent right after c and after every copy c anchored before, so repeated
// instantiations keep the template's order.
func (c *stmtCtx) InstantiateAfter(template spi.Context, kind spi.CopyType, target stmtid.Module) (spi.Context, error) {
	b := c.b
	b.mustMutate("InstantiateAfter")

	t, ok := template.(*stmtCtx)
	if !ok || t.b != b {
		panic(fmt.Sprintf("%s: template %v does not belong to this build", c, template))
	}
	if c.isRoot() {
		panic(fmt.Sprintf("%s: a source root cannot anchor an instantiation", c))
	}
	// The copy joins the build at the current phase with every earlier phase
	// complete, so the template must have completed them too.
	if required := b.current.Prev(); t.completed < required {
		panic(fmt.Sprintf("%s: template %s instantiated during %s before it completed %s (completed %s)",
			c, t, b.current, required, t.completed))
	}

	parent := c.parentCtx()
	origin := &spi.Origin{Template: t, Kind: kind, Anchor: c}
	cp, err := b.copyInto(parent, t, origin, target, true)
	if err != nil || cp == nil {
		return nil, err
	}

	at := slices.Index(parent.children, c.id) + 1 + c.copies
	parent.children = slices.Insert(parent.children, at, cp.id)
	c.copies++
	b.changed()
	return cp, nil
}

// copyInto instantiates t under parent according to t's copy policy. The
// result is not attached to parent's children; the caller places it.
func (b *Build) copyInto(parent, t *stmtCtx, origin *spi.Origin, target stmtid.Module, top bool) (*stmtCtx, error) {
	if t.aliasOf != nil {
		t = t.aliasOf
	}

	policy := spi.DeclaredCopy
	if t.support != nil {
		policy = t.support.CopyPolicy()
	}

	switch policy {
	case spi.IgnoreCopy:
		return nil, nil
	case spi.ContextIndependent:
		a := b.newInstance(parent, t, origin)
		a.aliasOf = t
		a.arg = t.arg
		a.state = t.state
		b.r.metrics.Instantiated(policy.String())
		return a, nil
	case spi.DeclaredCopy:
	default:
		panic(fmt.Sprintf("%s: copy policy %s cannot be instantiated", t, policy))
	}

	n := b.newInstance(parent, t, origin)
	if top {
		n.module, n.moduleSet = target, true
	}
	if n.support != nil {
		if err := b.bindSupport(n); err != nil {
			return nil, err
		}
	}
	b.r.metrics.Instantiated(policy.String())

	for _, id := range t.children {
		child := b.arena[id]
		if child.failed {
			continue
		}
		cc, err := b.copyInto(n, child, origin, target, false)
		if err != nil {
			return nil, err
		}
		if cc != nil {
			n.children = append(n.children, cc.id)
		}
	}
	return n, nil
}

// newInstance allocates a context that mirrors t at a new position. It
// starts with every phase before the current one complete, so its next hook
// is the current phase's.
func (b *Build) newInstance(parent, t *stmtCtx, origin *spi.Origin) *stmtCtx {
	n := &stmtCtx{
		b:         b,
		id:        len(b.arena),
		parent:    parent.id,
		root:      parent.root,
		raw:       t.raw,
		keyword:   t.keyword,
		rawArg:    t.rawArg,
		ref:       t.ref,
		src:       t.src,
		version:   parent.version,
		support:   t.support,
		template:  t,
		origin:    origin,
		completed: b.current.Prev(),
		hooked:    b.current.Prev(),
	}
	b.arena = append(b.arena, n)
	return n
}
