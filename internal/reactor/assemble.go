package reactor

import (
	"github.com/specialistvlad/stmtreactor/internal/model"
	"github.com/specialistvlad/stmtreactor/internal/phase"
	"github.com/specialistvlad/stmtreactor/internal/spi"
)

// assembler builds the declared and effective views bottom-up. Views are
// memoized per context so an aliased template is built once and shared.
type assembler struct {
	b         *Build
	target    phase.Phase
	declared  map[int]*model.Declared
	effective map[int]*model.Effective
	omitted   map[int]bool
}

func newAssembler(b *Build, target phase.Phase) *assembler {
	return &assembler{
		b:         b,
		target:    target,
		declared:  make(map[int]*model.Declared),
		effective: make(map[int]*model.Effective),
		omitted:   make(map[int]bool),
	}
}

func (a *assembler) assemble() (*model.Model, error) {
	mb := model.NewBuilder(a.target)
	for _, root := range a.b.roots {
		if !root.support.Traits().Publishes {
			continue
		}
		decl, err := a.declaredOf(root)
		if err != nil {
			return nil, err
		}
		mod := &model.Module{
			Identity: root.Module(),
			Name:     root.rawArg,
			Source:   root.src,
			Declared: decl,
		}
		if a.target >= phase.EffectiveModel {
			if mod.Effective, err = a.effectiveOf(root); err != nil {
				return nil, err
			}
		}
		if err := mb.AddModule(mod); err != nil {
			return nil, err
		}
	}
	return mb.Build(), nil
}

// declaredOf returns the declared view of c. Instantiated statements share
// the declared node of their template; authored statements list only their
// authored children.
func (a *assembler) declaredOf(c *stmtCtx) (*model.Declared, error) {
	if c.template != nil {
		return a.declaredOf(c.template)
	}
	if d, ok := a.declared[c.id]; ok {
		return d, nil
	}

	var subs []*model.Declared
	for _, id := range c.children {
		child := a.b.arena[id]
		if child.failed || child.origin != nil {
			continue
		}
		d, err := a.declaredOf(child)
		if err != nil {
			return nil, err
		}
		subs = append(subs, d)
	}
	d, err := c.support.BuildDeclared(c, subs)
	if err != nil {
		return nil, attribute(c, err)
	}
	a.declared[c.id] = d
	return d, nil
}

// effectiveOf returns the effective view of c, or nil when its support
// leaves it out. Aliases return their target's node.
func (a *assembler) effectiveOf(c *stmtCtx) (*model.Effective, error) {
	if c.aliasOf != nil {
		return a.effectiveOf(c.aliasOf)
	}
	if e, ok := a.effective[c.id]; ok {
		return e, nil
	}
	if a.omitted[c.id] {
		return nil, nil
	}
	if !a.featuresHold(c) {
		a.b.logger.Debug("Statement left out by if-feature.", "keyword", c.raw.String(), "argument", c.rawArg, "site", c.Site().String())
		a.omitted[c.id] = true
		return nil, nil
	}

	var subs []*model.Effective
	for _, id := range c.children {
		child := a.b.arena[id]
		if child.failed {
			continue
		}
		e, err := a.effectiveOf(child)
		if err != nil {
			return nil, err
		}
		if e != nil {
			subs = append(subs, e)
		}
	}

	decl, err := a.declaredOf(c)
	if err != nil {
		return nil, err
	}
	e, err := c.support.BuildEffective(c, decl, subs)
	if err != nil {
		return nil, attribute(c, err)
	}
	if e == nil {
		a.omitted[c.id] = true
		return nil, nil
	}
	a.effective[c.id] = e
	return e, nil
}

// featuresHold reports whether every feature gate among c's substatements
// is satisfied by the supported features.
func (a *assembler) featuresHold(c *stmtCtx) bool {
	if a.b.r.features == nil {
		return true
	}
	for _, id := range c.children {
		child := a.b.arena[id]
		if child.failed {
			continue
		}
		if child.aliasOf != nil {
			child = child.aliasOf
		}
		if gate, ok := child.state.(spi.FeatureGate); ok && !gate.Satisfied(a.b.r.supportsFeature) {
			return false
		}
	}
	return true
}
