package reactor

import (
	"fmt"

	"github.com/specialistvlad/stmtreactor/internal/diag"
	"github.com/specialistvlad/stmtreactor/internal/phase"
	"github.com/specialistvlad/stmtreactor/internal/spi"
)

// action is a parked inference action.
type action struct {
	owner       *stmtCtx
	deadline    phase.Phase
	description string
	registered  phase.Phase
	prereqs     []spi.Prerequisite
	apply       func() error
	done        bool
	// checked is the build epoch at which the prerequisites were last
	// evaluated; nothing can have changed while the epoch stays the same.
	checked   uint64
	evaluated bool
}

var _ spi.Action = (*action)(nil)

func (a *action) Require(p spi.Prerequisite) {
	if a.apply != nil {
		panic(fmt.Sprintf("action %q: prerequisite added after Apply", a.description))
	}
	a.prereqs = append(a.prereqs, p)
}

func (a *action) Apply(fn func() error) {
	if a.apply != nil {
		panic(fmt.Sprintf("action %q: Apply called twice", a.description))
	}
	if fn == nil {
		panic(fmt.Sprintf("action %q: nil body", a.description))
	}
	a.apply = fn
}

func (a *action) ready() bool {
	for _, p := range a.prereqs {
		if !p.Satisfied() {
			return false
		}
	}
	return true
}

func (a *action) unmet() []string {
	var out []string
	for _, p := range a.prereqs {
		if !p.Satisfied() {
			out = append(out, p.Describe())
		}
	}
	return out
}

func (a *action) obligation() diag.Obligation {
	return diag.Obligation{
		Description: a.description,
		Phase:       a.deadline,
		Unmet:       a.unmet(),
		Site:        a.owner.Site(),
	}
}

// runReadyActions applies every parked action whose prerequisites are all
// satisfied, in registration order. Actions registered by a running body are
// considered in the same pass.
func (b *Build) runReadyActions() (bool, error) {
	ran := false
	for i := 0; i < len(b.actions); i++ {
		a := b.actions[i]
		if a.done || a.owner.failed {
			continue
		}
		if a.apply == nil {
			panic(fmt.Sprintf("action %q registered by %s has no body", a.description, a.owner))
		}
		epoch := b.epoch()
		if a.evaluated && a.checked == epoch {
			continue
		}
		a.evaluated, a.checked = true, epoch
		if !a.ready() {
			continue
		}

		a.done = true
		b.mutating++
		err := a.apply()
		b.mutating--
		b.changed()
		b.r.metrics.ActionApplied()
		b.logger.Debug("Inference action applied.", "action", a.description, "owner", a.owner.String(), "phase", b.current.String())
		if err != nil {
			return ran, attribute(a.owner, err)
		}
		ran = true
	}
	b.compactActions()
	return ran, nil
}

// failOverdue turns every action due by p that is still parked into an
// unresolved obligation and excludes its owner. It reports whether anything
// was failed.
func (b *Build) failOverdue(p phase.Phase) bool {
	var overdue []*action
	for _, a := range b.actions {
		if !a.done && !a.owner.failed && a.deadline <= p {
			overdue = append(overdue, a)
		}
	}
	if len(overdue) == 0 {
		return false
	}
	// Record every obligation before excluding anything, so actions owned
	// inside an excluded subtree are still reported.
	for _, a := range overdue {
		ob := a.obligation()
		b.obligations = append(b.obligations, ob)
		b.r.metrics.ActionUnresolved()
		b.logger.Debug("Inference action unresolved.", "action", a.description, "unmet", ob.Unmet, "site", ob.Site.String())
	}
	for _, a := range overdue {
		a.done = true
		b.exclude(a.owner, "unresolved obligation: "+a.description)
	}
	b.compactActions()
	return true
}

func (b *Build) compactActions() {
	kept := b.actions[:0]
	for _, a := range b.actions {
		if !a.done && !a.owner.failed {
			kept = append(kept, a)
		}
	}
	for i := len(kept); i < len(b.actions); i++ {
		b.actions[i] = nil
	}
	b.actions = kept
}
