package spi

import (
	"fmt"

	"github.com/specialistvlad/stmtreactor/internal/namespace"
	"github.com/specialistvlad/stmtreactor/internal/phase"
)

// Prerequisite is one condition an inference action waits for. Satisfied
// must be free of side effects apart from caching a positive answer, and an
// answer, once true, must stay true.
type Prerequisite interface {
	Describe() string
	Satisfied() bool
}

// Action is an inference action under construction.
type Action interface {
	Require(p Prerequisite)
	// Apply sets the body. It must be called exactly once.
	Apply(fn func() error)
}

// Prereq is a prerequisite that yields a value once satisfied.
type Prereq[T any] struct {
	desc  string
	check func() (T, bool)
	value T
	done  bool
}

// Describe implements Prerequisite.
func (p *Prereq[T]) Describe() string { return p.desc }

// Satisfied implements Prerequisite.
func (p *Prereq[T]) Satisfied() bool {
	if p.done {
		return true
	}
	v, ok := p.check()
	if ok {
		p.value, p.done = v, true
	}
	return ok
}

// Get returns the value. It must only be called from the action body.
func (p *Prereq[T]) Get() T {
	if !p.done {
		panic(fmt.Sprintf("prerequisite %q read before it was satisfied", p.desc))
	}
	return p.value
}

// Require adds a prerequisite computed by check.
func Require[T any](a Action, description string, check func() (T, bool)) *Prereq[T] {
	p := &Prereq[T]{desc: description, check: check}
	a.Require(p)
	return p
}

// RequireBinding waits for key to be bound in ns, as seen from h.
func RequireBinding[K comparable, V any](a Action, h namespace.Host, ns *namespace.Namespace[K, V], key K) *Prereq[V] {
	return Require(a, fmt.Sprintf("%s %q", ns.Name(), fmt.Sprint(key)), func() (V, bool) {
		return ns.Lookup(h, key)
	})
}

// RequirePhase waits for c to complete phase p.
func RequirePhase(a Action, c Context, p phase.Phase) *Prereq[Context] {
	desc := fmt.Sprintf("%s %q in %s to complete %s", c.RawKeyword(), c.RawArgument(), c.Source(), p)
	return Require(a, desc, func() (Context, bool) {
		return c, c.Phase() >= p
	})
}
