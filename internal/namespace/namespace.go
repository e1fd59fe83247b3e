package namespace

import (
	"fmt"

	"github.com/specialistvlad/stmtreactor/internal/diag"
	"github.com/specialistvlad/stmtreactor/internal/phase"
)

// Scope is the visibility of a namespace's bindings.
type Scope int

const (
	Global Scope = iota
	SourceLocal
	Subtree
	Derived
)

func (s Scope) String() string {
	switch s {
	case Global:
		return "global"
	case SourceLocal:
		return "source-local"
	case Subtree:
		return "subtree"
	case Derived:
		return "derived"
	default:
		return fmt.Sprintf("scope(%d)", int(s))
	}
}

// Host is the view of a build-time statement the store needs: the tables
// for each stored scope, the parent statement, the site used for duplicate
// diagnostics and the phase the build is currently in.
type Host interface {
	Table(scope Scope) *Table
	// ParentHost returns nil for a source root.
	ParentHost() Host
	Site() diag.Site
	CurrentPhase() phase.Phase
}

// Definition is the untyped identity of a namespace, used for registration.
type Definition interface {
	Name() string
	Scope() Scope
}

// Namespace is a typed symbol table definition.
type Namespace[K comparable, V any] struct {
	name   string
	scope  Scope
	derive func(h Host, key K) (V, bool)
}

// New defines a stored namespace.
func New[K comparable, V any](name string, scope Scope) *Namespace[K, V] {
	if scope == Derived {
		panic(fmt.Sprintf("namespace %q: derived namespaces must be created with NewDerived", name))
	}
	return &Namespace[K, V]{name: name, scope: scope}
}

// NewDerived defines a namespace whose lookups are computed by derive.
func NewDerived[K comparable, V any](name string, derive func(h Host, key K) (V, bool)) *Namespace[K, V] {
	if derive == nil {
		panic(fmt.Sprintf("namespace %q: derive function is required", name))
	}
	return &Namespace[K, V]{name: name, scope: Derived, derive: derive}
}

// Name returns the namespace name used in diagnostics.
func (n *Namespace[K, V]) Name() string { return n.name }

// Scope returns the namespace scope.
func (n *Namespace[K, V]) Scope() Scope { return n.scope }

// Entry is one binding, as returned by Entries.
type Entry[K comparable, V any] struct {
	Key   K
	Value V
	Site  diag.Site
	Phase phase.Phase
}

// Bind stores value under key in the table that h's scope selects. Binding an
// already bound key fails with a *diag.DuplicateDefinitionError.
func (n *Namespace[K, V]) Bind(h Host, key K, value V) error {
	n.mustBeRegistered(h)
	if n.scope == Derived {
		panic(fmt.Sprintf("namespace %q: cannot bind into a derived namespace", n.name))
	}

	return n.bindIn(n.ownerTable(h), h, key, value)
}

// BindAt stores value under key in owner's own subtree table, attributing
// the binding to h. Subtree namespaces whose scope is an ancestor other than
// the parent, such as the nearest data-tree node, bind this way.
func (n *Namespace[K, V]) BindAt(owner, h Host, key K, value V) error {
	n.mustBeRegistered(h)
	if n.scope != Subtree {
		panic(fmt.Sprintf("namespace %q: BindAt needs a subtree namespace, not %s", n.name, n.scope))
	}
	return n.bindIn(owner.Table(Subtree), h, key, value)
}

func (n *Namespace[K, V]) bindIn(t *Table, h Host, key K, value V) error {
	if prev, exists := t.get(n.name, key); exists {
		return &diag.DuplicateDefinitionError{
			Namespace: n.name,
			Key:       fmt.Sprint(key),
			First:     prev.site,
			Second:    h.Site(),
		}
	}
	t.put(n.name, key, &record{value: value, site: h.Site(), phase: h.CurrentPhase()})
	return nil
}

// Lookup resolves key as seen from h. Subtree namespaces search h and then
// each ancestor, nearest first.
func (n *Namespace[K, V]) Lookup(h Host, key K) (V, bool) {
	n.mustBeRegistered(h)
	switch n.scope {
	case Derived:
		return n.derive(h, key)
	case Subtree:
		for cur := h; cur != nil; cur = cur.ParentHost() {
			if v, ok := n.lookupIn(cur.Table(Subtree), h, key); ok {
				return v, true
			}
		}
		var zero V
		return zero, false
	default:
		return n.lookupIn(h.Table(n.scope), h, key)
	}
}

// LookupLocal resolves key in h's own table only. For scopes other than
// Subtree it is equivalent to Lookup.
func (n *Namespace[K, V]) LookupLocal(h Host, key K) (V, bool) {
	n.mustBeRegistered(h)
	if n.scope != Subtree {
		return n.Lookup(h, key)
	}
	return n.lookupIn(h.Table(Subtree), h, key)
}

// Entries lists the bindings visible in h's own table for this namespace, in
// binding order. Derived namespaces have no entries.
func (n *Namespace[K, V]) Entries(h Host) []Entry[K, V] {
	n.mustBeRegistered(h)
	if n.scope == Derived {
		return nil
	}
	t := h.Table(n.scope)
	b := t.bucket(n.name, false)
	if b == nil {
		return nil
	}
	out := make([]Entry[K, V], 0, len(b.order))
	for _, k := range b.order {
		r := b.entries[k]
		if r.phase > h.CurrentPhase() {
			continue
		}
		out = append(out, Entry[K, V]{Key: k.(K), Value: r.value.(V), Site: r.site, Phase: r.phase})
	}
	return out
}

func (n *Namespace[K, V]) lookupIn(t *Table, h Host, key K) (V, bool) {
	var zero V
	r, ok := t.get(n.name, key)
	if !ok || r.phase > h.CurrentPhase() {
		return zero, false
	}
	return r.value.(V), true
}

func (n *Namespace[K, V]) ownerTable(h Host) *Table {
	if n.scope == Subtree {
		if parent := h.ParentHost(); parent != nil {
			return parent.Table(Subtree)
		}
	}
	return h.Table(n.scope)
}

func (n *Namespace[K, V]) mustBeRegistered(h Host) {
	h.Table(Global).set.mustBeRegistered(n.name, n.scope)
}
