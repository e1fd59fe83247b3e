package namespace

import (
	"fmt"

	"github.com/specialistvlad/stmtreactor/internal/diag"
	"github.com/specialistvlad/stmtreactor/internal/phase"
)

// Set is the registration table of a build: the namespaces that may be used,
// keyed by name. It also counts bindings so the scheduler can tell whether
// anything changed since it last looked.
type Set struct {
	scopes     map[string]Scope
	generation uint64
}

// NewSet creates a set with the given namespaces registered.
func NewSet(defs ...Definition) *Set {
	s := &Set{scopes: make(map[string]Scope)}
	s.Register(defs...)
	return s
}

// Register adds namespaces to the set. Registering two namespaces with the
// same name panics.
func (s *Set) Register(defs ...Definition) {
	for _, d := range defs {
		if _, exists := s.scopes[d.Name()]; exists {
			panic(fmt.Sprintf("namespace %q already registered", d.Name()))
		}
		s.scopes[d.Name()] = d.Scope()
	}
}

// Registered reports whether a namespace with the given name is registered.
func (s *Set) Registered(name string) bool {
	_, ok := s.scopes[name]
	return ok
}

// Generation increases with every successful Bind in any table of the set.
func (s *Set) Generation() uint64 {
	return s.generation
}

// NewTable creates an empty table belonging to the set.
func (s *Set) NewTable() *Table {
	return &Table{set: s}
}

func (s *Set) mustBeRegistered(name string, scope Scope) {
	registered, ok := s.scopes[name]
	if !ok {
		panic(fmt.Sprintf("namespace %q is not registered", name))
	}
	if registered != scope {
		panic(fmt.Sprintf("namespace %q registered as %s, used as %s", name, registered, scope))
	}
}

// Table holds the bindings of every namespace for one scope owner: the
// build, a source root, or a statement.
type Table struct {
	set     *Set
	buckets map[string]*bucket
}

type bucket struct {
	entries map[any]*record
	order   []any
}

type record struct {
	value any
	site  diag.Site
	phase phase.Phase
}

func (t *Table) bucket(name string, create bool) *bucket {
	if t == nil {
		return nil
	}
	if b, ok := t.buckets[name]; ok {
		return b
	}
	if !create {
		return nil
	}
	if t.buckets == nil {
		t.buckets = make(map[string]*bucket)
	}
	b := &bucket{entries: make(map[any]*record)}
	t.buckets[name] = b
	return b
}

func (t *Table) get(name string, key any) (*record, bool) {
	b := t.bucket(name, false)
	if b == nil {
		return nil, false
	}
	r, ok := b.entries[key]
	return r, ok
}

func (t *Table) put(name string, key any, r *record) {
	b := t.bucket(name, true)
	b.entries[key] = r
	b.order = append(b.order, key)
	t.set.generation++
}

// Len returns the number of bindings of all namespaces in the table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	n := 0
	for _, b := range t.buckets {
		n += len(b.order)
	}
	return n
}
