// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the Model, the published result of a build, and the
// Builder the reactor uses to assemble it.
//
// Why index by path string?
//
// Schema paths are slices of QNames and cannot be map keys. Their String form
// is canonical (Clark notation per step), so it serves as the key while the
// original Path is kept alongside for ordered listing.
package model

import (
	"fmt"
	"sort"

	"github.com/specialistvlad/stmtreactor/internal/phase"
	"github.com/specialistvlad/stmtreactor/internal/source"
	"github.com/specialistvlad/stmtreactor/internal/stmtid"
)

// Module is one published module.
type Module struct {
	Identity stmtid.Module
	Name     string
	Source   source.Identifier
	Declared *Declared
	// Effective is nil in a declared-only model.
	Effective *Effective
}

// Model is the finished, immutable result of a build.
type Model struct {
	phase   phase.Phase
	modules []*Module
	byID    map[stmtid.Module]*Module
	schema  map[string]*Effective
	data    map[string]*Effective
	paths   []stmtid.Path
	dpaths  []stmtid.Path
}

// Phase returns the phase the model was built to: FullDeclaration for a
// declared-only model, EffectiveModel otherwise.
func (m *Model) Phase() phase.Phase { return m.phase }

// Modules returns every module, ordered by name and revision.
func (m *Model) Modules() []*Module {
	return append([]*Module(nil), m.modules...)
}

// Module returns the module with the given identity.
func (m *Model) Module(id stmtid.Module) (*Module, bool) {
	mod, ok := m.byID[id]
	return mod, ok
}

// ModuleByName returns the latest revision of the named module.
func (m *Model) ModuleByName(name string) (*Module, bool) {
	var best *Module
	for _, mod := range m.modules {
		if mod.Name == name && (best == nil || best.Source.Revision < mod.Source.Revision) {
			best = mod
		}
	}
	return best, best != nil
}

// FindSchema returns the effective schema node at an absolute path.
func (m *Model) FindSchema(path stmtid.Path) (*Effective, bool) {
	e, ok := m.schema[path.String()]
	return e, ok
}

// FindData returns the effective data node at an absolute data path, which
// omits choice and case steps.
func (m *Model) FindData(path stmtid.Path) (*Effective, bool) {
	e, ok := m.data[path.String()]
	return e, ok
}

// SchemaPaths lists every indexed schema path in sorted order.
func (m *Model) SchemaPaths() []stmtid.Path {
	return append([]stmtid.Path(nil), m.paths...)
}

// DataPaths lists every indexed data path in sorted order.
func (m *Model) DataPaths() []stmtid.Path {
	return append([]stmtid.Path(nil), m.dpaths...)
}

// Builder assembles a Model. It is not safe for concurrent use.
type Builder struct {
	m *Model
}

// NewBuilder starts a model for the given phase.
func NewBuilder(p phase.Phase) *Builder {
	return &Builder{m: &Model{
		phase:  p,
		byID:   make(map[stmtid.Module]*Module),
		schema: make(map[string]*Effective),
		data:   make(map[string]*Effective),
	}}
}

// AddModule publishes a module and indexes its effective tree.
func (b *Builder) AddModule(mod *Module) error {
	if prev, exists := b.m.byID[mod.Identity]; exists {
		return fmt.Errorf("module %s published twice, by %s and %s", mod.Identity, prev.Source, mod.Source)
	}
	b.m.byID[mod.Identity] = mod
	b.m.modules = append(b.m.modules, mod)

	if mod.Effective == nil {
		return nil
	}
	var err error
	mod.Effective.Walk(func(e *Effective) bool {
		if err != nil {
			return false
		}
		if len(e.Path) > 0 {
			key := e.Path.String()
			if prev, seen := b.m.schema[key]; seen {
				err = fmt.Errorf("module %s: schema path %s indexed twice, by %s and %s", mod.Identity, key, prev.Ref, e.Ref)
				return false
			}
			b.m.schema[key] = e
			b.m.paths = append(b.m.paths, e.Path)
		}
		if len(e.DataPath) > 0 {
			key := e.DataPath.String()
			if prev, seen := b.m.data[key]; seen {
				err = fmt.Errorf("module %s: data path %s indexed twice, by %s and %s", mod.Identity, key, prev.Ref, e.Ref)
				return false
			}
			b.m.data[key] = e
			b.m.dpaths = append(b.m.dpaths, e.DataPath)
		}
		return true
	})
	return err
}

// Build finalizes the model. The builder must not be used afterwards.
func (b *Builder) Build() *Model {
	m := b.m
	b.m = nil
	sort.Slice(m.modules, func(i, j int) bool { return m.modules[i].Source.Less(m.modules[j].Source) })
	sortPaths(m.paths)
	sortPaths(m.dpaths)
	return m
}

func sortPaths(paths []stmtid.Path) {
	sort.Slice(paths, func(i, j int) bool { return paths[i].String() < paths[j].String() })
}
