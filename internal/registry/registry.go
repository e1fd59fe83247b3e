package registry

import (
	"fmt"
	"log/slog"

	"github.com/specialistvlad/stmtreactor/internal/namespace"
	"github.com/specialistvlad/stmtreactor/internal/source"
	"github.com/specialistvlad/stmtreactor/internal/spi"
	"github.com/specialistvlad/stmtreactor/internal/stmtid"
)

// Module is the interface that statement bundles implement to be registered.
type Module interface {
	Register(b *Builder)
}

// Builder collects statement supports before validation.
type Builder struct {
	bundles    map[source.Version]map[stmtid.QName]spi.Support
	unknown    map[source.Version]spi.Support
	namespaces []namespace.Definition
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	b := &Builder{
		bundles: make(map[source.Version]map[stmtid.QName]spi.Support),
		unknown: make(map[source.Version]spi.Support),
	}
	for _, v := range source.Versions() {
		b.bundles[v] = make(map[stmtid.QName]spi.Support)
	}
	return b
}

// Register adds a support to the bundle of one language version.
func (b *Builder) Register(v source.Version, s spi.Support) *Builder {
	bundle, ok := b.bundles[v]
	if !ok {
		panic(fmt.Sprintf("unknown language version %q", v))
	}
	q := s.Definition()
	if _, exists := bundle[q]; exists {
		panic(fmt.Sprintf("statement support for '%s' already registered for version %s", q, v))
	}
	slog.Debug("Registering statement support.", "keyword", q.String(), "version", string(v))
	bundle[q] = s
	return b
}

// RegisterCommon adds a support to every language version.
func (b *Builder) RegisterCommon(s spi.Support) *Builder {
	for _, v := range source.Versions() {
		b.Register(v, s)
	}
	return b
}

// SetUnknown installs the support used for extension statements that have no
// dedicated support in version v. Without one, such statements are
// undefined.
func (b *Builder) SetUnknown(v source.Version, s spi.Support) *Builder {
	if _, exists := b.unknown[v]; exists {
		panic(fmt.Sprintf("unknown-statement support already registered for version %s", v))
	}
	b.unknown[v] = s
	return b
}

// SetUnknownCommon installs the unknown-statement support for every version.
func (b *Builder) SetUnknownCommon(s spi.Support) *Builder {
	for _, v := range source.Versions() {
		b.SetUnknown(v, s)
	}
	return b
}

// RegisterNamespaces declares the namespaces the registered supports bind
// and look up. Builds register them in their own namespace.Set.
func (b *Builder) RegisterNamespaces(defs ...namespace.Definition) *Builder {
	b.namespaces = append(b.namespaces, defs...)
	return b
}

// Install registers every given module.
func (b *Builder) Install(mods ...Module) *Builder {
	for _, m := range mods {
		m.Register(b)
	}
	return b
}

// Build validates the collected supports and freezes them into a Registry.
func (b *Builder) Build() (*Registry, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}
	r := &Registry{
		bundles:    make(map[source.Version]map[stmtid.QName]spi.Support, len(b.bundles)),
		unknown:    make(map[source.Version]spi.Support, len(b.unknown)),
		namespaces: append(spi.CoreNamespaces(), b.namespaces...),
	}
	for v, bundle := range b.bundles {
		frozen := make(map[stmtid.QName]spi.Support, len(bundle))
		for q, s := range bundle {
			frozen[q] = s
		}
		r.bundles[v] = frozen
	}
	for v, s := range b.unknown {
		r.unknown[v] = s
	}
	return r, nil
}

// Registry is an immutable, validated set of statement supports. It is safe
// for concurrent use by many builds.
type Registry struct {
	bundles    map[source.Version]map[stmtid.QName]spi.Support
	unknown    map[source.Version]spi.Support
	namespaces []namespace.Definition
}

// Lookup returns the support for a keyword in one language version.
func (r *Registry) Lookup(v source.Version, q stmtid.QName) (spi.Support, bool) {
	s, ok := r.bundles[v][q]
	return s, ok
}

// Unknown returns the extension fallback support of a language version.
func (r *Registry) Unknown(v source.Version) (spi.Support, bool) {
	s, ok := r.unknown[v]
	return s, ok
}

// Len returns the number of supports registered for a version.
func (r *Registry) Len(v source.Version) int {
	return len(r.bundles[v])
}

// NewNamespaceSet creates the registration table for one build.
func (r *Registry) NewNamespaceSet() *namespace.Set {
	return namespace.NewSet(r.namespaces...)
}
