package testutil

import (
	"github.com/specialistvlad/stmtreactor/internal/namespace"
	"github.com/specialistvlad/stmtreactor/internal/registry"
	"github.com/specialistvlad/stmtreactor/internal/source"
	"github.com/specialistvlad/stmtreactor/internal/spi"
)

// SimpleModule is a test helper for registering a few statement supports
// and namespaces. Supports without a version go into every version.
type SimpleModule struct {
	Version    source.Version
	Supports   []spi.Support
	Namespaces []namespace.Definition
}

// Register implements the registry.Module interface.
func (m *SimpleModule) Register(b *registry.Builder) {
	for _, s := range m.Supports {
		if m.Version == "" {
			b.RegisterCommon(s)
		} else {
			b.Register(m.Version, s)
		}
	}
	b.RegisterNamespaces(m.Namespaces...)
}
