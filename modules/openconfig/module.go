// Package openconfig supports extension statements of the openconfig-extensions
// module.
package openconfig

import (
	"github.com/specialistvlad/stmtreactor/internal/registry"
	"github.com/specialistvlad/stmtreactor/internal/stmtid"
)

// Namespace is the namespace of openconfig-extensions.
const Namespace = "http://openconfig.net/yang/openconfig-ext"

// Module implements the registry.Module interface for this package.
type Module struct{}

var _ registry.Module = Module{}

// Register adds the supported statements to every language version.
func (Module) Register(b *registry.Builder) {
	b.RegisterCommon(newVersion())
	b.RegisterCommon(newHashedValue())
}

func keyword(local string) stmtid.QName {
	return stmtid.NewQName(stmtid.NewModule(Namespace, ""), local)
}
