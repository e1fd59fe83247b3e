package app

import (
	"github.com/specialistvlad/stmtreactor/internal/registry"
	"github.com/specialistvlad/stmtreactor/modules/nacm"
	"github.com/specialistvlad/stmtreactor/modules/openconfig"
)

// coreModules are the extension bundles compiled into the binary. The
// built-in statements are always installed ahead of them.
var coreModules = []registry.Module{
	nacm.Module{},
	openconfig.Module{},
}
