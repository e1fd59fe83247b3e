package spi

import (
	"github.com/specialistvlad/stmtreactor/internal/namespace"
	"github.com/specialistvlad/stmtreactor/internal/stmtid"
)

// PrefixToModule maps a prefix in scope in one source (the module's own
// prefix, import prefixes, the belongs-to prefix) to the module it
// qualifies. The reactor consults it to resolve prefixed keywords.
var PrefixToModule = namespace.New[string, stmtid.Module]("prefix", namespace.SourceLocal)

// CoreNamespaces are registered in every build, whatever the registry holds.
func CoreNamespaces() []namespace.Definition {
	return []namespace.Definition{PrefixToModule}
}
