package stmtid

import "strings"

// BuiltinNamespace is the namespace of every keyword defined by the modeling
// language itself.
const BuiltinNamespace = "urn:ietf:params:xml:ns:yang:yin:1"

// Module identifies the namespace and revision that qualify a set of names.
type Module struct {
	Namespace string
	Revision  string // empty when the module declares no revision
}

// NewModule creates a module identity.
func NewModule(namespace, revision string) Module {
	return Module{Namespace: namespace, Revision: revision}
}

// IsZero reports whether the module identity is unset.
func (m Module) IsZero() bool {
	return m.Namespace == "" && m.Revision == ""
}

func (m Module) String() string {
	if m.Revision == "" {
		return m.Namespace
	}
	return m.Namespace + "@" + m.Revision
}

// QName is a (namespace, local-name) pair.
type QName struct {
	Module Module
	Local  string
}

// NewQName creates a QName in the given module.
func NewQName(m Module, local string) QName {
	return QName{Module: m, Local: local}
}

// Builtin returns the identity of a built-in keyword.
func Builtin(local string) QName {
	return QName{Module: Module{Namespace: BuiltinNamespace}, Local: local}
}

// IsBuiltin reports whether q names a keyword of the modeling language itself.
func (q QName) IsBuiltin() bool {
	return q.Module.Namespace == BuiltinNamespace
}

// IsZero reports whether the name is unset.
func (q QName) IsZero() bool {
	return q.Local == "" && q.Module.IsZero()
}

// String renders the name in Clark notation, `{namespace@revision}local`.
// Built-in keywords render as their bare local name.
func (q QName) String() string {
	if q.IsBuiltin() {
		return q.Local
	}
	var sb strings.Builder
	sb.WriteByte('{')
	sb.WriteString(q.Module.String())
	sb.WriteByte('}')
	sb.WriteString(q.Local)
	return sb.String()
}

// Less orders names by namespace, revision, then local name.
func (q QName) Less(other QName) bool {
	if q.Module.Namespace != other.Module.Namespace {
		return q.Module.Namespace < other.Module.Namespace
	}
	if q.Module.Revision != other.Module.Revision {
		return q.Module.Revision < other.Module.Revision
	}
	return q.Local < other.Local
}
