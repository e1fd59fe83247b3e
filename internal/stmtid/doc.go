/*
Package stmtid provides the identities used throughout the reactor: the
namespace-qualified name of a statement keyword or schema node (QName), the
module a name belongs to (Module), and absolute schema paths built from
QName steps (Path).

Keywords appear in source text either bare (`leaf`) or prefixed
(`nacm:default-deny-write`). Bare keywords are built-in statements of the
modeling language and live in BuiltinNamespace. Prefixed keywords are
extension statements whose namespace is only known once the prefix has been
resolved against the imports of the declaring source.
*/
package stmtid
