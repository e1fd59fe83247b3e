// Package namespace implements the reactor's typed symbol tables.
//
// A Namespace binds keys of one type to values of another within a Scope:
//
//   - Global: one table shared by every statement of the build
//     (for example module name to module).
//   - SourceLocal: one table per source document, held by its root
//     statement (for example import prefix to module).
//   - Subtree: a binding made by a statement is stored in its parent's
//     table, so it is visible to the statement's siblings and all their
//     descendants. Lookup walks up the ancestors; LookupLocal consults only
//     the table of the given statement.
//   - Derived: nothing is stored. Every lookup recomputes the answer from
//     other namespaces, so derived views never go stale.
//
// Keys are immutable once bound: a second Bind of the same key in the same
// table fails with a *diag.DuplicateDefinitionError naming both sites. Every
// entry records the phase in which it was bound, and lookups performed while
// the build is in an earlier phase do not see it.
//
// Namespaces must be registered with the build's Set before use. Binding or
// looking up an unregistered namespace is a programming error and panics.
package namespace
