// Package source defines the reactor's input contract: a parsed statement
// tree for one document, the identifier that names it, the language version
// it declares, and the Provider through which missing documents are fetched
// on demand.
//
// # Source identity
//
// An Identifier is a (name, revision) pair. Two documents with the same name
// but different revisions are distinct sources and may be built together.
// The identifier of a tree is derived from the tree itself: the argument of
// the root statement and the most recent `revision` child.
//
// # Providers
//
// A Provider resolves an Identifier to a Tree. An empty revision in the
// request asks for the latest revision the provider knows about. Providers
// return ErrNotFound (possibly wrapped) when they do not know the document;
// every other error is treated by the reactor as a fetch failure.
//
// Implementations in this package:
//
//   - MapProvider: a fixed, in-memory set of trees.
//   - DirProvider: documents on disk, discovered by file name (`name.ext` or
//     `name@revision.ext`) and parsed lazily by a Parser chosen by extension.
//   - Chain: tries several providers in order.
package source
