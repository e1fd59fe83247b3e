// Package stmt implements the built-in statements of the modeling language
// for its two versions, "1" and "1.1", and the namespaces they bind.
//
// Linkage statements (module, submodule, import, include, belongs-to) run
// during the pre-linkage and linkage phases and request the documents they
// name. Definitions (typedef, grouping, identity, extension) are bound at
// statement definition, and references to them are inference actions that
// wait for the definition to exist. Schema nodes bind their identifiers at
// full declaration, once uses and include have instantiated their copies.
package stmt
