// Package registry provides the Statement Definition Registry: the mapping
// from a statement's identity to the support that implements it.
//
// Registries are composed from bundles keyed by language version. The two
// dialects share most supports; where they differ (for example, statements
// that exist only in 1.1, or substatements a keyword accepts only in 1.1),
// each version registers its own variant. Third-party bundles add extension
// supports through the Module interface, the same way the core bundle does.
//
// A Builder collects registrations and is validated once, by Build. Build
// refuses supports with an unset copy policy and rejects policy combinations
// that would let an aliased statement reach a statement that must be
// copied. Registering the same keyword twice for one version is a
// programming error and panics.
package registry
