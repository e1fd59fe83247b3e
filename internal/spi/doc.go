// Package spi is the contract between the reactor and statement supports.
//
// A Support implements one keyword of the modeling language: it parses the
// keyword's argument, declares which substatements may appear under it and
// how often, fixes the copy policy that governs reuse, and hooks into the
// phase sequence. Supports see the build-time statement tree through two
// interfaces. Context is read-only and is what argument parsers and the
// Declared/Effective factories receive. Mutable is handed to OnAdded,
// OnPhase and inference-action bodies only, and is the sole way to register
// actions, request sources and instantiate copies.
//
// # Inference actions
//
// A hook that needs data that may not exist yet registers an Action with a
// deadline phase and a set of prerequisites, then supplies its body with
// Apply. The reactor runs the body exactly once, as soon as every
// prerequisite is satisfied. An action still waiting when the barrier of its
// deadline is reached becomes an unresolved obligation, and the statement
// that registered it is excluded from the model.
//
//	a := ctx.NewAction(phase.SourceLinkage, `import "b"`)
//	mod := spi.RequireBinding(a, ctx, stmt.ModuleByName, id)
//	a.Apply(func() error {
//		return stmt.ImportedModule.Bind(ctx, prefix, mod.Get())
//	})
//
// # Copy policies
//
// Every support declares one CopyPolicy. ContextIndependent statements mean
// the same thing wherever they are reused, so an instantiation aliases the
// template and its effective node is identity-equal to the template's.
// DeclaredCopy statements are copied into a new context, re-parsed against
// the instantiating module, and processed like authored statements.
// IgnoreCopy statements are left out of copies entirely.
package spi
