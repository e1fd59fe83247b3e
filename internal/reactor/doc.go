// Package reactor is the cross-source statement reactor: the multi-phase
// engine that turns parsed statement trees from many interdependent
// documents into one immutable model.
//
// # Architecture
//
// A Reactor holds the immutable configuration (registry, provider, target
// phase, metrics). Each call to NewBuild starts an independent Build, which
// owns every piece of mutable state of one attempt:
//
//   - Context arena: every statement context lives in one slice and is
//     addressed by its index. A parent holds the indices of its children; a
//     child holds only its parent's index.
//   - Phase scheduler: drives the fixed phase sequence over the whole forest.
//     Each phase is a barrier. Within a phase the scheduler repeatedly walks
//     every source depth-first, running each statement's phase hook once,
//     then runs the inference actions whose prerequisites are satisfied, in
//     registration order, until every source has completed the phase or no
//     further progress is possible.
//   - Inference actions: deferred work with prerequisites and a deadline. A
//     statement cannot complete a phase while it owns an action due by that
//     phase. Actions still parked at their deadline become unresolved
//     obligations and their statements are excluded; the build keeps going
//     to collect every independent problem.
//   - Copy engine: instantiates templates (grouping contents, submodule
//     definitions) at new positions, aliasing context-independent statements
//     and deep-copying declared-copy ones.
//   - Lazy fetch: sources requested during Init and SourcePreLinkage are
//     fetched concurrently at the pre-linkage barrier. New sources are taken
//     through the same two phases, repeating until no requests remain.
//   - Assembler: once the target phase completes, builds Declared and
//     Effective nodes bottom-up and publishes the Model.
//
// # Concurrency
//
// A Build is single-threaded cooperative scheduling with one exception: the
// fetch round at the pre-linkage barrier fans out to the Provider on several
// goroutines and joins before any statement is touched. Distinct builds share
// nothing mutable and may run concurrently.
//
// Cancellation of the caller's context is checked at phase barriers only.
package reactor
