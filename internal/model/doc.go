// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package model provides the immutable output of a build: the Declared and
// Effective representation of every finished statement, and the Model that
// publishes them.
//
// # Core Concepts
//
//   - Declared: the surface syntax of one statement, exactly as written. It
//     holds the raw and parsed argument and the declared substatements.
//     Statements instantiated by reuse (a `uses` expansion, a submodule
//     restated into its module) share the Declared node of their template.
//
//   - Effective: the semantic view after inference and copy expansion. It
//     holds the substatements that are in force at this position, including
//     instantiated copies, the module that qualifies its names, and its
//     absolute schema and data paths.
//
//   - Model: the published result. It maps every module identity to its
//     top-level statement and indexes every schema node by absolute path. The
//     data-tree index is the same tree seen through choice and case nodes.
//
// Why a separate model package?
//
// The reactor's build-time contexts are mutable and reference each other
// freely. Consumers must never see them. This package is the boundary: once
// a value of these types is built it is never modified, so a Model can be
// shared between goroutines and cached across builds without locking.
package model
