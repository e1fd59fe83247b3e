// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the Declared and Effective statement structures.
//
// Why two structures per statement?
//
// A statement that is written once may be in force at many places in the
// schema tree. Its Declared form is the single record of what the author
// wrote; its Effective form exists once per position and carries whatever
// depends on that position: the qualifying module, the schema path and the
// expanded substatements. Identity matters. Two Effective values that are the
// same pointer are the same semantic statement, which is how context-independent
// reuse is observable to consumers.
package model

import (
	"fmt"

	"github.com/specialistvlad/stmtreactor/internal/source"
	"github.com/specialistvlad/stmtreactor/internal/stmtid"
)

// Declared is the immutable surface-syntax view of one statement.
type Declared struct {
	Keyword       stmtid.QName
	RawArgument   string
	Argument      any
	Source        source.Identifier
	Ref           source.Ref
	Substatements []*Declared
}

// Instantiation records how a reused statement came to be at its position.
type Instantiation struct {
	Kind   string // "uses" or "include"
	Source source.Identifier
	Ref    source.Ref
}

// Effective is the immutable semantic view of one statement at one position.
type Effective struct {
	Keyword  stmtid.QName
	Argument any
	// Value is computed by the statement's support, for example the resolved
	// base type of a `type` statement. Nil for most statements.
	Value    any
	Module   stmtid.Module
	Path     stmtid.Path // nil when not a schema-tree node
	DataPath stmtid.Path // nil when not a data-tree node
	Declared *Declared
	Source   source.Identifier
	Ref      source.Ref
	// Instantiation is nil for statements at their authored position.
	Instantiation *Instantiation
	Substatements []*Effective
}

// ArgumentString renders the parsed argument for display.
func (e *Effective) ArgumentString() string {
	switch a := e.Argument.(type) {
	case nil:
		return ""
	case string:
		return a
	case fmt.Stringer:
		return a.String()
	default:
		return fmt.Sprint(a)
	}
}

// Find returns the first substatement with the given keyword.
func (e *Effective) Find(keyword stmtid.QName) (*Effective, bool) {
	for _, s := range e.Substatements {
		if s.Keyword == keyword {
			return s, true
		}
	}
	return nil, false
}

// FindAll returns every substatement with the given keyword.
func (e *Effective) FindAll(keyword stmtid.QName) []*Effective {
	var out []*Effective
	for _, s := range e.Substatements {
		if s.Keyword == keyword {
			out = append(out, s)
		}
	}
	return out
}

// Walk visits e and every effective descendant, parents first. Returning
// false from fn skips the node's substatements.
func (e *Effective) Walk(fn func(*Effective) bool) {
	if !fn(e) {
		return
	}
	for _, s := range e.Substatements {
		s.Walk(fn)
	}
}
