package spi

import (
	"log/slog"

	"github.com/specialistvlad/stmtreactor/internal/namespace"
	"github.com/specialistvlad/stmtreactor/internal/phase"
	"github.com/specialistvlad/stmtreactor/internal/source"
	"github.com/specialistvlad/stmtreactor/internal/stmtid"
)

// Context is the read-only view of one build-time statement.
type Context interface {
	namespace.Host

	Keyword() stmtid.QName
	// RawKeyword is the keyword as written, before prefix resolution.
	RawKeyword() stmtid.Keyword
	RawArgument() string
	Argument() any
	Ref() source.Ref
	Source() source.Identifier
	Version() source.Version
	// Module is the module that qualifies names defined by this statement.
	Module() stmtid.Module
	// Phase is the last phase this statement completed.
	Phase() phase.Phase
	Support() Support

	// Parent returns nil for a source root.
	Parent() Context
	Root() Context
	// Substatements lists authored and instantiated children in order.
	Substatements() []Context
	// DeclaredSubstatements lists authored children only.
	DeclaredSubstatements() []Context

	// Path is the absolute schema path, nil when not a schema-tree node.
	Path() stmtid.Path
	// DataPath is the absolute data path, nil when not a data-tree node.
	DataPath() stmtid.Path
	// Origin is nil for statements at their authored position.
	Origin() *Origin

	// State returns what the support stored with SetState.
	State() any
}

// Origin describes an instantiated statement.
type Origin struct {
	Template Context
	Kind     CopyType
	// Anchor is the statement that requested the instantiation.
	Anchor Context
}

// Mutable is the view handed to support hooks and action bodies.
type Mutable interface {
	Context

	// SetModule fixes the qualifying module of this statement and, unless
	// they set their own, of its descendants.
	SetModule(m stmtid.Module)
	// SetState stores support-owned data on the statement.
	SetState(v any)
	// NewAction registers an inference action that must run by deadline.
	NewAction(deadline phase.Phase, description string) Action
	// RequireSource asks for a document to be part of the build. It may only
	// be called during Init and SourcePreLinkage.
	RequireSource(id source.Identifier)
	// InstantiateAfter reuses template as a sibling of this statement,
	// placed after it and after any copies it instantiated earlier. The
	// template's support decides between aliasing it and copying it. Nil is
	// returned for templates whose policy is IgnoreCopy.
	InstantiateAfter(template Context, kind CopyType, target stmtid.Module) (Context, error)
	// Logger returns the build logger, annotated with this statement.
	Logger() *slog.Logger
}
