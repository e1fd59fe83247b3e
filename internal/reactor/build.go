package reactor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/specialistvlad/stmtreactor/internal/ctxlog"
	"github.com/specialistvlad/stmtreactor/internal/diag"
	"github.com/specialistvlad/stmtreactor/internal/model"
	"github.com/specialistvlad/stmtreactor/internal/namespace"
	"github.com/specialistvlad/stmtreactor/internal/phase"
	"github.com/specialistvlad/stmtreactor/internal/source"
	"github.com/specialistvlad/stmtreactor/internal/spi"
	"github.com/specialistvlad/stmtreactor/internal/stmtid"
)

// Build is one build attempt. It is not safe for concurrent use and may be
// run only once.
type Build struct {
	r      *Reactor
	set    *namespace.Set
	global *namespace.Table
	logger *slog.Logger

	arena  []*stmtCtx
	roots  []*stmtCtx
	locals map[source.Identifier]*namespace.Table

	current  phase.Phase
	actions  []*action
	requests []fetchRequest

	// changes counts state changes outside namespace tables that may
	// satisfy a prerequisite: phase completions, module and state updates,
	// instantiations and action bodies.
	changes  uint64
	mutating int

	obligations []diag.Obligation
	excluded    []diag.Exclusion
	started     bool
}

// NewBuild starts an empty build.
func (r *Reactor) NewBuild() *Build {
	set := r.registry.NewNamespaceSet()
	return &Build{
		r:      r,
		set:    set,
		global: set.NewTable(),
		locals: make(map[source.Identifier]*namespace.Table),
		logger: ctxlog.FromContext(context.Background()),
	}
}

// AddSource registers a parsed document with the build. Adding two sources
// with the same identifier is a duplicate definition.
func (b *Build) AddSource(tree *source.Tree) error {
	if b.started {
		return fmt.Errorf("cannot add source %s: build already started", tree.ID)
	}
	return b.addTree(tree)
}

func (b *Build) addTree(tree *source.Tree) error {
	for _, r := range b.roots {
		if r.src == tree.ID {
			return &diag.DuplicateDefinitionError{
				Namespace: "source",
				Key:       tree.ID.String(),
				First:     r.Site(),
				Second:    diag.Site{Source: tree.ID, Ref: tree.Root.Ref},
			}
		}
	}

	root, err := b.newContext(nil, tree.Root, tree.ID, tree.Version)
	if err != nil {
		return err
	}
	if root.support == nil || !root.support.Traits().Root {
		return &diag.InvalidSubstatementError{
			Site:         root.Site(),
			Keyword:      "document",
			Substatement: root.raw.String(),
		}
	}
	b.roots = append(b.roots, root)
	b.logger.Debug("Source added to build.", "source", tree.ID.String(), "version", string(tree.Version), "statements", len(b.arena))
	return nil
}

// newContext creates the context of stmt and, recursively, of its children.
func (b *Build) newContext(parent *stmtCtx, stmt *source.Statement, src source.Identifier, version source.Version) (*stmtCtx, error) {
	c := &stmtCtx{
		b:       b,
		id:      len(b.arena),
		parent:  noParent,
		rawArg:  stmt.Argument,
		ref:     stmt.Ref,
		src:     src,
		version: version,
	}
	if parent != nil {
		c.parent, c.root = parent.id, parent.root
	} else {
		c.root = c.id
	}

	kw, err := stmtid.ParseKeyword(stmt.Keyword)
	if err != nil {
		return nil, &diag.UndefinedStatementError{Site: c.Site(), Keyword: stmt.Keyword, Reason: err.Error()}
	}
	c.raw = kw
	if kw.IsQualified() {
		c.keyword = stmtid.QName{Local: kw.Local}
	} else {
		c.keyword = stmtid.Builtin(kw.Local)
		support, ok := b.r.registry.Lookup(version, c.keyword)
		if !ok {
			return nil, &diag.UndefinedStatementError{Site: c.Site(), Keyword: kw.String(),
				Reason: fmt.Sprintf("not defined in language version %s", version)}
		}
		c.support = support
	}

	b.arena = append(b.arena, c)
	if parent != nil {
		parent.children = append(parent.children, c.id)
	}

	if c.support != nil {
		if err := b.bindSupport(c); err != nil {
			return nil, err
		}
	}
	for _, child := range stmt.Children {
		if _, err := b.newContext(c, child, src, version); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// bindSupport parses the argument of c with its support and runs OnAdded.
func (b *Build) bindSupport(c *stmtCtx) error {
	arg, err := c.support.ParseArgument(c, c.rawArg)
	if err != nil {
		return &diag.ArgumentSyntaxError{Site: c.Site(), Keyword: c.raw.String(), Argument: c.rawArg, Err: err}
	}
	c.arg = arg

	b.mutating++
	err = c.support.OnAdded(c)
	b.mutating--
	if err != nil {
		return attribute(c, err)
	}
	return nil
}

// Run drives every source through the phase sequence and assembles the
// model. On failure the model is nil and the error is either a fatal
// diagnostic or a *diag.UnresolvedObligationError.
func (b *Build) Run(ctx context.Context) (*model.Model, error) {
	if b.started {
		return nil, errors.New("build already run")
	}
	b.started = true
	b.logger = ctxlog.FromContext(ctx)

	target := b.r.target
	if target != phase.FullDeclaration && target != phase.EffectiveModel {
		return nil, fmt.Errorf("invalid target phase %s: must be %s or %s", target, phase.FullDeclaration, phase.EffectiveModel)
	}

	start := time.Now()
	m, err := b.run(ctx, target)
	result := "success"
	switch {
	case err == nil:
	case isUnresolved(err):
		result = "unresolved"
	default:
		result = "error"
	}
	b.r.metrics.ObserveBuild(time.Since(start).Seconds(), result)

	if err != nil {
		b.logger.Error("Build failed.", "error", err, "sources", len(b.roots))
		return nil, err
	}
	b.logger.Info("Build finished.", "sources", len(b.roots), "modules", len(m.Modules()),
		"schema_nodes", len(m.SchemaPaths()), "phase", target.String(), "duration", time.Since(start))
	return m, nil
}

func (b *Build) run(ctx context.Context, target phase.Phase) (*model.Model, error) {
	b.logger.Info("Build started.", "sources", len(b.roots), "target", target.String())

	for _, p := range phase.All() {
		if p > target {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("build cancelled before %s: %w", p, err)
		}

		phaseStart := time.Now()
		if err := b.runPhase(p); err != nil {
			return nil, err
		}
		if p == phase.SourcePreLinkage {
			if err := b.fetchMissing(ctx); err != nil {
				return nil, err
			}
		}
		b.r.metrics.ObservePhase(p.String(), time.Since(phaseStart).Seconds())
		b.logger.Debug("Phase barrier passed.", "phase", p.String(), "statements", len(b.arena),
			"pending_actions", len(b.actions), "obligations", len(b.obligations))
	}

	if len(b.obligations) > 0 || len(b.excluded) > 0 {
		return nil, &diag.UnresolvedObligationError{Obligations: b.obligations, Excluded: b.excluded}
	}
	return newAssembler(b, target).assemble()
}

// runPhase completes phase p for every source.
func (b *Build) runPhase(p phase.Phase) error {
	b.current = p
	for {
		progress, done := false, true
		for _, root := range b.roots {
			moved, rootDone, err := b.advance(root, p)
			if err != nil {
				return err
			}
			progress = progress || moved
			done = done && rootDone
		}

		ran, err := b.runReadyActions()
		if err != nil {
			return err
		}
		progress = progress || ran

		if done && !ran {
			return nil
		}
		if progress {
			continue
		}
		if b.failOverdue(p) {
			continue
		}
		if !b.failStuck(p) {
			return nil
		}
	}
}

// advance runs the pending phase hooks of c and of its subtree, depth-first
// in source order, and completes c once its children have completed p and
// it owns no action due by p. done reports whether the whole subtree has
// completed p; a statement may have completed p while a copy instantiated
// under it later has not.
func (b *Build) advance(c *stmtCtx, p phase.Phase) (progress, done bool, err error) {
	if c.failed {
		return false, true, nil
	}

	if t := c.aliasOf; t != nil {
		switch {
		case c.completed >= p:
			return false, true, nil
		case t.failed:
			b.exclude(c, "aliased template was excluded")
			return true, true, nil
		case t.completed >= p:
			b.complete(c, p)
			return true, true, nil
		default:
			return false, false, nil
		}
	}

	for c.hooked < p {
		next := c.hooked.Next()
		c.hooked = next
		if err := b.runHook(c, next); err != nil {
			return false, false, err
		}
		progress = true
		if c.failed {
			return true, true, nil
		}
	}

	done = true
	// Children may be added while iterating; index access picks them up.
	for i := 0; i < len(c.children); i++ {
		moved, childDone, err := b.advance(b.arena[c.children[i]], p)
		if err != nil {
			return false, false, err
		}
		progress = progress || moved
		done = done && childDone
	}

	if c.completed < p {
		if done && !c.hasPendingBy(p) {
			b.complete(c, p)
			progress = true
		} else {
			done = false
		}
	}
	return progress, done, nil
}

func (b *Build) complete(c *stmtCtx, p phase.Phase) {
	if p < c.completed {
		panic(fmt.Sprintf("phase of %s would decrease from %s to %s", c, c.completed, p))
	}
	c.completed = p
	b.changed()
}

func (b *Build) runHook(c *stmtCtx, p phase.Phase) error {
	if p == phase.StatementDefinition && c.support == nil {
		if err := b.resolveKeyword(c); err != nil {
			return err
		}
		if c.failed {
			return nil
		}
	}
	if c.support == nil {
		// Prefixed keyword, not resolvable before StatementDefinition.
		return nil
	}
	// Extension statements have no substatement rules of their own.
	if p == phase.FullDeclaration && c.origin == nil && c.keyword.IsBuiltin() {
		if err := b.checkSubstatements(c); err != nil {
			return err
		}
	}

	b.mutating++
	err := c.support.OnPhase(c, p)
	b.mutating--
	if err != nil {
		return attribute(c, err)
	}
	return nil
}

// resolveKeyword binds a prefixed keyword to its namespace and support. A
// prefix that is not bound by now belongs to a failed or missing import and
// is reported as an obligation rather than a fatal error.
func (b *Build) resolveKeyword(c *stmtCtx) error {
	mod, ok := spi.PrefixToModule.Lookup(c, c.raw.Prefix)
	if !ok {
		b.obligations = append(b.obligations, diag.Obligation{
			Description: fmt.Sprintf("resolve keyword %q", c.raw.String()),
			Phase:       phase.StatementDefinition,
			Unmet:       []string{fmt.Sprintf("%s %q", spi.PrefixToModule.Name(), c.raw.Prefix)},
			Site:        c.Site(),
		})
		b.exclude(c, "keyword prefix is not bound")
		return nil
	}

	q := stmtid.NewQName(mod, c.raw.Local)
	support, ok := b.r.registry.Lookup(c.version, q)
	if !ok && mod.Revision != "" {
		// Third-party supports are usually registered for any revision.
		support, ok = b.r.registry.Lookup(c.version, stmtid.NewQName(stmtid.NewModule(mod.Namespace, ""), c.raw.Local))
	}
	if !ok {
		support, ok = b.r.registry.Unknown(c.version)
	}
	if !ok {
		return &diag.UndefinedStatementError{Site: c.Site(), Keyword: c.raw.String(),
			Reason: "extension statements are not supported by this registry"}
	}

	c.keyword = q
	c.support = support
	b.changed()
	return b.bindSupport(c)
}

func (b *Build) checkSubstatements(c *stmtCtx) error {
	var kws []stmtid.QName
	for _, id := range c.children {
		if child := b.arena[id]; child.origin == nil {
			kws = append(kws, child.keyword)
		}
	}
	v, ok := c.support.Substatements().Check(kws)
	if ok {
		return nil
	}
	sub := v.Keyword.String()
	if v.Unexpected {
		return &diag.InvalidSubstatementError{Site: c.Site(), Keyword: c.raw.String(), Substatement: sub}
	}
	return &diag.InvalidSubstatementError{Site: c.Site(), Keyword: c.raw.String(), Substatement: sub,
		Count: v.Count, Min: v.Rule.Min, Max: v.Rule.Max}
}

// exclude marks c and its subtree as failed and records the exclusion.
func (b *Build) exclude(c *stmtCtx, reason string) {
	if c.failed {
		return
	}
	b.excluded = append(b.excluded, diag.Exclusion{
		Site:     c.Site(),
		Keyword:  c.raw.String(),
		Argument: c.rawArg,
		Reached:  c.completed,
		Reason:   reason,
	})
	b.markFailed(c)
	b.changed()
}

func (b *Build) markFailed(c *stmtCtx) {
	c.failed = true
	for _, id := range c.children {
		b.markFailed(b.arena[id])
	}
}

// failStuck excludes statements that cannot complete p although nothing is
// parked, such as aliases of a template that will never finish. Only the
// innermost blocked statements are excluded. It reports whether anything
// was excluded.
func (b *Build) failStuck(p phase.Phase) bool {
	var stuck []*stmtCtx
	var find func(c *stmtCtx)
	find = func(c *stmtCtx) {
		blockedByChild := false
		for _, id := range c.children {
			if child := b.arena[id]; b.incomplete(child, p) {
				blockedByChild = true
				find(child)
			}
		}
		if !blockedByChild && c.completed < p {
			stuck = append(stuck, c)
		}
	}
	for _, root := range b.roots {
		if b.incomplete(root, p) {
			find(root)
		}
	}
	for _, c := range stuck {
		b.exclude(c, "could not complete "+p.String())
	}
	return len(stuck) > 0
}

// incomplete reports whether some statement of c's subtree has not failed
// and has not completed p.
func (b *Build) incomplete(c *stmtCtx, p phase.Phase) bool {
	if c.failed {
		return false
	}
	if c.completed < p {
		return true
	}
	for _, id := range c.children {
		if b.incomplete(b.arena[id], p) {
			return true
		}
	}
	return false
}

func (b *Build) changed() { b.changes++ }

func (b *Build) epoch() uint64 { return b.changes + b.set.Generation() }

func (b *Build) mustMutate(op string) {
	if b.mutating == 0 {
		panic(fmt.Sprintf("%s called outside a statement hook or inference action", op))
	}
}

// attribute gives err a site unless it already is a typed diagnostic.
func attribute(c *stmtCtx, err error) error {
	if diag.IsFatal(err) || isUnresolved(err) {
		return err
	}
	return &diag.StatementError{Site: c.Site(), Keyword: c.raw.String(), Err: err}
}

func isUnresolved(err error) bool {
	_, ok := diag.AsUnresolved(err)
	return ok
}
