package reactor

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/specialistvlad/stmtreactor/internal/diag"
	"github.com/specialistvlad/stmtreactor/internal/phase"
	"github.com/specialistvlad/stmtreactor/internal/source"
)

// fetchRequest is a source some statement asked for that the build does not
// hold yet.
type fetchRequest struct {
	id        source.Identifier
	requester *stmtCtx
}

func (b *Build) requestSource(id source.Identifier, c *stmtCtx) {
	if b.hasSource(id) {
		return
	}
	for _, r := range b.requests {
		if r.id == id {
			return
		}
	}
	b.requests = append(b.requests, fetchRequest{id: id, requester: c})
	b.logger.Debug("Source requested.", "source", id.String(), "requester", c.String())
}

func (b *Build) hasSource(id source.Identifier) bool {
	for _, r := range b.roots {
		if r.src.Matches(id) {
			return true
		}
	}
	return false
}

// fetchMissing resolves pending source requests through the provider, adds
// the fetched trees and brings them up to SourcePreLinkage. New requests
// made by the fetched sources are served in the next round. A source the
// provider does not know is skipped; the statement that asked for it stays
// unresolved.
func (b *Build) fetchMissing(ctx context.Context) error {
	for len(b.requests) > 0 {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("build cancelled while fetching sources: %w", err)
		}

		reqs := b.requests
		b.requests = nil
		if b.r.provider == nil {
			b.logger.Debug("No source provider configured; skipping requested sources.", "count", len(reqs))
			continue
		}

		trees := make([]*source.Tree, len(reqs))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(b.r.fetchLimit)
		for i, req := range reqs {
			g.Go(func() error {
				tree, err := b.r.provider.Fetch(gctx, req.id)
				switch {
				case errors.Is(err, source.ErrNotFound):
					b.r.metrics.Fetched("not_found")
					return nil
				case err != nil:
					b.r.metrics.Fetched("error")
					return &diag.FetchError{Requested: req.id, Requester: req.requester.Site(), Err: err}
				}
				b.r.metrics.Fetched("success")
				trees[i] = tree
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		added := 0
		for i, tree := range trees {
			if tree == nil {
				b.logger.Warn("Requested source not found.", "source", reqs[i].id.String(), "requester", reqs[i].requester.Site().String())
				continue
			}
			if b.holds(tree.ID) {
				continue
			}
			if err := b.addTree(tree); err != nil {
				return err
			}
			added++
			b.logger.Debug("Source fetched.", "source", tree.ID.String(), "requested", reqs[i].id.String())
		}
		if added == 0 {
			continue
		}

		for _, p := range []phase.Phase{phase.Init, phase.SourcePreLinkage} {
			if err := b.runPhase(p); err != nil {
				return err
			}
		}
	}
	return nil
}

// holds reports whether a source with exactly id is already part of the build.
func (b *Build) holds(id source.Identifier) bool {
	for _, r := range b.roots {
		if r.src == id {
			return true
		}
	}
	return false
}
