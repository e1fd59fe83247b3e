package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/specialistvlad/stmtreactor/internal/fsutil"
)

// ErrNotFound is returned by a Provider that does not know the requested
// document.
var ErrNotFound = errors.New("source not found")

// Provider fetches parsed documents on demand. Implementations must be safe
// for concurrent use; the reactor fetches several documents at once.
type Provider interface {
	Fetch(ctx context.Context, id Identifier) (*Tree, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, id Identifier) (*Tree, error)

// Fetch calls f.
func (f ProviderFunc) Fetch(ctx context.Context, id Identifier) (*Tree, error) {
	return f(ctx, id)
}

// MapProvider serves a fixed set of in-memory trees.
type MapProvider struct {
	trees []*Tree
}

// NewMapProvider creates a provider over the given trees.
func NewMapProvider(trees ...*Tree) *MapProvider {
	return &MapProvider{trees: trees}
}

// Fetch returns the matching tree with the greatest revision.
func (p *MapProvider) Fetch(_ context.Context, id Identifier) (*Tree, error) {
	var best *Tree
	for _, t := range p.trees {
		if !t.ID.Matches(id) {
			continue
		}
		if best == nil || best.ID.Revision < t.ID.Revision {
			best = t
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return best, nil
}

// Chain tries each provider in order until one knows the document.
type Chain []Provider

// Fetch implements Provider.
func (c Chain) Fetch(ctx context.Context, id Identifier) (*Tree, error) {
	for _, p := range c {
		tree, err := p.Fetch(ctx, id)
		if err == nil {
			return tree, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
}

// Parser turns the bytes of one document into a Tree.
type Parser func(filename string, src []byte) (*Tree, error)

// DirProvider serves documents from directories on disk. Files are matched by
// name: `<name>.<ext>` or `<name>@<revision>.<ext>`, where ext selects the
// Parser. The directories are scanned once, on first use.
type DirProvider struct {
	dirs    []string
	parsers map[string]Parser

	once  sync.Once
	files map[string][]dirEntry // module name -> candidates
	err   error
}

type dirEntry struct {
	revision string
	path     string
	parser   Parser
}

// NewDirProvider creates a provider over dirs. parsers maps a file extension
// (including the leading dot) to the parser for it.
func NewDirProvider(dirs []string, parsers map[string]Parser) *DirProvider {
	return &DirProvider{dirs: dirs, parsers: parsers}
}

func (p *DirProvider) scan() {
	p.files = make(map[string][]dirEntry)
	exts := make([]string, 0, len(p.parsers))
	for ext := range p.parsers {
		exts = append(exts, ext)
	}
	if len(exts) == 0 {
		return
	}
	for _, dir := range p.dirs {
		paths, err := fsutil.FindFiles(dir, exts...)
		if err != nil {
			p.err = fmt.Errorf("scanning library path %s: %w", dir, err)
			return
		}
		for _, path := range paths {
			ext := filepath.Ext(path)
			parser, ok := p.parsers[ext]
			if !ok {
				continue
			}
			id, err := ParseIdentifier(strings.TrimSuffix(filepath.Base(path), ext))
			if err != nil {
				continue
			}
			p.files[id.Name] = append(p.files[id.Name], dirEntry{revision: id.Revision, path: path, parser: parser})
		}
	}
	for name := range p.files {
		entries := p.files[name]
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].revision < entries[j].revision })
	}
}

// Fetch implements Provider.
func (p *DirProvider) Fetch(ctx context.Context, id Identifier) (*Tree, error) {
	p.once.Do(p.scan)
	if p.err != nil {
		return nil, p.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries := p.files[id.Name]
	var chosen *dirEntry
	for i := len(entries) - 1; i >= 0; i-- {
		if id.Revision == "" || entries[i].revision == id.Revision {
			chosen = &entries[i]
			break
		}
	}
	if chosen == nil && len(entries) > 0 && entries[0].revision == "" {
		// An unrevisioned file name may still declare the requested revision.
		chosen = &entries[0]
	}
	if chosen == nil {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}

	src, err := os.ReadFile(chosen.path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", chosen.path, err)
	}
	tree, err := chosen.parser(chosen.path, src)
	if err != nil {
		return nil, err
	}
	if !tree.ID.Matches(id) {
		if chosen.revision == "" {
			return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("%s declares %s, expected %s", chosen.path, tree.ID, id)
	}
	return tree, nil
}
