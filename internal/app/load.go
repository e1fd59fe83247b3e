package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/specialistvlad/stmtreactor/internal/ctxlog"
	"github.com/specialistvlad/stmtreactor/internal/fsutil"
	"github.com/specialistvlad/stmtreactor/internal/hclsource"
	"github.com/specialistvlad/stmtreactor/internal/source"
	"github.com/specialistvlad/stmtreactor/internal/yamlsource"
)

// parsers maps each supported file extension to its front-end.
func parsers() map[string]source.Parser {
	m := map[string]source.Parser{hclsource.Extension: hclsource.Parse}
	for _, ext := range yamlsource.Extensions {
		m[ext] = yamlsource.Parse
	}
	return m
}

// loadSources parses every document found under the configured source
// paths, in path order.
func (a *App) loadSources(ctx context.Context) ([]*source.Tree, error) {
	logger := ctxlog.FromContext(ctx)
	ps := parsers()
	exts := make([]string, 0, len(ps))
	for ext := range ps {
		exts = append(exts, ext)
	}

	var files []string
	for _, path := range a.config.SourcePaths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read source path: %w", err)
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}
		found, err := fsutil.FindFiles(path, exts...)
		if err != nil {
			return nil, fmt.Errorf("failed to scan source path %s: %w", path, err)
		}
		files = append(files, found...)
	}
	sort.Strings(files)
	logger.Debug("Source documents discovered.", "count", len(files))

	trees := make([]*source.Tree, 0, len(files))
	for _, file := range files {
		parse, ok := ps[filepath.Ext(file)]
		if !ok {
			return nil, fmt.Errorf("unsupported source file %s", file)
		}
		src, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read source file: %w", err)
		}
		tree, err := parse(file, src)
		if err != nil {
			return nil, err
		}
		logger.Debug("Source document parsed.", "file", file, "source", tree.ID.String(), "version", string(tree.Version))
		trees = append(trees, tree)
	}
	return trees, nil
}

// libraryProvider serves imports and includes from the library paths, or
// nil when none are configured.
func (a *App) libraryProvider() source.Provider {
	if len(a.config.LibraryPaths) == 0 {
		return nil
	}
	return source.NewDirProvider(a.config.LibraryPaths, parsers())
}
