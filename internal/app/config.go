package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/specialistvlad/stmtreactor/internal/phase"
	"github.com/specialistvlad/stmtreactor/internal/stmtid"
)

// Output formats understood by the renderer.
const (
	OutputText = "text"
	OutputYAML = "yaml"
	OutputJSON = "json"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	SourcePaths  []string // files or directories of documents to build
	LibraryPaths []string // searched for imports and includes not supplied

	LogFormat string
	LogLevel  string
	Output    string

	// TargetPhase is "effective-model" (the default) or "full-declaration"
	// for a declared-only model.
	TargetPhase string
	// FetchWorkers bounds concurrent library fetches and, in isolate mode,
	// concurrent builds.
	FetchWorkers int
	// Isolate builds every supplied module as the root of its own build.
	Isolate bool
	// Lenient skips extension statements whose extension is not defined.
	Lenient bool
	// Features, when set, are the only supported features, each written as
	// NAMESPACE:NAME. Statements conditional on others are pruned.
	Features []string

	MetricsPort int // 0 disables the metrics and health server
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.SourcePaths) == 0 {
		return nil, errors.New("at least one source path is required")
	}

	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("invalid log format %q: must be 'text' or 'json'", cfg.LogFormat)
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	if _, err := parseLevel(cfg.LogLevel); err != nil {
		return nil, err
	}

	if cfg.Output == "" {
		cfg.Output = OutputText
	}
	switch cfg.Output {
	case OutputText, OutputYAML, OutputJSON:
	default:
		return nil, fmt.Errorf("invalid output format %q: must be 'text', 'yaml' or 'json'", cfg.Output)
	}

	if cfg.TargetPhase == "" {
		cfg.TargetPhase = phase.EffectiveModel.String()
	}
	if _, err := cfg.target(); err != nil {
		return nil, err
	}

	if _, err := cfg.features(); err != nil {
		return nil, err
	}

	if cfg.FetchWorkers <= 0 {
		cfg.FetchWorkers = 8
	}
	if cfg.MetricsPort < 0 || cfg.MetricsPort > 65535 {
		return nil, fmt.Errorf("invalid metrics port %d", cfg.MetricsPort)
	}

	return &cfg, nil
}

func (c *Config) target() (phase.Phase, error) {
	p, err := phase.Parse(c.TargetPhase)
	if err != nil {
		return phase.None, fmt.Errorf("invalid target phase: %w", err)
	}
	if p != phase.FullDeclaration && p != phase.EffectiveModel {
		return phase.None, fmt.Errorf("invalid target phase %q: must be %q or %q", c.TargetPhase, phase.FullDeclaration, phase.EffectiveModel)
	}
	return p, nil
}

// features parses Features. The namespace may itself contain colons, so the
// name follows the last one.
func (c *Config) features() ([]stmtid.QName, error) {
	out := make([]stmtid.QName, 0, len(c.Features))
	for _, f := range c.Features {
		i := strings.LastIndexByte(f, ':')
		if i <= 0 || !stmtid.IsIdentifier(f[i+1:]) {
			return nil, fmt.Errorf("invalid feature %q: must be NAMESPACE:NAME", f)
		}
		out = append(out, stmtid.NewQName(stmtid.NewModule(f[:i], ""), f[i+1:]))
	}
	return out, nil
}
