package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/stmtreactor/internal/phase"
	"github.com/specialistvlad/stmtreactor/internal/stmtid"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg, err := NewConfig(Config{SourcePaths: []string{"src"}})
	require.NoError(t, err)

	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, OutputText, cfg.Output)
	assert.Equal(t, "effective-model", cfg.TargetPhase)
	assert.Equal(t, 8, cfg.FetchWorkers)

	target, err := cfg.target()
	require.NoError(t, err)
	assert.Equal(t, phase.EffectiveModel, target)
}

func TestNewConfig_Validation(t *testing.T) {
	testCases := []struct {
		name        string
		cfg         Config
		errContains string
	}{
		{name: "no sources", cfg: Config{}, errContains: "at least one source path"},
		{name: "log format", cfg: Config{SourcePaths: []string{"s"}, LogFormat: "xml"}, errContains: "invalid log format"},
		{name: "log level", cfg: Config{SourcePaths: []string{"s"}, LogLevel: "trace"}, errContains: "invalid log level"},
		{name: "output", cfg: Config{SourcePaths: []string{"s"}, Output: "toml"}, errContains: "invalid output format"},
		{name: "unknown phase", cfg: Config{SourcePaths: []string{"s"}, TargetPhase: "done"}, errContains: `unknown phase "done"`},
		{name: "non-terminal phase", cfg: Config{SourcePaths: []string{"s"}, TargetPhase: "source-linkage"}, errContains: `must be "full-declaration" or "effective-model"`},
		{name: "feature without namespace", cfg: Config{SourcePaths: []string{"s"}, Features: []string{"fast"}}, errContains: `invalid feature "fast"`},
		{name: "feature with bad name", cfg: Config{SourcePaths: []string{"s"}, Features: []string{"urn:a:1x"}}, errContains: "must be NAMESPACE:NAME"},
		{name: "port", cfg: Config{SourcePaths: []string{"s"}, MetricsPort: 70000}, errContains: "invalid metrics port"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewConfig(tc.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errContains)
		})
	}
}

func TestConfig_Features(t *testing.T) {
	cfg, err := NewConfig(Config{SourcePaths: []string{"s"}, Features: []string{"urn:test:a:fast"}})
	require.NoError(t, err)
	features, err := cfg.features()
	require.NoError(t, err)
	assert.Equal(t, []stmtid.QName{stmtid.NewQName(stmtid.NewModule("urn:test:a", ""), "fast")}, features)
}

func TestNewConfig_NormalizesCase(t *testing.T) {
	cfg, err := NewConfig(Config{SourcePaths: []string{"s"}, LogFormat: "JSON", LogLevel: "Debug", TargetPhase: "full-declaration"})
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "debug", cfg.LogLevel)

	target, err := cfg.target()
	require.NoError(t, err)
	assert.Equal(t, phase.FullDeclaration, target)
}
