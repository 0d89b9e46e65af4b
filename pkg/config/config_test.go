package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kh3rld/rfgrep/pkg/classify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWithoutConfigFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadMergesYAMLFile(t *testing.T) {
	dir := t.TempDir()
	yaml := "regex: true\ncontext: 3\nthreads: 4\nsafety: conservative\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".rfgrep.yaml"), []byte(yaml), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.True(t, cfg.Regex)
	assert.Equal(t, 3, cfg.ContextLines)
	assert.Equal(t, 4, cfg.Threads)
	assert.Equal(t, classify.SafetyConservative, cfg.SafetyPolicy())
}

func TestStrategyMapsStringToEnum(t *testing.T) {
	cfg := Default()
	cfg.FileTypeStrategy = "comprehensive"
	assert.Equal(t, classify.StrategyComprehensive, cfg.Strategy())
}

func TestUnknownSafetyFallsBackToDefault(t *testing.T) {
	cfg := Default()
	cfg.Safety = "nonsense"
	assert.Equal(t, classify.SafetyDefault, cfg.SafetyPolicy())
}
