package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCrawlConfiguration_BuildsCleanly(t *testing.T) {
	cfg, err := DefaultCrawlConfiguration().Build()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.MaxDepth())
	assert.True(t, cfg.SameOrigin())
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout())
}

func TestCrawlConfiguration_BuilderOverridesDefaults(t *testing.T) {
	cfg, err := DefaultCrawlConfiguration().
		WithMaxDepth(5).
		WithPerHostConcurrency(4).
		WithSameOrigin(false).
		Build()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.MaxDepth())
	assert.Equal(t, 4, cfg.PerHostConcurrency())
	assert.False(t, cfg.SameOrigin())
}

func TestCrawlConfiguration_RejectsInvalidConcurrency(t *testing.T) {
	_, err := DefaultCrawlConfiguration().WithPerHostConcurrency(0).Build()
	require.Error(t, err)
}

func TestCrawlConfiguration_AllowPatternsAreCopiedNotAliased(t *testing.T) {
	cfg, err := DefaultCrawlConfiguration().WithAllowPatterns([]string{"/docs/*"}).Build()
	require.NoError(t, err)
	got := cfg.AllowPatterns()
	got[0] = "mutated"
	assert.Equal(t, "/docs/*", cfg.AllowPatterns()[0])
}

func TestLoadCrawlConfigurationFile_OverridesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crawl.json")
	payload, _ := json.Marshal(map[string]any{
		"maxDepth":   7,
		"userAgent":  "custom-agent/2.0",
		"sameOrigin": false,
	})
	require.NoError(t, os.WriteFile(path, payload, 0o644))

	cfg, err := LoadCrawlConfigurationFile(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.MaxDepth())
	assert.Equal(t, "custom-agent/2.0", cfg.UserAgent())
	assert.False(t, cfg.SameOrigin())
	// Untouched fields keep their defaults.
	assert.Equal(t, 10, cfg.GlobalWorkers())
}

func TestLoadCrawlConfigurationFile_MissingFileErrors(t *testing.T) {
	_, err := LoadCrawlConfigurationFile("/nonexistent/path.json")
	require.Error(t, err)
}

func TestDefaultReconstructOptions_DefersToAuto(t *testing.T) {
	opts := DefaultReconstructOptions()
	assert.Equal(t, "Auto", opts.Strategy)
	assert.True(t, opts.UseLLM)
}

func TestReconstructOptions_ToStrategyOptions(t *testing.T) {
	opts := ReconstructOptions{Strategy: "Rewrite", MaxTokens: 256, Params: map[string]string{"k": "v"}}
	out := opts.ToStrategyOptions()
	assert.Equal(t, "Rewrite", out.Variant)
	assert.Equal(t, 256, out.MaxTokens)
	assert.Equal(t, "v", out.Params["k"])
}

func TestDefaultChunkingOptions_MatchesChunkDefaults(t *testing.T) {
	opts := DefaultChunkingOptions()
	assert.Equal(t, 1500, opts.MaxSize)
	assert.Equal(t, 200, opts.MinSize)
}

func TestChunkingOptions_ToStrategyOptionsAppliesParams(t *testing.T) {
	opts := ChunkingOptions{
		MaxSize: 2000,
		Params:  map[string]string{"threshold": "0.65", "memoryThreshold": "1000"},
	}
	out := opts.ToStrategyOptions()
	assert.Equal(t, 2000, out.MaxSize)
	assert.InDelta(t, 0.65, out.Threshold, 0.0001)
	assert.Equal(t, 1000, out.MemoryThreshold)
}

func TestChunkingOptions_UnsetFieldsKeepChunkDefaults(t *testing.T) {
	out := ChunkingOptions{}.ToStrategyOptions()
	assert.Equal(t, 1500, out.MaxSize)
	assert.Equal(t, 100, out.Overlap)
}
