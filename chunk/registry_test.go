package chunk

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyulab/webflux/content"
)

func TestRegistry_HasFiveBuiltinStrategies(t *testing.T) {
	r := NewRegistry()
	assert.Len(t, r.Names(), 5)
	for _, name := range []string{"dom_structure", "paragraph", "fixed_size", "semantic", "memory_optimized"} {
		_, ok := r.Get(name)
		assert.True(t, ok, "missing strategy %q", name)
	}
}

func TestRegistry_RunUnknownStrategyErrors(t *testing.T) {
	r := NewRegistry()
	_, err := r.Run(context.Background(), "nonexistent", content.ExtractedContent{}, Options{})
	assert.Error(t, err)
}

func TestRegistry_RunDispatchesToStrategy(t *testing.T) {
	r := NewRegistry()
	c := content.ExtractedContent{SourceURL: "https://a.test/x", MainText: "hello world"}
	chunks, err := r.Run(context.Background(), "paragraph", c, Options{MaxSize: 1000})
	require.NoError(t, err)
	require.Len(t, chunks, 1)
}
