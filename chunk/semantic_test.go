package chunk

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyulab/webflux/capability"
	"github.com/iyulab/webflux/content"
)

func TestSemanticStrategy_FallsBackToParagraphWithoutEmbedder(t *testing.T) {
	text := "Para one.\n\nPara two."
	c := content.ExtractedContent{SourceURL: "https://a.test/x", MainText: text}
	chunks, err := SemanticStrategy{}.Chunk(context.Background(), c, Options{MaxSize: 1000})
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "paragraph", chunks[0].StrategyName)
}

func TestSemanticStrategy_GroupsSimilarParagraphs(t *testing.T) {
	text := "alpha alpha alpha\n\nalpha alpha beta\n\nzzz zzz zzz zzz"
	c := content.ExtractedContent{SourceURL: "https://a.test/x", MainText: text}
	opts := Options{MaxSize: 1000, Threshold: 0.5, Embedder: capability.NewMockEmbedder(8)}

	chunks, err := SemanticStrategy{}.Chunk(context.Background(), c, opts)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	for _, ch := range chunks {
		assert.Equal(t, "semantic", ch.StrategyName)
	}
}

func TestCosineSimilarity_IdenticalVectorsIsOne(t *testing.T) {
	v := []float32{1, 2, 3}
	assert.InDelta(t, 1.0, cosineSimilarity(v, v), 1e-9)
}

func TestCosineSimilarity_OrthogonalIsZero(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{0, 1}
	assert.InDelta(t, 0.0, cosineSimilarity(a, b), 1e-9)
}
