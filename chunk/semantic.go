package chunk

import (
	"context"
	"math"

	"github.com/iyulab/webflux/content"
)

// SemanticStrategy groups consecutive paragraphs while their cosine
// similarity to the running group centroid stays at or above Threshold,
// subject to min/max sizes. It falls back to ParagraphStrategy when no
// Embedder capability is configured (§4.7).
type SemanticStrategy struct{}

func (SemanticStrategy) Name() string { return "semantic" }

func (SemanticStrategy) Chunk(ctx context.Context, c content.ExtractedContent, opts Options) ([]content.Chunk, error) {
	if opts.Embedder == nil {
		return ParagraphStrategy{}.Chunk(ctx, c, opts)
	}

	paragraphs := splitParagraphs(c.MainText)
	if len(paragraphs) == 0 {
		return nil, nil
	}

	threshold := opts.Threshold
	if threshold <= 0 {
		threshold = 0.8
	}
	max := opts.maxSize()

	var chunks []content.Chunk
	var groupText []string
	var centroid []float32
	groupLen := 0

	flush := func() {
		if len(groupText) == 0 {
			return
		}
		text := groupText[0]
		for _, p := range groupText[1:] {
			text += "\n\n" + p
		}
		chunks = append(chunks, content.Chunk{Content: text, Type: content.ChunkTypeText, StrategyName: "semantic"})
		groupText = nil
		centroid = nil
		groupLen = 0
	}

	for _, p := range paragraphs {
		vec, err := opts.Embedder.Embed(ctx, p)
		if err != nil {
			return nil, err
		}

		if len(groupText) == 0 {
			groupText = append(groupText, p)
			centroid = vec
			groupLen = len(p)
			continue
		}

		sim := cosineSimilarity(centroid, vec)
		if sim >= threshold && groupLen+2+len(p) <= max {
			groupText = append(groupText, p)
			centroid = averageVectors(centroid, vec, len(groupText))
			groupLen += 2 + len(p)
			continue
		}

		flush()
		groupText = append(groupText, p)
		centroid = vec
		groupLen = len(p)
	}
	flush()

	chunks = mergeShortChunks(chunks, opts.minSize())
	return assignSequence(chunks, c.SourceURL), nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, magA, magB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

// averageVectors folds vec into centroid as an incremental mean over
// memberCount members (memberCount already includes vec).
func averageVectors(centroid, vec []float32, memberCount int) []float32 {
	if memberCount <= 1 {
		return vec
	}
	n := len(centroid)
	if len(vec) < n {
		n = len(vec)
	}
	out := make([]float32, n)
	prevCount := float32(memberCount - 1)
	for i := 0; i < n; i++ {
		out[i] = (centroid[i]*prevCount + vec[i]) / float32(memberCount)
	}
	return out
}
