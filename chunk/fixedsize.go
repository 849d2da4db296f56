package chunk

import (
	"context"

	"github.com/iyulab/webflux/content"
)

// FixedSizeStrategy emits character-count chunks of exactly ChunkSize
// (MaxSize) with an Overlap-byte prefix repeated from the prior chunk;
// the final chunk may be shorter (§4.7).
type FixedSizeStrategy struct{}

func (FixedSizeStrategy) Name() string { return "fixed_size" }

func (FixedSizeStrategy) Chunk(_ context.Context, c content.ExtractedContent, opts Options) ([]content.Chunk, error) {
	chunks := fixedSizeSplit(c.MainText, opts.maxSize(), opts.Overlap)
	out := make([]content.Chunk, 0, len(chunks))
	for _, text := range chunks {
		out = append(out, content.Chunk{Content: text, Type: content.ChunkTypeText, StrategyName: "fixed_size"})
	}
	return assignSequence(out, c.SourceURL), nil
}

func fixedSizeSplit(text string, size, overlap int) []string {
	if size <= 0 {
		size = 1500
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}
	if text == "" {
		return nil
	}

	var out []string
	step := size - overlap
	for start := 0; start < len(text); start += step {
		end := start + size
		if end > len(text) {
			end = len(text)
		}
		out = append(out, text[start:end])
		if end == len(text) {
			break
		}
	}
	return out
}
