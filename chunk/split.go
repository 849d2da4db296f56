package chunk

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/iyulab/webflux/content"
)

// sentenceBoundaries are tried in order when a span must be split
// without exceeding max — §4.7 names ". ", ".\n", ".\r\n" explicitly.
var sentenceBoundaries = []string{".\r\n", ".\n", ". "}

// splitAtSentenceBoundary breaks text into pieces no longer than max,
// preferring to cut right after a sentence boundary. Falls back to a
// hard cut when a single sentence still exceeds max.
func splitAtSentenceBoundary(text string, max int) []string {
	if max <= 0 || len(text) <= max {
		if text == "" {
			return nil
		}
		return []string{text}
	}

	var out []string
	remaining := text
	for len(remaining) > max {
		cut := bestBoundaryWithin(remaining, max)
		if cut <= 0 {
			cut = max
		}
		out = append(out, remaining[:cut])
		remaining = remaining[cut:]
	}
	if remaining != "" {
		out = append(out, remaining)
	}
	return out
}

// bestBoundaryWithin finds the rightmost sentence-boundary end position
// at or before max, trying each marker in priority order.
func bestBoundaryWithin(text string, max int) int {
	window := text
	if len(window) > max {
		window = window[:max]
	}
	for _, marker := range sentenceBoundaries {
		if idx := strings.LastIndex(window, marker); idx >= 0 {
			return idx + len(marker)
		}
	}
	return 0
}

// assignSequence stamps dense, 0-based sequence numbers and fresh ids
// onto chunks in order (invariant I1).
func assignSequence(chunks []content.Chunk, sourceURL string) []content.Chunk {
	for i := range chunks {
		chunks[i].Sequence = i
		chunks[i].SourceURL = sourceURL
		if chunks[i].ID == "" {
			chunks[i].ID = fmt.Sprintf("%s-%d-%s", shortHost(sourceURL), i, uuid.NewString()[:8])
		}
	}
	return chunks
}

func shortHost(sourceURL string) string {
	if i := strings.Index(sourceURL, "://"); i >= 0 {
		rest := sourceURL[i+3:]
		if j := strings.IndexAny(rest, "/?#"); j >= 0 {
			rest = rest[:j]
		}
		return rest
	}
	return "doc"
}

// mergeShortChunks folds any chunk shorter than minSize into its
// preceding neighbor (or, for a leading short chunk, the following one)
// when that neighbor has the same chunk Type; a short chunk whose
// neighbor has another Type is kept as is (§4.7 post-pass). It does not
// renumber; callers follow it with assignSequence.
func mergeShortChunks(chunks []content.Chunk, minSize int) []content.Chunk {
	if minSize <= 0 || len(chunks) < 2 {
		return chunks
	}

	merged := make([]content.Chunk, 0, len(chunks))
	for _, c := range chunks {
		if len(merged) > 0 && len(c.Content) < minSize && c.Type == merged[len(merged)-1].Type {
			prev := &merged[len(merged)-1]
			prev.Content = prev.Content + "\n" + c.Content
			continue
		}
		merged = append(merged, c)
	}

	// A short leading chunk has no predecessor to merge into; fold it
	// forward instead.
	if len(merged) >= 2 && len(merged[0].Content) < minSize && merged[0].Type == merged[1].Type {
		merged[1].Content = merged[0].Content + "\n" + merged[1].Content
		merged = merged[1:]
	}

	return merged
}
