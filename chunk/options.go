// Package chunk implements the Chunking Strategies of §4.7: DomStructure,
// Paragraph, FixedSize, Semantic, and MemoryOptimized splitters that turn
// an ExtractedContent into an ordered, invariant-honoring chunk list. It
// is grounded on the teacher's internal/mdconvert (goquery + html-to-
// markdown/v2 over a sanitized DOM) and internal/extractor (DOM-walking,
// section-boundary idiom) packages, generalized from "convert the whole
// document" to "split it into retrieval-sized units".
package chunk

import "github.com/iyulab/webflux/capability"

// Options configures every strategy; strategy-specific fields are no-ops
// for strategies that don't use them.
type Options struct {
	MaxSize   int     // target/maximum chunk size in characters
	MinSize   int     // chunks shorter than this are merged into a neighbor
	Overlap   int     // FixedSize: characters of trailing context repeated into the next chunk
	Threshold float64 // Semantic: minimum cosine similarity to the running centroid

	// SectionSelectors lists element names/classes that count as section
	// boundaries for DomStructure, beyond the built-in section/article set.
	SectionSelectors []string

	// MemoryThreshold is an input length in bytes carried with the options.
	// No strategy, the registry or the selector reads it, so it does not
	// switch chunking from FixedSize to MemoryOptimized.
	MemoryThreshold int

	Embedder capability.Embedder
}

// DefaultOptions mirrors the teacher's preference for conservative,
// well-tested defaults over configurability-by-default.
func DefaultOptions() Options {
	return Options{
		MaxSize:         1500,
		MinSize:         200,
		Overlap:         100,
		Threshold:       0.8,
		MemoryThreshold: 500_000,
	}
}

func (o Options) maxSize() int {
	if o.MaxSize > 0 {
		return o.MaxSize
	}
	return 1500
}

// minSize returns MinSize unchanged; zero or a negative value disables the
// min-size merge pass (mergeShortChunks returns its input as is).
func (o Options) minSize() int {
	return o.MinSize
}
