package chunk

import (
	"bufio"
	"context"
	"strings"

	"github.com/iyulab/webflux/content"
)

// memoryOptimizedInFlight bounds how many produced chunks may sit in the
// internal channel before the producer blocks, capping peak memory
// regardless of document size.
const memoryOptimizedInFlight = 4

// MemoryOptimizedStrategy is a streaming FixedSize variant: it reads the
// source text through a bounded buffer and never materializes more than
// one window plus the in-flight channel at once, for use above a
// configurable size threshold (§4.7).
type MemoryOptimizedStrategy struct{}

func (MemoryOptimizedStrategy) Name() string { return "memory_optimized" }

func (MemoryOptimizedStrategy) Chunk(ctx context.Context, c content.ExtractedContent, opts Options) ([]content.Chunk, error) {
	size := opts.maxSize()
	overlap := opts.Overlap
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	pieces := make(chan string, memoryOptimizedInFlight)
	go streamFixedSize(ctx, c.MainText, size, overlap, pieces)

	var out []content.Chunk
	for text := range pieces {
		out = append(out, content.Chunk{Content: text, Type: content.ChunkTypeText, StrategyName: "memory_optimized"})
	}
	return assignSequence(out, c.SourceURL), nil
}

// streamFixedSize reads text through a bufio.Reader window, emitting
// size-byte chunks (with an overlap carried forward) onto pieces, and
// closes pieces when done or ctx is cancelled.
func streamFixedSize(ctx context.Context, text string, size, overlap int, pieces chan<- string) {
	defer close(pieces)
	if size <= 0 || text == "" {
		return
	}

	reader := bufio.NewReaderSize(strings.NewReader(text), size)
	carry := ""
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		buf := make([]byte, size-len(carry))
		n, err := reader.Read(buf)
		window := carry + string(buf[:n])
		if n > 0 {
			select {
			case pieces <- window:
			case <-ctx.Done():
				return
			}
			if overlap > 0 && overlap < len(window) {
				carry = window[len(window)-overlap:]
			} else {
				carry = ""
			}
		}
		if err != nil {
			return
		}
	}
}
