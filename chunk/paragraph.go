package chunk

import (
	"context"
	"regexp"
	"strings"

	"github.com/iyulab/webflux/content"
)

var blankLineSplit = regexp.MustCompile(`\n\s*\n`)

// ParagraphStrategy packs blank-line-separated paragraphs into chunks no
// larger than MaxSize, never splitting a paragraph unless it alone
// exceeds MaxSize (§4.7).
type ParagraphStrategy struct{}

func (ParagraphStrategy) Name() string { return "paragraph" }

func (ParagraphStrategy) Chunk(_ context.Context, c content.ExtractedContent, opts Options) ([]content.Chunk, error) {
	max := opts.maxSize()
	paragraphs := splitParagraphs(c.MainText)

	var chunks []content.Chunk
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		chunks = append(chunks, content.Chunk{
			Content:      current.String(),
			Type:         content.ChunkTypeText,
			StrategyName: "paragraph",
		})
		current.Reset()
	}

	for _, p := range paragraphs {
		if p == "" {
			continue
		}
		if len(p) > max {
			flush()
			for _, piece := range splitAtSentenceBoundary(p, max) {
				chunks = append(chunks, content.Chunk{Content: piece, Type: content.ChunkTypeText, StrategyName: "paragraph"})
			}
			continue
		}
		if current.Len() > 0 && current.Len()+2+len(p) > max {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(p)
	}
	flush()

	chunks = mergeShortChunks(chunks, opts.minSize())
	return assignSequence(chunks, c.SourceURL), nil
}

func splitParagraphs(text string) []string {
	parts := blankLineSplit.Split(strings.TrimSpace(text), -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
