package reconstruct

import (
	"context"
	"fmt"

	"github.com/iyulab/webflux/capability"
)

// completerStrategy is the shared shape of the four LLM-backed variants:
// build a prompt, call Completer, wrap the result.
type completerStrategy struct {
	name             string
	characteristics  Characteristics
	buildPrompt      func(in AnalyzedContent, opts Options) string
	completer        capability.Completer
}

func (s completerStrategy) Name() string                     { return s.name }
func (s completerStrategy) Characteristics() Characteristics { return s.characteristics }

func (s completerStrategy) ReconstructAsync(ctx context.Context, in AnalyzedContent, opts Options) (ReconstructedContent, error) {
	if s.completer == nil {
		return ReconstructedContent{}, fmt.Errorf("reconstruct: %s requires a completion capability", s.name)
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	prompt := s.buildPrompt(in, opts)
	text, err := s.completer.Complete(ctx, prompt, maxTokens)
	if err != nil {
		return ReconstructedContent{}, fmt.Errorf("reconstruct: %s: %w", s.name, err)
	}
	return ReconstructedContent{
		Text:     text,
		Title:    in.Extracted.Title,
		Strategy: s.name,
	}, nil
}

// NewSummarizeStrategy condenses long text. Requires a completion
// capability (§4.9).
func NewSummarizeStrategy(completer capability.Completer) Strategy {
	return completerStrategy{
		name:      "Summarize",
		completer: completer,
		characteristics: Characteristics{
			QualityLevel:        QualityHigh,
			MemoryCost:          "low",
			ComputeCost:         "high",
			RequiresLLM:         true,
			RecommendedUseCases: []string{"very long documents", "reducing token footprint before embedding"},
		},
		buildPrompt: func(in AnalyzedContent, _ Options) string {
			return "Summarize the following content concisely, preserving key facts:\n\n" + in.Extracted.MainText
		},
	}
}

// NewExpandStrategy elaborates short or thin text. Requires a completion
// capability (§4.9).
func NewExpandStrategy(completer capability.Completer) Strategy {
	return completerStrategy{
		name:      "Expand",
		completer: completer,
		characteristics: Characteristics{
			QualityLevel:        QualityMedium,
			MemoryCost:          "low",
			ComputeCost:         "high",
			RequiresLLM:         true,
			RecommendedUseCases: []string{"sparse or stub pages", "thin content needing more retrievable detail"},
		},
		buildPrompt: func(in AnalyzedContent, _ Options) string {
			return "Expand the following content with relevant supporting detail, without inventing facts:\n\n" + in.Extracted.MainText
		},
	}
}

// NewRewriteStrategy improves clarity/quality of middling content.
// Requires a completion capability (§4.9).
func NewRewriteStrategy(completer capability.Completer) Strategy {
	return completerStrategy{
		name:      "Rewrite",
		completer: completer,
		characteristics: Characteristics{
			QualityLevel:        QualityHigh,
			MemoryCost:          "low",
			ComputeCost:         "medium",
			RequiresLLM:         true,
			RecommendedUseCases: []string{"low-quality extraction", "noisy or poorly structured source HTML"},
		},
		buildPrompt: func(in AnalyzedContent, _ Options) string {
			return "Rewrite the following content for clarity and readability, preserving meaning:\n\n" + in.Extracted.MainText
		},
	}
}

// NewEnrichStrategy adds structural/contextual annotations, useful for
// image-heavy or highly sectioned documents. Requires a completion
// capability (§4.9).
func NewEnrichStrategy(completer capability.Completer) Strategy {
	return completerStrategy{
		name:      "Enrich",
		completer: completer,
		characteristics: Characteristics{
			QualityLevel:        QualityHigh,
			MemoryCost:          "medium",
			ComputeCost:         "high",
			RequiresLLM:         true,
			RecommendedUseCases: []string{"image-heavy pages", "multi-section documents benefiting from added context"},
		},
		buildPrompt: func(in AnalyzedContent, _ Options) string {
			return fmt.Sprintf(
				"Enrich the following content with brief contextual notes for its %d image(s) and %d heading section(s):\n\n%s",
				len(in.Extracted.Images), len(in.Extracted.Headings), in.Extracted.MainText,
			)
		},
	}
}
