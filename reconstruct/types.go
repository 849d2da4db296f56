// Package reconstruct implements the Reconstruct Strategies & Factory
// (§4.9): None/Summarize/Expand/Rewrite/Enrich variants over a
// capability.Completer, plus a Factory that auto-selects a variant from
// content signals. It is grounded on the teacher's internal/mdconvert
// ConvertRule interface + StrictConversionRule shape (one interface,
// several dispatchable implementations, a structured-log sink on
// failure), generalized from "one fixed conversion" to "several
// pluggable rewrite strategies" and logging through go.uber.org/zap in
// place of the teacher's MetadataSink.
package reconstruct

import (
	"context"

	"github.com/iyulab/webflux/content"
)

// AnalyzedContent is the Reconstruct stage's input: the extracted
// content plus its quality evaluation (§4.9 "AnalyzedContent").
type AnalyzedContent struct {
	Extracted  content.ExtractedContent
	TokenCount int
}

// ReconstructedContent is a variant's output.
type ReconstructedContent struct {
	Text     string
	Title    string
	Strategy string
	Notes    []string
}

// Options configures a reconstruct call.
type Options struct {
	Variant    string // "None", "Summarize", "Expand", "Rewrite", "Enrich", "Auto", or ""
	UseLLM     bool
	MaxTokens  int
	Params     map[string]string
}

// QualityLevel is a coarse characteristic of a variant's typical output.
type QualityLevel string

const (
	QualityLow    QualityLevel = "low"
	QualityMedium QualityLevel = "medium"
	QualityHigh   QualityLevel = "high"
)

// Characteristics describes a variant's cost/quality profile, used by
// callers to reason about tradeoffs. The Factory reads only RequiresLLM,
// when a variant is named explicitly; its Auto heuristic does not use it.
type Characteristics struct {
	QualityLevel        QualityLevel
	MemoryCost          string
	ComputeCost         string
	RequiresLLM         bool
	RecommendedUseCases []string
}

// Strategy is one reconstruct variant.
type Strategy interface {
	Name() string
	Characteristics() Characteristics
	ReconstructAsync(ctx context.Context, in AnalyzedContent, opts Options) (ReconstructedContent, error)
}
