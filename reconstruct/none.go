package reconstruct

import "context"

// NoneStrategy passes the extracted text through unchanged. It is always
// available — it requires no completion capability (§4.9).
type NoneStrategy struct{}

func (NoneStrategy) Name() string { return "None" }

func (NoneStrategy) Characteristics() Characteristics {
	return Characteristics{
		QualityLevel:        QualityMedium,
		MemoryCost:          "low",
		ComputeCost:         "none",
		RequiresLLM:         false,
		RecommendedUseCases: []string{"already well-formed content", "cost-sensitive pipelines"},
	}
}

func (NoneStrategy) ReconstructAsync(_ context.Context, in AnalyzedContent, _ Options) (ReconstructedContent, error) {
	return ReconstructedContent{
		Text:     in.Extracted.MainText,
		Title:    in.Extracted.Title,
		Strategy: "None",
	}, nil
}
