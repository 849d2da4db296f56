package tokencount

import "sort"

// costPerThousandTokens is a rough, relative cost table used only to rank
// models for the optimal-model recommendation — not a billing source of
// truth.
var costPerThousandTokens = map[Model]float64{
	ModelGPT3:      0.002,
	ModelGPT4:      0.03,
	ModelGPT4Turbo: 0.01,
	ModelClaude:    0.008,
	ModelLlama2:    0.0,
	ModelLlama3:    0.0,
}

var knownModels = []Model{ModelGPT3, ModelGPT4, ModelGPT4Turbo, ModelClaude, ModelLlama2, ModelLlama3}

// ModelAnalysis is one model's entry in an AnalyzeTokens result.
type ModelAnalysis struct {
	Model            Model
	TokenCount       int
	EstimatedCostUSD float64
	CompressionRatio float64 // characters per token; higher = more efficient
}

// Analysis is the result of AnalyzeTokens: per-model breakdown plus the
// cheapest-cost recommendation.
type Analysis struct {
	TextLength    int
	PerModel      []ModelAnalysis
	OptimalModel  Model
}

// AnalyzeTokens counts text against every known model family and
// recommends the lowest-cost option.
func (c *Counter) AnalyzeTokens(text string) Analysis {
	result := Analysis{TextLength: len(text)}

	var best Model
	bestCost := -1.0

	for _, m := range knownModels {
		n := c.CountTokens(text, m)
		cost := float64(n) / 1000.0 * costPerThousandTokens[m]
		ratio := 0.0
		if n > 0 {
			ratio = float64(len(text)) / float64(n)
		}
		result.PerModel = append(result.PerModel, ModelAnalysis{
			Model: m, TokenCount: n, EstimatedCostUSD: cost, CompressionRatio: ratio,
		})
		if bestCost < 0 || cost < bestCost {
			bestCost = cost
			best = m
		}
	}

	sort.Slice(result.PerModel, func(i, j int) bool {
		return result.PerModel[i].Model < result.PerModel[j].Model
	})

	result.OptimalModel = best
	return result
}
