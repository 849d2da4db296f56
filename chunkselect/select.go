// Package chunkselect implements the Chunking Strategy Selector (§4.8): a
// scoring function over content-analysis signals that recommends one of
// the chunk package's strategies, with a confidence score, per-strategy
// sub-score breakdown, and a human-readable reasoning sentence. It has no
// direct teacher counterpart; it is grounded on the teacher's
// internal/scheduler dispatch-by-signal idiom, generalized from "which
// worker should claim this URL" to "which strategy fits this content".
package chunkselect

import (
	"fmt"
	"sort"

	"github.com/iyulab/webflux/content"
)

// Strategy names as scored by the selector. "auto" and "smart" both
// resolve to the registry's "dom_structure" strategy — the selector
// scores them as distinct candidates because they reward different
// signals (general-purpose vs. structural complexity), but neither has a
// separate execution path of its own; see DESIGN.md.
const (
	StrategyAuto             = "auto"
	StrategySmart            = "smart"
	StrategySemantic         = "semantic"
	StrategyParagraph        = "paragraph"
	StrategyFixedSize        = "fixed_size"
	StrategyMemoryOptimized  = "memory_optimized"
)

// candidateOrder is the deterministic tie-break order of §4.8.
var candidateOrder = []string{
	StrategyAuto, StrategySmart, StrategySemantic,
	StrategyParagraph, StrategyFixedSize, StrategyMemoryOptimized,
}

// ExecutionStrategy maps a scored candidate name to the chunk.Registry
// strategy name that actually performs the split.
var ExecutionStrategy = map[string]string{
	StrategyAuto:            "dom_structure",
	StrategySmart:           "dom_structure",
	StrategySemantic:        "semantic",
	StrategyParagraph:       "paragraph",
	StrategyFixedSize:       "fixed_size",
	StrategyMemoryOptimized: "memory_optimized",
}

// Input is the content-analysis signal set the selector scores against.
type Input struct {
	HasImages       bool
	ContentType     content.ContentType
	TokenCount      int
	ComplexityScore float64 // content.DocumentStructure.ComplexityScore, [0,1]
	StructureScore  float64 // structural-richness ratio, [0,1]; see structureScore()
}

// PerformanceHistory maps a candidate name to its average observed
// improvement from past selections, used as an additive Performance
// sub-score.
type PerformanceHistory map[string]float64

// SubScore is one named contribution to a candidate's total.
type SubScore struct {
	Name  string
	Value float64
}

// CandidateScore is one strategy's full scoring breakdown.
type CandidateScore struct {
	Strategy  string
	Total     float64
	SubScores []SubScore
}

// Recommendation is the selector's output.
type Recommendation struct {
	Strategy            string
	Confidence          float64
	Scores              []CandidateScore
	Reasoning           string
	ExpectedImprovement float64
	DefaultParams       map[string]string
}

// Select scores every candidate against in and history, and recommends
// the highest-total strategy (deterministic tie-break on equal totals).
func Select(in Input, history PerformanceHistory) Recommendation {
	scores := make([]CandidateScore, 0, len(candidateOrder))
	for _, name := range candidateOrder {
		scores = append(scores, scoreCandidate(name, in, history))
	}

	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Total != scores[j].Total {
			return scores[i].Total > scores[j].Total
		}
		return candidateRank(scores[i].Strategy) < candidateRank(scores[j].Strategy)
	})

	best := scores[0]
	confidence := 1.0
	expectedImprovement := 0.0
	if len(scores) > 1 {
		second := scores[1]
		if best.Total != 0 {
			confidence = clip01((best.Total-second.Total)/best.Total + 0.5)
		}
		expectedImprovement = best.Total - second.Total
	}

	return Recommendation{
		Strategy:            best.Strategy,
		Confidence:          confidence,
		Scores:              scores,
		Reasoning:           reasoningSentence(best, in),
		ExpectedImprovement: expectedImprovement,
		DefaultParams:       defaultParams(best.Strategy, in),
	}
}

func candidateRank(name string) int {
	for i, n := range candidateOrder {
		if n == name {
			return i
		}
	}
	return len(candidateOrder)
}

func scoreCandidate(name string, in Input, history PerformanceHistory) CandidateScore {
	var subs []SubScore

	switch name {
	case StrategyAuto:
		subs = append(subs, SubScore{"general", 0.8})
		if in.HasImages {
			subs = append(subs, SubScore{"has_images", 0.9})
		}
	case StrategySmart:
		subs = append(subs, SubScore{"complexity", in.ComplexityScore})
		if in.StructureScore > 0.7 {
			subs = append(subs, SubScore{"structure", 0.9})
		}
	case StrategySemantic:
		if in.TokenCount > 1000 {
			subs = append(subs, SubScore{"long_form", 0.9})
		}
		if in.ComplexityScore > 0.6 {
			subs = append(subs, SubScore{"complexity", 0.8})
		}
	case StrategyParagraph:
		if in.StructureScore > 0.8 {
			subs = append(subs, SubScore{"structure", 0.9})
		}
		subs = append(subs, SubScore{"baseline", 0.7})
	case StrategyFixedSize:
		subs = append(subs, SubScore{"predictability", 0.8})
		if in.TokenCount < 500 {
			subs = append(subs, SubScore{"short_form", 0.6})
		}
	case StrategyMemoryOptimized:
		if in.TokenCount > 5000 {
			subs = append(subs, SubScore{"large_document", 0.9})
		}
		subs = append(subs, SubScore{"memory_efficiency", 0.8})
	}

	if history != nil {
		if avg, ok := history[name]; ok {
			subs = append(subs, SubScore{"performance", clip01(avg)})
		}
	}

	total := 0.0
	for _, s := range subs {
		total += s.Value
	}
	return CandidateScore{Strategy: name, Total: total, SubScores: subs}
}

func clip01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func reasoningSentence(best CandidateScore, in Input) string {
	if len(best.SubScores) == 0 {
		return fmt.Sprintf("%s selected by default tie-break order.", best.Strategy)
	}
	top := best.SubScores[0]
	for _, s := range best.SubScores[1:] {
		if s.Value > top.Value {
			top = s
		}
	}
	return fmt.Sprintf("%s scored highest (%.2f), driven mainly by %s (%.2f).", best.Strategy, best.Total, top.Name, top.Value)
}

func defaultParams(strategy string, in Input) map[string]string {
	params := map[string]string{"max_size": "1500", "min_size": "200"}
	switch strategy {
	case StrategyFixedSize, StrategyMemoryOptimized:
		params["overlap"] = "100"
	case StrategySemantic:
		params["threshold"] = "0.8"
	}
	if in.TokenCount > 5000 {
		params["max_size"] = "2000"
	}
	return params
}

// structureScore derives a [0,1] structural-richness ratio from a
// document's structure counts, independent of ComplexityScore's
// word-count normalization, for callers building an Input from a
// content.DocumentStructure.
func structureScore(s content.DocumentStructure) float64 {
	richness := float64(len(s.Headings)+s.SectionCount+s.TableCount+s.ListCount) / 10.0
	return clip01(richness)
}

// StructureScoreFor exposes structureScore to callers outside the
// package building an Input from extracted metadata.
func StructureScoreFor(s content.DocumentStructure) float64 {
	return structureScore(s)
}
