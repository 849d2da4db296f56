package chunkselect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyulab/webflux/content"
)

func TestSelect_HasImagesFavorsAuto(t *testing.T) {
	rec := Select(Input{HasImages: true}, nil)
	assert.Equal(t, StrategyAuto, rec.Strategy)
}

func TestSelect_LongTokenCountFavorsSemanticOverParagraph(t *testing.T) {
	rec := Select(Input{TokenCount: 1500, ComplexityScore: 0.7}, nil)
	assert.Equal(t, StrategySemantic, rec.Strategy)
}

func TestSelect_VeryLargeDocumentFavorsMemoryOptimized(t *testing.T) {
	rec := Select(Input{TokenCount: 6000}, nil)
	assert.Equal(t, StrategyMemoryOptimized, rec.Strategy)
}

func TestSelect_TieBreakOrderDeterministic(t *testing.T) {
	// Zero signal everywhere: only Auto's and Paragraph's baselines fire.
	rec := Select(Input{}, nil)
	assert.Contains(t, []string{StrategyAuto, StrategyParagraph}, rec.Strategy)
}

func TestSelect_ConfidenceIsOneWithDominantWinner(t *testing.T) {
	rec := Select(Input{HasImages: true, TokenCount: 6000}, nil)
	require.GreaterOrEqual(t, rec.Confidence, 0.0)
	require.LessOrEqual(t, rec.Confidence, 1.0)
}

func TestSelect_HistoryAddsPerformanceSubScore(t *testing.T) {
	history := PerformanceHistory{StrategyParagraph: 0.9}
	rec := Select(Input{}, history)

	var paragraphScore CandidateScore
	for _, s := range rec.Scores {
		if s.Strategy == StrategyParagraph {
			paragraphScore = s
		}
	}
	require.NotEmpty(t, paragraphScore.SubScores)

	found := false
	for _, s := range paragraphScore.SubScores {
		if s.Name == "performance" {
			found = true
			assert.InDelta(t, 0.9, s.Value, 0.001)
		}
	}
	assert.True(t, found)
}

func TestSelect_ScoresSortedDescendingByTotal(t *testing.T) {
	rec := Select(Input{HasImages: true, TokenCount: 6000, ComplexityScore: 0.8, StructureScore: 0.9}, nil)
	for i := 1; i < len(rec.Scores); i++ {
		assert.GreaterOrEqual(t, rec.Scores[i-1].Total, rec.Scores[i].Total)
	}
}

func TestSelect_ReasoningSentenceNonEmpty(t *testing.T) {
	rec := Select(Input{HasImages: true}, nil)
	assert.NotEmpty(t, rec.Reasoning)
}

func TestStructureScoreFor_ClippedToOne(t *testing.T) {
	heavy := content.DocumentStructure{
		Headings:     make([]content.Heading, 20),
		SectionCount: 20,
		TableCount:   20,
		ListCount:    20,
	}
	s := StructureScoreFor(heavy)
	assert.LessOrEqual(t, s, 1.0)
}
