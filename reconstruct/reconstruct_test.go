package reconstruct

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyulab/webflux/capability"
	"github.com/iyulab/webflux/content"
)

func TestNoneStrategy_PassesTextThrough(t *testing.T) {
	in := AnalyzedContent{Extracted: content.ExtractedContent{MainText: "hello world", Title: "T"}}
	out, err := NoneStrategy{}.ReconstructAsync(context.Background(), in, Options{})
	require.NoError(t, err)
	assert.Equal(t, "hello world", out.Text)
	assert.Equal(t, "None", out.Strategy)
}

func TestSummarizeStrategy_RequiresCompleter(t *testing.T) {
	strat := NewSummarizeStrategy(nil)
	_, err := strat.ReconstructAsync(context.Background(), AnalyzedContent{}, Options{})
	require.Error(t, err)
}

func TestSummarizeStrategy_CallsCompleter(t *testing.T) {
	strat := NewSummarizeStrategy(capability.MockCompleter{})
	in := AnalyzedContent{Extracted: content.ExtractedContent{MainText: "some long article body"}}
	out, err := strat.ReconstructAsync(context.Background(), in, Options{MaxTokens: 100})
	require.NoError(t, err)
	assert.Contains(t, out.Text, "Summarize")
	assert.Equal(t, "Summarize", out.Strategy)
}

func TestEnrichStrategy_PromptMentionsImageAndHeadingCounts(t *testing.T) {
	strat := NewEnrichStrategy(capability.MockCompleter{})
	in := AnalyzedContent{Extracted: content.ExtractedContent{
		MainText: "body",
		Images:   []content.Image{{}, {}},
		Headings: []content.Heading{{Level: 1}},
	}}
	out, err := strat.ReconstructAsync(context.Background(), in, Options{})
	require.NoError(t, err)
	assert.Contains(t, out.Text, "2 image")
	assert.Contains(t, out.Text, "1 heading")
}

func TestFactory_ExplicitVariantSelectsNamedStrategy(t *testing.T) {
	f := NewFactory(capability.MockCompleter{}, nil)
	strat := f.Resolve(AnalyzedContent{}, Options{Variant: "Rewrite"})
	assert.Equal(t, "Rewrite", strat.Name())
}

func TestFactory_ExplicitVariantCaseInsensitive(t *testing.T) {
	f := NewFactory(capability.MockCompleter{}, nil)
	strat := f.Resolve(AnalyzedContent{}, Options{Variant: "summarize"})
	assert.Equal(t, "Summarize", strat.Name())
}

func TestFactory_UnknownVariantFallsBackToNone(t *testing.T) {
	f := NewFactory(capability.MockCompleter{}, nil)
	strat := f.Resolve(AnalyzedContent{}, Options{Variant: "Bogus"})
	assert.Equal(t, "None", strat.Name())
}

func TestFactory_ExplicitVariantWithoutCompleterStillReturned(t *testing.T) {
	f := NewFactory(nil, nil)
	strat := f.Resolve(AnalyzedContent{}, Options{Variant: "Summarize"})
	assert.Equal(t, "Summarize", strat.Name())
	_, err := strat.ReconstructAsync(context.Background(), AnalyzedContent{}, Options{})
	assert.Error(t, err)
}

func TestFactory_AutoWithoutCompleterReturnsNone(t *testing.T) {
	f := NewFactory(nil, nil)
	strat := f.Resolve(AnalyzedContent{}, Options{Variant: "Auto"})
	assert.Equal(t, "None", strat.Name())
}

func TestFactory_AutoOptOutReturnsNone(t *testing.T) {
	f := NewFactory(capability.MockCompleter{}, nil)
	strat := f.Resolve(AnalyzedContent{}, Options{Variant: "", Params: map[string]string{"opt_out_llm": "true"}})
	assert.Equal(t, "None", strat.Name())
}

func TestFactory_AutoLongTextSelectsSummarize(t *testing.T) {
	f := NewFactory(capability.MockCompleter{}, nil)
	long := make([]byte, 10001)
	for i := range long {
		long[i] = 'a'
	}
	in := AnalyzedContent{Extracted: content.ExtractedContent{MainText: string(long)}}
	strat := f.Resolve(in, Options{Variant: "Auto"})
	assert.Equal(t, "Summarize", strat.Name())
}

func TestFactory_AutoLowQualitySelectsRewrite(t *testing.T) {
	f := NewFactory(capability.MockCompleter{}, nil)
	in := AnalyzedContent{Extracted: content.ExtractedContent{
		MainText: "medium length body text here, not too short not too long.",
		Quality:  content.QualityInfo{Overall: 0.3},
	}}
	strat := f.Resolve(in, Options{Variant: "Auto"})
	assert.Equal(t, "Rewrite", strat.Name())
}

func TestFactory_AutoShortTextSelectsExpand(t *testing.T) {
	f := NewFactory(capability.MockCompleter{}, nil)
	in := AnalyzedContent{Extracted: content.ExtractedContent{
		MainText: "short stub",
		Quality:  content.QualityInfo{Overall: 0.9},
	}}
	strat := f.Resolve(in, Options{Variant: "Auto"})
	assert.Equal(t, "Expand", strat.Name())
}

func TestFactory_AutoImagesSelectsEnrich(t *testing.T) {
	f := NewFactory(capability.MockCompleter{}, nil)
	mid := make([]byte, 600)
	for i := range mid {
		mid[i] = 'b'
	}
	in := AnalyzedContent{Extracted: content.ExtractedContent{
		MainText: string(mid),
		Quality:  content.QualityInfo{Overall: 0.9},
		Images:   []content.Image{{}},
	}}
	strat := f.Resolve(in, Options{Variant: "Auto"})
	assert.Equal(t, "Enrich", strat.Name())
}

func TestFactory_AutoManySectionsSelectsEnrich(t *testing.T) {
	f := NewFactory(capability.MockCompleter{}, nil)
	mid := make([]byte, 600)
	for i := range mid {
		mid[i] = 'b'
	}
	in := AnalyzedContent{Extracted: content.ExtractedContent{
		MainText: string(mid),
		Quality:  content.QualityInfo{Overall: 0.9},
		Metadata: content.MetadataBundle{Structure: content.DocumentStructure{SectionCount: 6}},
	}}
	strat := f.Resolve(in, Options{Variant: "Auto"})
	assert.Equal(t, "Enrich", strat.Name())
}

func TestFactory_AutoDefaultSelectsRewrite(t *testing.T) {
	f := NewFactory(capability.MockCompleter{}, nil)
	mid := make([]byte, 600)
	for i := range mid {
		mid[i] = 'b'
	}
	in := AnalyzedContent{Extracted: content.ExtractedContent{
		MainText: string(mid),
		Quality:  content.QualityInfo{Overall: 0.9},
	}}
	strat := f.Resolve(in, Options{Variant: "Auto"})
	assert.Equal(t, "Rewrite", strat.Name())
}
