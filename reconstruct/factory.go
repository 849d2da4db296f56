package reconstruct

import (
	"strings"

	"go.uber.org/zap"

	"github.com/iyulab/webflux/capability"
)

// Factory resolves a requested variant (or "Auto") into a concrete
// Strategy, the way the teacher's internal/mdconvert wires a single
// ConvertRule — generalized here to a small registry plus an
// analysis-driven default.
type Factory struct {
	completer capability.Completer
	logger    *zap.SugaredLogger
	variants  map[string]Strategy
}

// NewFactory builds a Factory. completer may be nil — the four
// LLM-backed variants then return an error if selected explicitly, and
// Auto silently falls back to None.
func NewFactory(completer capability.Completer, logger *zap.SugaredLogger) *Factory {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	f := &Factory{completer: completer, logger: logger, variants: make(map[string]Strategy)}
	f.variants["None"] = NoneStrategy{}
	f.variants["Summarize"] = NewSummarizeStrategy(completer)
	f.variants["Expand"] = NewExpandStrategy(completer)
	f.variants["Rewrite"] = NewRewriteStrategy(completer)
	f.variants["Enrich"] = NewEnrichStrategy(completer)
	return f
}

// Resolve picks a Strategy for opts.Variant and in's analyzed signals.
func (f *Factory) Resolve(in AnalyzedContent, opts Options) Strategy {
	name := strings.TrimSpace(opts.Variant)

	if name != "" && !strings.EqualFold(name, "auto") {
		canonical := canonicalVariantName(name)
		strat, ok := f.variants[canonical]
		if !ok {
			f.logger.Warnw("reconstruct: unknown variant requested, falling back to None", "variant", name)
			return f.variants["None"]
		}
		if strat.Characteristics().RequiresLLM && f.completer == nil {
			f.logger.Warnw("reconstruct: variant requires a completion capability that is absent", "variant", canonical)
		}
		return strat
	}

	if f.completer == nil || opts.Params["opt_out_llm"] == "true" {
		return f.variants["None"]
	}

	return f.variants[f.autoSelect(in)]
}

func canonicalVariantName(name string) string {
	for _, canon := range []string{"None", "Summarize", "Expand", "Rewrite", "Enrich"} {
		if strings.EqualFold(canon, name) {
			return canon
		}
	}
	return name
}

// autoSelect implements §4.9's Auto heuristic over analyzed signals.
func (f *Factory) autoSelect(in AnalyzedContent) string {
	length := len(in.Extracted.MainText)
	quality := in.Extracted.Quality.Overall
	sections := sectionCount(in)

	switch {
	case length > 10000:
		return "Summarize"
	case quality < 0.6:
		return "Rewrite"
	case length < 500:
		return "Expand"
	case len(in.Extracted.Images) > 0 || sections > 5:
		return "Enrich"
	default:
		return "Rewrite"
	}
}

func sectionCount(in AnalyzedContent) int {
	return in.Extracted.Metadata.Structure.SectionCount
}
