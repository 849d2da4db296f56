package orchestrator

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/iyulab/webflux/chunkselect"
	"github.com/iyulab/webflux/content"
	"github.com/iyulab/webflux/events"
	"github.com/iyulab/webflux/markdownconv"
	"github.com/iyulab/webflux/pkg/failure"
	"github.com/iyulab/webflux/pkg/urlutil"
	"github.com/iyulab/webflux/reconstruct"
	"github.com/iyulab/webflux/tokencount"
)

// errInternal signals a §7 Internal error: propagate to the job as
// CrawlError and cancel, matching the teacher's Fatal/abort branch.
var errInternal = errors.New("orchestrator: internal error")

// processURL runs one URL through Fetch → Extract → Reconstruct →
// Chunk → Emit (§4.10's per-URL state machine), acquiring the rate
// limiter's per-host slot before fetching and publishing progress/events
// throughout.
func (o *Orchestrator) processURL(ctx context.Context, rec URLRecord) error {
	rawURL := rec.URL.String()
	o.tracker.StartUrl(rawURL)
	o.bus.Publish(events.Event{Kind: events.UrlProcessingStarted, JobID: o.jobID, Payload: rawURL})

	start := time.Now()

	if err := o.rateLimiter.Acquire(ctx, rec.URL.Host); err != nil {
		o.publishURLFailed(rawURL, "Cancelled", "rate limiter wait cancelled", 0, 0, 0)
		return nil
	}

	result, ferr := o.fetch(ctx, rec.URL)
	if ferr != nil {
		o.publishURLFailed(rawURL, string(kindOf(ferr)), ferr.Error(), statusCodeOf(ferr), fetchMaxAttempts, 0)
		return nil
	}

	extracted, err := extractContent(string(result.Body), rec.URL.String(), rec.URL.Scheme == "https")
	if err != nil {
		o.publishURLFailed(rawURL, string(failure.KindParseError), err.Error(), result.StatusCode, 0, result.ResponseTime.Milliseconds())
		return nil
	}

	for _, link := range extracted.Links {
		o.discoverLink(ctx, link.URL, rec)
	}

	reconstructed := o.reconstructContent(ctx, extracted)

	chunks, strategy := o.chunkExtracted(ctx, extracted, reconstructed)

	o.chunksMu.Lock()
	o.chunks = append(o.chunks, chunks...)
	o.chunksMu.Unlock()

	elapsed := time.Since(start)
	o.tracker.CompleteUrl(rawURL, len(chunks), result.Size, elapsed.Milliseconds(), result.ResponseTime.Milliseconds(), string(extracted.Quality.ContentType))
	o.bus.Publish(events.Event{
		Kind:    events.UrlProcessed,
		JobID:   o.jobID,
		Payload: map[string]any{"url": rawURL, "chunks": len(chunks), "strategy": strategy},
	})
	return nil
}

// discoverLink resolves href against rec's URL and runs it through the
// same admission choke point as a seed, tagged as link-discovered.
func (o *Orchestrator) discoverLink(ctx context.Context, href string, parent URLRecord) {
	u, err := url.Parse(href)
	if err != nil {
		return
	}
	if !u.IsAbs() {
		u = parent.URL.ResolveReference(u)
	}
	canonical := urlutil.Canonicalize(*u)
	o.admitURL(ctx, URLRecord{
		URL:        canonical,
		Depth:      parent.Depth + 1,
		ParentURL:  parent.URL.String(),
		Reason:     ReasonLink,
		InsertedAt: time.Now(),
	})
}

// reconstructContent runs the Factory-selected strategy over extracted
// content, degrading to the raw extracted text on failure so one URL's
// reconstruct error never aborts the job (§7: CapabilityUnavailable
// degrades).
func (o *Orchestrator) reconstructContent(ctx context.Context, extracted content.ExtractedContent) reconstruct.ReconstructedContent {
	in := reconstruct.AnalyzedContent{
		Extracted:  extracted,
		TokenCount: o.tokenCount.CountTokens(extracted.MainText, tokencount.ModelGPT4),
	}
	opts := o.reconstructOpts.ToStrategyOptions()
	strat := o.reconFact.Resolve(in, opts)
	out, err := strat.ReconstructAsync(ctx, in, opts)
	if err != nil {
		return reconstruct.ReconstructedContent{Text: extracted.MainText, Title: extracted.Title, Strategy: "None"}
	}
	return out
}

// chunkExtracted lets the Selector recommend a strategy (unless the
// caller pinned one via ChunkingOptions.Strategy), runs it, and on success
// sets history to 1.0 under the registry name of the strategy it ran; the
// chunk count is not recorded.
func (o *Orchestrator) chunkExtracted(ctx context.Context, extracted content.ExtractedContent, reconstructed reconstruct.ReconstructedContent) ([]content.Chunk, string) {
	withReconstructed := extracted
	withReconstructed.MainText = reconstructed.Text
	if reconstructed.Strategy != "None" && reconstructed.Strategy != "" {
		rawHTML, headings := markdownconv.ReparseMarkdown(reconstructed.Text)
		withReconstructed.RawHTML = rawHTML
		if len(headings) > 0 {
			withReconstructed.Headings = headings
		}
	}

	strategyName := o.chunkingOpts.Strategy
	if strategyName == "" {
		rec := chunkselect.Select(chunkselect.Input{
			HasImages:       len(extracted.Images) > 0,
			ContentType:     extracted.Quality.ContentType,
			TokenCount:      o.tokenCount.CountTokens(withReconstructed.MainText, tokencount.ModelGPT4),
			ComplexityScore: extracted.Metadata.Structure.ComplexityScore,
			StructureScore:  chunkselect.StructureScoreFor(extracted.Metadata.Structure),
		}, o.history)
		strategyName = chunkselect.ExecutionStrategy[rec.Strategy]
	}

	chunks, err := o.chunkReg.Run(ctx, strategyName, withReconstructed, o.chunkingOpts.ToStrategyOptions())
	if err != nil {
		return nil, strategyName
	}
	o.history[strategyName] = 1.0
	return chunks, strategyName
}

func kindOf(err failure.ClassifiedError) failure.Kind {
	if k, ok := err.(failure.Kinded); ok {
		return k.Kind()
	}
	return failure.KindInternal
}

func statusCodeOf(err failure.ClassifiedError) int {
	type statusCoded interface{ StatusCode() int }
	if sc, ok := err.(statusCoded); ok {
		return sc.StatusCode()
	}
	return 0
}
