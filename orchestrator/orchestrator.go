package orchestrator

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iyulab/webflux/capability"
	"github.com/iyulab/webflux/chunk"
	"github.com/iyulab/webflux/chunkselect"
	"github.com/iyulab/webflux/config"
	"github.com/iyulab/webflux/content"
	"github.com/iyulab/webflux/events"
	"github.com/iyulab/webflux/policy"
	"github.com/iyulab/webflux/progress"
	"github.com/iyulab/webflux/ratelimit"
	"github.com/iyulab/webflux/reconstruct"
	"github.com/iyulab/webflux/tokencount"
)

// cancelGracePeriod is a 5s settle window for cancelled jobs. Nothing reads
// it: after cancellation Run waits on its worker group with no time bound
// and returns only once every in-flight URL has finished.
const cancelGracePeriod = 5 * time.Second

// Orchestrator drives the pipeline: frontier → fetch → extract →
// reconstruct → chunk → emit, fanned out over a worker pool. It is
// generalized from the teacher's Scheduler (sole control-plane
// authority, single admission choke point) to run many workers
// concurrently via golang.org/x/sync/errgroup instead of one synchronous
// loop.
type Orchestrator struct {
	jobID string
	cfg   config.CrawlConfiguration

	httpClient  capability.HTTPDoer
	policyCache *policy.Cache
	rateLimiter *ratelimit.Limiter
	tracker     *progress.Tracker
	bus         *events.Bus
	tokenCount  *tokencount.Counter
	chunkReg    *chunk.Registry
	reconFact   *reconstruct.Factory
	logger      *zap.SugaredLogger

	reconstructOpts config.ReconstructOptions
	chunkingOpts    config.ChunkingOptions

	frontier *Frontier

	errMu    sync.Mutex
	errCount int

	history chunkselect.PerformanceHistory

	chunksMu sync.Mutex
	chunks   []content.Chunk

	inFlightMu sync.Mutex
	inFlight   int
}

// Deps bundles the Orchestrator's external collaborators. Every field is
// optional; nil fields get a process-appropriate default.
type Deps struct {
	HTTPClient  capability.HTTPDoer
	PolicyCache *policy.Cache
	RateLimiter *ratelimit.Limiter
	Tracker     *progress.Tracker
	Bus         *events.Bus
	TokenCount  *tokencount.Counter
	ChunkReg    *chunk.Registry
	Completer   capability.Completer
	Embedder    capability.Embedder
	Logger      *zap.SugaredLogger
}

// New builds an Orchestrator for a single crawl job.
func New(cfg config.CrawlConfiguration, reconstructOpts config.ReconstructOptions, chunkingOpts config.ChunkingOptions, deps Deps, totalURLs int) *Orchestrator {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop().Sugar()
	}
	if deps.HTTPClient == nil {
		deps.HTTPClient = &http.Client{}
	}
	if deps.PolicyCache == nil {
		deps.PolicyCache = policy.NewCache(deps.HTTPClient, policy.WithUserAgent(cfg.UserAgent()))
	}
	if deps.RateLimiter == nil {
		deps.RateLimiter = ratelimit.New(ratelimit.WithBaseDelay(cfg.CrawlDelay()))
	}
	jobID := uuid.NewString()
	if deps.Tracker == nil {
		deps.Tracker = progress.New(jobID, totalURLs)
	}
	if deps.Bus == nil {
		deps.Bus = events.New()
	}
	if deps.TokenCount == nil {
		deps.TokenCount = tokencount.New()
	}
	if deps.ChunkReg == nil {
		deps.ChunkReg = chunk.NewRegistry()
	}
	if chunkingOpts.Params == nil {
		chunkingOpts.Params = map[string]string{}
	}

	return &Orchestrator{
		jobID:           jobID,
		cfg:             cfg,
		httpClient:      deps.HTTPClient,
		policyCache:     deps.PolicyCache,
		rateLimiter:     deps.RateLimiter,
		tracker:         deps.Tracker,
		bus:             deps.Bus,
		tokenCount:      deps.TokenCount,
		chunkReg:        deps.ChunkReg,
		reconFact:       reconstruct.NewFactory(deps.Completer, deps.Logger),
		logger:          deps.Logger,
		reconstructOpts: reconstructOpts,
		chunkingOpts:    chunkingOpts,
		frontier:        NewFrontier(cfg),
		history:         make(chunkselect.PerformanceHistory),
	}
}

// JobID returns the tracker/event job identifier for this crawl.
func (o *Orchestrator) JobID() string { return o.jobID }

// Tracker exposes the progress tracker so callers can Subscribe for
// streaming snapshots.
func (o *Orchestrator) Tracker() *progress.Tracker { return o.tracker }

// Bus exposes the event bus so callers can subscribe to typed events.
func (o *Orchestrator) Bus() *events.Bus { return o.bus }

// Run seeds the frontier and drives the worker pool to completion or
// cancellation, returning the accumulated chunks (§4.10).
func (o *Orchestrator) Run(ctx context.Context, seeds []url.URL) ([]content.Chunk, error) {
	o.bus.Publish(events.Event{Kind: events.CrawlStarted, JobID: o.jobID})

	for _, s := range seeds {
		o.admitURL(ctx, seedURL(s))
	}

	workers := o.cfg.GlobalWorkers()
	if workers < 1 {
		workers = 1
	}

	group, groupCtx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		group.Go(func() error {
			return o.workerLoop(groupCtx)
		})
	}

	runErr := group.Wait()

	o.frontier.Drain()
	snapshot := o.tracker.Complete()
	kind := events.CrawlCompleted
	if runErr != nil {
		kind = events.CrawlError
	}
	o.bus.Publish(events.Event{Kind: kind, JobID: o.jobID, Payload: snapshot})

	o.chunksMu.Lock()
	defer o.chunksMu.Unlock()
	return append([]content.Chunk(nil), o.chunks...), runErr
}

// workerLoop pulls URLs from the frontier until it drains or the context
// is cancelled, running fetch→extract→reconstruct→chunk sequentially for
// each (§5: "stages do not themselves fan out"). When the queue runs dry
// but sibling workers are still mid-flight (and so may discover more
// URLs), it waits briefly rather than exiting early — the frontier is
// only truly drained once no URL is both queued and in flight.
func (o *Orchestrator) workerLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		rec, ok := o.frontier.Dequeue()
		if !ok {
			if o.anyInFlight() {
				if !sleepOrDone(ctx, 10*time.Millisecond) {
					return nil
				}
				continue
			}
			return nil
		}

		o.beginInFlight()
		err := o.processURL(ctx, rec)
		o.endInFlight()
		if err == errInternal {
			return err
		}
	}
}

func (o *Orchestrator) beginInFlight() {
	o.inFlightMu.Lock()
	o.inFlight++
	o.inFlightMu.Unlock()
}

func (o *Orchestrator) endInFlight() {
	o.inFlightMu.Lock()
	o.inFlight--
	o.inFlightMu.Unlock()
}

func (o *Orchestrator) anyInFlight() bool {
	o.inFlightMu.Lock()
	defer o.inFlightMu.Unlock()
	return o.inFlight > 0
}

// sleepOrDone waits for d or ctx cancellation, returning false if ctx won.
func sleepOrDone(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
