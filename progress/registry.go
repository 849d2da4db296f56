package progress

import (
	"sync"
	"time"
)

// DefaultIdleThreshold is how long a tracker may go without an update
// before the registry's Sweep evicts it (§4.3 "default 1 hour").
const DefaultIdleThreshold = time.Hour

// Registry holds one Tracker per job ID and evicts idle ones. Subscribers
// of an evicted tracker observe channel completion, since eviction closes
// the tracker the same way Cancel/Complete do.
type Registry struct {
	mu            sync.Mutex
	trackers      map[string]*Tracker
	idleThreshold time.Duration
	now           func() time.Time
}

func NewRegistry(idleThreshold time.Duration) *Registry {
	if idleThreshold <= 0 {
		idleThreshold = DefaultIdleThreshold
	}
	return &Registry{
		trackers:      make(map[string]*Tracker),
		idleThreshold: idleThreshold,
		now:           time.Now,
	}
}

func (r *Registry) Create(jobID string, total int) *Tracker {
	t := NewWithClock(jobID, total, r.now)
	r.mu.Lock()
	r.trackers[jobID] = t
	r.mu.Unlock()
	return t
}

func (r *Registry) Get(jobID string) (*Tracker, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.trackers[jobID]
	return t, ok
}

func (r *Registry) Remove(jobID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.trackers, jobID)
}

// Sweep removes every tracker idle past the threshold and returns their
// job IDs; a tracker that is not yet done is first cancelled with reason
// "idle_eviction" so its subscribers observe completion.
func (r *Registry) Sweep() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	var evicted []string
	for id, t := range r.trackers {
		if t.IdleSince(now) < r.idleThreshold {
			continue
		}
		if !t.Done() {
			t.Cancel("idle_eviction")
		}
		delete(r.trackers, id)
		evicted = append(evicted, id)
	}
	return evicted
}
