package engine

import (
	"context"
	"sync"
	"time"
)

// Registry owns the live plans, keyed by wedding id.  Plans are
// created lazily on first access so the server never preloads every
// wedding in the database; each new plan's lock sweep is started under
// the registry's lifecycle context.
type Registry struct {
	mu     sync.Mutex
	cfg    Config
	pusher Pusher
	plans  map[string]*Plan

	sweepEvery time.Duration
	onCreate   func(*Plan)
	ctx        context.Context
	cancel     context.CancelFunc
}

// OnPlanCreate registers a hook invoked once for every plan the
// registry creates.  The server uses it to fan plan events out to the
// message broker.  Set it before the first Get.
func (r *Registry) OnPlanCreate(fn func(*Plan)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onCreate = fn
}

// NewRegistry builds a registry.  sweepEvery controls how often each
// plan's lock manager collects expired locks.
func NewRegistry(cfg Config, pusher Pusher, sweepEvery time.Duration) *Registry {
	if sweepEvery <= 0 {
		sweepEvery = 5 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Registry{
		cfg:        cfg,
		pusher:     pusher,
		plans:      make(map[string]*Plan),
		sweepEvery: sweepEvery,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Get returns the plan for a wedding, creating it on first use.
func (r *Registry) Get(weddingID string) *Plan {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.plans[weddingID]; ok {
		return p
	}
	p := NewPlan(weddingID, r.cfg, r.pusher)
	r.plans[weddingID] = p
	go p.Locks().Run(r.ctx, r.sweepEvery)
	if r.onCreate != nil {
		r.onCreate(p)
	}
	return p
}

// Plans returns the currently live plans.
func (r *Registry) Plans() []*Plan {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Plan, 0, len(r.plans))
	for _, p := range r.plans {
		out = append(out, p)
	}
	return out
}

// Lookup returns the plan only if it already exists.
func (r *Registry) Lookup(weddingID string) (*Plan, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.plans[weddingID]
	return p, ok
}

// Close stops every plan's loop and the lock sweeps.
func (r *Registry) Close() {
	r.cancel()
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.plans {
		p.Close()
	}
}
