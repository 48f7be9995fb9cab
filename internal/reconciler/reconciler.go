// Package reconciler keeps the seating engine's seat bindings and the
// Guest List's assignment projection convergent.  The spatial model is
// the source of truth: on any disagreement the Guest List record is
// overwritten, never the other way around.
package reconciler

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/iliyamo/wedding-seating-engine/internal/engine"
	"github.com/iliyamo/wedding-seating-engine/internal/guestlist"
	"github.com/iliyamo/wedding-seating-engine/internal/model"
)

// ErrSyncPushFailed marks a push that exhausted its retries.  It is
// recoverable: the local edit already committed, the Guest List is
// merely stale until the next Reconcile sweep.
var ErrSyncPushFailed = errors.New("sync push failed")

// Config tunes the outbound push pipeline.
type Config struct {
	Retries   int           // attempts per push before giving up, default 3
	Backoff   time.Duration // initial retry backoff (doubles), default 250ms
	Timeout   time.Duration // per-attempt timeout, default 5s
	QueueSize int           // pending push buffer, default 256
}

func (c Config) withDefaults() Config {
	if c.Retries <= 0 {
		c.Retries = 3
	}
	if c.Backoff <= 0 {
		c.Backoff = 250 * time.Millisecond
	}
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Second
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 256
	}
	return c
}

// Reconciler owns the outbound push queue and the batch sweep.  It
// implements engine.Pusher, so plans hand it every assignment change
// as it happens.
type Reconciler struct {
	cfg    Config
	client guestlist.Client
	queue  chan model.AssignmentPush

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds a Reconciler and starts its push worker.
func New(client guestlist.Client, cfg Config) *Reconciler {
	cfg = cfg.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	r := &Reconciler{
		cfg:    cfg,
		client: client,
		queue:  make(chan model.AssignmentPush, cfg.QueueSize),
		ctx:    ctx,
		cancel: cancel,
	}
	r.wg.Add(1)
	go r.worker()
	return r
}

// Close stops the worker after draining the queue.
func (r *Reconciler) Close() {
	r.cancel()
	r.wg.Wait()
}

// SchedulePush enqueues an assignment change for delivery.  The call
// never blocks the mutation path: when the buffer is full the push is
// dropped with a log line and the periodic Reconcile sweep repairs the
// divergence.
func (r *Reconciler) SchedulePush(p model.AssignmentPush) {
	select {
	case r.queue <- p:
	default:
		log.Printf("seating-sync: push queue full, dropping update for guest %s (sweep will repair)", p.GuestID)
	}
}

func (r *Reconciler) worker() {
	defer r.wg.Done()
	for {
		select {
		case <-r.ctx.Done():
			// Drain what is already queued before exiting.
			for {
				select {
				case p := <-r.queue:
					r.deliver(p)
				default:
					return
				}
			}
		case p := <-r.queue:
			r.deliver(p)
		}
	}
}

// deliver attempts one push with bounded retry and doubling backoff.
// Exhausting the retries logs ErrSyncPushFailed and gives up; it never
// rolls back the local mutation the push describes.
func (r *Reconciler) deliver(p model.AssignmentPush) {
	backoff := r.cfg.Backoff
	var lastErr error
	for attempt := 0; attempt < r.cfg.Retries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(backoff):
			case <-r.ctx.Done():
			}
			backoff *= 2
		}
		ctx, cancel := context.WithTimeout(context.Background(), r.cfg.Timeout)
		err := r.client.UpdateGuestAssignment(ctx, p.WeddingID, p.GuestID, p.Assignment)
		cancel()
		if err == nil {
			return
		}
		if errors.Is(err, guestlist.ErrGuestNotFound) {
			// Guest vanished upstream; nothing left to converge.
			return
		}
		lastErr = err
	}
	log.Printf("seating-sync: %v: guest %s after %d attempts: %v",
		ErrSyncPushFailed, p.GuestID, r.cfg.Retries, lastErr)
}

// Reconcile compares the plan's seat bindings against the Guest List's
// recorded assignments and overwrites every divergent record to match
// the spatial model.  Returns the number of records changed; when the
// two views already agree it performs no writes at all, so a second
// consecutive call always reports zero.
func (r *Reconciler) Reconcile(ctx context.Context, plan *engine.Plan) (int, error) {
	local, err := plan.Assignments(ctx)
	if err != nil {
		return 0, err
	}
	remote, err := r.client.ListAssignments(ctx, plan.WeddingID())
	if err != nil {
		return 0, err
	}
	remoteBy := make(map[string]model.GuestAssignment, len(remote))
	for _, a := range remote {
		remoteBy[a.GuestID] = a
	}

	changed := 0
	for guestID, want := range local {
		got, ok := remoteBy[guestID]
		if ok && got == want {
			delete(remoteBy, guestID)
			continue
		}
		w := want
		if err := r.client.UpdateGuestAssignment(ctx, plan.WeddingID(), guestID, &w); err != nil {
			if errors.Is(err, guestlist.ErrGuestNotFound) {
				delete(remoteBy, guestID)
				continue
			}
			return changed, err
		}
		changed++
		delete(remoteBy, guestID)
	}
	// Whatever remains is recorded remotely but unseated locally.
	for guestID := range remoteBy {
		if err := r.client.UpdateGuestAssignment(ctx, plan.WeddingID(), guestID, nil); err != nil {
			if errors.Is(err, guestlist.ErrGuestNotFound) {
				continue
			}
			return changed, err
		}
		changed++
	}
	return changed, nil
}

// RunSweep calls Reconcile for every live plan at the given interval
// until ctx is cancelled.  This is the safety net behind dropped or
// failed pushes.
func (r *Reconciler) RunSweep(ctx context.Context, interval time.Duration, plans func() []*engine.Plan) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, p := range plans() {
				if n, err := r.Reconcile(ctx, p); err != nil {
					log.Printf("seating-sync: sweep for wedding %s: %v", p.WeddingID(), err)
				} else if n > 0 {
					log.Printf("seating-sync: sweep repaired %d record(s) for wedding %s", n, p.WeddingID())
				}
			}
		}
	}
}

// OnGuestDeleted handles an inbound guest-deletion notification: the
// guest's seat is freed in the spatial model and the freeing is
// recorded in history so a planner can undo it.
func (r *Reconciler) OnGuestDeleted(ctx context.Context, plan *engine.Plan, guestID string) error {
	return plan.FreeGuest(ctx, guestID)
}
