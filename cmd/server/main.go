package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/wedding-seating-engine/internal/config"
	"github.com/iliyamo/wedding-seating-engine/internal/database"
	"github.com/iliyamo/wedding-seating-engine/internal/engine"
	"github.com/iliyamo/wedding-seating-engine/internal/guestlist"
	"github.com/iliyamo/wedding-seating-engine/internal/handler"
	"github.com/iliyamo/wedding-seating-engine/internal/queue"
	"github.com/iliyamo/wedding-seating-engine/internal/reconciler"
	"github.com/iliyamo/wedding-seating-engine/internal/router"
	"github.com/iliyamo/wedding-seating-engine/internal/snapshot"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Println("main: no .env file, relying on environment")
	}
	cfg := config.Load()

	// Guest List projection store (MySQL).
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("main: database: %v", err)
	}
	defer db.Close()
	guests := guestlist.NewStore(db)

	// Redis backs named snapshots and the rate limiter.  A nil client
	// degrades both: snapshots report unavailable, limiting is skipped.
	rdb := config.NewRedisClient()
	snaps := snapshot.NewStore(rdb)

	// Outbound assignment pushes to the Guest List.
	rec := reconciler.New(guests, reconciler.Config{
		Retries: cfg.SyncRetries,
		Backoff: cfg.SyncBackoff,
	})
	defer rec.Close()

	plans := engine.NewRegistry(engine.Config{
		CanvasWidth:        cfg.CanvasWidth,
		CanvasHeight:       cfg.CanvasHeight,
		CollisionTolerance: cfg.CollisionTolerance,
		HistoryCap:         cfg.HistoryCap,
		LockTTL:            cfg.LockTTL,
	}, rec, cfg.LockSweepInterval)
	defer plans.Close()

	// Mirror each plan's in-process events onto the broker so other
	// wedding services can react without polling us.
	plans.OnPlanCreate(func(p *engine.Plan) {
		go forwardPlanEvents(p)
	})

	// Guest deletions arrive over the broker; free the seat if the
	// wedding's plan is live in this process.
	go func() {
		err := queue.StartGuestDeletedConsumer(func(ev queue.GuestDeletedEvent) error {
			p, ok := plans.Lookup(ev.WeddingID)
			if !ok {
				return nil
			}
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return rec.OnGuestDeleted(ctx, p, ev.GuestID)
		})
		if err != nil {
			log.Printf("main: guest-deleted consumer stopped: %v", err)
		}
	}()

	// Periodic projection repair for drift the push path missed.
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go rec.RunSweep(sweepCtx, cfg.ReconcileInterval, plans.Plans)

	e := echo.New()
	router.RegisterRoutes(e)
	h := handler.NewSeatingHandler(plans, guests, rec, snaps)
	router.RegisterSeating(e, h, cfg.JWTSecret, config.LoadRateLimitConfig(), rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

// forwardPlanEvents republishes one plan's hub events to RabbitMQ.
// Publish failures are logged and dropped; the broker feed is advisory
// and the authoritative state stays in the plan.
func forwardPlanEvents(p *engine.Plan) {
	events, cancel := p.Events().Subscribe()
	defer cancel()
	for ev := range events {
		ctx, cancelPub := context.WithTimeout(context.Background(), 5*time.Second)
		var err error
		switch {
		case ev.Kind == "assignment" && ev.Assignment != nil:
			err = queue.PublishAssignmentChanged(ctx, queue.AssignmentChangedEvent{
				WeddingID: ev.Assignment.WeddingID,
				GuestID:   ev.Assignment.GuestID,
				TableID:   ev.Assignment.TableID,
				SeatIndex: ev.Assignment.SeatIndex,
				ChangedAt: time.Now().UTC().Format(time.RFC3339),
			})
		case ev.Kind == "lock" && ev.Lock != nil:
			err = queue.PublishLockChanged(ctx, queue.LockChangedEvent{
				WeddingID:  p.WeddingID(),
				Kind:       string(ev.Lock.Kind),
				TableID:    ev.Lock.TableID,
				HolderID:   ev.Lock.HolderID,
				HolderName: ev.Lock.HolderName,
			})
		}
		cancelPub()
		if err != nil {
			log.Printf("main: broker publish failed: %v", err)
		}
	}
}
