package engine

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/wedding-seating-engine/internal/lock"
	"github.com/iliyamo/wedding-seating-engine/internal/model"
)

// recordingPusher captures reconciler pushes for inspection.
type recordingPusher struct {
	mu     sync.Mutex
	pushes []model.AssignmentPush
}

func (r *recordingPusher) SchedulePush(p model.AssignmentPush) {
	r.mu.Lock()
	r.pushes = append(r.pushes, p)
	r.mu.Unlock()
}

func (r *recordingPusher) all() []model.AssignmentPush {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.AssignmentPush, len(r.pushes))
	copy(out, r.pushes)
	return out
}

func (r *recordingPusher) last() (model.AssignmentPush, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.pushes) == 0 {
		return model.AssignmentPush{}, false
	}
	return r.pushes[len(r.pushes)-1], true
}

var (
	alice = lock.Session{ID: "s-alice", Name: "Alice"}
	bob   = lock.Session{ID: "s-bob", Name: "Bob"}
)

// newTestPlan builds a plan with one banquet area covering most of the
// canvas.
func newTestPlan(t *testing.T) (*Plan, *model.Area) {
	t.Helper()
	p := NewPlan("w1", Config{}, nil)
	t.Cleanup(p.Close)
	area, err := p.AddArea(context.Background(), AddAreaParams{
		Name:   "Reception",
		Kind:   model.AreaBanquet,
		Bounds: model.Rect{X: 0, Y: 0, Width: 1000, Height: 1000},
	})
	require.NoError(t, err)
	return p, area
}

// addTable creates a table with explicit geometry and capacity.
func addTable(t *testing.T, p *Plan, areaID string, x, y float64, capacity int) *model.Table {
	t.Helper()
	tbl, err := p.AddTable(context.Background(), AddTableParams{
		AreaID:   areaID,
		Shape:    model.ShapeRectangular,
		X:        x,
		Y:        y,
		Width:    100,
		Height:   100,
		Capacity: capacity,
	})
	require.NoError(t, err)
	return tbl
}

// requireInjective asserts no guest occupies more than one seat.
func requireInjective(t *testing.T, p *Plan) {
	t.Helper()
	tables, err := p.Tables(context.Background())
	require.NoError(t, err)
	seen := make(map[string]string)
	for _, tbl := range tables {
		for _, s := range tbl.Seats {
			if s.GuestID == "" {
				continue
			}
			prev, dup := seen[s.GuestID]
			require.Falsef(t, dup, "guest %s seated at both %s and %s", s.GuestID, prev, tbl.ID)
			seen[s.GuestID] = tbl.ID
		}
	}
}
