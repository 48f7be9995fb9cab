package engine

import (
	"context"
	"sort"

	"github.com/iliyamo/wedding-seating-engine/internal/model"
)

// DetectCollisions recomputes the advisory conflict set: pairs of
// tables in the same area whose bounding boxes overlap beyond the
// configured tolerance, and tables holding more guests than they have
// enabled seats.
// Conflicts are derived state, recomputed per call and never stored;
// only the capacity kind blocks anything (new assignments, via
// ErrTableFull).
func (p *Plan) DetectCollisions(ctx context.Context) ([]model.Conflict, error) {
	var tables []*model.Table
	if err := p.view(ctx, func() {
		tables = make([]*model.Table, 0, len(p.tables))
		for _, t := range p.tables {
			tables = append(tables, t.Clone())
		}
	}); err != nil {
		return nil, err
	}
	return detect(tables, p.cfg.CollisionTolerance), nil
}

// detect is the pure core of collision detection, split out so layout
// generation can validate its own output without touching the loop.
func detect(tables []*model.Table, tolerance float64) []model.Conflict {
	sort.Slice(tables, func(i, j int) bool { return tables[i].ID < tables[j].ID })

	var out []model.Conflict
	for i := 0; i < len(tables); i++ {
		a := tables[i]
		for j := i + 1; j < len(tables); j++ {
			b := tables[j]
			if a.AreaID != b.AreaID {
				continue
			}
			dx, dy := a.Bounds().Overlap(b.Bounds())
			if dx > tolerance && dy > tolerance {
				out = append(out, model.Conflict{
					Kind:     model.ConflictOverlap,
					TableIDs: []string{a.ID, b.ID},
				})
			}
		}
		// A live plan never assigns past the enabled seats; this
		// catches drifted data arriving through snapshot restores.
		if n, usable := a.AssignedCount(), a.EnabledSeatCount(); n > usable {
			out = append(out, model.Conflict{
				Kind:     model.ConflictCapacity,
				TableIDs: []string{a.ID},
				Assigned: n,
				Capacity: usable,
			})
		}
	}
	return out
}
