package engine

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/iliyamo/wedding-seating-engine/internal/lock"
	"github.com/iliyamo/wedding-seating-engine/internal/model"
)

// Layout generation.  Everything here is deterministic: generated
// table ids derive from the area id and grid position, so repeated
// calls with identical inputs produce identical plans.  The generator
// never guesses guest identity; seating people is AutoAssignGuests'
// job and only ever uses the guest records it is handed.

const (
	gridMargin  = 20.0
	gridSpacing = 80.0
	gridSeat    = 40.0

	banquetDiameter = 80.0
	banquetStepX    = 140.0
	banquetStepY    = 160.0
)

// GenerateSeatGrid fills a ceremony area with a rows×perRow grid of
// single-seat tables at fixed spacing, replacing whatever the area
// held before.  The replacement is one undoable unit.
func (p *Plan) GenerateSeatGrid(ctx context.Context, areaID string, rows, perRow int) ([]*model.Table, error) {
	if rows <= 0 || perRow <= 0 {
		return nil, ErrInvalidGeometry
	}
	var out []*model.Table
	err := p.do(ctx, func() error {
		area, ok := p.areas[areaID]
		if !ok {
			return ErrNotFound
		}
		needW := 2*gridMargin + float64(perRow-1)*gridSpacing + gridSeat
		needH := 2*gridMargin + float64(rows-1)*gridSpacing + gridSeat
		if needW > area.Bounds.Width || needH > area.Bounds.Height {
			return ErrAreaTooSmall
		}

		generated := make([]*model.Table, 0, rows*perRow)
		for r := 0; r < rows; r++ {
			for c := 0; c < perRow; c++ {
				generated = append(generated, &model.Table{
					ID:       fmt.Sprintf("%s-seat-r%02dc%02d", areaID, r, c),
					AreaID:   areaID,
					Name:     fmt.Sprintf("Row %d Seat %d", r+1, c+1),
					Shape:    model.ShapeRectangular,
					X:        area.Bounds.X + gridMargin + float64(c)*gridSpacing,
					Y:        area.Bounds.Y + gridMargin + float64(r)*gridSpacing,
					Width:    gridSeat,
					Height:   gridSeat,
					Capacity: 1,
					Seats:    model.NewSeats(1),
				})
			}
		}
		out = p.replaceAreaTables(areaID, generated, "generate seat grid")
		return nil
	})
	return out, err
}

// GenerateBanquetLayout populates a banquet area with the minimal
// number of tables of the preferred size (default round, 8 seats) for
// guestCount guests.  A remainder below 3 is folded into the last
// table instead of creating an under-full extra one; larger remainders
// get their own table.  Fails with ErrAreaTooSmall when the computed
// arrangement exceeds the area's bounds.
func (p *Plan) GenerateBanquetLayout(ctx context.Context, areaID string, guestCount, preferredTableSize int) ([]*model.Table, error) {
	if guestCount <= 0 {
		return nil, ErrInvalidGeometry
	}
	if preferredTableSize <= 0 {
		preferredTableSize = 8
	}
	capacities := tableCapacities(guestCount, preferredTableSize)

	var out []*model.Table
	err := p.do(ctx, func() error {
		area, ok := p.areas[areaID]
		if !ok {
			return ErrNotFound
		}
		n := len(capacities)
		cols := int(math.Ceil(math.Sqrt(float64(n))))
		rowsN := (n + cols - 1) / cols
		needW := 2*gridMargin + float64(cols-1)*banquetStepX + banquetDiameter
		needH := 2*gridMargin + float64(rowsN-1)*banquetStepY + banquetDiameter
		if needW > area.Bounds.Width || needH > area.Bounds.Height {
			return ErrAreaTooSmall
		}

		generated := make([]*model.Table, 0, n)
		for i, seats := range capacities {
			r, c := i/cols, i%cols
			generated = append(generated, &model.Table{
				ID:       fmt.Sprintf("%s-table-%02d", areaID, i+1),
				AreaID:   areaID,
				Name:     fmt.Sprintf("Table %d", i+1),
				Shape:    model.ShapeRound,
				X:        area.Bounds.X + gridMargin + float64(c)*banquetStepX,
				Y:        area.Bounds.Y + gridMargin + float64(r)*banquetStepY,
				Width:    banquetDiameter,
				Height:   banquetDiameter,
				Capacity: seats,
				Seats:    model.NewSeats(seats),
			})
		}
		out = p.replaceAreaTables(areaID, generated, "generate banquet layout")
		return nil
	})
	return out, err
}

// tableCapacities splits guestCount over tables of size, applying the
// small-remainder fold.
func tableCapacities(guestCount, size int) []int {
	full := guestCount / size
	rem := guestCount % size
	switch {
	case full == 0:
		return []int{rem}
	case rem == 0:
		caps := make([]int, full)
		for i := range caps {
			caps[i] = size
		}
		return caps
	case rem < 3:
		caps := make([]int, full)
		for i := range caps {
			caps[i] = size
		}
		caps[full-1] += rem
		return caps
	default:
		caps := make([]int, full+1)
		for i := range caps {
			caps[i] = size
		}
		caps[full] = rem
		return caps
	}
}

// replaceAreaTables swaps the area's table set and records a single
// undoable entry.  Guests seated at replaced tables are freed with the
// usual pushes; restore re-seats them.
func (p *Plan) replaceAreaTables(areaID string, generated []*model.Table, label string) []*model.Table {
	var previous []*model.Table
	for _, t := range p.tables {
		if t.AreaID == areaID {
			previous = append(previous, t.Clone())
		}
	}
	sort.Slice(previous, func(i, j int) bool { return previous[i].ID < previous[j].ID })

	apply := func() {
		for _, t := range previous {
			p.dropTable(t.ID)
		}
		for _, t := range generated {
			p.insertTable(t.Clone())
		}
	}
	revert := func() {
		for _, t := range generated {
			p.dropTable(t.ID)
		}
		for _, t := range previous {
			p.insertTable(t.Clone())
		}
	}
	apply()
	p.hist.push(historyEntry{label: label, undo: revert, redo: apply})

	out := make([]*model.Table, 0, len(generated))
	for _, t := range generated {
		out = append(out, t.Clone())
	}
	return out
}

// ScoreFunc rates how well a guest fits a candidate table.
// groupCounts holds, per group id, how many guests of that group are
// already seated at the table.
type ScoreFunc func(g model.Guest, t *model.Table, groupCounts map[string]int) float64

// DefaultStrategy prefers seating guests next to their declared group
// and honors the stage/dance-floor preference flags with a small
// positional bias (stage assumed at the top of the canvas, dance floor
// at the bottom).
func DefaultStrategy(g model.Guest, t *model.Table, groupCounts map[string]int) float64 {
	score := 2.0 * float64(groupCounts[g.GroupID])
	if g.NearStage {
		score += 1.0 - t.Y/10000.0
	}
	if g.NearDance {
		score += t.Y / 10000.0
	}
	return score
}

// AutoAssignResult reports what AutoAssignGuests managed to do.
// Partial placement is an expected outcome, not an error: guests that
// found no seat are listed in Unplaced.
type AutoAssignResult struct {
	Assigned []model.GuestAssignment `json:"assigned"`
	Unplaced []string                `json:"unplaced"`
}

// AutoAssignGuests seats every unseated guest greedily in descending
// score order.  Candidates are enabled free seats on tables that are
// neither full nor locked by another session.  Ties break toward the
// table already seating the guest's group, then the lowest table id,
// then the lowest seat index, so results are reproducible.  The whole
// batch forms one undoable history entry.
func (p *Plan) AutoAssignGuests(ctx context.Context, session lock.Session, guests []model.Guest, score ScoreFunc) (AutoAssignResult, error) {
	if score == nil {
		score = DefaultStrategy
	}
	var res AutoAssignResult
	err := p.do(ctx, func() error {
		var pending []model.Guest
		for _, g := range guests {
			if g.ID == "" {
				continue
			}
			if _, seated := p.seatOf[g.ID]; !seated {
				pending = append(pending, g)
			}
		}
		sort.Slice(pending, func(i, j int) bool {
			if pending[i].GroupID != pending[j].GroupID {
				return pending[i].GroupID < pending[j].GroupID
			}
			return pending[i].ID < pending[j].ID
		})

		groupOf := make(map[string]string, len(guests))
		for _, g := range guests {
			groupOf[g.ID] = g.GroupID
		}

		tableIDs := make([]string, 0, len(p.tables))
		for id := range p.tables {
			tableIDs = append(tableIDs, id)
		}
		sort.Strings(tableIDs)

		type placement struct {
			guestID string
			ref     seatRef
		}
		var placed []placement

		for _, g := range pending {
			bestTable := ""
			bestSeat := -1
			bestScore := math.Inf(-1)
			bestAffinity := -1

			for _, tid := range tableIDs {
				t := p.tables[tid]
				if t.AssignedCount() >= t.EnabledSeatCount() {
					continue
				}
				if _, other := p.locks.HeldByOther(tid, session.ID); other {
					continue
				}
				seatIdx := -1
				for i := range t.Seats {
					if t.Seats[i].Enabled && t.Seats[i].GuestID == "" {
						seatIdx = i
						break
					}
				}
				if seatIdx < 0 {
					continue
				}
				counts := make(map[string]int)
				for i := range t.Seats {
					if gid := t.Seats[i].GuestID; gid != "" {
						counts[groupOf[gid]]++
					}
				}
				s := score(g, t, counts)
				affinity := counts[g.GroupID]
				better := s > bestScore ||
					(s == bestScore && affinity > bestAffinity) ||
					(s == bestScore && affinity == bestAffinity && tid < bestTable)
				if better {
					bestScore, bestAffinity, bestTable, bestSeat = s, affinity, tid, seatIdx
				}
			}

			if bestSeat < 0 {
				res.Unplaced = append(res.Unplaced, g.ID)
				continue
			}
			p.bindSeat(g.ID, bestTable, bestSeat)
			placed = append(placed, placement{guestID: g.ID, ref: seatRef{TableID: bestTable, SeatIndex: bestSeat}})
			t := p.tables[bestTable]
			res.Assigned = append(res.Assigned, model.GuestAssignment{
				GuestID:   g.ID,
				TableID:   bestTable,
				TableName: t.Name,
				SeatIndex: bestSeat,
			})
		}

		if len(placed) > 0 {
			apply := func() {
				for _, pl := range placed {
					if t, ok := p.tables[pl.ref.TableID]; ok {
						if s := t.SeatAt(pl.ref.SeatIndex); s != nil && s.GuestID == "" {
							p.bindSeat(pl.guestID, pl.ref.TableID, pl.ref.SeatIndex)
						}
					}
				}
			}
			revert := func() {
				for _, pl := range placed {
					p.freeGuestSeat(pl.guestID)
				}
			}
			p.hist.push(historyEntry{label: "auto-assign guests", undo: revert, redo: apply})
		}
		return nil
	})
	return res, err
}

// FixTablePosition nudges a table out of collision with its nearest
// overlapping neighbor along the axis needing the least displacement,
// then clamps it back into its area so the nudge never pushes it
// off-canvas.  A table with no overlap is left untouched.
func (p *Plan) FixTablePosition(ctx context.Context, session lock.Session, tableID string) error {
	return p.do(ctx, func() error {
		t, ok := p.tables[tableID]
		if !ok {
			return ErrNotFound
		}
		if err := p.checkTableEditable(t, session); err != nil {
			return err
		}

		var nearest *model.Table
		bestDist := math.Inf(1)
		for _, o := range p.tables {
			if o.ID == t.ID || o.AreaID != t.AreaID {
				continue
			}
			dx, dy := t.Bounds().Overlap(o.Bounds())
			if dx <= p.cfg.CollisionTolerance || dy <= p.cfg.CollisionTolerance {
				continue
			}
			cdx := (t.X + t.Width/2) - (o.X + o.Width/2)
			cdy := (t.Y + t.Height/2) - (o.Y + o.Height/2)
			if d := cdx*cdx + cdy*cdy; d < bestDist {
				bestDist = d
				nearest = o
			}
		}
		if nearest == nil {
			return nil
		}

		next := t.Clone()
		dx, dy := t.Bounds().Overlap(nearest.Bounds())
		step := p.cfg.CollisionTolerance + 1
		if dx <= dy {
			if t.X+t.Width/2 >= nearest.X+nearest.Width/2 {
				next.X += dx + step
			} else {
				next.X -= dx + step
			}
		} else {
			if t.Y+t.Height/2 >= nearest.Y+nearest.Height/2 {
				next.Y += dy + step
			} else {
				next.Y -= dy + step
			}
		}
		if area, ok := p.areas[t.AreaID]; ok {
			clampIntoRect(next, area.Bounds)
		}

		fromX, fromY := t.X, t.Y
		apply := func(x, y float64) func() {
			return func() {
				if cur, ok := p.tables[tableID]; ok {
					cur.X, cur.Y = x, y
					cur.Version++
				}
			}
		}
		apply(next.X, next.Y)()
		p.hist.push(historyEntry{
			label: "fix table position",
			undo:  apply(fromX, fromY),
			redo:  apply(next.X, next.Y),
		})
		return nil
	})
}
