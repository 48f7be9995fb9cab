package engine

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/wedding-seating-engine/internal/model"
)

func TestGenerateSeatGrid(t *testing.T) {
	ctx := context.Background()

	t.Run("10x12 grid fits a 1000x1000 area without collisions", func(t *testing.T) {
		p, area := newTestPlan(t)
		tables, err := p.GenerateSeatGrid(ctx, area.ID, 10, 12)
		require.NoError(t, err)
		require.Len(t, tables, 120)

		for _, tbl := range tables {
			assert.Equal(t, 1, tbl.Capacity)
			assert.Len(t, tbl.Seats, 1)
		}
		conflicts, err := p.DetectCollisions(ctx)
		require.NoError(t, err)
		assert.Empty(t, conflicts)
	})

	t.Run("deterministic ids derive from position", func(t *testing.T) {
		p, area := newTestPlan(t)
		first, err := p.GenerateSeatGrid(ctx, area.ID, 2, 3)
		require.NoError(t, err)
		second, err := p.GenerateSeatGrid(ctx, area.ID, 2, 3)
		require.NoError(t, err)
		require.Len(t, second, len(first))
		for i := range first {
			assert.Equal(t, first[i].ID, second[i].ID)
			assert.Equal(t, first[i].X, second[i].X)
			assert.Equal(t, first[i].Y, second[i].Y)
		}
		assert.Equal(t, fmt.Sprintf("%s-seat-r00c00", area.ID), first[0].ID)
	})

	t.Run("area too small", func(t *testing.T) {
		p := NewPlan("w1", Config{}, nil)
		defer p.Close()
		area, err := p.AddArea(ctx, AddAreaParams{Kind: model.AreaCeremony, Bounds: model.Rect{Width: 200, Height: 200}})
		require.NoError(t, err)
		_, err = p.GenerateSeatGrid(ctx, area.ID, 10, 10)
		assert.ErrorIs(t, err, ErrAreaTooSmall)
	})

	t.Run("replacement is one undoable unit", func(t *testing.T) {
		p, area := newTestPlan(t)
		old := addTable(t, p, area.ID, 0, 0, 2)
		require.NoError(t, p.AssignGuestToSeat(ctx, alice, "g1", old.ID, 0))

		_, err := p.GenerateSeatGrid(ctx, area.ID, 2, 2)
		require.NoError(t, err)
		_, err = p.Table(ctx, old.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		ok, err := p.Undo(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		got, err := p.Table(ctx, old.ID)
		require.NoError(t, err)
		assert.Equal(t, "g1", got.Seats[0].GuestID, "undo re-seats guests at replaced tables")
		tables, err := p.Tables(ctx)
		require.NoError(t, err)
		assert.Len(t, tables, 1)
	})
}

func TestTableCapacities(t *testing.T) {
	tests := []struct {
		name   string
		guests int
		size   int
		want   []int
	}{
		{"exact multiple", 64, 8, []int{8, 8, 8, 8, 8, 8, 8, 8}},
		{"fewer than one table", 5, 8, []int{5}},
		{"small remainder folds into the last table", 65, 8, []int{8, 8, 8, 8, 8, 8, 8, 10}},
		{"remainder of two folds", 18, 8, []int{8, 10}},
		{"larger remainder gets its own table", 69, 8, []int{8, 8, 8, 8, 8, 8, 8, 8, 5}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tableCapacities(tc.guests, tc.size))
		})
	}
}

func TestGenerateBanquetLayout(t *testing.T) {
	ctx := context.Background()

	t.Run("64 guests at size 8 produce 8 full tables", func(t *testing.T) {
		p, area := newTestPlan(t)
		tables, err := p.GenerateBanquetLayout(ctx, area.ID, 64, 8)
		require.NoError(t, err)
		require.Len(t, tables, 8)
		total := 0
		for i, tbl := range tables {
			assert.Equal(t, model.ShapeRound, tbl.Shape)
			assert.Equal(t, 8, tbl.Capacity)
			assert.Equal(t, fmt.Sprintf("%s-table-%02d", area.ID, i+1), tbl.ID)
			total += tbl.Capacity
		}
		assert.Equal(t, 64, total)

		conflicts, err := p.DetectCollisions(ctx)
		require.NoError(t, err)
		assert.Empty(t, conflicts)
	})

	t.Run("total capacity always covers the guest count", func(t *testing.T) {
		p, area := newTestPlan(t)
		for _, guests := range []int{1, 7, 8, 9, 17, 23, 64, 65} {
			tables, err := p.GenerateBanquetLayout(ctx, area.ID, guests, 8)
			require.NoError(t, err, "guests=%d", guests)
			total := 0
			for _, tbl := range tables {
				total += tbl.Capacity
			}
			assert.GreaterOrEqual(t, total, guests, "guests=%d", guests)
		}
	})

	t.Run("area too small", func(t *testing.T) {
		p := NewPlan("w1", Config{}, nil)
		defer p.Close()
		area, err := p.AddArea(ctx, AddAreaParams{Kind: model.AreaBanquet, Bounds: model.Rect{Width: 150, Height: 150}})
		require.NoError(t, err)
		_, err = p.GenerateBanquetLayout(ctx, area.ID, 64, 8)
		assert.ErrorIs(t, err, ErrAreaTooSmall)
	})

	t.Run("rejects non-positive guest count", func(t *testing.T) {
		p, area := newTestPlan(t)
		_, err := p.GenerateBanquetLayout(ctx, area.ID, 0, 8)
		assert.ErrorIs(t, err, ErrInvalidGeometry)
	})
}

func TestAutoAssignGuests(t *testing.T) {
	ctx := context.Background()

	t.Run("groups cluster on the same table", func(t *testing.T) {
		p, area := newTestPlan(t)
		addTable(t, p, area.ID, 0, 0, 2)
		addTable(t, p, area.ID, 200, 0, 2)

		guests := []model.Guest{
			{ID: "g1", WeddingID: "w1", GroupID: "family"},
			{ID: "g2", WeddingID: "w1", GroupID: "family"},
			{ID: "g3", WeddingID: "w1", GroupID: "friends"},
		}
		res, err := p.AutoAssignGuests(ctx, alice, guests, nil)
		require.NoError(t, err)
		require.Len(t, res.Assigned, 3)
		assert.Empty(t, res.Unplaced)

		byGuest := make(map[string]model.GuestAssignment)
		for _, a := range res.Assigned {
			byGuest[a.GuestID] = a
		}
		assert.Equal(t, byGuest["g1"].TableID, byGuest["g2"].TableID, "family sits together")
		assert.NotEqual(t, byGuest["g1"].TableID, byGuest["g3"].TableID, "full table pushes the next group on")
		requireInjective(t, p)
	})

	t.Run("deterministic given identical input", func(t *testing.T) {
		guests := []model.Guest{
			{ID: "g3", GroupID: "b"}, {ID: "g1", GroupID: "a"}, {ID: "g2", GroupID: "a"},
		}
		p, area := newTestPlan(t)
		_, err := p.GenerateBanquetLayout(ctx, area.ID, 16, 8)
		require.NoError(t, err)

		first, err := p.AutoAssignGuests(ctx, alice, guests, nil)
		require.NoError(t, err)
		ok, err := p.Undo(ctx)
		require.NoError(t, err)
		require.True(t, ok)

		second, err := p.AutoAssignGuests(ctx, alice, guests, nil)
		require.NoError(t, err)
		assert.Equal(t, first.Assigned, second.Assigned)
	})

	t.Run("partial placement is not an error", func(t *testing.T) {
		p, area := newTestPlan(t)
		addTable(t, p, area.ID, 0, 0, 1)
		res, err := p.AutoAssignGuests(ctx, alice, []model.Guest{{ID: "g1"}, {ID: "g2"}}, nil)
		require.NoError(t, err)
		assert.Len(t, res.Assigned, 1)
		assert.Equal(t, []string{"g2"}, res.Unplaced)
	})

	t.Run("skips tables locked by another session", func(t *testing.T) {
		p, area := newTestPlan(t)
		locked := addTable(t, p, area.ID, 0, 0, 4)
		free := addTable(t, p, area.ID, 200, 0, 4)
		_, err := p.Locks().Ensure(locked.ID, bob)
		require.NoError(t, err)

		res, err := p.AutoAssignGuests(ctx, alice, []model.Guest{{ID: "g1"}}, nil)
		require.NoError(t, err)
		require.Len(t, res.Assigned, 1)
		assert.Equal(t, free.ID, res.Assigned[0].TableID)
	})

	t.Run("already seated guests are left alone", func(t *testing.T) {
		p, area := newTestPlan(t)
		tbl := addTable(t, p, area.ID, 0, 0, 4)
		require.NoError(t, p.AssignGuestToSeat(ctx, alice, "g1", tbl.ID, 3))

		res, err := p.AutoAssignGuests(ctx, alice, []model.Guest{{ID: "g1"}, {ID: "g2"}}, nil)
		require.NoError(t, err)
		require.Len(t, res.Assigned, 1)
		assert.Equal(t, "g2", res.Assigned[0].GuestID)
		asg, err := p.Assignments(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, asg["g1"].SeatIndex)
	})

	t.Run("whole batch undoes as one entry", func(t *testing.T) {
		p, area := newTestPlan(t)
		addTable(t, p, area.ID, 0, 0, 8)
		res, err := p.AutoAssignGuests(ctx, alice, []model.Guest{{ID: "g1"}, {ID: "g2"}, {ID: "g3"}}, nil)
		require.NoError(t, err)
		require.Len(t, res.Assigned, 3)

		ok, err := p.Undo(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		asg, err := p.Assignments(ctx)
		require.NoError(t, err)
		assert.Empty(t, asg)
	})
}

func TestFixTablePosition(t *testing.T) {
	ctx := context.Background()

	t.Run("separates overlapping neighbors", func(t *testing.T) {
		p, area := newTestPlan(t)
		a := addTable(t, p, area.ID, 100, 100, 4)
		b := addTable(t, p, area.ID, 150, 110, 4)
		conflicts, err := p.DetectCollisions(ctx)
		require.NoError(t, err)
		require.Len(t, conflicts, 1)

		require.NoError(t, p.FixTablePosition(ctx, alice, b.ID))
		conflicts, err = p.DetectCollisions(ctx)
		require.NoError(t, err)
		assert.Empty(t, conflicts)
		_ = a
	})

	t.Run("no-op when nothing overlaps", func(t *testing.T) {
		p, area := newTestPlan(t)
		tbl := addTable(t, p, area.ID, 100, 100, 4)
		require.NoError(t, p.FixTablePosition(ctx, alice, tbl.ID))
		got, err := p.Table(ctx, tbl.ID)
		require.NoError(t, err)
		assert.Equal(t, 100.0, got.X)
		assert.Equal(t, 100.0, got.Y)
	})

	t.Run("nudged table stays inside its area", func(t *testing.T) {
		p, area := newTestPlan(t)
		a := addTable(t, p, area.ID, 880, 100, 4)
		b := addTable(t, p, area.ID, 900, 110, 4)
		require.NoError(t, p.FixTablePosition(ctx, alice, b.ID))
		got, err := p.Table(ctx, b.ID)
		require.NoError(t, err)
		assert.LessOrEqual(t, got.X+got.Width, area.Bounds.X+area.Bounds.Width)
		assert.GreaterOrEqual(t, got.X, area.Bounds.X)
		_ = a
	})
}
