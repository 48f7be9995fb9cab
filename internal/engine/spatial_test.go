package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/wedding-seating-engine/internal/lock"
	"github.com/iliyamo/wedding-seating-engine/internal/model"
)

func TestAddArea(t *testing.T) {
	ctx := context.Background()

	t.Run("valid area", func(t *testing.T) {
		p := NewPlan("w1", Config{}, nil)
		defer p.Close()
		a, err := p.AddArea(ctx, AddAreaParams{
			Name:   "Ceremony",
			Kind:   model.AreaCeremony,
			Bounds: model.Rect{X: 10, Y: 10, Width: 500, Height: 400},
		})
		require.NoError(t, err)
		assert.NotEmpty(t, a.ID)
		assert.Equal(t, "w1", a.WeddingID)

		areas, err := p.Areas(ctx)
		require.NoError(t, err)
		require.Len(t, areas, 1)
	})

	t.Run("rejects non-positive bounds", func(t *testing.T) {
		p := NewPlan("w1", Config{}, nil)
		defer p.Close()
		_, err := p.AddArea(ctx, AddAreaParams{Kind: model.AreaBanquet, Bounds: model.Rect{Width: 0, Height: 100}})
		assert.ErrorIs(t, err, ErrInvalidGeometry)
	})

	t.Run("rejects bounds outside the canvas", func(t *testing.T) {
		p := NewPlan("w1", Config{CanvasWidth: 800, CanvasHeight: 600}, nil)
		defer p.Close()
		_, err := p.AddArea(ctx, AddAreaParams{Kind: model.AreaBanquet, Bounds: model.Rect{X: 700, Y: 0, Width: 200, Height: 100}})
		assert.ErrorIs(t, err, ErrInvalidGeometry)
	})

	t.Run("rejects unknown kind", func(t *testing.T) {
		p := NewPlan("w1", Config{}, nil)
		defer p.Close()
		_, err := p.AddArea(ctx, AddAreaParams{Kind: "garden", Bounds: model.Rect{Width: 100, Height: 100}})
		assert.ErrorIs(t, err, ErrInvalidGeometry)
	})
}

func TestAddTable(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults to round with eight seats", func(t *testing.T) {
		p, area := newTestPlan(t)
		tbl, err := p.AddTable(ctx, AddTableParams{AreaID: area.ID, X: 100, Y: 100})
		require.NoError(t, err)
		assert.Equal(t, model.ShapeRound, tbl.Shape)
		assert.Equal(t, 8, tbl.Capacity)
		assert.Len(t, tbl.Seats, 8)
		assert.Equal(t, tbl.Width, tbl.Height, "round tables keep a square box")
		for i, s := range tbl.Seats {
			assert.Equal(t, i, s.Index)
			assert.True(t, s.Enabled)
		}
	})

	t.Run("must fit inside its area", func(t *testing.T) {
		p, area := newTestPlan(t)
		_, err := p.AddTable(ctx, AddTableParams{AreaID: area.ID, X: 980, Y: 0})
		assert.ErrorIs(t, err, ErrInvalidGeometry)
	})

	t.Run("unknown area", func(t *testing.T) {
		p, _ := newTestPlan(t)
		_, err := p.AddTable(ctx, AddTableParams{AreaID: "nope", X: 0, Y: 0})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("generated name counts per area", func(t *testing.T) {
		p, area := newTestPlan(t)
		first, err := p.AddTable(ctx, AddTableParams{AreaID: area.ID, X: 0, Y: 0})
		require.NoError(t, err)
		second, err := p.AddTable(ctx, AddTableParams{AreaID: area.ID, X: 200, Y: 0})
		require.NoError(t, err)
		assert.Equal(t, "Table 1", first.Name)
		assert.Equal(t, "Table 2", second.Name)
	})
}

func TestMoveTable(t *testing.T) {
	ctx := context.Background()

	t.Run("moves within the area", func(t *testing.T) {
		p, area := newTestPlan(t)
		tbl := addTable(t, p, area.ID, 100, 100, 4)
		require.NoError(t, p.MoveTable(ctx, alice, tbl.ID, 50, -20))
		got, err := p.Table(ctx, tbl.ID)
		require.NoError(t, err)
		assert.Equal(t, 150.0, got.X)
		assert.Equal(t, 80.0, got.Y)
		assert.Greater(t, got.Version, tbl.Version)
	})

	t.Run("rejects a move out of the area", func(t *testing.T) {
		p, area := newTestPlan(t)
		tbl := addTable(t, p, area.ID, 100, 100, 4)
		err := p.MoveTable(ctx, alice, tbl.ID, 1500, 0)
		assert.ErrorIs(t, err, ErrInvalidGeometry)
	})

	t.Run("rejects when pinned", func(t *testing.T) {
		p, area := newTestPlan(t)
		tbl := addTable(t, p, area.ID, 100, 100, 4)
		require.NoError(t, p.SetTablePinned(ctx, alice, tbl.ID, true))
		err := p.MoveTable(ctx, alice, tbl.ID, 10, 10)
		assert.ErrorIs(t, err, ErrTablePinned)
	})

	t.Run("rejects when locked by another session", func(t *testing.T) {
		p, area := newTestPlan(t)
		tbl := addTable(t, p, area.ID, 100, 100, 4)
		_, err := p.Locks().Ensure(tbl.ID, bob)
		require.NoError(t, err)

		err = p.MoveTable(ctx, alice, tbl.ID, 10, 10)
		require.ErrorIs(t, err, lock.ErrHeldByOther)
		var held *lock.HeldError
		require.ErrorAs(t, err, &held)
		assert.Equal(t, "Bob", held.Holder.HolderName)

		// The holder itself may still move the table.
		assert.NoError(t, p.MoveTable(ctx, bob, tbl.ID, 10, 10))
	})
}

func TestSetTableCapacity(t *testing.T) {
	ctx := context.Background()

	t.Run("growing adds enabled seats", func(t *testing.T) {
		p, area := newTestPlan(t)
		tbl := addTable(t, p, area.ID, 0, 0, 2)
		require.NoError(t, p.SetTableCapacity(ctx, alice, tbl.ID, 5))
		got, err := p.Table(ctx, tbl.ID)
		require.NoError(t, err)
		assert.Equal(t, 5, got.Capacity)
		require.Len(t, got.Seats, 5)
		assert.Equal(t, 4, got.Seats[4].Index)
		assert.True(t, got.Seats[4].Enabled)
	})

	t.Run("shrinking frees guests on truncated seats", func(t *testing.T) {
		p, area := newTestPlan(t)
		tbl := addTable(t, p, area.ID, 0, 0, 4)
		require.NoError(t, p.AssignGuestToSeat(ctx, alice, "g-keep", tbl.ID, 0))
		require.NoError(t, p.AssignGuestToSeat(ctx, alice, "g-cut", tbl.ID, 3))

		require.NoError(t, p.SetTableCapacity(ctx, alice, tbl.ID, 2))
		asg, err := p.Assignments(ctx)
		require.NoError(t, err)
		assert.Contains(t, asg, "g-keep")
		assert.NotContains(t, asg, "g-cut")

		// One undo restores capacity and the freed guest together.
		ok, err := p.Undo(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		asg, err = p.Assignments(ctx)
		require.NoError(t, err)
		assert.Contains(t, asg, "g-cut")
		assert.Equal(t, 3, asg["g-cut"].SeatIndex)
		requireInjective(t, p)
	})

	t.Run("rejects non-positive capacity", func(t *testing.T) {
		p, area := newTestPlan(t)
		tbl := addTable(t, p, area.ID, 0, 0, 4)
		assert.ErrorIs(t, p.SetTableCapacity(ctx, alice, tbl.ID, 0), ErrInvalidGeometry)
	})
}

func TestDeleteTable(t *testing.T) {
	ctx := context.Background()

	t.Run("frees every seated guest and one undo restores all", func(t *testing.T) {
		push := &recordingPusher{}
		p := NewPlan("w1", Config{}, push)
		defer p.Close()
		area, err := p.AddArea(ctx, AddAreaParams{Kind: model.AreaBanquet, Bounds: model.Rect{Width: 1000, Height: 1000}})
		require.NoError(t, err)
		tbl := addTable(t, p, area.ID, 0, 0, 4)
		for i, g := range []string{"g1", "g2", "g3"} {
			require.NoError(t, p.AssignGuestToSeat(ctx, alice, g, tbl.ID, i))
		}

		require.NoError(t, p.DeleteTable(ctx, alice, tbl.ID))
		_, err = p.Table(ctx, tbl.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		asg, err := p.Assignments(ctx)
		require.NoError(t, err)
		assert.Empty(t, asg)

		// Unassignment pushes went out for all three guests.
		cleared := 0
		for _, pu := range push.all() {
			if pu.Assignment == nil {
				cleared++
			}
		}
		assert.Equal(t, 3, cleared)

		ok, err := p.Undo(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		asg, err = p.Assignments(ctx)
		require.NoError(t, err)
		require.Len(t, asg, 3)
		assert.Equal(t, tbl.ID, asg["g2"].TableID)
		requireInjective(t, p)
	})

	t.Run("unknown table", func(t *testing.T) {
		p, _ := newTestPlan(t)
		assert.ErrorIs(t, p.DeleteTable(ctx, alice, "nope"), ErrNotFound)
	})
}

func TestDeleteArea(t *testing.T) {
	ctx := context.Background()
	p, area := newTestPlan(t)
	t1 := addTable(t, p, area.ID, 0, 0, 2)
	t2 := addTable(t, p, area.ID, 200, 0, 2)
	require.NoError(t, p.AssignGuestToSeat(ctx, alice, "g1", t1.ID, 0))

	require.NoError(t, p.DeleteArea(ctx, area.ID))
	areas, err := p.Areas(ctx)
	require.NoError(t, err)
	assert.Empty(t, areas)
	tables, err := p.Tables(ctx)
	require.NoError(t, err)
	assert.Empty(t, tables)

	// The cascade is one history entry.
	ok, err := p.Undo(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	tables, err = p.Tables(ctx)
	require.NoError(t, err)
	assert.Len(t, tables, 2)
	asg, err := p.Assignments(ctx)
	require.NoError(t, err)
	assert.Equal(t, t1.ID, asg["g1"].TableID)
	_ = t2
}

func TestDuplicateTable(t *testing.T) {
	ctx := context.Background()
	p, area := newTestPlan(t)
	tbl := addTable(t, p, area.ID, 50, 50, 4)
	require.NoError(t, p.AssignGuestToSeat(ctx, alice, "g1", tbl.ID, 0))

	cp, err := p.DuplicateTable(ctx, tbl.ID)
	require.NoError(t, err)
	assert.NotEqual(t, tbl.ID, cp.ID)
	assert.Equal(t, tbl.Name+" (copy)", cp.Name)
	assert.Equal(t, 70.0, cp.X)
	assert.Equal(t, 70.0, cp.Y)
	assert.Equal(t, 0, cp.AssignedCount(), "seats start empty")
	assert.False(t, cp.Pinned)
}

func TestRenameTablePropagatesToSeatedGuests(t *testing.T) {
	ctx := context.Background()
	push := &recordingPusher{}
	p := NewPlan("w1", Config{}, push)
	defer p.Close()
	area, err := p.AddArea(ctx, AddAreaParams{Kind: model.AreaBanquet, Bounds: model.Rect{Width: 1000, Height: 1000}})
	require.NoError(t, err)
	tbl := addTable(t, p, area.ID, 0, 0, 2)
	require.NoError(t, p.AssignGuestToSeat(ctx, alice, "g1", tbl.ID, 0))

	require.NoError(t, p.RenameTable(ctx, alice, tbl.ID, "Head table"))
	last, ok := push.last()
	require.True(t, ok)
	require.NotNil(t, last.Assignment)
	assert.Equal(t, "Head table", last.Assignment.TableName)
	assert.Equal(t, "g1", last.GuestID)
}

func TestToggleSeatEnabled(t *testing.T) {
	ctx := context.Background()

	t.Run("disabling an occupied seat frees its guest", func(t *testing.T) {
		p, area := newTestPlan(t)
		tbl := addTable(t, p, area.ID, 0, 0, 2)
		require.NoError(t, p.AssignGuestToSeat(ctx, alice, "g1", tbl.ID, 1))

		require.NoError(t, p.ToggleSeatEnabled(ctx, alice, tbl.ID, 1))
		got, err := p.Table(ctx, tbl.ID)
		require.NoError(t, err)
		assert.False(t, got.Seats[1].Enabled)
		assert.Empty(t, got.Seats[1].GuestID)

		// Disabled seats refuse assignments.
		err = p.AssignGuestToSeat(ctx, alice, "g2", tbl.ID, 1)
		assert.ErrorIs(t, err, ErrSeatDisabled)

		// Undo re-enables the seat and re-seats the guest.
		ok, err := p.Undo(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		got, err = p.Table(ctx, tbl.ID)
		require.NoError(t, err)
		assert.True(t, got.Seats[1].Enabled)
		assert.Equal(t, "g1", got.Seats[1].GuestID)
	})

	t.Run("seat index out of range", func(t *testing.T) {
		p, area := newTestPlan(t)
		tbl := addTable(t, p, area.ID, 0, 0, 2)
		assert.ErrorIs(t, p.ToggleSeatEnabled(ctx, alice, tbl.ID, 7), ErrNotFound)
	})
}

func TestFreeGuest(t *testing.T) {
	ctx := context.Background()
	p, area := newTestPlan(t)
	tbl := addTable(t, p, area.ID, 0, 0, 2)
	require.NoError(t, p.AssignGuestToSeat(ctx, alice, "g1", tbl.ID, 0))

	require.NoError(t, p.FreeGuest(ctx, "g1"))
	asg, err := p.Assignments(ctx)
	require.NoError(t, err)
	assert.Empty(t, asg)

	// Freeing an unseated guest is a silent no-op.
	canBefore, err := p.CanUndo(ctx)
	require.NoError(t, err)
	require.NoError(t, p.FreeGuest(ctx, "g1"))
	canAfter, err := p.CanUndo(ctx)
	require.NoError(t, err)
	assert.Equal(t, canBefore, canAfter)
}
