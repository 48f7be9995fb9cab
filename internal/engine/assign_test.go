package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/wedding-seating-engine/internal/lock"
)

func TestAssignGuestToSeat(t *testing.T) {
	ctx := context.Background()

	t.Run("binds a free enabled seat", func(t *testing.T) {
		p, area := newTestPlan(t)
		tbl := addTable(t, p, area.ID, 0, 0, 4)
		require.NoError(t, p.AssignGuestToSeat(ctx, alice, "g1", tbl.ID, 2))

		asg, err := p.Assignments(ctx)
		require.NoError(t, err)
		require.Contains(t, asg, "g1")
		assert.Equal(t, tbl.ID, asg["g1"].TableID)
		assert.Equal(t, 2, asg["g1"].SeatIndex)
	})

	t.Run("occupied seat is rejected", func(t *testing.T) {
		p, area := newTestPlan(t)
		tbl := addTable(t, p, area.ID, 0, 0, 4)
		require.NoError(t, p.AssignGuestToSeat(ctx, alice, "g1", tbl.ID, 0))
		err := p.AssignGuestToSeat(ctx, bob, "g2", tbl.ID, 0)
		assert.ErrorIs(t, err, ErrSeatOccupied)
		requireInjective(t, p)
	})

	t.Run("table with every enabled seat taken is full", func(t *testing.T) {
		p, area := newTestPlan(t)
		tbl := addTable(t, p, area.ID, 0, 0, 2)
		require.NoError(t, p.ToggleSeatEnabled(ctx, alice, tbl.ID, 1))
		require.NoError(t, p.AssignGuestToSeat(ctx, alice, "g1", tbl.ID, 0))

		// One usable seat, one guest: both the disabled and the
		// occupied seat now report the table as full.
		err := p.AssignGuestToSeat(ctx, bob, "g2", tbl.ID, 1)
		assert.ErrorIs(t, err, ErrTableFull)
		err = p.AssignGuestToSeat(ctx, bob, "g2", tbl.ID, 0)
		assert.ErrorIs(t, err, ErrTableFull)
		requireInjective(t, p)
	})

	t.Run("same guest same seat is a no-op without history", func(t *testing.T) {
		p, area := newTestPlan(t)
		tbl := addTable(t, p, area.ID, 0, 0, 4)
		require.NoError(t, p.AssignGuestToSeat(ctx, alice, "g1", tbl.ID, 0))
		before, err := p.Table(ctx, tbl.ID)
		require.NoError(t, err)

		require.NoError(t, p.AssignGuestToSeat(ctx, alice, "g1", tbl.ID, 0))
		after, err := p.Table(ctx, tbl.ID)
		require.NoError(t, err)
		assert.Equal(t, before.Version, after.Version)
	})

	t.Run("already seated guest is relocated atomically", func(t *testing.T) {
		p, area := newTestPlan(t)
		t1 := addTable(t, p, area.ID, 0, 0, 4)
		t2 := addTable(t, p, area.ID, 200, 0, 4)
		require.NoError(t, p.AssignGuestToSeat(ctx, alice, "g1", t1.ID, 0))

		require.NoError(t, p.AssignGuestToSeat(ctx, alice, "g1", t2.ID, 3))
		asg, err := p.Assignments(ctx)
		require.NoError(t, err)
		require.Len(t, asg, 1)
		assert.Equal(t, t2.ID, asg["g1"].TableID)
		got, err := p.Table(ctx, t1.ID)
		require.NoError(t, err)
		assert.Empty(t, got.Seats[0].GuestID, "old seat freed")
		requireInjective(t, p)

		// Undo restores the previous seat.
		ok, err := p.Undo(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		asg, err = p.Assignments(ctx)
		require.NoError(t, err)
		assert.Equal(t, t1.ID, asg["g1"].TableID)
		requireInjective(t, p)
	})

	t.Run("destination locked by another session", func(t *testing.T) {
		p, area := newTestPlan(t)
		tbl := addTable(t, p, area.ID, 0, 0, 4)
		_, err := p.Locks().Ensure(tbl.ID, bob)
		require.NoError(t, err)
		err = p.AssignGuestToSeat(ctx, alice, "g1", tbl.ID, 0)
		assert.ErrorIs(t, err, lock.ErrHeldByOther)
	})

	t.Run("unknown table or seat", func(t *testing.T) {
		p, area := newTestPlan(t)
		tbl := addTable(t, p, area.ID, 0, 0, 2)
		assert.ErrorIs(t, p.AssignGuestToSeat(ctx, alice, "g1", "nope", 0), ErrNotFound)
		assert.ErrorIs(t, p.AssignGuestToSeat(ctx, alice, "g1", tbl.ID, 9), ErrNotFound)
		assert.ErrorIs(t, p.AssignGuestToSeat(ctx, alice, "", tbl.ID, 0), ErrNotFound)
	})
}

func TestUnassignGuest(t *testing.T) {
	ctx := context.Background()
	p, area := newTestPlan(t)
	tbl := addTable(t, p, area.ID, 0, 0, 2)
	require.NoError(t, p.AssignGuestToSeat(ctx, alice, "g1", tbl.ID, 1))

	require.NoError(t, p.UnassignGuest(ctx, alice, "g1"))
	asg, err := p.Assignments(ctx)
	require.NoError(t, err)
	assert.Empty(t, asg)

	// Idempotent for guests who are not seated.
	require.NoError(t, p.UnassignGuest(ctx, alice, "g1"))
	require.NoError(t, p.UnassignGuest(ctx, alice, "never-seated"))

	// Undo re-seats.
	ok, err := p.Undo(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	asg, err = p.Assignments(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, asg["g1"].SeatIndex)
}

func TestMoveGuest(t *testing.T) {
	ctx := context.Background()

	t.Run("relocates in one undoable unit", func(t *testing.T) {
		p, area := newTestPlan(t)
		t1 := addTable(t, p, area.ID, 0, 0, 2)
		t2 := addTable(t, p, area.ID, 200, 0, 2)
		require.NoError(t, p.AssignGuestToSeat(ctx, alice, "g1", t1.ID, 0))

		require.NoError(t, p.MoveGuest(ctx, alice, "g1", t2.ID, 1))
		asg, err := p.Assignments(ctx)
		require.NoError(t, err)
		assert.Equal(t, t2.ID, asg["g1"].TableID)

		ok, err := p.Undo(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		asg, err = p.Assignments(ctx)
		require.NoError(t, err)
		assert.Equal(t, t1.ID, asg["g1"].TableID)
		assert.Equal(t, 0, asg["g1"].SeatIndex)
	})

	t.Run("failed move leaves the original binding intact", func(t *testing.T) {
		p, area := newTestPlan(t)
		t1 := addTable(t, p, area.ID, 0, 0, 2)
		t2 := addTable(t, p, area.ID, 200, 0, 2)
		require.NoError(t, p.AssignGuestToSeat(ctx, alice, "g1", t1.ID, 0))
		require.NoError(t, p.AssignGuestToSeat(ctx, alice, "g2", t2.ID, 1))

		err := p.MoveGuest(ctx, alice, "g1", t2.ID, 1)
		require.ErrorIs(t, err, ErrSeatOccupied)
		asg, err := p.Assignments(ctx)
		require.NoError(t, err)
		assert.Equal(t, t1.ID, asg["g1"].TableID)
		requireInjective(t, p)
	})
}

func TestUndoRedoRoundTrip(t *testing.T) {
	ctx := context.Background()
	p, area := newTestPlan(t)
	t1 := addTable(t, p, area.ID, 0, 0, 2)
	require.NoError(t, p.AssignGuestToSeat(ctx, alice, "g1", t1.ID, 0))
	require.NoError(t, p.MoveTable(ctx, alice, t1.ID, 30, 40))

	snapState := func() (float64, float64, string) {
		tbl, err := p.Table(ctx, t1.ID)
		require.NoError(t, err)
		return tbl.X, tbl.Y, tbl.Seats[0].GuestID
	}
	x0, y0, g0 := snapState()

	// Undo everything, then redo everything: the observable state must
	// round-trip exactly.
	for {
		ok, err := p.Undo(ctx)
		require.NoError(t, err)
		if !ok {
			break
		}
	}
	tables, err := p.Tables(ctx)
	require.NoError(t, err)
	assert.Empty(t, tables, "full undo reaches the empty plan")

	for {
		ok, err := p.Redo(ctx)
		require.NoError(t, err)
		if !ok {
			break
		}
	}
	x1, y1, g1 := snapState()
	assert.Equal(t, x0, x1)
	assert.Equal(t, y0, y1)
	assert.Equal(t, g0, g1)
	requireInjective(t, p)
}

func TestNewMutationClearsRedo(t *testing.T) {
	ctx := context.Background()
	p, area := newTestPlan(t)
	tbl := addTable(t, p, area.ID, 0, 0, 2)
	require.NoError(t, p.AssignGuestToSeat(ctx, alice, "g1", tbl.ID, 0))

	ok, err := p.Undo(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	canRedo, err := p.CanRedo(ctx)
	require.NoError(t, err)
	require.True(t, canRedo)

	// Any new mutation forks history and invalidates redo.
	require.NoError(t, p.AssignGuestToSeat(ctx, alice, "g2", tbl.ID, 1))
	canRedo, err = p.CanRedo(ctx)
	require.NoError(t, err)
	assert.False(t, canRedo)
}
