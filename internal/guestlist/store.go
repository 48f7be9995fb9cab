package guestlist

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/wedding-seating-engine/internal/model"
)

// Store implements Client against the SaaS's shared MySQL database.
// The seating service reads the `guests` table and owns only the
// assignment columns (`table_id`, `table_name`, `seat_index`), which
// exist purely as the Guest List's display projection.  All timestamp
// comparisons happen in UTC.
type Store struct {
	db *sql.DB
}

// NewStore returns a Store bound to the provided database.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// GetGuest fetches one guest record.
func (s *Store) GetGuest(ctx context.Context, weddingID, guestID string) (model.Guest, error) {
	const q = `SELECT id, wedding_id, name, group_id, near_stage, near_dance
	           FROM guests WHERE wedding_id = ? AND id = ?`
	var g model.Guest
	err := s.db.QueryRowContext(ctx, q, weddingID, guestID).
		Scan(&g.ID, &g.WeddingID, &g.Name, &g.GroupID, &g.NearStage, &g.NearDance)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Guest{}, ErrGuestNotFound
	}
	if err != nil {
		return model.Guest{}, err
	}
	return g, nil
}

// ListGuests returns every guest of a wedding ordered by id.
func (s *Store) ListGuests(ctx context.Context, weddingID string) ([]model.Guest, error) {
	const q = `SELECT id, wedding_id, name, group_id, near_stage, near_dance
	           FROM guests WHERE wedding_id = ? ORDER BY id`
	rows, err := s.db.QueryContext(ctx, q, weddingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Guest
	for rows.Next() {
		var g model.Guest
		if err := rows.Scan(&g.ID, &g.WeddingID, &g.Name, &g.GroupID, &g.NearStage, &g.NearDance); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// ListAssignments returns the Guest List's recorded assignments for a
// wedding.  Guests without a table are skipped: an absent row and a
// cleared projection mean the same thing to the reconciler.
func (s *Store) ListAssignments(ctx context.Context, weddingID string) ([]model.GuestAssignment, error) {
	const q = `SELECT id, table_id, table_name, seat_index
	           FROM guests WHERE wedding_id = ? AND table_id IS NOT NULL ORDER BY id`
	rows, err := s.db.QueryContext(ctx, q, weddingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.GuestAssignment
	for rows.Next() {
		var a model.GuestAssignment
		var tableID, tableName sql.NullString
		var seatIndex sql.NullInt64
		if err := rows.Scan(&a.GuestID, &tableID, &tableName, &seatIndex); err != nil {
			return nil, err
		}
		a.TableID = tableID.String
		a.TableName = tableName.String
		a.SeatIndex = int(seatIndex.Int64)
		out = append(out, a)
	}
	return out, rows.Err()
}

// UpdateGuestAssignment overwrites a guest's assignment projection.
// A nil assignment clears the columns.  Affecting zero rows means the
// guest no longer exists, which callers treat as ErrGuestNotFound.
func (s *Store) UpdateGuestAssignment(ctx context.Context, weddingID, guestID string, assignment *model.GuestAssignment) error {
	const q = `UPDATE guests SET table_id = ?, table_name = ?, seat_index = ?, updated_at = UTC_TIMESTAMP()
	           WHERE wedding_id = ? AND id = ?`
	var (
		tableID   interface{}
		tableName interface{}
		seatIndex interface{}
	)
	if assignment != nil {
		tableID = assignment.TableID
		tableName = assignment.TableName
		seatIndex = assignment.SeatIndex
	}
	res, err := s.db.ExecContext(ctx, q, tableID, tableName, seatIndex, weddingID, guestID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// MySQL also reports 0 when the row already matched; confirm
		// the guest exists before declaring it gone.
		if _, getErr := s.GetGuest(ctx, weddingID, guestID); errors.Is(getErr, ErrGuestNotFound) {
			return ErrGuestNotFound
		}
	}
	return nil
}
