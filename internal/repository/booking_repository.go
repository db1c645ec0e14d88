package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/travel-agency/internal/database"
	"github.com/iliyamo/travel-agency/internal/model"
)

// BookingRepo provides persistence for bookings and their participants.
// Participants live in booking_participants; each (booking, user) pair is
// unique so concurrent joins append rows instead of rewriting a list.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = "id, user_id, item_type, item_id, item_data, travel_date, guests, status, share_token, created_at, updated_at"

// Create inserts the booking and its initial participants in one
// transaction.
func (r *BookingRepo) Create(ctx context.Context, b model.Booking) error {
	data, err := json.Marshal(b.ItemData)
	if err != nil {
		return fmt.Errorf("encode item data: %w", err)
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO bookings ("+bookingColumns+") VALUES (?,?,?,?,?,?,?,?,?,?,?)",
		b.ID, b.UserID, b.ItemType, b.ItemID, string(data), b.TravelDate, b.Guests,
		b.Status, b.ShareToken, toMillis(b.CreatedAt), toMillis(b.UpdatedAt))
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert booking: %w", err)
	}
	for _, p := range b.Participants {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO booking_participants (booking_id, user_id, name, email, phone, joined_at, status, role)
			 VALUES (?,?,?,?,?,?,?,?)`,
			b.ID, p.UserID, p.Name, p.Email, nullString(p.Phone), toMillis(p.JoinedAt), p.Status, p.Role); err != nil {
			if database.IsUniqueViolation(err) {
				return ErrDuplicate
			}
			return fmt.Errorf("insert participant: %w", err)
		}
	}
	return tx.Commit()
}

func (r *BookingRepo) getOne(ctx context.Context, where string, arg any) (model.Booking, error) {
	var (
		b                model.Booking
		data             string
		created, updated int64
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE "+where+" LIMIT 1", arg).Scan(
		&b.ID, &b.UserID, &b.ItemType, &b.ItemID, &data, &b.TravelDate, &b.Guests,
		&b.Status, &b.ShareToken, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Booking{}, ErrNotFound
	}
	if err != nil {
		return model.Booking{}, fmt.Errorf("scan booking: %w", err)
	}
	if data != "" {
		if err := json.Unmarshal([]byte(data), &b.ItemData); err != nil {
			return model.Booking{}, fmt.Errorf("decode item data: %w", err)
		}
	}
	b.CreatedAt = fromMillis(created)
	b.UpdatedAt = fromMillis(updated)
	if b.Participants, err = r.ListParticipants(ctx, b.ID); err != nil {
		return model.Booking{}, err
	}
	return b, nil
}

// GetByID loads a booking with its participants.
func (r *BookingRepo) GetByID(ctx context.Context, id string) (model.Booking, error) {
	return r.getOne(ctx, "id=?", id)
}

// GetByShareToken loads the booking a share token belongs to.
func (r *BookingRepo) GetByShareToken(ctx context.Context, token string) (model.Booking, error) {
	return r.getOne(ctx, "share_token=?", token)
}

// ListByUser returns bookings the user owns or joined, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID string) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM bookings
		 WHERE user_id=? OR id IN (SELECT booking_id FROM booking_participants WHERE user_id=?)
		 ORDER BY created_at DESC, id`, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan booking id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	out := make([]model.Booking, 0, len(ids))
	for _, id := range ids {
		b, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// ListParticipants returns the participants of a booking in join order.
func (r *BookingRepo) ListParticipants(ctx context.Context, bookingID string) ([]model.Participant, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id, name, email, phone, joined_at, status, role
		 FROM booking_participants WHERE booking_id=? ORDER BY joined_at, user_id`, bookingID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()
	out := []model.Participant{}
	for rows.Next() {
		var (
			p      model.Participant
			phone  sql.NullString
			joined int64
		)
		if err := rows.Scan(&p.UserID, &p.Name, &p.Email, &phone, &joined, &p.Status, &p.Role); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		if phone.Valid {
			v := phone.String
			p.Phone = &v
		}
		p.JoinedAt = fromMillis(joined)
		out = append(out, p)
	}
	return out, rows.Err()
}

// AddParticipant appends p to the booking unless the user already joined
// (ErrDuplicate) or the booking is missing or cancelled (ErrConflict).
// The insert selects from bookings so the status check and the append are
// one statement.
func (r *BookingRepo) AddParticipant(ctx context.Context, bookingID string, p model.Participant) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO booking_participants (booking_id, user_id, name, email, phone, joined_at, status, role)
		 SELECT id, ?, ?, ?, ?, ?, ?, ? FROM bookings WHERE id=? AND status<>?`,
		p.UserID, p.Name, p.Email, nullString(p.Phone), toMillis(p.JoinedAt), p.Status, p.Role,
		bookingID, model.BookingCancelled)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert participant: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrConflict
	}
	return nil
}

// Cancel marks the booking cancelled.  ErrConflict means it already was.
func (r *BookingRepo) Cancel(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE bookings SET status=?, updated_at=? WHERE id=? AND status<>?",
		model.BookingCancelled, toMillis(at), id, model.BookingCancelled)
	if err != nil {
		return fmt.Errorf("cancel booking: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrConflict
	}
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
