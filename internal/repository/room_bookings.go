package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	trmsqlx "github.com/avito-tech/go-transaction-manager/drivers/sqlx/v2"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	domain "hotelops/internal/domain/bookings"
)

const roomBookingColumns = `
	id, booking_number, idempotency_key, room_id,
	guest_name, guest_email, guest_phone,
	check_in_date, check_out_date, number_of_guests, number_of_nights,
	room_price, total_amount, status, special_requests,
	booked_by, booked_at, last_modified_at`

type RoomBookingsRepo struct {
	db     *sqlx.DB
	getter *trmsqlx.CtxGetter
}

func NewRoomBookingsRepo(db *sqlx.DB, getter *trmsqlx.CtxGetter) *RoomBookingsRepo {
	return &RoomBookingsRepo{db: db, getter: getter}
}

func (r *RoomBookingsRepo) conn(ctx context.Context) trmsqlx.Tr {
	return r.getter.DefaultTrOrDB(ctx, r.db)
}

func (r *RoomBookingsRepo) Create(ctx context.Context, booking *domain.RoomBooking) error {
	query := `
		INSERT INTO room_bookings (
			booking_number, idempotency_key, room_id,
			guest_name, guest_email, guest_phone,
			check_in_date, check_out_date, number_of_guests, number_of_nights,
			room_price, total_amount, status, special_requests,
			booked_by, booked_at, last_modified_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17
		) RETURNING id`

	err := r.conn(ctx).QueryRowxContext(ctx, query,
		booking.BookingNumber,
		booking.IdempotencyKey,
		booking.RoomID,
		booking.GuestName,
		booking.GuestEmail,
		booking.GuestPhone,
		booking.CheckInDate,
		booking.CheckOutDate,
		booking.NumberOfGuests,
		booking.NumberOfNights,
		booking.RoomPrice,
		booking.TotalAmount,
		booking.Status,
		booking.SpecialRequests,
		booking.BookedBy,
		booking.BookedAt,
		booking.LastModifiedAt,
	).Scan(&booking.ID)
	if err != nil {
		return fmt.Errorf("failed to create room booking: %w", err)
	}

	return nil
}

// GetByIdempotencyKey returns (nil, nil) when no booking carries the key.
func (r *RoomBookingsRepo) GetByIdempotencyKey(ctx context.Context, key string) (*domain.RoomBooking, error) {
	return r.getOne(ctx, "idempotency_key", key)
}

func (r *RoomBookingsRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.RoomBooking, error) {
	return r.getOne(ctx, "id", id)
}

func (r *RoomBookingsRepo) GetByNumber(ctx context.Context, number string) (*domain.RoomBooking, error) {
	return r.getOne(ctx, "booking_number", number)
}

func (r *RoomBookingsRepo) getOne(ctx context.Context, column string, value any) (*domain.RoomBooking, error) {
	var booking domain.RoomBooking

	query := fmt.Sprintf(`SELECT %s FROM room_bookings WHERE %s = $1`, roomBookingColumns, column)

	err := r.conn(ctx).GetContext(ctx, &booking, query, value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get room booking by %s: %w", column, err)
	}

	return &booking, nil
}

// FindConflicting returns active bookings for the room whose date ranges
// intersect the requested range. This is the authoritative double-booking
// guard and must run inside the caller's serializable transaction.
func (r *RoomBookingsRepo) FindConflicting(ctx context.Context, roomID string, checkIn, checkOut time.Time) ([]domain.RoomBooking, error) {
	var conflicts []domain.RoomBooking

	query := fmt.Sprintf(`
		SELECT %s FROM room_bookings
		WHERE room_id = $1
		  AND status = ANY($2)
		  AND check_in_date < $4
		  AND check_out_date > $3`, roomBookingColumns)

	err := r.conn(ctx).SelectContext(ctx, &conflicts, query,
		roomID, pq.Array(domain.ActiveStatuses()), checkIn, checkOut)
	if err != nil {
		return nil, fmt.Errorf("failed to find conflicting room bookings: %w", err)
	}

	return conflicts, nil
}

func (r *RoomBookingsRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status, modifiedAt time.Time) error {
	query := `
		UPDATE room_bookings
		SET status = $2, last_modified_at = $3
		WHERE id = $1`

	res, err := r.conn(ctx).ExecContext(ctx, query, id, status, modifiedAt)
	if err != nil {
		return fmt.Errorf("failed to update room booking status: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (r *RoomBookingsRepo) List(ctx context.Context) ([]domain.RoomBooking, error) {
	return r.list(ctx, "", nil)
}

func (r *RoomBookingsRepo) ListByGuestEmail(ctx context.Context, email string) ([]domain.RoomBooking, error) {
	return r.list(ctx, "guest_email", email)
}

func (r *RoomBookingsRepo) ListByStatus(ctx context.Context, status domain.Status) ([]domain.RoomBooking, error) {
	return r.list(ctx, "status", status)
}

func (r *RoomBookingsRepo) list(ctx context.Context, column string, value any) ([]domain.RoomBooking, error) {
	var bookings []domain.RoomBooking

	query := fmt.Sprintf(`SELECT %s FROM room_bookings`, roomBookingColumns)
	args := []any{}
	if column != "" {
		query += fmt.Sprintf(" WHERE %s = $1", column)
		args = append(args, value)
	}
	query += " ORDER BY booked_at DESC"

	if err := r.conn(ctx).SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list room bookings: %w", err)
	}

	return bookings, nil
}
