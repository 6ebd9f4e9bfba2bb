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

const tableBookingColumns = `
	id, booking_number, idempotency_key, table_id,
	guest_name, guest_email, guest_phone,
	reservation_at, duration_minutes, number_of_guests,
	reservation_fee, total_amount, status, special_requests,
	booked_by, booked_at, last_modified_at`

type TableBookingsRepo struct {
	db     *sqlx.DB
	getter *trmsqlx.CtxGetter
}

func NewTableBookingsRepo(db *sqlx.DB, getter *trmsqlx.CtxGetter) *TableBookingsRepo {
	return &TableBookingsRepo{db: db, getter: getter}
}

func (r *TableBookingsRepo) conn(ctx context.Context) trmsqlx.Tr {
	return r.getter.DefaultTrOrDB(ctx, r.db)
}

func (r *TableBookingsRepo) Create(ctx context.Context, booking *domain.TableBooking) error {
	query := `
		INSERT INTO table_bookings (
			booking_number, idempotency_key, table_id,
			guest_name, guest_email, guest_phone,
			reservation_at, duration_minutes, number_of_guests,
			reservation_fee, total_amount, status, special_requests,
			booked_by, booked_at, last_modified_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16
		) RETURNING id`

	err := r.conn(ctx).QueryRowxContext(ctx, query,
		booking.BookingNumber,
		booking.IdempotencyKey,
		booking.TableID,
		booking.GuestName,
		booking.GuestEmail,
		booking.GuestPhone,
		booking.ReservationAt,
		booking.DurationMinutes,
		booking.NumberOfGuests,
		booking.ReservationFee,
		booking.TotalAmount,
		booking.Status,
		booking.SpecialRequests,
		booking.BookedBy,
		booking.BookedAt,
		booking.LastModifiedAt,
	).Scan(&booking.ID)
	if err != nil {
		return fmt.Errorf("failed to create table booking: %w", err)
	}

	return nil
}

func (r *TableBookingsRepo) GetByIdempotencyKey(ctx context.Context, key string) (*domain.TableBooking, error) {
	return r.getOne(ctx, "idempotency_key", key)
}

func (r *TableBookingsRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.TableBooking, error) {
	return r.getOne(ctx, "id", id)
}

func (r *TableBookingsRepo) GetByNumber(ctx context.Context, number string) (*domain.TableBooking, error) {
	return r.getOne(ctx, "booking_number", number)
}

func (r *TableBookingsRepo) getOne(ctx context.Context, column string, value any) (*domain.TableBooking, error) {
	var booking domain.TableBooking

	query := fmt.Sprintf(`SELECT %s FROM table_bookings WHERE %s = $1`, tableBookingColumns, column)

	err := r.conn(ctx).GetContext(ctx, &booking, query, value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get table booking by %s: %w", column, err)
	}

	return &booking, nil
}

// FindConflicting returns active reservations on the table landing on the
// same date within the conflict buffer of the requested time.
func (r *TableBookingsRepo) FindConflicting(ctx context.Context, tableID string, reservationAt time.Time, bufferMinutes int) ([]domain.TableBooking, error) {
	var conflicts []domain.TableBooking

	query := fmt.Sprintf(`
		SELECT %s FROM table_bookings
		WHERE table_id = $1
		  AND status = ANY($2)
		  AND reservation_at::date = $3::date
		  AND ABS(EXTRACT(EPOCH FROM (reservation_at - $3))) < $4`, tableBookingColumns)

	err := r.conn(ctx).SelectContext(ctx, &conflicts, query,
		tableID, pq.Array(domain.ActiveStatuses()), reservationAt, bufferMinutes*60)
	if err != nil {
		return nil, fmt.Errorf("failed to find conflicting table bookings: %w", err)
	}

	return conflicts, nil
}

func (r *TableBookingsRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status, modifiedAt time.Time) error {
	query := `
		UPDATE table_bookings
		SET status = $2, last_modified_at = $3
		WHERE id = $1`

	res, err := r.conn(ctx).ExecContext(ctx, query, id, status, modifiedAt)
	if err != nil {
		return fmt.Errorf("failed to update table booking status: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (r *TableBookingsRepo) List(ctx context.Context) ([]domain.TableBooking, error) {
	return r.list(ctx, "", nil)
}

func (r *TableBookingsRepo) ListByGuestEmail(ctx context.Context, email string) ([]domain.TableBooking, error) {
	return r.list(ctx, "guest_email", email)
}

func (r *TableBookingsRepo) ListByStatus(ctx context.Context, status domain.Status) ([]domain.TableBooking, error) {
	return r.list(ctx, "status", status)
}

func (r *TableBookingsRepo) list(ctx context.Context, column string, value any) ([]domain.TableBooking, error) {
	var bookings []domain.TableBooking

	query := fmt.Sprintf(`SELECT %s FROM table_bookings`, tableBookingColumns)
	args := []any{}
	if column != "" {
		query += fmt.Sprintf(" WHERE %s = $1", column)
		args = append(args, value)
	}
	query += " ORDER BY booked_at DESC"

	if err := r.conn(ctx).SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list table bookings: %w", err)
	}

	return bookings, nil
}
