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

	domain "hotelops/internal/domain/payments"
)

const paymentColumns = `
	id, payment_id, idempotency_key, booking_number, payment_type,
	amount, currency, payment_method, payment_status,
	transaction_id, failure_reason, guest_name, guest_email, description,
	card_last4, card_type, processed_by, paid_at, created_at, updated_at`

type PaymentsRepo struct {
	db     *sqlx.DB
	getter *trmsqlx.CtxGetter
}

func NewPaymentsRepo(db *sqlx.DB, getter *trmsqlx.CtxGetter) *PaymentsRepo {
	return &PaymentsRepo{db: db, getter: getter}
}

func (r *PaymentsRepo) conn(ctx context.Context) trmsqlx.Tr {
	return r.getter.DefaultTrOrDB(ctx, r.db)
}

func (r *PaymentsRepo) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (
			payment_id, idempotency_key, booking_number, payment_type,
			amount, currency, payment_method, payment_status,
			transaction_id, failure_reason, guest_name, guest_email, description,
			card_last4, card_type, processed_by, paid_at, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19
		) RETURNING id`

	err := r.conn(ctx).QueryRowxContext(ctx, query,
		payment.PaymentID,
		payment.IdempotencyKey,
		payment.BookingNumber,
		payment.PaymentType,
		payment.Amount,
		payment.Currency,
		payment.Method,
		payment.Status,
		payment.TransactionID,
		payment.FailureReason,
		payment.GuestName,
		payment.GuestEmail,
		payment.Description,
		payment.CardLast4,
		payment.CardType,
		payment.ProcessedBy,
		payment.PaidAt,
		payment.CreatedAt,
		payment.UpdatedAt,
	).Scan(&payment.ID)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}

	return nil
}

func (r *PaymentsRepo) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Payment, error) {
	return r.getOne(ctx, "idempotency_key", key)
}

func (r *PaymentsRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	return r.getOne(ctx, "id", id)
}

func (r *PaymentsRepo) GetByPaymentID(ctx context.Context, paymentID string) (*domain.Payment, error) {
	return r.getOne(ctx, "payment_id", paymentID)
}

func (r *PaymentsRepo) getOne(ctx context.Context, column string, value any) (*domain.Payment, error) {
	var payment domain.Payment

	query := fmt.Sprintf(`SELECT %s FROM payments WHERE %s = $1`, paymentColumns, column)

	err := r.conn(ctx).GetContext(ctx, &payment, query, value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment by %s: %w", column, err)
	}

	return &payment, nil
}

// HasSuccessfulPayment reports whether a captured payment already exists
// for the reference. The partial unique index backs the same invariant in
// storage.
func (r *PaymentsRepo) HasSuccessfulPayment(ctx context.Context, bookingNumber string) (bool, error) {
	var count int

	query := `SELECT COUNT(*) FROM payments WHERE booking_number = $1 AND payment_status = $2`

	err := r.conn(ctx).GetContext(ctx, &count, query, bookingNumber, domain.StatusSuccess)
	if err != nil {
		return false, fmt.Errorf("failed to check for successful payment: %w", err)
	}

	return count > 0, nil
}

func (r *PaymentsRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status, processedBy string, updatedAt time.Time) error {
	query := `
		UPDATE payments
		SET payment_status = $2, processed_by = $3, updated_at = $4
		WHERE id = $1`

	res, err := r.conn(ctx).ExecContext(ctx, query, id, status, processedBy, updatedAt)
	if err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (r *PaymentsRepo) List(ctx context.Context) ([]domain.Payment, error) {
	return r.list(ctx, "", nil)
}

func (r *PaymentsRepo) ListByBookingNumber(ctx context.Context, bookingNumber string) ([]domain.Payment, error) {
	return r.list(ctx, "booking_number", bookingNumber)
}

func (r *PaymentsRepo) ListByStatus(ctx context.Context, status domain.Status) ([]domain.Payment, error) {
	return r.list(ctx, "payment_status", status)
}

func (r *PaymentsRepo) ListByType(ctx context.Context, paymentType domain.Type) ([]domain.Payment, error) {
	return r.list(ctx, "payment_type", paymentType)
}

func (r *PaymentsRepo) list(ctx context.Context, column string, value any) ([]domain.Payment, error) {
	var payments []domain.Payment

	query := fmt.Sprintf(`SELECT %s FROM payments`, paymentColumns)
	args := []any{}
	if column != "" {
		query += fmt.Sprintf(" WHERE %s = $1", column)
		args = append(args, value)
	}
	query += " ORDER BY created_at DESC"

	if err := r.conn(ctx).SelectContext(ctx, &payments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	return payments, nil
}
