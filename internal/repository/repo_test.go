package repository

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	trmsqlx "github.com/avito-tech/go-transaction-manager/drivers/sqlx/v2"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bdomain "hotelops/internal/domain/bookings"
	pdomain "hotelops/internal/domain/payments"
)

var (
	testDB    *sqlx.DB
	getDBOnce sync.Once
)

func getDB(t *testing.T) *sqlx.DB {
	url := os.Getenv("POSTGRES_URL")
	if url == "" {
		t.Skip("POSTGRES_URL is not set")
	}

	getDBOnce.Do(func() {
		var err error
		testDB, err = sqlx.Open("postgres", url)
		if err != nil {
			panic(err)
		}
		if err := InitializeDBSchema(testDB); err != nil {
			panic(err)
		}
	})
	return testDB
}

func cleanup(t *testing.T, tables ...string) {
	t.Cleanup(func() {
		for _, table := range tables {
			_, err := getDB(t).Exec("TRUNCATE TABLE " + table + " CASCADE")
			require.NoError(t, err)
		}
	})
}

func roomBookingFixture() *bdomain.RoomBooking {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &bdomain.RoomBooking{
		ID:             uuid.New(),
		BookingNumber:  bdomain.NewRoomBookingNumber(),
		IdempotencyKey: uuid.NewString(),
		RoomID:         "room-101",
		GuestName:      "John Doe",
		GuestEmail:     "john@example.com",
		GuestPhone:     "+1-555-0100",
		CheckInDate:    time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		CheckOutDate:   time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC),
		NumberOfGuests: 2,
		NumberOfNights: 2,
		RoomPrice:      decimal.NewFromInt(100),
		TotalAmount:    decimal.NewFromInt(200),
		Status:         bdomain.StatusPending,
		BookedBy:       "system",
		BookedAt:       now,
		LastModifiedAt: now,
	}
}

func TestRoomBookingsRepo_Integration(t *testing.T) {
	db := getDB(t)
	cleanup(t, "room_bookings")

	repo := NewRoomBookingsRepo(db, trmsqlx.DefaultCtxGetter)
	ctx := context.Background()

	t.Run("create and read back", func(t *testing.T) {
		b := roomBookingFixture()
		require.NoError(t, repo.Create(ctx, b))

		byKey, err := repo.GetByIdempotencyKey(ctx, b.IdempotencyKey)
		require.NoError(t, err)
		require.NotNil(t, byKey)
		assert.Equal(t, b.BookingNumber, byKey.BookingNumber)
		assert.True(t, byKey.TotalAmount.Equal(b.TotalAmount))

		byNumber, err := repo.GetByNumber(ctx, b.BookingNumber)
		require.NoError(t, err)
		require.NotNil(t, byNumber)
		assert.Equal(t, b.ID, byNumber.ID)
	})

	t.Run("missing rows come back nil without error", func(t *testing.T) {
		b, err := repo.GetByNumber(ctx, "RB-MISSING1")
		require.NoError(t, err)
		assert.Nil(t, b)
	})

	t.Run("conflict detection", func(t *testing.T) {
		b := roomBookingFixture()
		b.RoomID = "room-202"
		require.NoError(t, repo.Create(ctx, b))

		overlapping, err := repo.FindConflicting(ctx, "room-202",
			time.Date(2026, 9, 11, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Len(t, overlapping, 1)

		// back-to-back stays share the turnover day
		adjacent, err := repo.FindConflicting(ctx, "room-202",
			time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Empty(t, adjacent)

		require.NoError(t, repo.UpdateStatus(ctx, b.ID, bdomain.StatusCancelled, time.Now().UTC()))

		afterCancel, err := repo.FindConflicting(ctx, "room-202",
			time.Date(2026, 9, 11, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Empty(t, afterCancel)
	})

	t.Run("updating an unknown booking reports no rows", func(t *testing.T) {
		err := repo.UpdateStatus(ctx, uuid.New(), bdomain.StatusConfirmed, time.Now().UTC())
		assert.Error(t, err)
	})
}

func paymentFixture(bookingNumber string) *pdomain.Payment {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &pdomain.Payment{
		ID:             uuid.New(),
		PaymentID:      pdomain.NewPaymentID(),
		IdempotencyKey: uuid.NewString(),
		BookingNumber:  bookingNumber,
		PaymentType:    pdomain.TypeRoomBooking,
		Amount:         decimal.NewFromInt(200),
		Currency:       "USD",
		Method:         pdomain.MethodCreditCard,
		Status:         pdomain.StatusSuccess,
		TransactionID:  pdomain.NewTransactionID(),
		GuestName:      "John Doe",
		GuestEmail:     "john@example.com",
		ProcessedBy:    "system",
		PaidAt:         now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestPaymentsRepo_Integration(t *testing.T) {
	db := getDB(t)
	cleanup(t, "payments")

	repo := NewPaymentsRepo(db, trmsqlx.DefaultCtxGetter)
	ctx := context.Background()

	t.Run("one successful payment per booking", func(t *testing.T) {
		first := paymentFixture("RB-UNIQ0001")
		require.NoError(t, repo.Create(ctx, first))

		has, err := repo.HasSuccessfulPayment(ctx, "RB-UNIQ0001")
		require.NoError(t, err)
		assert.True(t, has)

		// the partial unique index rejects a second captured payment
		second := paymentFixture("RB-UNIQ0001")
		assert.Error(t, repo.Create(ctx, second))

		// a failed attempt for the same booking is fine
		failed := paymentFixture("RB-UNIQ0001")
		failed.Status = pdomain.StatusFailed
		failed.TransactionID = ""
		failed.FailureReason = "declined"
		assert.NoError(t, repo.Create(ctx, failed))
	})

	t.Run("refund transition persists", func(t *testing.T) {
		p := paymentFixture("RB-REFUND01")
		require.NoError(t, repo.Create(ctx, p))

		require.NoError(t, repo.UpdateStatus(ctx, p.ID, pdomain.StatusRefunded, "root", time.Now().UTC()))

		got, err := repo.GetByPaymentID(ctx, p.PaymentID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, pdomain.StatusRefunded, got.Status)
		assert.Equal(t, "root", got.ProcessedBy)
	})

	t.Run("idempotency key lookup", func(t *testing.T) {
		p := paymentFixture("RB-KEY00001")
		require.NoError(t, repo.Create(ctx, p))

		got, err := repo.GetByIdempotencyKey(ctx, p.IdempotencyKey)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, p.PaymentID, got.PaymentID)
	})
}
