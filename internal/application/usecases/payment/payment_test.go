package payment

import (
	"context"
	"testing"
	"time"

	trm "github.com/avito-tech/go-transaction-manager/trm/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelops/internal/auth"
	"hotelops/internal/domain/payments"
	"hotelops/internal/entities"
	"hotelops/internal/fault"
	"hotelops/internal/idempotency"
)

type passthroughTrManager struct{}

func (passthroughTrManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (passthroughTrManager) DoWithSettings(ctx context.Context, _ trm.Settings, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakePaymentsRepo struct {
	byID map[uuid.UUID]*payments.Payment
}

func newFakePaymentsRepo() *fakePaymentsRepo {
	return &fakePaymentsRepo{byID: map[uuid.UUID]*payments.Payment{}}
}

func (r *fakePaymentsRepo) Create(_ context.Context, p *payments.Payment) error {
	clone := *p
	r.byID[p.ID] = &clone
	return nil
}

func (r *fakePaymentsRepo) GetByIdempotencyKey(_ context.Context, key string) (*payments.Payment, error) {
	for _, p := range r.byID {
		if p.IdempotencyKey == key {
			clone := *p
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakePaymentsRepo) GetByID(_ context.Context, id uuid.UUID) (*payments.Payment, error) {
	if p, ok := r.byID[id]; ok {
		clone := *p
		return &clone, nil
	}
	return nil, nil
}

func (r *fakePaymentsRepo) GetByPaymentID(_ context.Context, paymentID string) (*payments.Payment, error) {
	for _, p := range r.byID {
		if p.PaymentID == paymentID {
			clone := *p
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakePaymentsRepo) HasSuccessfulPayment(_ context.Context, bookingNumber string) (bool, error) {
	for _, p := range r.byID {
		if p.BookingNumber == bookingNumber && p.Status == payments.StatusSuccess {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakePaymentsRepo) UpdateStatus(_ context.Context, id uuid.UUID, status payments.Status, processedBy string, updatedAt time.Time) error {
	p, ok := r.byID[id]
	if !ok {
		return fault.NotFound("payment", id.String())
	}
	p.Status = status
	p.ProcessedBy = processedBy
	p.UpdatedAt = updatedAt
	return nil
}

func (r *fakePaymentsRepo) List(_ context.Context) ([]payments.Payment, error) {
	var out []payments.Payment
	for _, p := range r.byID {
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakePaymentsRepo) ListByBookingNumber(_ context.Context, bookingNumber string) ([]payments.Payment, error) {
	var out []payments.Payment
	for _, p := range r.byID {
		if p.BookingNumber == bookingNumber {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePaymentsRepo) ListByStatus(_ context.Context, status payments.Status) ([]payments.Payment, error) {
	var out []payments.Payment
	for _, p := range r.byID {
		if p.Status == status {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePaymentsRepo) ListByType(_ context.Context, paymentType payments.Type) ([]payments.Payment, error) {
	var out []payments.Payment
	for _, p := range r.byID {
		if p.PaymentType == paymentType {
			out = append(out, *p)
		}
	}
	return out, nil
}

type fakeGateway struct {
	result  payments.ChargeResult
	err     error
	charges []payments.ChargeRequest
}

func (f *fakeGateway) Charge(_ context.Context, req payments.ChargeRequest) (payments.ChargeResult, error) {
	f.charges = append(f.charges, req)
	return f.result, f.err
}

type fakeReference struct {
	details    payments.ReferenceDetails
	err        error
	confirmed  []string
	confirmErr error
}

func (f *fakeReference) Validate(_ context.Context, _ string) (payments.ReferenceDetails, error) {
	return f.details, f.err
}

func (f *fakeReference) Confirm(_ context.Context, referenceNumber string) error {
	if f.confirmErr != nil {
		return f.confirmErr
	}
	f.confirmed = append(f.confirmed, referenceNumber)
	return nil
}

type fakeEventBus struct {
	published []any
}

func (f *fakeEventBus) Publish(_ context.Context, event any) error {
	f.published = append(f.published, event)
	return nil
}

func newTestUsecase() (*Usecase, *fakePaymentsRepo, *fakeGateway, *fakeReference, *fakeEventBus) {
	repo := newFakePaymentsRepo()
	gateway := &fakeGateway{result: payments.ChargeResult{
		Success:       true,
		TransactionID: "TXN-TEST00000001",
		GatewayRef:    "GATEWAY-REF-1",
	}}
	ref := &fakeReference{details: payments.ReferenceDetails{
		ReferenceNumber: "RB-AAAA0001",
		TotalAmount:     decimal.NewFromInt(200),
		Currency:        "USD",
		Status:          "PENDING",
		Valid:           true,
	}}
	bus := &fakeEventBus{}
	uc := NewUsecase(repo, gateway,
		map[payments.Type]payments.ReferenceService{payments.TypeRoomBooking: ref},
		passthroughTrManager{}, bus)
	return uc, repo, gateway, ref, bus
}

func paymentRequest() ProcessPaymentRequest {
	return ProcessPaymentRequest{
		BookingNumber: "RB-AAAA0001",
		PaymentType:   payments.TypeRoomBooking,
		Amount:        decimal.NewFromInt(200),
		Method:        payments.MethodCreditCard,
		GuestName:     "John Doe",
		GuestEmail:    "john@example.com",
		CardLast4:     "4242",
		CardType:      "VISA",
	}
}

func TestProcessPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("successful charge confirms the booking", func(t *testing.T) {
		uc, repo, gateway, ref, bus := newTestUsecase()

		p, err := uc.ProcessPayment(ctx, paymentRequest())
		require.NoError(t, err)

		assert.Equal(t, payments.StatusSuccess, p.Status)
		assert.Equal(t, "TXN-TEST00000001", p.TransactionID)
		assert.Regexp(t, `^PAY-`, p.PaymentID)
		assert.Equal(t, "USD", p.Currency)
		assert.Len(t, repo.byID, 1)
		assert.Len(t, gateway.charges, 1)
		assert.Equal(t, []string{"RB-AAAA0001"}, ref.confirmed)

		require.Len(t, bus.published, 1)
		event, ok := bus.published[0].(entities.PaymentProcessed_v1)
		require.True(t, ok)
		assert.Equal(t, "SUCCESS", event.Status)
	})

	t.Run("replay returns the stored payment without charging again", func(t *testing.T) {
		uc, _, gateway, ref, _ := newTestUsecase()
		keyCtx := idempotency.WithKey(ctx, "pay-retry")

		first, err := uc.ProcessPayment(keyCtx, paymentRequest())
		require.NoError(t, err)
		second, err := uc.ProcessPayment(keyCtx, paymentRequest())
		require.NoError(t, err)

		assert.Equal(t, first.PaymentID, second.PaymentID)
		assert.Len(t, gateway.charges, 1)
		assert.Len(t, ref.confirmed, 1)
	})

	t.Run("invalid booking reference", func(t *testing.T) {
		uc, _, gateway, ref, _ := newTestUsecase()
		ref.err = fault.NotFound("room booking", "RB-AAAA0001")

		_, err := uc.ProcessPayment(ctx, paymentRequest())
		assert.True(t, fault.IsBusinessRuleViolation(err), err)
		assert.Empty(t, gateway.charges)
	})

	t.Run("booking not in a payable state", func(t *testing.T) {
		uc, _, gateway, ref, _ := newTestUsecase()
		ref.details.Valid = false
		ref.details.Status = "CONFIRMED"

		_, err := uc.ProcessPayment(ctx, paymentRequest())
		assert.True(t, fault.IsBusinessRuleViolation(err), err)
		assert.Empty(t, gateway.charges)
	})

	t.Run("second successful payment for the same booking is rejected", func(t *testing.T) {
		uc, _, gateway, _, _ := newTestUsecase()

		_, err := uc.ProcessPayment(idempotency.WithKey(ctx, "pay-1"), paymentRequest())
		require.NoError(t, err)

		_, err = uc.ProcessPayment(idempotency.WithKey(ctx, "pay-2"), paymentRequest())
		assert.True(t, fault.IsPayment(err), err)
		assert.Len(t, gateway.charges, 1)
	})

	t.Run("amount mismatch is a payment error and nothing is charged", func(t *testing.T) {
		uc, repo, gateway, _, _ := newTestUsecase()

		req := paymentRequest()
		req.Amount = decimal.NewFromInt(150)

		_, err := uc.ProcessPayment(ctx, req)
		assert.True(t, fault.IsPayment(err), err)
		assert.Empty(t, gateway.charges)
		assert.Empty(t, repo.byID)
	})

	t.Run("declined charge is persisted as FAILED", func(t *testing.T) {
		uc, repo, gateway, ref, bus := newTestUsecase()
		gateway.result = payments.ChargeResult{Success: false, FailureReason: "payment declined by gateway"}

		p, err := uc.ProcessPayment(ctx, paymentRequest())
		assert.True(t, fault.IsPayment(err), err)
		require.NotNil(t, p)
		assert.Equal(t, payments.StatusFailed, p.Status)
		assert.Equal(t, "payment declined by gateway", p.FailureReason)
		assert.Empty(t, p.TransactionID)

		// the failed attempt is stored, the booking stays unconfirmed
		assert.Len(t, repo.byID, 1)
		assert.Empty(t, ref.confirmed)

		require.Len(t, bus.published, 1)
		event := bus.published[0].(entities.PaymentProcessed_v1)
		assert.Equal(t, "FAILED", event.Status)
	})

	t.Run("confirmation failure does not fail the payment", func(t *testing.T) {
		uc, _, _, ref, _ := newTestUsecase()
		ref.confirmErr = assert.AnError

		p, err := uc.ProcessPayment(ctx, paymentRequest())
		require.NoError(t, err)
		assert.Equal(t, payments.StatusSuccess, p.Status)
	})

	t.Run("unknown payment type", func(t *testing.T) {
		uc, _, _, _, _ := newTestUsecase()
		req := paymentRequest()
		req.PaymentType = "GIFT_CARD"

		_, err := uc.ProcessPayment(ctx, req)
		assert.True(t, fault.IsBusinessRuleViolation(err), err)
	})
}

func TestRefundPayment(t *testing.T) {
	ctx := context.Background()
	adminCtx := auth.WithActor(ctx, "root", []string{auth.RoleAdmin})

	t.Run("successful payment can be refunded by an admin", func(t *testing.T) {
		uc, _, _, _, bus := newTestUsecase()
		p, err := uc.ProcessPayment(ctx, paymentRequest())
		require.NoError(t, err)

		refunded, err := uc.RefundPayment(adminCtx, p.PaymentID)
		require.NoError(t, err)
		assert.Equal(t, payments.StatusRefunded, refunded.Status)
		assert.Equal(t, "root", refunded.ProcessedBy)

		last := bus.published[len(bus.published)-1].(entities.PaymentProcessed_v1)
		assert.Equal(t, "REFUNDED", last.Status)
	})

	t.Run("staff cannot refund", func(t *testing.T) {
		uc, _, _, _, _ := newTestUsecase()
		p, err := uc.ProcessPayment(ctx, paymentRequest())
		require.NoError(t, err)

		staffCtx := auth.WithActor(ctx, "alice", []string{auth.RoleStaff})
		_, err = uc.RefundPayment(staffCtx, p.PaymentID)
		kind, ok := fault.KindOf(err)
		require.True(t, ok)
		assert.Equal(t, fault.KindForbidden, kind)
	})

	t.Run("refunding twice fails", func(t *testing.T) {
		uc, _, _, _, _ := newTestUsecase()
		p, err := uc.ProcessPayment(ctx, paymentRequest())
		require.NoError(t, err)

		_, err = uc.RefundPayment(adminCtx, p.PaymentID)
		require.NoError(t, err)
		_, err = uc.RefundPayment(adminCtx, p.PaymentID)
		assert.True(t, fault.IsBusinessRuleViolation(err), err)
	})

	t.Run("failed payment cannot be refunded", func(t *testing.T) {
		uc, _, gateway, _, _ := newTestUsecase()
		gateway.result = payments.ChargeResult{Success: false, FailureReason: "declined"}

		p, err := uc.ProcessPayment(ctx, paymentRequest())
		require.Error(t, err)
		require.NotNil(t, p)

		_, err = uc.RefundPayment(adminCtx, p.PaymentID)
		assert.True(t, fault.IsBusinessRuleViolation(err), err)
	})

	t.Run("unknown payment", func(t *testing.T) {
		uc, _, _, _, _ := newTestUsecase()
		_, err := uc.RefundPayment(adminCtx, "PAY-MISSING")
		assert.True(t, fault.IsNotFound(err), err)
	})
}
