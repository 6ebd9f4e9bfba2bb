package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	trm "github.com/avito-tech/go-transaction-manager/trm/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"hotelops/internal/auth"
	"hotelops/internal/domain/payments"
	"hotelops/internal/entities"
	"hotelops/internal/fault"
	"hotelops/internal/idempotency"
)

type PaymentsRepo interface {
	Create(ctx context.Context, payment *payments.Payment) error
	GetByIdempotencyKey(ctx context.Context, key string) (*payments.Payment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*payments.Payment, error)
	GetByPaymentID(ctx context.Context, paymentID string) (*payments.Payment, error)
	HasSuccessfulPayment(ctx context.Context, bookingNumber string) (bool, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status payments.Status, processedBy string, updatedAt time.Time) error
	List(ctx context.Context) ([]payments.Payment, error)
	ListByBookingNumber(ctx context.Context, bookingNumber string) ([]payments.Payment, error)
	ListByStatus(ctx context.Context, status payments.Status) ([]payments.Payment, error)
	ListByType(ctx context.Context, paymentType payments.Type) ([]payments.Payment, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event any) error
}

type Usecase struct {
	payments   PaymentsRepo
	gateway    payments.Gateway
	references map[payments.Type]payments.ReferenceService
	trManager  trm.Manager
	eventBus   EventPublisher
}

func NewUsecase(
	repo PaymentsRepo,
	gateway payments.Gateway,
	references map[payments.Type]payments.ReferenceService,
	trManager trm.Manager,
	eventBus EventPublisher,
) *Usecase {
	return &Usecase{
		payments:   repo,
		gateway:    gateway,
		references: references,
		trManager:  trManager,
		eventBus:   eventBus,
	}
}

type ProcessPaymentRequest struct {
	BookingNumber string          `json:"booking_number"`
	PaymentType   payments.Type   `json:"payment_type"`
	Amount        decimal.Decimal `json:"amount"`
	Method        payments.Method `json:"payment_method"`
	GuestName     string          `json:"guest_name"`
	GuestEmail    string          `json:"guest_email"`
	Description   string          `json:"description"`
	CardLast4     string          `json:"card_last4"`
	CardType      string          `json:"card_type"`
}

// ProcessPayment charges the gateway for a pending booking or order and,
// on success, confirms the reference with its owning workflow. The payment
// record is persisted for failed charges too, so the money trail is
// complete. Replays with a known idempotency key return the stored record.
func (u *Usecase) ProcessPayment(ctx context.Context, req ProcessPaymentRequest) (*payments.Payment, error) {
	key := idempotency.GetKey(ctx)

	existing, err := u.payments.GetByIdempotencyKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to check idempotency key: %w", err)
	}
	if existing != nil {
		log.FromContext(ctx).
			WithField("payment_id", existing.PaymentID).
			Info("Duplicate payment request, returning existing payment")
		return existing, nil
	}

	ref, ok := u.references[req.PaymentType]
	if !ok {
		return nil, fault.BusinessRule("unknown payment type %s", req.PaymentType)
	}

	details, err := ref.Validate(ctx, req.BookingNumber)
	if err != nil {
		if fault.IsNotFound(err) {
			return nil, fault.BusinessRule("booking %s not found or invalid", req.BookingNumber)
		}
		return nil, fmt.Errorf("failed to validate booking reference: %w", err)
	}
	if !details.Valid {
		return nil, fault.BusinessRule("booking %s cannot be paid, its status is %s", req.BookingNumber, details.Status)
	}

	paid, err := u.payments.HasSuccessfulPayment(ctx, req.BookingNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing payment: %w", err)
	}
	if paid {
		return nil, fault.Payment("booking %s already has a successful payment", req.BookingNumber)
	}

	if !req.Amount.Equal(details.TotalAmount) {
		return nil, fault.Payment("payment amount %s does not match the amount due %s", req.Amount, details.TotalAmount)
	}

	result, err := u.gateway.Charge(ctx, payments.ChargeRequest{
		BookingNumber: req.BookingNumber,
		Amount:        req.Amount,
		Currency:      details.Currency,
		Method:        req.Method,
		CardLast4:     req.CardLast4,
	})
	if err != nil {
		return nil, fmt.Errorf("payment gateway call failed: %w", err)
	}

	now := time.Now().UTC()
	payment := &payments.Payment{
		ID:             uuid.New(),
		PaymentID:      payments.NewPaymentID(),
		IdempotencyKey: key,
		BookingNumber:  req.BookingNumber,
		PaymentType:    req.PaymentType,
		Amount:         req.Amount,
		Currency:       details.Currency,
		Method:         req.Method,
		Status:         payments.StatusSuccess,
		TransactionID:  result.TransactionID,
		GuestName:      req.GuestName,
		GuestEmail:     req.GuestEmail,
		Description:    req.Description,
		CardLast4:      req.CardLast4,
		CardType:       req.CardType,
		ProcessedBy:    auth.Actor(ctx),
		PaidAt:         now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if !result.Success {
		payment.Status = payments.StatusFailed
		payment.TransactionID = ""
		payment.FailureReason = result.FailureReason
	}

	var stored *payments.Payment
	err = u.trManager.Do(ctx, func(ctx context.Context) error {
		dup, err := u.payments.GetByIdempotencyKey(ctx, key)
		if err != nil {
			return fmt.Errorf("failed to re-check idempotency key: %w", err)
		}
		if dup != nil {
			stored = dup
			return nil
		}

		if err := u.payments.Create(ctx, payment); err != nil {
			return fmt.Errorf("failed to create payment: %w", err)
		}
		stored = payment
		return nil
	})
	if err != nil {
		return nil, err
	}
	if stored != payment {
		return stored, nil
	}

	u.publishProcessed(ctx, payment)

	if payment.Status == payments.StatusFailed {
		return payment, fault.Payment("payment declined: %s", payment.FailureReason)
	}

	// The money is captured. A confirmation failure here must not reverse
	// the charge, it needs operator attention instead.
	if err := ref.Confirm(ctx, req.BookingNumber); err != nil {
		log.FromContext(ctx).
			WithField("payment_id", payment.PaymentID).
			WithField("booking_number", req.BookingNumber).
			WithField("error", err).
			Error("CRITICAL: payment succeeded but booking confirmation failed")
	}

	return payment, nil
}

// RefundPayment reverses a successful payment. Admin only.
func (u *Usecase) RefundPayment(ctx context.Context, paymentID string) (*payments.Payment, error) {
	if err := auth.RequireRole(ctx, auth.RoleAdmin); err != nil {
		return nil, err
	}

	p, err := u.payments.GetByPaymentID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	if p == nil {
		return nil, fault.NotFound("payment", paymentID)
	}
	if !p.Status.CanTransitionTo(payments.StatusRefunded) {
		return nil, fault.BusinessRule("payment %s is %s, only successful payments can be refunded", paymentID, p.Status)
	}

	now := time.Now().UTC()
	actor := auth.Actor(ctx)
	if err := u.payments.UpdateStatus(ctx, p.ID, payments.StatusRefunded, actor, now); err != nil {
		return nil, fmt.Errorf("failed to refund payment: %w", err)
	}

	p.Status = payments.StatusRefunded
	p.ProcessedBy = actor
	p.UpdatedAt = now

	u.publishProcessed(ctx, p)

	return p, nil
}

func (u *Usecase) GetPayment(ctx context.Context, paymentID string) (*payments.Payment, error) {
	p, err := u.payments.GetByPaymentID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	if p == nil {
		return nil, fault.NotFound("payment", paymentID)
	}
	return p, nil
}

// ListPayments filters by booking number, status or type, in that
// precedence.
func (u *Usecase) ListPayments(ctx context.Context, bookingNumber string, status payments.Status, paymentType payments.Type) ([]payments.Payment, error) {
	switch {
	case bookingNumber != "":
		return u.payments.ListByBookingNumber(ctx, bookingNumber)
	case status != "":
		return u.payments.ListByStatus(ctx, status)
	case paymentType != "":
		return u.payments.ListByType(ctx, paymentType)
	default:
		return u.payments.List(ctx)
	}
}

func (u *Usecase) publishProcessed(ctx context.Context, p *payments.Payment) {
	event := entities.PaymentProcessed_v1{
		Header:        entities.NewEventHeaderWithIdempotencyKey(p.IdempotencyKey),
		PaymentID:     p.PaymentID,
		BookingNumber: p.BookingNumber,
		PaymentType:   string(p.PaymentType),
		Status:        string(p.Status),
		Amount:        p.Amount.String(),
		Currency:      p.Currency,
	}
	if err := u.eventBus.Publish(ctx, event); err != nil {
		log.FromContext(ctx).
			WithField("payment_id", p.PaymentID).
			WithField("error", err).
			Error("Failed to publish payment processed event")
	}
}
