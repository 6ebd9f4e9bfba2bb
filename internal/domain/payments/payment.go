package payments

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v3"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusSuccess    Status = "SUCCESS"
	StatusFailed     Status = "FAILED"
	StatusRefunded   Status = "REFUNDED"
	StatusCancelled  Status = "CANCELLED"
)

// Payments move PENDING -> SUCCESS|FAILED, and SUCCESS -> REFUNDED.
// Nothing else.
var transitions = map[Status][]Status{
	StatusPending: {StatusSuccess, StatusFailed},
	StatusSuccess: {StatusRefunded},
}

func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

type Type string

const (
	TypeRoomBooking  Type = "ROOM_BOOKING"
	TypeTableBooking Type = "TABLE_BOOKING"
	TypeFoodOrder    Type = "FOOD_ORDER"
)

type Method string

const (
	MethodCreditCard    Method = "CREDIT_CARD"
	MethodDebitCard     Method = "DEBIT_CARD"
	MethodCash          Method = "CASH"
	MethodBankTransfer  Method = "BANK_TRANSFER"
	MethodDigitalWallet Method = "DIGITAL_WALLET"
)

type Payment struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	PaymentID      string          `json:"payment_id" db:"payment_id"`
	IdempotencyKey string          `json:"-" db:"idempotency_key"`
	BookingNumber  string          `json:"booking_number" db:"booking_number"`
	PaymentType    Type            `json:"payment_type" db:"payment_type"`
	Amount         decimal.Decimal `json:"amount" db:"amount"`
	Currency       string          `json:"currency" db:"currency"`
	Method         Method          `json:"payment_method" db:"payment_method"`
	Status         Status          `json:"payment_status" db:"payment_status"`
	TransactionID  string          `json:"transaction_id,omitempty" db:"transaction_id"`
	FailureReason  string          `json:"failure_reason,omitempty" db:"failure_reason"`
	GuestName      string          `json:"guest_name" db:"guest_name"`
	GuestEmail     string          `json:"guest_email" db:"guest_email"`
	Description    string          `json:"description" db:"description"`
	CardLast4      string          `json:"card_last4,omitempty" db:"card_last4"`
	CardType       string          `json:"card_type,omitempty" db:"card_type"`
	ProcessedBy    string          `json:"processed_by" db:"processed_by"`
	PaidAt         time.Time       `json:"paid_at" db:"paid_at"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// ChargeRequest is what the external gateway needs to capture money.
type ChargeRequest struct {
	BookingNumber string
	Amount        decimal.Decimal
	Currency      string
	Method        Method
	CardLast4     string
}

// ChargeResult carries either a transaction id or a failure reason,
// never both.
type ChargeResult struct {
	Success       bool
	TransactionID string
	GatewayRef    string
	FailureReason string
}

// Gateway is the external payment processor boundary. The in-repo
// implementation is a simulation; swapping in a real processor must not
// touch the orchestration.
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error)
}

// ReferenceDetails is what the owning orchestrator reports about a
// booking or order a payment refers to.
type ReferenceDetails struct {
	ReferenceNumber string
	TotalAmount     decimal.Decimal
	Currency        string
	Status          string
	Valid           bool
}

// ReferenceService is the cross-orchestrator seam: the payment workflow
// validates the reference before charging and confirms it after a
// successful charge.
type ReferenceService interface {
	Validate(ctx context.Context, referenceNumber string) (ReferenceDetails, error)
	Confirm(ctx context.Context, referenceNumber string) error
}

func NewPaymentID() string {
	return "PAY-" + strings.ToUpper(shortuuid.New())[:8]
}

func NewTransactionID() string {
	return "TXN-" + strings.ToUpper(shortuuid.New()+shortuuid.New())[:12]
}
