package orders

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v3"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusPreparing Status = "PREPARING"
	StatusReady     Status = "READY"
	StatusDelivered Status = "DELIVERED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusPreparing, StatusCancelled},
	StatusPreparing: {StatusReady, StatusCancelled},
	StatusReady:     {StatusDelivered, StatusCancelled},
	StatusDelivered: {StatusCompleted},
	StatusCompleted: {},
	StatusCancelled: {},
}

func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// CanCancel: any non-terminal state except DELIVERED can still be cancelled.
func (s Status) CanCancel() bool {
	return s.CanTransitionTo(StatusCancelled)
}

type Type string

const (
	TypeDineIn      Type = "DINE_IN"
	TypeRoomService Type = "ROOM_SERVICE"
	TypeTakeaway    Type = "TAKEAWAY"
)

// EstimatedMinutes is the kitchen's promise per order type.
func (t Type) EstimatedMinutes() int {
	switch t {
	case TypeRoomService:
		return 45
	case TypeTakeaway:
		return 20
	default:
		return 30
	}
}

var (
	// TaxRate and ServiceChargeRate are fixed house rates applied on the
	// subtotal.
	TaxRate           = decimal.NewFromFloat(0.10)
	ServiceChargeRate = decimal.NewFromFloat(0.05)
)

type FoodOrder struct {
	ID                  uuid.UUID       `json:"id" db:"id"`
	OrderNumber         string          `json:"order_number" db:"order_number"`
	IdempotencyKey      string          `json:"-" db:"idempotency_key"`
	OrderType           Type            `json:"order_type" db:"order_type"`
	TableID             string          `json:"table_id,omitempty" db:"table_id"`
	RoomNumber          string          `json:"room_number,omitempty" db:"room_number"`
	GuestName           string          `json:"guest_name" db:"guest_name"`
	GuestEmail          string          `json:"guest_email" db:"guest_email"`
	GuestPhone          string          `json:"guest_phone" db:"guest_phone"`
	Subtotal            decimal.Decimal `json:"subtotal" db:"subtotal"`
	TaxAmount           decimal.Decimal `json:"tax_amount" db:"tax_amount"`
	ServiceCharge       decimal.Decimal `json:"service_charge" db:"service_charge"`
	TotalAmount         decimal.Decimal `json:"total_amount" db:"total_amount"`
	Status              Status          `json:"status" db:"status"`
	SpecialInstructions string          `json:"special_instructions" db:"special_instructions"`
	OrderedBy           string          `json:"ordered_by" db:"ordered_by"`
	OrderedAt           time.Time       `json:"ordered_at" db:"ordered_at"`
	EstimatedDeliveryAt time.Time       `json:"estimated_delivery_at" db:"estimated_delivery_at"`
	DeliveredAt         *time.Time      `json:"delivered_at,omitempty" db:"delivered_at"`
	LastModifiedAt      time.Time       `json:"last_modified_at" db:"last_modified_at"`

	Items []OrderItem `json:"items" db:"-"`
}

type OrderItem struct {
	ID                  uuid.UUID       `json:"id" db:"id"`
	OrderNumber         string          `json:"-" db:"order_number"`
	MenuItemID          string          `json:"menu_item_id" db:"menu_item_id"`
	MenuItemName        string          `json:"menu_item_name" db:"menu_item_name"`
	Quantity            int             `json:"quantity" db:"quantity"`
	UnitPrice           decimal.Decimal `json:"unit_price" db:"unit_price"`
	TotalPrice          decimal.Decimal `json:"total_price" db:"total_price"`
	SpecialInstructions string          `json:"special_instructions" db:"special_instructions"`
}

type Totals struct {
	Subtotal      decimal.Decimal
	TaxAmount     decimal.Decimal
	ServiceCharge decimal.Decimal
	TotalAmount   decimal.Decimal
}

// ComputeTotals sums item lines and applies the fixed tax and service
// charge rates.
func ComputeTotals(items []OrderItem) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.TotalPrice)
	}

	tax := subtotal.Mul(TaxRate)
	serviceCharge := subtotal.Mul(ServiceChargeRate)

	return Totals{
		Subtotal:      subtotal,
		TaxAmount:     tax,
		ServiceCharge: serviceCharge,
		TotalAmount:   subtotal.Add(tax).Add(serviceCharge),
	}
}

func NewOrderNumber() string {
	return "ORD-" + strings.ToUpper(shortuuid.New())[:8]
}
