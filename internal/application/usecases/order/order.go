package order

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	trm "github.com/avito-tech/go-transaction-manager/trm/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"hotelops/internal/auth"
	"hotelops/internal/domain/orders"
	"hotelops/internal/domain/payments"
	"hotelops/internal/domain/registry"
	"hotelops/internal/entities"
	"hotelops/internal/fault"
	"hotelops/internal/idempotency"
)

type OrdersRepo interface {
	Create(ctx context.Context, order *orders.FoodOrder) error
	GetByIdempotencyKey(ctx context.Context, key string) (*orders.FoodOrder, error)
	GetByNumber(ctx context.Context, number string) (*orders.FoodOrder, error)
	Update(ctx context.Context, order *orders.FoodOrder) error
	List(ctx context.Context) ([]orders.FoodOrder, error)
	ListByGuestEmail(ctx context.Context, email string) ([]orders.FoodOrder, error)
	ListByStatus(ctx context.Context, status orders.Status) ([]orders.FoodOrder, error)
	ListByType(ctx context.Context, orderType orders.Type) ([]orders.FoodOrder, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event any) error
}

type Usecase struct {
	orders    OrdersRepo
	menu      registry.MenuRegistry
	trManager trm.Manager
	eventBus  EventPublisher
}

func NewUsecase(repo OrdersRepo, menu registry.MenuRegistry, trManager trm.Manager, eventBus EventPublisher) *Usecase {
	return &Usecase{
		orders:    repo,
		menu:      menu,
		trManager: trManager,
		eventBus:  eventBus,
	}
}

type CreateOrderItem struct {
	MenuItemID          string `json:"menu_item_id"`
	Quantity            int    `json:"quantity"`
	SpecialInstructions string `json:"special_instructions"`
}

type CreateOrderRequest struct {
	OrderType           orders.Type       `json:"order_type"`
	TableID             string            `json:"table_id"`
	RoomNumber          string            `json:"room_number"`
	GuestName           string            `json:"guest_name"`
	GuestEmail          string            `json:"guest_email"`
	GuestPhone          string            `json:"guest_phone"`
	Items               []CreateOrderItem `json:"items"`
	SpecialInstructions string            `json:"special_instructions"`
}

// CreateOrder places a food order in PENDING state. Item prices are
// snapshotted from the menu at order time, then tax and service charge are
// applied on the subtotal.
func (u *Usecase) CreateOrder(ctx context.Context, req CreateOrderRequest) (*orders.FoodOrder, error) {
	key := idempotency.GetKey(ctx)

	existing, err := u.orders.GetByIdempotencyKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to check idempotency key: %w", err)
	}
	if existing != nil {
		log.FromContext(ctx).
			WithField("order_number", existing.OrderNumber).
			Info("Duplicate food order request, returning existing order")
		return existing, nil
	}

	if err := validateDestination(req); err != nil {
		return nil, err
	}
	if len(req.Items) == 0 {
		return nil, fault.BusinessRule("order must contain at least one item")
	}

	orderNumber := orders.NewOrderNumber()
	items := make([]orders.OrderItem, 0, len(req.Items))
	for _, line := range req.Items {
		if line.Quantity <= 0 {
			return nil, fault.BusinessRule("item %s quantity must be positive", line.MenuItemID)
		}

		item, err := u.menu.GetMenuItem(ctx, line.MenuItemID)
		if err != nil {
			return nil, err
		}
		if !item.Available {
			return nil, fault.BusinessRule("menu item %s is not available", item.Name)
		}

		qty := decimal.NewFromInt(int64(line.Quantity))
		items = append(items, orders.OrderItem{
			ID:                  uuid.New(),
			OrderNumber:         orderNumber,
			MenuItemID:          item.ID,
			MenuItemName:        item.Name,
			Quantity:            line.Quantity,
			UnitPrice:           item.Price,
			TotalPrice:          item.Price.Mul(qty),
			SpecialInstructions: line.SpecialInstructions,
		})
	}

	totals := orders.ComputeTotals(items)
	now := time.Now().UTC()
	placed := &orders.FoodOrder{
		ID:                  uuid.New(),
		OrderNumber:         orderNumber,
		IdempotencyKey:      key,
		OrderType:           req.OrderType,
		TableID:             req.TableID,
		RoomNumber:          req.RoomNumber,
		GuestName:           req.GuestName,
		GuestEmail:          req.GuestEmail,
		GuestPhone:          req.GuestPhone,
		Subtotal:            totals.Subtotal,
		TaxAmount:           totals.TaxAmount,
		ServiceCharge:       totals.ServiceCharge,
		TotalAmount:         totals.TotalAmount,
		Status:              orders.StatusPending,
		SpecialInstructions: req.SpecialInstructions,
		OrderedBy:           auth.Actor(ctx),
		OrderedAt:           now,
		EstimatedDeliveryAt: now.Add(time.Duration(req.OrderType.EstimatedMinutes()) * time.Minute),
		LastModifiedAt:      now,
		Items:               items,
	}

	var result *orders.FoodOrder
	err = u.trManager.Do(ctx, func(ctx context.Context) error {
		dup, err := u.orders.GetByIdempotencyKey(ctx, key)
		if err != nil {
			return fmt.Errorf("failed to re-check idempotency key: %w", err)
		}
		if dup != nil {
			result = dup
			return nil
		}

		if err := u.orders.Create(ctx, placed); err != nil {
			return fmt.Errorf("failed to create food order: %w", err)
		}
		result = placed
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result == placed {
		u.publish(ctx, entities.OrderPlaced_v1{
			Header:      entities.NewEventHeaderWithIdempotencyKey(key),
			OrderNumber: placed.OrderNumber,
			OrderType:   string(placed.OrderType),
			GuestName:   placed.GuestName,
			GuestEmail:  placed.GuestEmail,
			TotalAmount: placed.TotalAmount.String(),
		}, "order placed")
	}

	return result, nil
}

func validateDestination(req CreateOrderRequest) error {
	switch req.OrderType {
	case orders.TypeDineIn:
		if req.TableID == "" {
			return fault.BusinessRule("dine-in orders require a table id")
		}
	case orders.TypeRoomService:
		if req.RoomNumber == "" {
			return fault.BusinessRule("room service orders require a room number")
		}
	case orders.TypeTakeaway:
		// nothing to deliver to
	default:
		return fault.BusinessRule("unknown order type %s", req.OrderType)
	}
	return nil
}

// ConfirmOrder moves a PENDING order to CONFIRMED after its payment
// succeeds, and tells the kitchen.
func (u *Usecase) ConfirmOrder(ctx context.Context, orderNumber string) error {
	o, err := u.orders.GetByNumber(ctx, orderNumber)
	if err != nil {
		return fmt.Errorf("failed to get food order: %w", err)
	}
	if o == nil {
		return fault.NotFound("food order", orderNumber)
	}
	if o.Status != orders.StatusPending {
		return fault.BusinessRule("order %s is %s, only pending orders can be confirmed", orderNumber, o.Status)
	}

	now := time.Now().UTC()
	o.Status = orders.StatusConfirmed
	o.LastModifiedAt = now
	if err := u.orders.Update(ctx, o); err != nil {
		return fmt.Errorf("failed to confirm food order: %w", err)
	}

	u.publish(ctx, entities.OrderConfirmed_v1{
		Header:      entities.NewEventHeaderWithIdempotencyKey(idempotency.GetKey(ctx)),
		OrderNumber: o.OrderNumber,
		GuestName:   o.GuestName,
		GuestEmail:  o.GuestEmail,
		TotalAmount: o.TotalAmount.String(),
	}, "order confirmed")

	return nil
}

// UpdateOrderStatus advances the kitchen workflow. Marking an order
// DELIVERED records the delivery time.
func (u *Usecase) UpdateOrderStatus(ctx context.Context, orderNumber string, target orders.Status) (*orders.FoodOrder, error) {
	if err := auth.RequireRole(ctx, auth.RoleStaff); err != nil {
		return nil, err
	}

	o, err := u.orders.GetByNumber(ctx, orderNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to get food order: %w", err)
	}
	if o == nil {
		return nil, fault.NotFound("food order", orderNumber)
	}
	if !o.Status.CanTransitionTo(target) {
		return nil, fault.BusinessRule("cannot transition order %s from %s to %s", orderNumber, o.Status, target)
	}

	now := time.Now().UTC()
	o.Status = target
	o.LastModifiedAt = now
	if target == orders.StatusDelivered {
		o.DeliveredAt = &now
	}

	if err := u.orders.Update(ctx, o); err != nil {
		return nil, fmt.Errorf("failed to update food order: %w", err)
	}
	return o, nil
}

// CancelOrder cancels an order that has not been delivered yet.
func (u *Usecase) CancelOrder(ctx context.Context, orderNumber string) (*orders.FoodOrder, error) {
	o, err := u.orders.GetByNumber(ctx, orderNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to get food order: %w", err)
	}
	if o == nil {
		return nil, fault.NotFound("food order", orderNumber)
	}
	if !o.Status.CanCancel() {
		return nil, fault.BusinessRule("cannot cancel a %s order", o.Status)
	}

	o.Status = orders.StatusCancelled
	o.LastModifiedAt = time.Now().UTC()
	if err := u.orders.Update(ctx, o); err != nil {
		return nil, fmt.Errorf("failed to cancel food order: %w", err)
	}
	return o, nil
}

func (u *Usecase) GetOrderByNumber(ctx context.Context, orderNumber string) (*orders.FoodOrder, error) {
	o, err := u.orders.GetByNumber(ctx, orderNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to get food order: %w", err)
	}
	if o == nil {
		return nil, fault.NotFound("food order", orderNumber)
	}
	return o, nil
}

// ListOrders filters by guest email, status or type, in that precedence.
func (u *Usecase) ListOrders(ctx context.Context, guestEmail string, status orders.Status, orderType orders.Type) ([]orders.FoodOrder, error) {
	switch {
	case guestEmail != "":
		return u.orders.ListByGuestEmail(ctx, guestEmail)
	case status != "":
		return u.orders.ListByStatus(ctx, status)
	case orderType != "":
		return u.orders.ListByType(ctx, orderType)
	default:
		return u.orders.List(ctx)
	}
}

func (u *Usecase) publish(ctx context.Context, event entities.Event, what string) {
	if err := u.eventBus.Publish(ctx, event); err != nil {
		log.FromContext(ctx).
			WithField("error", err).
			Error("Failed to publish " + what + " event")
	}
}

// Reference exposes food orders to the payment workflow as a
// payments.ReferenceService.
type Reference struct {
	uc *Usecase
}

func NewReference(uc *Usecase) *Reference {
	return &Reference{uc: uc}
}

func (r *Reference) Validate(ctx context.Context, referenceNumber string) (payments.ReferenceDetails, error) {
	o, err := r.uc.GetOrderByNumber(ctx, referenceNumber)
	if err != nil {
		return payments.ReferenceDetails{}, err
	}
	return payments.ReferenceDetails{
		ReferenceNumber: o.OrderNumber,
		TotalAmount:     o.TotalAmount,
		Currency:        "USD",
		Status:          string(o.Status),
		Valid:           o.Status == orders.StatusPending,
	}, nil
}

func (r *Reference) Confirm(ctx context.Context, referenceNumber string) error {
	return r.uc.ConfirmOrder(ctx, referenceNumber)
}
