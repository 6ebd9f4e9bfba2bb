package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	trmsqlx "github.com/avito-tech/go-transaction-manager/drivers/sqlx/v2"
	"github.com/jmoiron/sqlx"

	domain "hotelops/internal/domain/orders"
)

const foodOrderColumns = `
	id, order_number, idempotency_key, order_type, table_id, room_number,
	guest_name, guest_email, guest_phone,
	subtotal, tax_amount, service_charge, total_amount,
	status, special_instructions, ordered_by, ordered_at,
	estimated_delivery_at, delivered_at, last_modified_at`

type OrdersRepo struct {
	db     *sqlx.DB
	getter *trmsqlx.CtxGetter
}

func NewOrdersRepo(db *sqlx.DB, getter *trmsqlx.CtxGetter) *OrdersRepo {
	return &OrdersRepo{db: db, getter: getter}
}

func (r *OrdersRepo) conn(ctx context.Context) trmsqlx.Tr {
	return r.getter.DefaultTrOrDB(ctx, r.db)
}

// Create persists the order row and its item lines. Call it inside a
// transaction so an item insert failure rolls the order back too.
func (r *OrdersRepo) Create(ctx context.Context, order *domain.FoodOrder) error {
	query := `
		INSERT INTO food_orders (
			order_number, idempotency_key, order_type, table_id, room_number,
			guest_name, guest_email, guest_phone,
			subtotal, tax_amount, service_charge, total_amount,
			status, special_instructions, ordered_by, ordered_at,
			estimated_delivery_at, last_modified_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18
		) RETURNING id`

	err := r.conn(ctx).QueryRowxContext(ctx, query,
		order.OrderNumber,
		order.IdempotencyKey,
		order.OrderType,
		order.TableID,
		order.RoomNumber,
		order.GuestName,
		order.GuestEmail,
		order.GuestPhone,
		order.Subtotal,
		order.TaxAmount,
		order.ServiceCharge,
		order.TotalAmount,
		order.Status,
		order.SpecialInstructions,
		order.OrderedBy,
		order.OrderedAt,
		order.EstimatedDeliveryAt,
		order.LastModifiedAt,
	).Scan(&order.ID)
	if err != nil {
		return fmt.Errorf("failed to create food order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (
			order_number, menu_item_id, menu_item_name, quantity,
			unit_price, total_price, special_instructions
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	for i := range order.Items {
		item := &order.Items[i]
		item.OrderNumber = order.OrderNumber

		err := r.conn(ctx).QueryRowxContext(ctx, itemQuery,
			item.OrderNumber,
			item.MenuItemID,
			item.MenuItemName,
			item.Quantity,
			item.UnitPrice,
			item.TotalPrice,
			item.SpecialInstructions,
		).Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	return nil
}

func (r *OrdersRepo) GetByIdempotencyKey(ctx context.Context, key string) (*domain.FoodOrder, error) {
	return r.getOne(ctx, "idempotency_key", key)
}

func (r *OrdersRepo) GetByNumber(ctx context.Context, number string) (*domain.FoodOrder, error) {
	return r.getOne(ctx, "order_number", number)
}

func (r *OrdersRepo) getOne(ctx context.Context, column string, value any) (*domain.FoodOrder, error) {
	var order domain.FoodOrder

	query := fmt.Sprintf(`SELECT %s FROM food_orders WHERE %s = $1`, foodOrderColumns, column)

	err := r.conn(ctx).GetContext(ctx, &order, query, value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get food order by %s: %w", column, err)
	}

	if err := r.loadItems(ctx, &order); err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *OrdersRepo) loadItems(ctx context.Context, order *domain.FoodOrder) error {
	query := `
		SELECT id, order_number, menu_item_id, menu_item_name, quantity,
		       unit_price, total_price, special_instructions
		FROM order_items
		WHERE order_number = $1`

	if err := r.conn(ctx).SelectContext(ctx, &order.Items, query, order.OrderNumber); err != nil {
		return fmt.Errorf("failed to load order items: %w", err)
	}
	return nil
}

func (r *OrdersRepo) Update(ctx context.Context, order *domain.FoodOrder) error {
	query := `
		UPDATE food_orders
		SET status = $2, delivered_at = $3, last_modified_at = $4
		WHERE order_number = $1`

	res, err := r.conn(ctx).ExecContext(ctx, query,
		order.OrderNumber, order.Status, order.DeliveredAt, order.LastModifiedAt)
	if err != nil {
		return fmt.Errorf("failed to update food order: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (r *OrdersRepo) List(ctx context.Context) ([]domain.FoodOrder, error) {
	return r.list(ctx, "", nil)
}

func (r *OrdersRepo) ListByGuestEmail(ctx context.Context, email string) ([]domain.FoodOrder, error) {
	return r.list(ctx, "guest_email", email)
}

func (r *OrdersRepo) ListByStatus(ctx context.Context, status domain.Status) ([]domain.FoodOrder, error) {
	return r.list(ctx, "status", status)
}

func (r *OrdersRepo) ListByType(ctx context.Context, orderType domain.Type) ([]domain.FoodOrder, error) {
	return r.list(ctx, "order_type", orderType)
}

func (r *OrdersRepo) list(ctx context.Context, column string, value any) ([]domain.FoodOrder, error) {
	var orders []domain.FoodOrder

	query := fmt.Sprintf(`SELECT %s FROM food_orders`, foodOrderColumns)
	args := []any{}
	if column != "" {
		query += fmt.Sprintf(" WHERE %s = $1", column)
		args = append(args, value)
	}
	query += " ORDER BY ordered_at DESC"

	if err := r.conn(ctx).SelectContext(ctx, &orders, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list food orders: %w", err)
	}

	for i := range orders {
		if err := r.loadItems(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}

	return orders, nil
}
