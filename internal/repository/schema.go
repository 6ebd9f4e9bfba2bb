package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// InitializeDBSchema creates the tables and the indexes that back the
// workflow invariants: unique idempotency keys, unique reference numbers,
// and at most one SUCCESS payment per booking number.
func InitializeDBSchema(db *sqlx.DB) error {
	statements := []string{
		`
CREATE TABLE IF NOT EXISTS room_bookings (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	booking_number VARCHAR(32) NOT NULL UNIQUE,
	idempotency_key VARCHAR(64) NOT NULL UNIQUE,
	room_id VARCHAR(64) NOT NULL,
	guest_name VARCHAR(255) NOT NULL,
	guest_email VARCHAR(255) NOT NULL,
	guest_phone VARCHAR(64) NOT NULL DEFAULT '',
	check_in_date DATE NOT NULL,
	check_out_date DATE NOT NULL,
	number_of_guests INTEGER NOT NULL DEFAULT 1,
	number_of_nights INTEGER NOT NULL,
	room_price NUMERIC(10, 2) NOT NULL,
	total_amount NUMERIC(10, 2) NOT NULL,
	status VARCHAR(16) NOT NULL,
	special_requests TEXT NOT NULL DEFAULT '',
	booked_by VARCHAR(255) NOT NULL DEFAULT 'system',
	booked_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
	last_modified_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
);`,
		`CREATE INDEX IF NOT EXISTS room_bookings_room_status_idx ON room_bookings (room_id, status);`,
		`CREATE INDEX IF NOT EXISTS room_bookings_guest_email_idx ON room_bookings (guest_email);`,
		`
CREATE TABLE IF NOT EXISTS table_bookings (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	booking_number VARCHAR(32) NOT NULL UNIQUE,
	idempotency_key VARCHAR(64) NOT NULL UNIQUE,
	table_id VARCHAR(64) NOT NULL,
	guest_name VARCHAR(255) NOT NULL,
	guest_email VARCHAR(255) NOT NULL,
	guest_phone VARCHAR(64) NOT NULL DEFAULT '',
	reservation_at TIMESTAMP WITH TIME ZONE NOT NULL,
	duration_minutes INTEGER NOT NULL,
	number_of_guests INTEGER NOT NULL DEFAULT 1,
	reservation_fee NUMERIC(10, 2) NOT NULL,
	total_amount NUMERIC(10, 2) NOT NULL,
	status VARCHAR(16) NOT NULL,
	special_requests TEXT NOT NULL DEFAULT '',
	booked_by VARCHAR(255) NOT NULL DEFAULT 'system',
	booked_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
	last_modified_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
);`,
		`CREATE INDEX IF NOT EXISTS table_bookings_table_status_idx ON table_bookings (table_id, status);`,
		`
CREATE TABLE IF NOT EXISTS food_orders (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	order_number VARCHAR(32) NOT NULL UNIQUE,
	idempotency_key VARCHAR(64) NOT NULL UNIQUE,
	order_type VARCHAR(16) NOT NULL,
	table_id VARCHAR(64) NOT NULL DEFAULT '',
	room_number VARCHAR(64) NOT NULL DEFAULT '',
	guest_name VARCHAR(255) NOT NULL,
	guest_email VARCHAR(255) NOT NULL,
	guest_phone VARCHAR(64) NOT NULL DEFAULT '',
	subtotal NUMERIC(10, 2) NOT NULL,
	tax_amount NUMERIC(10, 2) NOT NULL,
	service_charge NUMERIC(10, 2) NOT NULL,
	total_amount NUMERIC(10, 2) NOT NULL,
	status VARCHAR(16) NOT NULL,
	special_instructions TEXT NOT NULL DEFAULT '',
	ordered_by VARCHAR(255) NOT NULL DEFAULT 'system',
	ordered_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
	estimated_delivery_at TIMESTAMP WITH TIME ZONE NOT NULL,
	delivered_at TIMESTAMP WITH TIME ZONE,
	last_modified_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
);`,
		`
CREATE TABLE IF NOT EXISTS order_items (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	order_number VARCHAR(32) NOT NULL,
	menu_item_id VARCHAR(64) NOT NULL,
	menu_item_name VARCHAR(255) NOT NULL,
	quantity INTEGER NOT NULL,
	unit_price NUMERIC(10, 2) NOT NULL,
	total_price NUMERIC(10, 2) NOT NULL,
	special_instructions TEXT NOT NULL DEFAULT ''
);`,
		`CREATE INDEX IF NOT EXISTS order_items_order_number_idx ON order_items (order_number);`,
		`
CREATE TABLE IF NOT EXISTS payments (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	payment_id VARCHAR(32) NOT NULL UNIQUE,
	idempotency_key VARCHAR(64) NOT NULL UNIQUE,
	booking_number VARCHAR(32) NOT NULL,
	payment_type VARCHAR(16) NOT NULL,
	amount NUMERIC(10, 2) NOT NULL,
	currency CHAR(3) NOT NULL,
	payment_method VARCHAR(16) NOT NULL,
	payment_status VARCHAR(16) NOT NULL,
	transaction_id VARCHAR(64) NOT NULL DEFAULT '',
	failure_reason TEXT NOT NULL DEFAULT '',
	guest_name VARCHAR(255) NOT NULL DEFAULT '',
	guest_email VARCHAR(255) NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	card_last4 VARCHAR(4) NOT NULL DEFAULT '',
	card_type VARCHAR(32) NOT NULL DEFAULT '',
	processed_by VARCHAR(255) NOT NULL DEFAULT 'system',
	paid_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
	created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
	updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
);`,
		// one captured payment per reference, enforced in storage
		`CREATE UNIQUE INDEX IF NOT EXISTS payments_one_success_per_booking_idx
			ON payments (booking_number) WHERE payment_status = 'SUCCESS';`,
		`CREATE INDEX IF NOT EXISTS payments_booking_number_idx ON payments (booking_number);`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(context.Background(), stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}
