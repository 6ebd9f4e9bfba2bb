package events

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/components/cqrs"

	"hotelops/internal/entities"
)

// Notifier delivers guest-facing messages for confirmed bookings, placed
// orders and payment receipts.
type Notifier interface {
	SendBookingConfirmation(ctx context.Context, event entities.BookingConfirmed_v1) error
	SendOrderAcknowledgement(ctx context.Context, event entities.OrderPlaced_v1) error
	SendOrderConfirmation(ctx context.Context, event entities.OrderConfirmed_v1) error
	SendPaymentReceipt(ctx context.Context, event entities.PaymentProcessed_v1) error
}

func BookingConfirmedHandler(notifier Notifier) cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"booking_confirmed_handler",
		func(ctx context.Context, payload *entities.BookingConfirmed_v1) error {
			return notifier.SendBookingConfirmation(ctx, *payload)
		},
	)
}

func OrderPlacedHandler(notifier Notifier) cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"order_placed_handler",
		func(ctx context.Context, payload *entities.OrderPlaced_v1) error {
			return notifier.SendOrderAcknowledgement(ctx, *payload)
		},
	)
}

func OrderConfirmedHandler(notifier Notifier) cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"order_confirmed_handler",
		func(ctx context.Context, payload *entities.OrderConfirmed_v1) error {
			return notifier.SendOrderConfirmation(ctx, *payload)
		},
	)
}

// PaymentProcessedHandler sends receipts for captured payments only.
// Failed charges are already reported synchronously to the caller.
func PaymentProcessedHandler(notifier Notifier) cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"payment_processed_handler",
		func(ctx context.Context, payload *entities.PaymentProcessed_v1) error {
			if payload.Status != "SUCCESS" && payload.Status != "REFUNDED" {
				return nil
			}
			return notifier.SendPaymentReceipt(ctx, *payload)
		},
	)
}
