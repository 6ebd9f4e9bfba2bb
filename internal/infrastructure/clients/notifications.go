package clients

import (
	"context"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"

	"hotelops/internal/entities"
)

// LogNotifier stands in for an email or SMS provider. Every notification is
// written to the structured log so the delivery path is observable without
// an external dependency.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) SendBookingConfirmation(ctx context.Context, event entities.BookingConfirmed_v1) error {
	log.FromContext(ctx).
		WithField("booking_number", event.BookingNumber).
		WithField("guest_email", event.GuestEmail).
		WithField("total_amount", event.TotalAmount).
		Info("Sending booking confirmation")
	return nil
}

func (n *LogNotifier) SendOrderAcknowledgement(ctx context.Context, event entities.OrderPlaced_v1) error {
	log.FromContext(ctx).
		WithField("order_number", event.OrderNumber).
		WithField("guest_email", event.GuestEmail).
		Info("Sending order acknowledgement")
	return nil
}

func (n *LogNotifier) SendOrderConfirmation(ctx context.Context, event entities.OrderConfirmed_v1) error {
	log.FromContext(ctx).
		WithField("order_number", event.OrderNumber).
		WithField("guest_email", event.GuestEmail).
		Info("Sending order confirmation")
	return nil
}

func (n *LogNotifier) SendPaymentReceipt(ctx context.Context, event entities.PaymentProcessed_v1) error {
	log.FromContext(ctx).
		WithField("payment_id", event.PaymentID).
		WithField("booking_number", event.BookingNumber).
		WithField("status", event.Status).
		Info("Sending payment receipt")
	return nil
}
