package booking

import (
	"context"

	"hotelops/internal/domain/bookings"
	"hotelops/internal/domain/payments"
)

// RoomReference exposes room bookings to the payment workflow as a
// payments.ReferenceService.
type RoomReference struct {
	uc *Usecase
}

func NewRoomReference(uc *Usecase) *RoomReference {
	return &RoomReference{uc: uc}
}

func (r *RoomReference) Validate(ctx context.Context, referenceNumber string) (payments.ReferenceDetails, error) {
	b, err := r.uc.GetRoomBookingByNumber(ctx, referenceNumber)
	if err != nil {
		return payments.ReferenceDetails{}, err
	}
	return payments.ReferenceDetails{
		ReferenceNumber: b.BookingNumber,
		TotalAmount:     b.TotalAmount,
		Currency:        "USD",
		Status:          string(b.Status),
		Valid:           b.Status == bookings.StatusPending,
	}, nil
}

func (r *RoomReference) Confirm(ctx context.Context, referenceNumber string) error {
	return r.uc.ConfirmRoomBooking(ctx, referenceNumber)
}

// TableReference is the table booking counterpart of RoomReference.
type TableReference struct {
	uc *Usecase
}

func NewTableReference(uc *Usecase) *TableReference {
	return &TableReference{uc: uc}
}

func (r *TableReference) Validate(ctx context.Context, referenceNumber string) (payments.ReferenceDetails, error) {
	b, err := r.uc.GetTableBookingByNumber(ctx, referenceNumber)
	if err != nil {
		return payments.ReferenceDetails{}, err
	}
	return payments.ReferenceDetails{
		ReferenceNumber: b.BookingNumber,
		TotalAmount:     b.TotalAmount,
		Currency:        "USD",
		Status:          string(b.Status),
		Valid:           b.Status == bookings.StatusPending,
	}, nil
}

func (r *TableReference) Confirm(ctx context.Context, referenceNumber string) error {
	return r.uc.ConfirmTableBooking(ctx, referenceNumber)
}
