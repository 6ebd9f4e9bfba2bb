package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"hotelops/internal/auth"
	"hotelops/internal/domain/bookings"
	"hotelops/internal/domain/registry"
	"hotelops/internal/entities"
	"hotelops/internal/fault"
	"hotelops/internal/idempotency"
)

type CreateRoomBookingRequest struct {
	RoomID          string    `json:"room_id"`
	GuestName       string    `json:"guest_name"`
	GuestEmail      string    `json:"guest_email"`
	GuestPhone      string    `json:"guest_phone"`
	CheckInDate     time.Time `json:"check_in_date"`
	CheckOutDate    time.Time `json:"check_out_date"`
	NumberOfGuests  int       `json:"number_of_guests"`
	SpecialRequests string    `json:"special_requests"`
}

// CreateRoomBooking books a room in PENDING state. The booking is confirmed
// later, once a payment for it succeeds. Replays with the same idempotency
// key return the already created booking.
func (u *Usecase) CreateRoomBooking(ctx context.Context, req CreateRoomBookingRequest) (*bookings.RoomBooking, error) {
	key := idempotency.GetKey(ctx)

	existing, err := u.rooms.GetByIdempotencyKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to check idempotency key: %w", err)
	}
	if existing != nil {
		log.FromContext(ctx).
			WithField("booking_number", existing.BookingNumber).
			Info("Duplicate room booking request, returning existing booking")
		return existing, nil
	}

	nights := bookings.Nights(req.CheckInDate, req.CheckOutDate)
	if nights <= 0 {
		return nil, fault.BusinessRule("check-out date must be after check-in date")
	}

	room, err := u.registry.GetRoom(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}

	available, err := u.registry.IsRoomAvailable(ctx, req.RoomID)
	if err != nil {
		return nil, fmt.Errorf("failed to check room availability: %w", err)
	}
	if !available {
		return nil, fault.BusinessRule("room %s is not available", req.RoomID)
	}

	now := time.Now().UTC()
	booked := &bookings.RoomBooking{
		ID:              uuid.New(),
		BookingNumber:   bookings.NewRoomBookingNumber(),
		IdempotencyKey:  key,
		RoomID:          req.RoomID,
		GuestName:       req.GuestName,
		GuestEmail:      req.GuestEmail,
		GuestPhone:      req.GuestPhone,
		CheckInDate:     req.CheckInDate,
		CheckOutDate:    req.CheckOutDate,
		NumberOfGuests:  req.NumberOfGuests,
		NumberOfNights:  nights,
		RoomPrice:       room.PricePerUnit,
		TotalAmount:     room.PricePerUnit.Mul(decimal.NewFromInt(int64(nights))),
		Status:          bookings.StatusPending,
		SpecialRequests: req.SpecialRequests,
		BookedBy:        auth.Actor(ctx),
		BookedAt:        now,
		LastModifiedAt:  now,
	}

	var result *bookings.RoomBooking
	err = WithRetry(3, func(ctx context.Context) error {
		return u.trManager.DoWithSettings(ctx, serializableSettings(), func(ctx context.Context) error {
			dup, err := u.rooms.GetByIdempotencyKey(ctx, key)
			if err != nil {
				return fmt.Errorf("failed to re-check idempotency key: %w", err)
			}
			if dup != nil {
				result = dup
				return nil
			}

			conflicts, err := u.rooms.FindConflicting(ctx, req.RoomID, req.CheckInDate, req.CheckOutDate)
			if err != nil {
				return fmt.Errorf("failed to check booking conflicts: %w", err)
			}
			if len(conflicts) > 0 {
				return fault.BusinessRule("room %s is already booked for the selected dates", req.RoomID)
			}

			if err := u.rooms.Create(ctx, booked); err != nil {
				return fmt.Errorf("failed to create room booking: %w", err)
			}
			result = booked
			return nil
		})
	})(ctx)
	if err != nil {
		return nil, err
	}

	if result == booked {
		u.markRoom(ctx, req.RoomID, registry.StatusReserved)
	}

	return result, nil
}

// ConfirmRoomBooking moves a PENDING booking to CONFIRMED and announces it.
// Payment processing calls this exactly once per successful payment.
func (u *Usecase) ConfirmRoomBooking(ctx context.Context, bookingNumber string) error {
	b, err := u.rooms.GetByNumber(ctx, bookingNumber)
	if err != nil {
		return fmt.Errorf("failed to get room booking: %w", err)
	}
	if b == nil {
		return fault.NotFound("room booking", bookingNumber)
	}
	if b.Status != bookings.StatusPending {
		return fault.BusinessRule("booking %s is %s, only pending bookings can be confirmed", bookingNumber, b.Status)
	}

	if err := u.rooms.UpdateStatus(ctx, b.ID, bookings.StatusConfirmed, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to confirm room booking: %w", err)
	}

	u.publishBookingConfirmed(ctx, entities.BookingConfirmed_v1{
		Header:        entities.NewEventHeaderWithIdempotencyKey(idempotency.GetKey(ctx)),
		BookingNumber: b.BookingNumber,
		BookingType:   "ROOM",
		GuestName:     b.GuestName,
		GuestEmail:    b.GuestEmail,
		CheckInDate:   b.CheckInDate.Format("2006-01-02"),
		CheckOutDate:  b.CheckOutDate.Format("2006-01-02"),
		TotalAmount:   b.TotalAmount.String(),
	})

	return nil
}

// UpdateRoomBookingStatus applies a staff-driven lifecycle change such as
// check-in or check-out and keeps the room status in sync.
func (u *Usecase) UpdateRoomBookingStatus(ctx context.Context, id uuid.UUID, target bookings.Status) (*bookings.RoomBooking, error) {
	if err := auth.RequireRole(ctx, auth.RoleStaff); err != nil {
		return nil, err
	}

	b, err := u.rooms.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get room booking: %w", err)
	}
	if b == nil {
		return nil, fault.NotFound("room booking", id.String())
	}
	if !b.Status.CanTransitionTo(target) {
		return nil, fault.BusinessRule("cannot transition booking %s from %s to %s", b.BookingNumber, b.Status, target)
	}

	now := time.Now().UTC()
	if err := u.rooms.UpdateStatus(ctx, b.ID, target, now); err != nil {
		return nil, fmt.Errorf("failed to update room booking status: %w", err)
	}

	switch target {
	case bookings.StatusCheckedIn:
		u.markRoom(ctx, b.RoomID, registry.StatusOccupied)
	case bookings.StatusCheckedOut, bookings.StatusCompleted, bookings.StatusCancelled, bookings.StatusNoShow:
		u.markRoom(ctx, b.RoomID, registry.StatusAvailable)
	}

	b.Status = target
	b.LastModifiedAt = now
	return b, nil
}

// CancelRoomBooking cancels a booking that has not been checked in yet and
// releases the room.
func (u *Usecase) CancelRoomBooking(ctx context.Context, id uuid.UUID) (*bookings.RoomBooking, error) {
	b, err := u.rooms.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get room booking: %w", err)
	}
	if b == nil {
		return nil, fault.NotFound("room booking", id.String())
	}

	switch {
	case b.Status == bookings.StatusCheckedIn:
		return nil, fault.BusinessRule("booking %s cannot be cancelled after check-in", b.BookingNumber)
	case b.Status == bookings.StatusCancelled:
		return nil, fault.BusinessRule("booking %s is already cancelled", b.BookingNumber)
	case !b.Status.CanTransitionTo(bookings.StatusCancelled):
		return nil, fault.BusinessRule("cannot cancel a %s booking", b.Status)
	}

	now := time.Now().UTC()
	if err := u.rooms.UpdateStatus(ctx, b.ID, bookings.StatusCancelled, now); err != nil {
		return nil, fmt.Errorf("failed to cancel room booking: %w", err)
	}

	u.markRoom(ctx, b.RoomID, registry.StatusAvailable)

	b.Status = bookings.StatusCancelled
	b.LastModifiedAt = now
	return b, nil
}

func (u *Usecase) GetRoomBookingByID(ctx context.Context, id uuid.UUID) (*bookings.RoomBooking, error) {
	b, err := u.rooms.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get room booking: %w", err)
	}
	if b == nil {
		return nil, fault.NotFound("room booking", id.String())
	}
	return b, nil
}

func (u *Usecase) GetRoomBookingByNumber(ctx context.Context, number string) (*bookings.RoomBooking, error) {
	b, err := u.rooms.GetByNumber(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("failed to get room booking: %w", err)
	}
	if b == nil {
		return nil, fault.NotFound("room booking", number)
	}
	return b, nil
}

// ListRoomBookings returns all bookings, optionally narrowed to one guest
// email or one status. Email wins when both filters are set.
func (u *Usecase) ListRoomBookings(ctx context.Context, guestEmail string, status bookings.Status) ([]bookings.RoomBooking, error) {
	switch {
	case guestEmail != "":
		return u.rooms.ListByGuestEmail(ctx, guestEmail)
	case status != "":
		return u.rooms.ListByStatus(ctx, status)
	default:
		return u.rooms.List(ctx)
	}
}

// markRoom updates the room status in the hotel service. Best effort: the
// booking state is already persisted, a stale room status is acceptable.
func (u *Usecase) markRoom(ctx context.Context, roomID string, status registry.Status) {
	if err := u.registry.SetRoomStatus(ctx, roomID, status); err != nil {
		log.FromContext(ctx).
			WithField("room_id", roomID).
			WithField("status", status).
			WithField("error", err).
			Warn("Failed to update room status")
	}
}

func (u *Usecase) publishBookingConfirmed(ctx context.Context, event entities.BookingConfirmed_v1) {
	if err := u.eventBus.Publish(ctx, event); err != nil {
		log.FromContext(ctx).
			WithField("booking_number", event.BookingNumber).
			WithField("error", err).
			Error("Failed to publish booking confirmed event")
	}
}
