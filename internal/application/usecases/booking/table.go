package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/google/uuid"

	"hotelops/internal/auth"
	"hotelops/internal/domain/bookings"
	"hotelops/internal/domain/registry"
	"hotelops/internal/entities"
	"hotelops/internal/fault"
	"hotelops/internal/idempotency"
)

type CreateTableBookingRequest struct {
	TableID         string    `json:"table_id"`
	GuestName       string    `json:"guest_name"`
	GuestEmail      string    `json:"guest_email"`
	GuestPhone      string    `json:"guest_phone"`
	ReservationAt   time.Time `json:"reservation_at"`
	DurationMinutes int       `json:"duration_minutes"`
	NumberOfGuests  int       `json:"number_of_guests"`
	SpecialRequests string    `json:"special_requests"`
}

// CreateTableBooking reserves a restaurant table in PENDING state, following
// the same idempotent deferred-confirmation flow as room bookings. Two
// reservations for the same table on the same day must be at least two hours
// apart.
func (u *Usecase) CreateTableBooking(ctx context.Context, req CreateTableBookingRequest) (*bookings.TableBooking, error) {
	key := idempotency.GetKey(ctx)

	existing, err := u.tables.GetByIdempotencyKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to check idempotency key: %w", err)
	}
	if existing != nil {
		log.FromContext(ctx).
			WithField("booking_number", existing.BookingNumber).
			Info("Duplicate table booking request, returning existing booking")
		return existing, nil
	}

	table, err := u.registry.GetTable(ctx, req.TableID)
	if err != nil {
		return nil, err
	}
	if req.NumberOfGuests > table.Capacity {
		return nil, fault.BusinessRule("table %s seats %d guests, requested %d", req.TableID, table.Capacity, req.NumberOfGuests)
	}

	available, err := u.registry.IsTableAvailable(ctx, req.TableID)
	if err != nil {
		return nil, fmt.Errorf("failed to check table availability: %w", err)
	}
	if !available {
		return nil, fault.BusinessRule("table %s is not available", req.TableID)
	}

	duration := req.DurationMinutes
	if duration <= 0 {
		duration = bookings.DefaultTableDuration
	}

	now := time.Now().UTC()
	booked := &bookings.TableBooking{
		ID:              uuid.New(),
		BookingNumber:   bookings.NewTableBookingNumber(),
		IdempotencyKey:  key,
		TableID:         req.TableID,
		GuestName:       req.GuestName,
		GuestEmail:      req.GuestEmail,
		GuestPhone:      req.GuestPhone,
		ReservationAt:   req.ReservationAt,
		DurationMinutes: duration,
		NumberOfGuests:  req.NumberOfGuests,
		ReservationFee:  table.PricePerUnit,
		TotalAmount:     table.PricePerUnit,
		Status:          bookings.StatusPending,
		SpecialRequests: req.SpecialRequests,
		BookedBy:        auth.Actor(ctx),
		BookedAt:        now,
		LastModifiedAt:  now,
	}

	var result *bookings.TableBooking
	err = WithRetry(3, func(ctx context.Context) error {
		return u.trManager.DoWithSettings(ctx, serializableSettings(), func(ctx context.Context) error {
			dup, err := u.tables.GetByIdempotencyKey(ctx, key)
			if err != nil {
				return fmt.Errorf("failed to re-check idempotency key: %w", err)
			}
			if dup != nil {
				result = dup
				return nil
			}

			conflicts, err := u.tables.FindConflicting(ctx, req.TableID, req.ReservationAt, bookings.ConflictBufferMinutes)
			if err != nil {
				return fmt.Errorf("failed to check reservation conflicts: %w", err)
			}
			if len(conflicts) > 0 {
				return fault.BusinessRule("table %s already has a reservation within two hours of the requested time", req.TableID)
			}

			if err := u.tables.Create(ctx, booked); err != nil {
				return fmt.Errorf("failed to create table booking: %w", err)
			}
			result = booked
			return nil
		})
	})(ctx)
	if err != nil {
		return nil, err
	}

	if result == booked {
		u.markTable(ctx, req.TableID, registry.StatusReserved)
	}

	return result, nil
}

// ConfirmTableBooking moves a PENDING reservation to CONFIRMED after its
// payment succeeds.
func (u *Usecase) ConfirmTableBooking(ctx context.Context, bookingNumber string) error {
	b, err := u.tables.GetByNumber(ctx, bookingNumber)
	if err != nil {
		return fmt.Errorf("failed to get table booking: %w", err)
	}
	if b == nil {
		return fault.NotFound("table booking", bookingNumber)
	}
	if b.Status != bookings.StatusPending {
		return fault.BusinessRule("booking %s is %s, only pending bookings can be confirmed", bookingNumber, b.Status)
	}

	if err := u.tables.UpdateStatus(ctx, b.ID, bookings.StatusConfirmed, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to confirm table booking: %w", err)
	}

	u.publishBookingConfirmed(ctx, entities.BookingConfirmed_v1{
		Header:        entities.NewEventHeaderWithIdempotencyKey(idempotency.GetKey(ctx)),
		BookingNumber: b.BookingNumber,
		BookingType:   "TABLE",
		GuestName:     b.GuestName,
		GuestEmail:    b.GuestEmail,
		CheckInDate:   b.ReservationAt.Format("2006-01-02"),
		CheckOutDate:  b.ReservationAt.Add(time.Duration(b.DurationMinutes) * time.Minute).Format("2006-01-02"),
		TotalAmount:   b.TotalAmount.String(),
	})

	return nil
}

// UpdateTableBookingStatus applies a staff lifecycle change. Seating a guest
// marks the table occupied, finishing or cancelling releases it.
func (u *Usecase) UpdateTableBookingStatus(ctx context.Context, id uuid.UUID, target bookings.Status) (*bookings.TableBooking, error) {
	if err := auth.RequireRole(ctx, auth.RoleStaff); err != nil {
		return nil, err
	}

	b, err := u.tables.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get table booking: %w", err)
	}
	if b == nil {
		return nil, fault.NotFound("table booking", id.String())
	}
	if !b.Status.CanTransitionTo(target) {
		return nil, fault.BusinessRule("cannot transition booking %s from %s to %s", b.BookingNumber, b.Status, target)
	}

	now := time.Now().UTC()
	if err := u.tables.UpdateStatus(ctx, b.ID, target, now); err != nil {
		return nil, fmt.Errorf("failed to update table booking status: %w", err)
	}

	switch target {
	case bookings.StatusCheckedIn:
		u.markTable(ctx, b.TableID, registry.StatusOccupied)
	case bookings.StatusCheckedOut, bookings.StatusCompleted, bookings.StatusCancelled, bookings.StatusNoShow:
		u.markTable(ctx, b.TableID, registry.StatusAvailable)
	}

	b.Status = target
	b.LastModifiedAt = now
	return b, nil
}

// CancelTableBooking cancels a reservation that has not been seated yet.
func (u *Usecase) CancelTableBooking(ctx context.Context, id uuid.UUID) (*bookings.TableBooking, error) {
	b, err := u.tables.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get table booking: %w", err)
	}
	if b == nil {
		return nil, fault.NotFound("table booking", id.String())
	}

	switch {
	case b.Status == bookings.StatusCheckedIn:
		return nil, fault.BusinessRule("booking %s cannot be cancelled after the guest is seated", b.BookingNumber)
	case b.Status == bookings.StatusCancelled:
		return nil, fault.BusinessRule("booking %s is already cancelled", b.BookingNumber)
	case !b.Status.CanTransitionTo(bookings.StatusCancelled):
		return nil, fault.BusinessRule("cannot cancel a %s booking", b.Status)
	}

	now := time.Now().UTC()
	if err := u.tables.UpdateStatus(ctx, b.ID, bookings.StatusCancelled, now); err != nil {
		return nil, fmt.Errorf("failed to cancel table booking: %w", err)
	}

	u.markTable(ctx, b.TableID, registry.StatusAvailable)

	b.Status = bookings.StatusCancelled
	b.LastModifiedAt = now
	return b, nil
}

func (u *Usecase) GetTableBookingByID(ctx context.Context, id uuid.UUID) (*bookings.TableBooking, error) {
	b, err := u.tables.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get table booking: %w", err)
	}
	if b == nil {
		return nil, fault.NotFound("table booking", id.String())
	}
	return b, nil
}

func (u *Usecase) GetTableBookingByNumber(ctx context.Context, number string) (*bookings.TableBooking, error) {
	b, err := u.tables.GetByNumber(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("failed to get table booking: %w", err)
	}
	if b == nil {
		return nil, fault.NotFound("table booking", number)
	}
	return b, nil
}

func (u *Usecase) ListTableBookings(ctx context.Context, guestEmail string, status bookings.Status) ([]bookings.TableBooking, error) {
	switch {
	case guestEmail != "":
		return u.tables.ListByGuestEmail(ctx, guestEmail)
	case status != "":
		return u.tables.ListByStatus(ctx, status)
	default:
		return u.tables.List(ctx)
	}
}

func (u *Usecase) markTable(ctx context.Context, tableID string, status registry.Status) {
	if err := u.registry.SetTableStatus(ctx, tableID, status); err != nil {
		log.FromContext(ctx).
			WithField("table_id", tableID).
			WithField("status", status).
			WithField("error", err).
			Warn("Failed to update table status")
	}
}
