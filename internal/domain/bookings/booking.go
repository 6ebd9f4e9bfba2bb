package bookings

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v3"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusConfirmed  Status = "CONFIRMED"
	StatusCheckedIn  Status = "CHECKED_IN"
	StatusCheckedOut Status = "CHECKED_OUT"
	StatusCancelled  Status = "CANCELLED"
	StatusNoShow     Status = "NO_SHOW"
	StatusCompleted  Status = "COMPLETED"
)

// transitions is the single source of truth for the booking state machine.
// Every status change goes through CanTransitionTo.
var transitions = map[Status][]Status{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusCheckedIn, StatusCancelled, StatusNoShow},
	StatusCheckedIn:  {StatusCheckedOut},
	StatusCheckedOut: {StatusCompleted},
	StatusCancelled:  {},
	StatusNoShow:     {},
	StatusCompleted:  {},
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

// IsActive reports whether a booking still claims its resource and therefore
// counts toward date conflicts.
func (s Status) IsActive() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCheckedIn:
		return true
	}
	return false
}

// ActiveStatuses is the conflict-query filter matching IsActive.
func ActiveStatuses() []string {
	return []string{string(StatusPending), string(StatusConfirmed), string(StatusCheckedIn)}
}

type RoomBooking struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	BookingNumber   string          `json:"booking_number" db:"booking_number"`
	IdempotencyKey  string          `json:"-" db:"idempotency_key"`
	RoomID          string          `json:"room_id" db:"room_id"`
	GuestName       string          `json:"guest_name" db:"guest_name"`
	GuestEmail      string          `json:"guest_email" db:"guest_email"`
	GuestPhone      string          `json:"guest_phone" db:"guest_phone"`
	CheckInDate     time.Time       `json:"check_in_date" db:"check_in_date"`
	CheckOutDate    time.Time       `json:"check_out_date" db:"check_out_date"`
	NumberOfGuests  int             `json:"number_of_guests" db:"number_of_guests"`
	NumberOfNights  int             `json:"number_of_nights" db:"number_of_nights"`
	RoomPrice       decimal.Decimal `json:"room_price" db:"room_price"`
	TotalAmount     decimal.Decimal `json:"total_amount" db:"total_amount"`
	Status          Status          `json:"status" db:"status"`
	SpecialRequests string          `json:"special_requests" db:"special_requests"`
	BookedBy        string          `json:"booked_by" db:"booked_by"`
	BookedAt        time.Time       `json:"booked_at" db:"booked_at"`
	LastModifiedAt  time.Time       `json:"last_modified_at" db:"last_modified_at"`
}

type TableBooking struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	BookingNumber   string          `json:"booking_number" db:"booking_number"`
	IdempotencyKey  string          `json:"-" db:"idempotency_key"`
	TableID         string          `json:"table_id" db:"table_id"`
	GuestName       string          `json:"guest_name" db:"guest_name"`
	GuestEmail      string          `json:"guest_email" db:"guest_email"`
	GuestPhone      string          `json:"guest_phone" db:"guest_phone"`
	ReservationAt   time.Time       `json:"reservation_at" db:"reservation_at"`
	DurationMinutes int             `json:"duration_minutes" db:"duration_minutes"`
	NumberOfGuests  int             `json:"number_of_guests" db:"number_of_guests"`
	ReservationFee  decimal.Decimal `json:"reservation_fee" db:"reservation_fee"`
	TotalAmount     decimal.Decimal `json:"total_amount" db:"total_amount"`
	Status          Status          `json:"status" db:"status"`
	SpecialRequests string          `json:"special_requests" db:"special_requests"`
	BookedBy        string          `json:"booked_by" db:"booked_by"`
	BookedAt        time.Time       `json:"booked_at" db:"booked_at"`
	LastModifiedAt  time.Time       `json:"last_modified_at" db:"last_modified_at"`
}

// DefaultTableDuration is assumed when the guest does not say how long they
// will stay. ConflictBufferMinutes keeps reservations on the same table at
// least two hours apart.
const (
	DefaultTableDuration  = 120
	ConflictBufferMinutes = 120
)

// Nights counts whole nights between check-in and check-out dates.
// Zero or negative means an invalid range.
func Nights(checkIn, checkOut time.Time) int {
	return int(checkOut.Sub(checkIn).Hours() / 24)
}

// Overlaps implements the half-open range intersection used by the
// conflict check: newStart < existingEnd AND newEnd > existingStart.
func Overlaps(newStart, newEnd, existingStart, existingEnd time.Time) bool {
	return newStart.Before(existingEnd) && newEnd.After(existingStart)
}

func NewRoomBookingNumber() string {
	return "RB-" + referenceSuffix()
}

func NewTableBookingNumber() string {
	return "TB-" + referenceSuffix()
}

func referenceSuffix() string {
	return strings.ToUpper(shortuuid.New())[:8]
}
