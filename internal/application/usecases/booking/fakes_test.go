package booking

import (
	"context"
	"time"

	trm "github.com/avito-tech/go-transaction-manager/trm/v2"
	"github.com/google/uuid"

	"hotelops/internal/domain/bookings"
	"hotelops/internal/domain/registry"
	"hotelops/internal/fault"
)

// passthroughTrManager runs the callback without a real transaction.
type passthroughTrManager struct{}

func (passthroughTrManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (passthroughTrManager) DoWithSettings(ctx context.Context, _ trm.Settings, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeRoomsRepo struct {
	byID map[uuid.UUID]*bookings.RoomBooking
}

func newFakeRoomsRepo() *fakeRoomsRepo {
	return &fakeRoomsRepo{byID: map[uuid.UUID]*bookings.RoomBooking{}}
}

func (r *fakeRoomsRepo) Create(_ context.Context, b *bookings.RoomBooking) error {
	clone := *b
	r.byID[b.ID] = &clone
	return nil
}

func (r *fakeRoomsRepo) GetByIdempotencyKey(_ context.Context, key string) (*bookings.RoomBooking, error) {
	for _, b := range r.byID {
		if b.IdempotencyKey == key {
			clone := *b
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeRoomsRepo) GetByID(_ context.Context, id uuid.UUID) (*bookings.RoomBooking, error) {
	if b, ok := r.byID[id]; ok {
		clone := *b
		return &clone, nil
	}
	return nil, nil
}

func (r *fakeRoomsRepo) GetByNumber(_ context.Context, number string) (*bookings.RoomBooking, error) {
	for _, b := range r.byID {
		if b.BookingNumber == number {
			clone := *b
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeRoomsRepo) FindConflicting(_ context.Context, roomID string, checkIn, checkOut time.Time) ([]bookings.RoomBooking, error) {
	var out []bookings.RoomBooking
	for _, b := range r.byID {
		if b.RoomID == roomID && b.Status.IsActive() && bookings.Overlaps(checkIn, checkOut, b.CheckInDate, b.CheckOutDate) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeRoomsRepo) UpdateStatus(_ context.Context, id uuid.UUID, status bookings.Status, modifiedAt time.Time) error {
	b, ok := r.byID[id]
	if !ok {
		return fault.NotFound("room booking", id.String())
	}
	b.Status = status
	b.LastModifiedAt = modifiedAt
	return nil
}

func (r *fakeRoomsRepo) List(_ context.Context) ([]bookings.RoomBooking, error) {
	var out []bookings.RoomBooking
	for _, b := range r.byID {
		out = append(out, *b)
	}
	return out, nil
}

func (r *fakeRoomsRepo) ListByGuestEmail(_ context.Context, email string) ([]bookings.RoomBooking, error) {
	var out []bookings.RoomBooking
	for _, b := range r.byID {
		if b.GuestEmail == email {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeRoomsRepo) ListByStatus(_ context.Context, status bookings.Status) ([]bookings.RoomBooking, error) {
	var out []bookings.RoomBooking
	for _, b := range r.byID {
		if b.Status == status {
			out = append(out, *b)
		}
	}
	return out, nil
}

type fakeTablesRepo struct {
	byID map[uuid.UUID]*bookings.TableBooking
}

func newFakeTablesRepo() *fakeTablesRepo {
	return &fakeTablesRepo{byID: map[uuid.UUID]*bookings.TableBooking{}}
}

func (r *fakeTablesRepo) Create(_ context.Context, b *bookings.TableBooking) error {
	clone := *b
	r.byID[b.ID] = &clone
	return nil
}

func (r *fakeTablesRepo) GetByIdempotencyKey(_ context.Context, key string) (*bookings.TableBooking, error) {
	for _, b := range r.byID {
		if b.IdempotencyKey == key {
			clone := *b
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeTablesRepo) GetByID(_ context.Context, id uuid.UUID) (*bookings.TableBooking, error) {
	if b, ok := r.byID[id]; ok {
		clone := *b
		return &clone, nil
	}
	return nil, nil
}

func (r *fakeTablesRepo) GetByNumber(_ context.Context, number string) (*bookings.TableBooking, error) {
	for _, b := range r.byID {
		if b.BookingNumber == number {
			clone := *b
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeTablesRepo) FindConflicting(_ context.Context, tableID string, at time.Time, bufferMinutes int) ([]bookings.TableBooking, error) {
	buffer := time.Duration(bufferMinutes) * time.Minute
	var out []bookings.TableBooking
	for _, b := range r.byID {
		if b.TableID != tableID || !b.Status.IsActive() {
			continue
		}
		sameDay := b.ReservationAt.Truncate(24 * time.Hour).Equal(at.Truncate(24 * time.Hour))
		gap := b.ReservationAt.Sub(at)
		if gap < 0 {
			gap = -gap
		}
		if sameDay && gap < buffer {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeTablesRepo) UpdateStatus(_ context.Context, id uuid.UUID, status bookings.Status, modifiedAt time.Time) error {
	b, ok := r.byID[id]
	if !ok {
		return fault.NotFound("table booking", id.String())
	}
	b.Status = status
	b.LastModifiedAt = modifiedAt
	return nil
}

func (r *fakeTablesRepo) List(_ context.Context) ([]bookings.TableBooking, error) {
	var out []bookings.TableBooking
	for _, b := range r.byID {
		out = append(out, *b)
	}
	return out, nil
}

func (r *fakeTablesRepo) ListByGuestEmail(_ context.Context, email string) ([]bookings.TableBooking, error) {
	var out []bookings.TableBooking
	for _, b := range r.byID {
		if b.GuestEmail == email {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeTablesRepo) ListByStatus(_ context.Context, status bookings.Status) ([]bookings.TableBooking, error) {
	var out []bookings.TableBooking
	for _, b := range r.byID {
		if b.Status == status {
			out = append(out, *b)
		}
	}
	return out, nil
}

type statusChange struct {
	resourceID string
	status     registry.Status
}

type fakeRegistry struct {
	rooms       map[string]*registry.Resource
	tables      map[string]*registry.Resource
	unavailable map[string]bool

	roomStatusChanges  []statusChange
	tableStatusChanges []statusChange
	statusErr          error
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		rooms:       map[string]*registry.Resource{},
		tables:      map[string]*registry.Resource{},
		unavailable: map[string]bool{},
	}
}

func (f *fakeRegistry) GetRoom(_ context.Context, id string) (*registry.Resource, error) {
	if r, ok := f.rooms[id]; ok {
		return r, nil
	}
	return nil, fault.NotFound("room", id)
}

func (f *fakeRegistry) GetTable(_ context.Context, id string) (*registry.Resource, error) {
	if r, ok := f.tables[id]; ok {
		return r, nil
	}
	return nil, fault.NotFound("table", id)
}

func (f *fakeRegistry) IsRoomAvailable(_ context.Context, id string) (bool, error) {
	return !f.unavailable[id], nil
}

func (f *fakeRegistry) IsTableAvailable(_ context.Context, id string) (bool, error) {
	return !f.unavailable[id], nil
}

func (f *fakeRegistry) SetRoomStatus(_ context.Context, id string, status registry.Status) error {
	if f.statusErr != nil {
		return f.statusErr
	}
	f.roomStatusChanges = append(f.roomStatusChanges, statusChange{resourceID: id, status: status})
	return nil
}

func (f *fakeRegistry) SetTableStatus(_ context.Context, id string, status registry.Status) error {
	if f.statusErr != nil {
		return f.statusErr
	}
	f.tableStatusChanges = append(f.tableStatusChanges, statusChange{resourceID: id, status: status})
	return nil
}

type fakeEventBus struct {
	published []any
	err       error
}

func (f *fakeEventBus) Publish(_ context.Context, event any) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, event)
	return nil
}
