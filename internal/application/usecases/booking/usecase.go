package booking

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	trmsql "github.com/avito-tech/go-transaction-manager/drivers/sql/v2"
	trm "github.com/avito-tech/go-transaction-manager/trm/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2/settings"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"hotelops/internal/domain/bookings"
	"hotelops/internal/domain/registry"
)

type RoomBookingsRepo interface {
	Create(ctx context.Context, b *bookings.RoomBooking) error
	GetByIdempotencyKey(ctx context.Context, key string) (*bookings.RoomBooking, error)
	GetByID(ctx context.Context, id uuid.UUID) (*bookings.RoomBooking, error)
	GetByNumber(ctx context.Context, number string) (*bookings.RoomBooking, error)
	FindConflicting(ctx context.Context, roomID string, checkIn, checkOut time.Time) ([]bookings.RoomBooking, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status bookings.Status, modifiedAt time.Time) error
	List(ctx context.Context) ([]bookings.RoomBooking, error)
	ListByGuestEmail(ctx context.Context, email string) ([]bookings.RoomBooking, error)
	ListByStatus(ctx context.Context, status bookings.Status) ([]bookings.RoomBooking, error)
}

type TableBookingsRepo interface {
	Create(ctx context.Context, b *bookings.TableBooking) error
	GetByIdempotencyKey(ctx context.Context, key string) (*bookings.TableBooking, error)
	GetByID(ctx context.Context, id uuid.UUID) (*bookings.TableBooking, error)
	GetByNumber(ctx context.Context, number string) (*bookings.TableBooking, error)
	FindConflicting(ctx context.Context, tableID string, at time.Time, bufferMinutes int) ([]bookings.TableBooking, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status bookings.Status, modifiedAt time.Time) error
	List(ctx context.Context) ([]bookings.TableBooking, error)
	ListByGuestEmail(ctx context.Context, email string) ([]bookings.TableBooking, error)
	ListByStatus(ctx context.Context, status bookings.Status) ([]bookings.TableBooking, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event any) error
}

type Usecase struct {
	rooms     RoomBookingsRepo
	tables    TableBookingsRepo
	registry  registry.ResourceRegistry
	trManager trm.Manager
	eventBus  EventPublisher
}

func NewUsecase(
	rooms RoomBookingsRepo,
	tables TableBookingsRepo,
	resources registry.ResourceRegistry,
	trManager trm.Manager,
	eventBus EventPublisher,
) *Usecase {
	return &Usecase{
		rooms:     rooms,
		tables:    tables,
		registry:  resources,
		trManager: trManager,
		eventBus:  eventBus,
	}
}

func serializableSettings() trm.Settings {
	return trmsql.MustSettings(
		settings.Must(settings.WithCancelable(true)),
		trmsql.WithTxOptions(&sql.TxOptions{Isolation: sql.LevelSerializable}),
	)
}

// WithRetry re-runs f while it fails with a serialization conflict (pg 40001).
func WithRetry(attempts int, f func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		var lastErr error
		for i := 0; i < attempts; i++ {
			err := f(ctx)
			if err == nil {
				return nil
			}

			pgErr := &pq.Error{}
			if errors.As(err, &pgErr) && pgErr.Code == "40001" {
				log.FromContext(ctx).Info("serialization conflict, retrying, attempt ", i+1)
				lastErr = err
				continue
			}

			return err
		}
		return lastErr
	}
}
