package entities

import (
	"time"

	"github.com/google/uuid"
)

// EventHeader carries the idempotency key of the request that produced the
// event so consumers can deduplicate redeliveries.
type EventHeader struct {
	Id             string    `json:"id"`
	PublishedAt    time.Time `json:"published_at"`
	IdempotencyKey string    `json:"idempotency_key"`
}

func NewEventHeader() EventHeader {
	return NewEventHeaderWithIdempotencyKey(uuid.NewString())
}

func NewEventHeaderWithIdempotencyKey(idempotencyKey string) EventHeader {
	return EventHeader{
		Id:             uuid.NewString(),
		PublishedAt:    time.Now().UTC(),
		IdempotencyKey: idempotencyKey,
	}
}
