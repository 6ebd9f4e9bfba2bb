package registry

import (
	"context"

	"github.com/shopspring/decimal"
)

// Status mirrors the resource registry's availability flag for rooms and tables.
type Status string

const (
	StatusAvailable   Status = "AVAILABLE"
	StatusReserved    Status = "RESERVED"
	StatusOccupied    Status = "OCCUPIED"
	StatusMaintenance Status = "MAINTENANCE"
)

type Resource struct {
	ID           string          `json:"id"`
	Number       string          `json:"number"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
	Capacity     int             `json:"capacity"`
	Status       Status          `json:"status"`
}

type MenuItem struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Available bool            `json:"available"`
}

// ResourceRegistry is the hotel service boundary. Reads are authoritative
// for resolving a resource; status writes are best-effort from the caller's
// perspective and must never abort the enclosing operation.
type ResourceRegistry interface {
	GetRoom(ctx context.Context, id string) (*Resource, error)
	GetTable(ctx context.Context, id string) (*Resource, error)
	IsRoomAvailable(ctx context.Context, id string) (bool, error)
	IsTableAvailable(ctx context.Context, id string) (bool, error)
	SetRoomStatus(ctx context.Context, id string, status Status) error
	SetTableStatus(ctx context.Context, id string, status Status) error
}

// MenuRegistry is the restaurant service boundary.
type MenuRegistry interface {
	IsItemAvailable(ctx context.Context, id string) (bool, error)
	GetMenuItem(ctx context.Context, id string) (*MenuItem, error)
}
