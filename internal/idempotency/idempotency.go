package idempotency

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey struct{}

// HeaderKey is the HTTP header clients use to supply their own key.
const HeaderKey = "X-Idempotency-Key"

func WithKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, ctxKey{}, key)
}

// GetKey returns the client-supplied key, or generates one so a single
// in-process request is still deduplicated on storage level.
func GetKey(ctx context.Context) string {
	key, ok := ctx.Value(ctxKey{}).(string)
	if !ok || key == "" {
		return uuid.NewString()
	}

	return key
}
