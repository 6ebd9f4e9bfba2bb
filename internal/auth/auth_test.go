package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"hotelops/internal/fault"
)

func TestActorDefaultsToSystem(t *testing.T) {
	assert.Equal(t, SystemActor, Actor(context.Background()))

	ctx := WithActor(context.Background(), "", nil)
	assert.Equal(t, SystemActor, Actor(ctx))
}

func TestRequireRole(t *testing.T) {
	t.Run("system actor always allowed", func(t *testing.T) {
		assert.NoError(t, RequireRole(context.Background(), RoleStaff))
	})

	t.Run("named actor needs the role", func(t *testing.T) {
		ctx := WithActor(context.Background(), "alice", nil)
		err := RequireRole(ctx, RoleStaff)
		kind, ok := fault.KindOf(err)
		assert.True(t, ok)
		assert.Equal(t, fault.KindForbidden, kind)

		ctx = WithActor(context.Background(), "alice", []string{RoleStaff})
		assert.NoError(t, RequireRole(ctx, RoleStaff))
	})

	t.Run("admin passes any check", func(t *testing.T) {
		ctx := WithActor(context.Background(), "root", []string{RoleAdmin})
		assert.NoError(t, RequireRole(ctx, RoleStaff))
	})
}
