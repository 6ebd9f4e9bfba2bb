package auth

import (
	"context"
	"slices"

	"hotelops/internal/fault"
)

type actorKey struct{}
type rolesKey struct{}

const (
	HeaderActor = "X-Actor"
	HeaderRoles = "X-Roles"

	RoleStaff = "staff"
	RoleAdmin = "admin"
)

// SystemActor is recorded when a request carries no identity,
// e.g. internal service-to-service calls.
const SystemActor = "system"

func WithActor(ctx context.Context, actor string, roles []string) context.Context {
	ctx = context.WithValue(ctx, actorKey{}, actor)
	return context.WithValue(ctx, rolesKey{}, roles)
}

func Actor(ctx context.Context) string {
	actor, ok := ctx.Value(actorKey{}).(string)
	if !ok || actor == "" {
		return SystemActor
	}
	return actor
}

func Roles(ctx context.Context) []string {
	roles, _ := ctx.Value(rolesKey{}).([]string)
	return roles
}

func HasRole(ctx context.Context, role string) bool {
	return slices.Contains(Roles(ctx), role)
}

// RequireRole guards staff-driven operations. The system actor is always
// allowed so in-process orchestration calls are not blocked.
func RequireRole(ctx context.Context, role string) error {
	if Actor(ctx) == SystemActor {
		return nil
	}
	if HasRole(ctx, role) || HasRole(ctx, RoleAdmin) {
		return nil
	}
	return fault.Forbidden("actor %q is not permitted to perform this operation", Actor(ctx))
}
