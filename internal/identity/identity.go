// Package identity carries the externally authenticated actor through the
// request context. Authentication itself happens upstream; the service
// trusts the identity headers set by the gateway.
package identity

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

// Role describes what the actor is allowed to do.
type Role string

const (
	RoleCustomer     Role = "customer"
	RoleVenueManager Role = "venue_manager"
)

// Actor is the authenticated principal for the current request.
type Actor struct {
	UserID  snowflake.ID
	Role    Role
	VenueID snowflake.ID // set for venue managers, zero otherwise
}

// IsManagerOf reports whether the actor manages the given venue.
func (a Actor) IsManagerOf(venueID snowflake.ID) bool {
	return a.Role == RoleVenueManager && a.VenueID == venueID
}

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrInvalidRole     = errors.New("invalid_role")
)

// ActorContextKey is the request context key for the authenticated actor.
type ActorContextKey struct{}

// WithActor stores the actor in the context.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, ActorContextKey{}, actor)
}

// ActorFromContext returns the actor from context, if set.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	actor, ok := ctx.Value(ActorContextKey{}).(Actor)
	if !ok || actor.UserID == 0 {
		return Actor{}, false
	}
	return actor, true
}

// ParseRole validates a raw role string.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleCustomer:
		return RoleCustomer, nil
	case RoleVenueManager:
		return RoleVenueManager, nil
	default:
		return "", ErrInvalidRole
	}
}
