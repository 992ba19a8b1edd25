package authctx

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Role is the caller's coarse permission level.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleOrganizer Role = "organizer"
	RoleUser      Role = "user"
)

// AuthContext is the explicit caller principal. Every workflow call receives
// it through the request context; nothing reads ambient session state.
type AuthContext struct {
	UserID      snowflake.ID
	Role        Role
	OrganizerID snowflake.ID
}

// IsAdmin reports whether the caller holds the administrator role.
func (a AuthContext) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanActFor reports whether the caller may act on behalf of the organizer:
// admins always, organizers only for their own account.
func (a AuthContext) CanActFor(organizerID snowflake.ID) bool {
	if a.IsAdmin() {
		return true
	}
	return a.Role == RoleOrganizer && a.OrganizerID != 0 && a.OrganizerID == organizerID
}

// AuthContextKey is the request context key for the caller principal.
type AuthContextKey struct{}

// WithAuth stores the principal in the context.
func WithAuth(ctx context.Context, auth AuthContext) context.Context {
	return context.WithValue(ctx, AuthContextKey{}, auth)
}

// FromContext returns the principal from context, if set.
func FromContext(ctx context.Context) (AuthContext, bool) {
	if ctx == nil {
		return AuthContext{}, false
	}

	value := ctx.Value(AuthContextKey{})
	if value == nil {
		return AuthContext{}, false
	}

	auth, ok := value.(AuthContext)
	if !ok || auth.UserID == 0 {
		return AuthContext{}, false
	}
	return auth, true
}
