package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/eventick/ticketpay/internal/authctx"
	"github.com/gin-gonic/gin"
)

const (
	headerUserID      = "X-User-Id"
	headerUserRole    = "X-User-Role"
	headerOrganizerID = "X-Organizer-Id"
)

// PrincipalMiddleware builds the explicit caller principal from the identity
// headers set by the trusted gateway. Requests without a principal still
// reach the services, which reject them with unauthorized.
func PrincipalMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := snowflake.ParseString(strings.TrimSpace(c.GetHeader(headerUserID)))
		if err != nil || userID == 0 {
			c.Next()
			return
		}

		auth := authctx.AuthContext{
			UserID: userID,
			Role:   parseRole(c.GetHeader(headerUserRole)),
		}
		if organizerID, err := snowflake.ParseString(strings.TrimSpace(c.GetHeader(headerOrganizerID))); err == nil {
			auth.OrganizerID = organizerID
		}

		ctx := authctx.WithAuth(c.Request.Context(), auth)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func parseRole(raw string) authctx.Role {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "admin":
		return authctx.RoleAdmin
	case "organizer":
		return authctx.RoleOrganizer
	default:
		return authctx.RoleUser
	}
}
