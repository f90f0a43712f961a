package ginserver

import (
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"eventmarket/internal/app/policies"
)

const (
	principalContextKey = "eventmarket.principal"

	userIDHeader      = "X-User-ID"
	userRolesHeader   = "X-User-Roles"
	idempotencyHeader = "Idempotency-Key"
)

// Identity reads the caller asserted by the upstream gateway. Requests
// without X-User-ID continue anonymously and are rejected by handlers that
// need an actor.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(userIDHeader))
		if id == "" {
			c.Next()
			return
		}
		c.Set(principalContextKey, policies.Actor{ID: id, Roles: parseRoles(c.GetHeader(userRolesHeader))})
		c.Next()
	}
}

func parseRoles(header string) []string {
	var roles []string
	for _, raw := range strings.Split(header, ",") {
		if r := strings.ToLower(strings.TrimSpace(raw)); r != "" {
			roles = append(roles, r)
		}
	}
	return roles
}

func currentActor(c *gin.Context) (policies.Actor, bool) {
	val, exists := c.Get(principalContextKey)
	if !exists {
		return policies.Actor{}, false
	}
	a, ok := val.(policies.Actor)
	return a, ok
}

func requireActor(c *gin.Context) (policies.Actor, bool) {
	a, ok := currentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorBody("unauthenticated", "X-User-ID header is required"))
		return policies.Actor{}, false
	}
	return a, true
}
