package policies

import "strings"

const (
	RoleAdmin  = "admin"
	RoleSystem = "system"
)

// Actor is the identity a command runs on behalf of, as asserted by the
// upstream gateway or by an internal process.
type Actor struct {
	ID    string `validate:"required"`
	Roles []string
}

func SystemActor(id string) Actor {
	return Actor{ID: id, Roles: []string{RoleSystem}}
}

func (a Actor) HasRole(role string) bool {
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		return false
	}
	for _, r := range a.Roles {
		if strings.ToLower(strings.TrimSpace(r)) == role {
			return true
		}
	}
	return false
}

func (a Actor) IsAdmin() bool {
	return a.HasRole(RoleAdmin)
}

// IsPrivileged reports whether the actor may act on bookings it is not a
// party to.
func (a Actor) IsPrivileged() bool {
	return a.HasRole(RoleAdmin) || a.HasRole(RoleSystem)
}
