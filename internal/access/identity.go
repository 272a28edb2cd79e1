package access

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleStudent   Role = "student"
	RoleRecruiter Role = "recruiter"
	RoleAdmin     Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleRecruiter || r == RoleAdmin
}

// Identity is the caller as established by the session layer. It is trusted as given.
type Identity struct {
	ID   primitive.ObjectID
	Role Role
}

func (i Identity) Anonymous() bool {
	return i.ID.IsZero() || i.Role == ""
}

// ContextKey is where the JWT middleware stores the caller's Identity on the echo context.
const ContextKey = "identity"

// FromEcho returns the caller stored by the JWT middleware, or an anonymous Identity.
func FromEcho(c echo.Context) Identity {
	id, _ := c.Get(ContextKey).(Identity)
	return id
}
