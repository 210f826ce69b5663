package types

import "github.com/gofrs/uuid"

// HTTP Header Constants
const (
	HeaderUID           = "uid"
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
)

// Authentication Constants
const (
	BearerPrefix = "Bearer "
)

// UserCtxName is the fiber locals key holding the authenticated UserContext
const UserCtxName = "user"

// Common Values
const (
	UserRole  = "user"
	AdminRole = "admin"
)

// UserContext is the verified identity attached to a request by the auth middleware
type UserContext struct {
	UserID      uuid.UUID `json:"uid"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName"`
	Avatar      string    `json:"avatar"`
	SystemRole  string    `json:"role"`
}
