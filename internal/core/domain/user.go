package domain

import "fmt"

type UserID string

// Role is the closed set of authorization roles. Free-form role strings
// are rejected at the credential boundary.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// ParseRole maps a wire-level role string onto the closed enumeration.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleUser:
		return RoleUser, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
}

type User struct {
	ID       UserID `json:"userId"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// Credential is the stored authentication state. An absent token implies
// an absent user; the store clears both together.
type Credential struct {
	Token string `json:"token"`
	User  *User  `json:"user,omitempty"`
}

func (c Credential) Empty() bool {
	return c.Token == ""
}

// SessionSnapshot is the derived session state at one instant. It is
// recomputed from the credential store on every read, never cached.
type SessionSnapshot struct {
	LoggedIn bool
	UserID   UserID
	Username string
	Role     Role
}

// Credentials is a login request.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Registration is a register request.
type Registration struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// AuthPayload is the data field of a successful login envelope.
type AuthPayload struct {
	Token    string `json:"token"`
	UserID   UserID `json:"userId"`
	Username string `json:"username"`
	Role     string `json:"role"`
}
