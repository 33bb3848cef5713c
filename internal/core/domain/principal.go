package domain

import (
	"strings"
	"time"
)

// Role is the authorization role of a principal.
type Role string

const (
	RoleCitizen         Role = "citizen"
	RoleServiceProvider Role = "service_provider"

	// roleAdminLegacy is accepted on input only and normalised away.
	roleAdminLegacy = "admin"
)

// NormalizeRole maps a raw role string from a profile row or identity
// metadata onto a Role. The legacy "admin" value becomes RoleServiceProvider.
// Unknown or empty values yield "".
func NormalizeRole(raw string) Role {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(RoleCitizen):
		return RoleCitizen
	case string(RoleServiceProvider), roleAdminLegacy:
		return RoleServiceProvider
	default:
		return ""
	}
}

// IsProvider reports whether r grants access to provider views.
func (r Role) IsProvider() bool {
	return r == RoleServiceProvider
}

// Metadata is the identity-provider-attached data of a principal.
type Metadata struct {
	Role     string `json:"role,omitempty" bson:"role,omitempty"`
	FullName string `json:"full_name,omitempty" bson:"full_name,omitempty"`
}

// User is the identity record owned by the identity gateway.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Metadata     Metadata  `json:"metadata"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Principal returns the authenticated-actor view of u.
func (u *User) Principal() Principal {
	return Principal{
		ID:       u.ID,
		Email:    u.Email,
		FullName: u.Metadata.FullName,
		Metadata: u.Metadata,
	}
}

// Principal models an authenticated actor. Role is filled in by the role
// resolver and is empty until then.
type Principal struct {
	ID       string   `json:"id"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name,omitempty"`
	Role     Role     `json:"role,omitempty"`
	Metadata Metadata `json:"-"`
}

// Profile is the stored role record keyed by principal ID.
type Profile struct {
	ID        string    `json:"id" bson:"_id"`
	Role      Role      `json:"role" bson:"role"`
	FullName  string    `json:"full_name,omitempty" bson:"full_name,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}
