package domain

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type Role string

const (
	RoleAdmin      Role = "SYSTEM_ADMIN"
	RoleNormalUser Role = "NORMAL_USER"
	RoleStoreOwner Role = "STORE_OWNER"
)

// IsValid reports whether r is one of the three platform roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleNormalUser, RoleStoreOwner:
		return true
	}
	return false
}

var roleTitler = cases.Title(language.English)

// DisplayName returns a human-readable label, e.g. "Store Owner" for STORE_OWNER.
func (r Role) DisplayName() string {
	return roleTitler.String(strings.ToLower(strings.ReplaceAll(string(r), "_", " ")))
}

type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Address      string
	Role         Role
	CreatedAt    time.Time
}

// Profile is the public projection of a user, safe to embed in
// responses visible to other users.
type Profile struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Profile returns the public projection of u.
func (u *User) Profile() Profile {
	return Profile{ID: u.ID, Name: u.Name, Email: u.Email}
}
