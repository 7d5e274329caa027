package model

import "time"

// Role is the access tier attached to an account. Authorization
// decisions compare it against the role set declared by each route.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// ParseRole normalizes a client-supplied role string. Anything that is
// not ADMIN falls back to USER, so self-signup cannot escalate by
// sending garbage.
func ParseRole(s string) Role {
	if Role(s) == RoleAdmin {
		return RoleAdmin
	}
	return RoleUser
}

// Account represents a row in the `accounts` table. The Password field
// holds the scrypt record (`salt.derivedHex`), never the raw password,
// and is excluded from JSON responses.
//
// Fields:
//  ID        – primary key identifier.
//  Email     – unique, stored lowercased.
//  Password  – scrypt password record.
//  Role      – access tier (ADMIN or USER).
//  CreatedAt – timestamp of creation.
//  UpdatedAt – timestamp of last update.
type Account struct {
	ID        uint64    `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
