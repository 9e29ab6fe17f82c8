package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// User statuses. Only active users may log in or carry a verified token.
const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
	StatusPending   = "pending"
)

// Role tags.
const (
	RoleBuyer   = "buyer"
	RoleAdmin   = "admin"
	RoleSupport = "support"
)

// Roles is a non-empty ordered set of role tags, stored as a JSON array.
type Roles []string

// Value implements driver.Valuer for the roles column.
func (r Roles) Value() (driver.Value, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for the roles column.
func (r *Roles) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return json.Unmarshal([]byte(v), r)
	case []byte:
		return json.Unmarshal(v, r)
	case nil:
		*r = nil
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Roles", src)
	}
}

// Contains reports whether the set holds the given role tag.
func (r Roles) Contains(role string) bool {
	for _, have := range r {
		if have == role {
			return true
		}
	}
	return false
}

// User represents a user record. The password hash is never part of this
// struct; it lives in the credentials table keyed by user id.
type User struct {
	ID         string    `json:"id" db:"id"`                   // Primary key, immutable
	Email      string    `json:"email" db:"email"`             // Unique, case-sensitive
	Phone      *string   `json:"phone,omitempty" db:"phone"`   // Optional
	Roles      Roles     `json:"roles" db:"roles"`             // Never empty, defaults to ["buyer"]
	MFAEnabled bool      `json:"mfa_enabled" db:"mfa_enabled"` // Reserved, unused by current flows
	Status     string    `json:"status" db:"status"`           // active | suspended | pending
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"` // Refreshed on every mutation
}
