package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Audit actions.
const (
	AuditActionProfileUpdated  = "profile_updated"
	AuditActionPasswordChanged = "password_changed"
	AuditActionLogin           = "login"
	AuditActionLogout          = "logout"
)

// Details is an open-ended structured payload specific to an audit action,
// stored as a JSON object.
type Details map[string]any

// Value implements driver.Valuer for the details column.
func (d Details) Value() (driver.Value, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for the details column.
func (d *Details) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return json.Unmarshal([]byte(v), d)
	case []byte:
		return json.Unmarshal(v, d)
	case nil:
		*d = nil
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Details", src)
	}
}

// AuditLog is an append-only record of a user action. Entries are immutable
// once written and erased only when the owning profile is deleted.
type AuditLog struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Action    string    `json:"action" db:"action"`
	Details   Details   `json:"details" db:"details"`
	IPAddress *string   `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent *string   `json:"user_agent,omitempty" db:"user_agent"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Provenance carries optional request origin attached to audit entries.
type Provenance struct {
	IPAddress *string
	UserAgent *string
}
