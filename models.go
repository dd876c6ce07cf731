package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Account is the sole persisted entity: a user identity keyed by email.
//
// PendingCode holds the currently outstanding one time code, or the empty
// string when none is outstanding. Signup verification and password reset
// share the column, so issuing either kind of code invalidates the other.
type Account struct {
	bun.BaseModel `bun:"table:accounts,alias:acc"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	FullName      string     `bun:"full_name" json:"full_name,omitempty"`
	PasswordHash  string     `bun:"password_hash" json:"-"`
	ExternalID    string     `bun:"external_id" json:"external_id,omitempty"`
	Verified      bool       `bun:"is_verified" json:"is_verified"`
	PendingCode   string     `bun:"pending_code" json:"-"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// HasPendingCode reports whether a one time code is outstanding.
func (a *Account) HasPendingCode() bool {
	return a != nil && a.PendingCode != ""
}

// IsFederated reports whether the account is bound to an external
// identity provider.
func (a *Account) IsFederated() bool {
	return a != nil && a.ExternalID != ""
}
