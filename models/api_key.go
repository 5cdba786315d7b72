package models

import (
	"time"

	"github.com/google/uuid"
)

// Tier selects the hourly analysis budget of a caller
type Tier string

const (
	TierAnonymous     Tier = "anonymous"
	TierAuthenticated Tier = "authenticated"
	TierEnterprise    Tier = "enterprise"
)

// Valid reports whether t is a known tier
func (t Tier) Valid() bool {
	switch t {
	case TierAnonymous, TierAuthenticated, TierEnterprise:
		return true
	}
	return false
}

// APIKey represents an issued API key
type APIKey struct {
	ID        uuid.UUID  `json:"id"`
	Prefix    string     `json:"prefix"`
	KeyHash   string     `json:"-"` // Never serialize the bcrypt hash
	Tier      Tier       `json:"tier"`
	Owner     string     `json:"owner"`
	CreatedAt time.Time  `json:"created_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}

// Active reports whether the key has not been revoked
func (k *APIKey) Active() bool {
	return k.RevokedAt == nil
}
