package models

import "time"

// Account is an advertising account the scheduler works against.
type Account struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Region    string    `json:"region" yaml:"region"`
	ProfileID string    `json:"profile_id" yaml:"profile_id"`
	IsActive  bool      `json:"is_active" yaml:"is_active"`
	CreatedAt time.Time `json:"created_at" yaml:"-"`
	UpdatedAt time.Time `json:"updated_at" yaml:"-"`
}

// Credentials holds the OAuth material for one account. Refresh mechanics
// live in the ads client; expired credentials fail that account's run only.
type Credentials struct {
	AccountID    string     `json:"account_id" yaml:"id"`
	RefreshToken string     `json:"-" yaml:"refresh_token"`
	ExpiresAt    *time.Time `json:"expires_at" yaml:"expires_at"`
}

// Expired reports whether the credentials are known to be unusable.
func (c *Credentials) Expired(now time.Time) bool {
	return c.RefreshToken == "" || (c.ExpiresAt != nil && now.After(*c.ExpiresAt))
}
