package models

import "time"

// RefreshToken represents a persisted refresh token session. The token
// string is opaque and server-tracked; its lifetime is fixed at creation
// and never extended by use.
type RefreshToken struct {
	ID         string    `db:"id" json:"id"`
	Token      string    `db:"token" json:"token"`
	UserID     string    `db:"user_id" json:"user_id"`
	ExpiryDate time.Time `db:"expiry_date" json:"expiry_date"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	DeviceInfo string    `db:"device_info" json:"device_info"`
}

// Expired reports whether the token is past its expiry date.
func (t *RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiryDate)
}

// BlacklistedToken records an access token string explicitly killed before
// its natural expiry. ExpiryDate is copied from the token's own exp claim so
// the row can be purged once the token would have died anyway.
type BlacklistedToken struct {
	ID            string    `db:"id" json:"id"`
	Token         string    `db:"token" json:"token"`
	ExpiryDate    time.Time `db:"expiry_date" json:"expiry_date"`
	BlacklistedAt time.Time `db:"blacklisted_at" json:"blacklisted_at"`
}
