package models

import "time"

// RefreshToken represents a stored refresh token issued to a user.
type RefreshToken struct {
	ID        string     `db:"id" json:"id"`
	UserID    string     `db:"user_id" json:"userId"`
	Token     string     `db:"token" json:"-"`
	ExpiresAt time.Time  `db:"expires_at" json:"expiresAt"`
	Revoked   bool       `db:"revoked" json:"revoked"`
	RevokedAt *time.Time `db:"revoked_at" json:"revokedAt,omitempty"`
	IPAddress string     `db:"ip_address" json:"-"`
	UserAgent string     `db:"user_agent" json:"-"`
	CreatedAt time.Time  `db:"created_at" json:"createdAt"`
}
