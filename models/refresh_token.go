package models

import "time"

// RefreshToken stores the hashed representation of an issued refresh token for
// rotation and revocation. The primary key is the record id embedded in the
// signed token payload, not the token itself; the plaintext token is never stored.
type RefreshToken struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time
	UserID    string `gorm:"type:uuid;index;not null"`
	User      User   `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	TokenHash string `gorm:"size:128;not null"`
	Revoked   bool   `gorm:"default:false"`
}
