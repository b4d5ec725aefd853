package models

import "time"

// Watch represents a wristwatch in a user's collection.
type Watch struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	UserID    string `gorm:"type:uuid;index;not null"`
	Name      string `gorm:"size:60;not null"`
	Brand     string `gorm:"size:40;not null"`
	Reference string `gorm:"size:30;not null;uniqueIndex"`
}
