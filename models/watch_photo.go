package models

import "time"

// WatchPhoto represents an uploaded photo of a watch. ThumbPath is filled in
// lazily by the background thumbnailer, so it may be empty for recent uploads.
type WatchPhoto struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	WatchID     string `gorm:"type:uuid;index;not null"`
	Watch       Watch  `gorm:"foreignKey:WatchID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	FileName    string `gorm:"size:255;not null"`
	StorePath   string `gorm:"column:store_path;size:512"`
	ThumbPath   string `gorm:"column:thumb_path;size:512"`
	ContentType string `gorm:"size:128"`
}
