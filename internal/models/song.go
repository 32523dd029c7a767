package models

import (
	"path"
	"time"

	"github.com/zfogg/cadence/internal/ranking"
	"gorm.io/gorm"
)

// Song is an uploaded track in the catalog
type Song struct {
	ID         string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UploadedBy string `gorm:"not null;index" json:"upload_by"`

	// Track metadata
	Title    string      `gorm:"not null" json:"title"`
	Artist   string      `gorm:"not null" json:"artist"`
	Album    string      `json:"album"`
	Year     int         `json:"year"`
	Genre    StringArray `json:"genre"`
	Duration float64     `json:"duration"` // seconds

	// Object storage location, e.g. https://bucket.s3.amazonaws.com/songs/<key>
	AudioURL string `gorm:"not null" json:"song_s3_url"`

	LikeCount int `gorm:"default:0" json:"likes"`

	// GORM fields
	CreatedAt time.Time      `json:"upload_date"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate assigns an id when none was provided
func (s *Song) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = generateUUID()
	}
	return nil
}

// ObjectKey returns the storage key of the audio file (last path segment of the URL)
func (s *Song) ObjectKey() string {
	if s.AudioURL == "" {
		return ""
	}
	return path.Base(s.AudioURL)
}

// ToCatalogItem copies the fields the ranking engine needs
func (s *Song) ToCatalogItem() ranking.CatalogItem {
	return ranking.CatalogItem{
		ID:        s.ID,
		Title:     s.Title,
		Artist:    s.Artist,
		Genre:     append([]string(nil), s.Genre...),
		LikeCount: s.LikeCount,
	}
}
