package models

import (
	"time"

	"gorm.io/gorm"
)

// User is a listener account
type User struct {
	ID           string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Username     string `gorm:"uniqueIndex;not null" json:"username"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	DisplayName  string `json:"display_name"`

	// GORM fields
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// SongView is one entry of a listener's viewing history.
// The auto-increment ID gives a total chronological order even when
// several views share a timestamp.
type SongView struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"not null;index" json:"user_id"`
	SongID    string    `gorm:"not null;index" json:"song_id"`
	CreatedAt time.Time `json:"created_at"`
}

// SongLike records that a listener liked a song
type SongLike struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID    string    `gorm:"not null;uniqueIndex:idx_song_likes_user_song" json:"user_id"`
	SongID    string    `gorm:"not null;uniqueIndex:idx_song_likes_user_song;index" json:"song_id"`
	CreatedAt time.Time `json:"created_at"`
}

// PlaylistEntry is a song in a listener's playlist
type PlaylistEntry struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID    string    `gorm:"not null;uniqueIndex:idx_playlist_entries_user_song" json:"user_id"`
	SongID    string    `gorm:"not null;uniqueIndex:idx_playlist_entries_user_song" json:"song_id"`
	Position  int       `gorm:"not null;default:0" json:"position"`
	CreatedAt time.Time `json:"added_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = generateUUID()
	}
	return nil
}

func (l *SongLike) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = generateUUID()
	}
	return nil
}

func (p *PlaylistEntry) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = generateUUID()
	}
	return nil
}
