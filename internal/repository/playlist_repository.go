package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/zfogg/cadence/internal/models"
	"gorm.io/gorm"
)

// PlaylistRepository manages each listener's single playlist
type PlaylistRepository interface {
	AddSong(ctx context.Context, userID, songID string) error
	RemoveSong(ctx context.Context, userID, songID string) error
	// SongIDs returns the playlist in insertion order
	SongIDs(ctx context.Context, userID string) ([]string, error)
}

type playlistRepository struct {
	db *gorm.DB
}

// NewPlaylistRepository creates a new playlist repository
func NewPlaylistRepository(db *gorm.DB) PlaylistRepository {
	return &playlistRepository{db: db}
}

func (r *playlistRepository) AddSong(ctx context.Context, userID, songID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.PlaylistEntry
		err := tx.Where("user_id = ? AND song_id = ?", userID, songID).First(&existing).Error
		if err == nil {
			return ErrAlreadyInPlaylist
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		var maxPos sql.NullInt64
		if err := tx.Model(&models.PlaylistEntry{}).
			Where("user_id = ?", userID).
			Select("MAX(position)").
			Row().Scan(&maxPos); err != nil {
			return err
		}
		next := 0
		if maxPos.Valid {
			next = int(maxPos.Int64) + 1
		}

		return tx.Create(&models.PlaylistEntry{UserID: userID, SongID: songID, Position: next}).Error
	})
}

func (r *playlistRepository) RemoveSong(ctx context.Context, userID, songID string) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND song_id = ?", userID, songID).
		Delete(&models.PlaylistEntry{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotInPlaylist
	}
	return nil
}

func (r *playlistRepository) SongIDs(ctx context.Context, userID string) ([]string, error) {
	ids := []string{}
	err := r.db.WithContext(ctx).
		Model(&models.PlaylistEntry{}).
		Where("user_id = ?", userID).
		Order("position ASC").
		Pluck("song_id", &ids).Error
	return ids, err
}
