package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/zfogg/cadence/internal/models"
	"github.com/zfogg/cadence/internal/ranking"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SongRepository handles catalog reads and like bookkeeping
type SongRepository interface {
	// Snapshot returns a detached copy of the catalog in stable scan order
	Snapshot(ctx context.Context) (*ranking.Snapshot, error)
	GetSong(ctx context.Context, songID string) (*models.Song, error)
	// FindByIDs fetches songs with one query, returned in the order of ids; unknown ids are skipped
	FindByIDs(ctx context.Context, ids []string) ([]models.Song, error)
	CreateSong(ctx context.Context, song *models.Song) error
	DeleteSong(ctx context.Context, songID string) error
	// ListByUploader returns a channel's uploads, newest first
	ListByUploader(ctx context.Context, userID string) ([]models.Song, error)
	// LikedSongIDs returns the ids the user has liked, most recent first
	LikedSongIDs(ctx context.Context, userID string) ([]string, error)
	// ToggleLike likes the song if the user has not liked it yet, otherwise unlikes it
	ToggleLike(ctx context.Context, userID, songID string) (liked bool, err error)
}

type songRepository struct {
	db *gorm.DB
}

// NewSongRepository creates a new song repository
func NewSongRepository(db *gorm.DB) SongRepository {
	return &songRepository{db: db}
}

func (r *songRepository) Snapshot(ctx context.Context) (*ranking.Snapshot, error) {
	var songs []models.Song
	err := r.db.WithContext(ctx).
		Select("id", "title", "artist", "genre", "like_count").
		Order("created_at ASC").
		Order("id ASC").
		Find(&songs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	items := make([]ranking.CatalogItem, len(songs))
	for i := range songs {
		items[i] = songs[i].ToCatalogItem()
	}
	return &ranking.Snapshot{Items: items}, nil
}

func (r *songRepository) GetSong(ctx context.Context, songID string) (*models.Song, error) {
	var song models.Song
	err := r.db.WithContext(ctx).Where("id = ?", songID).First(&song).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSongNotFound
	}
	if err != nil {
		return nil, err
	}

	return &song, nil
}

func (r *songRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Song, error) {
	if len(ids) == 0 {
		return []models.Song{}, nil
	}

	var songs []models.Song
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&songs).Error; err != nil {
		return nil, err
	}

	byID := make(map[string]models.Song, len(songs))
	for _, s := range songs {
		byID[s.ID] = s
	}

	ordered := make([]models.Song, 0, len(ids))
	for _, id := range ids {
		if s, ok := byID[id]; ok {
			ordered = append(ordered, s)
		}
	}
	return ordered, nil
}

func (r *songRepository) CreateSong(ctx context.Context, song *models.Song) error {
	if song == nil || song.Title == "" {
		return ErrInvalidInput
	}
	return r.db.WithContext(ctx).Create(song).Error
}

func (r *songRepository) DeleteSong(ctx context.Context, songID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", songID).Delete(&models.Song{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrSongNotFound
		}
		if err := tx.Where("song_id = ?", songID).Delete(&models.SongLike{}).Error; err != nil {
			return err
		}
		return tx.Where("song_id = ?", songID).Delete(&models.PlaylistEntry{}).Error
	})
}

func (r *songRepository) ListByUploader(ctx context.Context, userID string) ([]models.Song, error) {
	songs := []models.Song{}
	err := r.db.WithContext(ctx).
		Where("uploaded_by = ?", userID).
		Order("created_at DESC").
		Find(&songs).Error
	return songs, err
}

func (r *songRepository) LikedSongIDs(ctx context.Context, userID string) ([]string, error) {
	ids := []string{}
	err := r.db.WithContext(ctx).
		Model(&models.SongLike{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Pluck("song_id", &ids).Error
	return ids, err
}

func (r *songRepository) ToggleLike(ctx context.Context, userID, songID string) (bool, error) {
	liked := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var song models.Song
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Where("id = ?", songID).
			First(&song).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSongNotFound
		}
		if err != nil {
			return err
		}

		res := tx.Where("user_id = ? AND song_id = ?", userID, songID).Delete(&models.SongLike{})
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected > 0 {
			return tx.Model(&models.Song{}).
				Where("id = ? AND like_count > 0", songID).
				UpdateColumn("like_count", gorm.Expr("like_count - 1")).Error
		}

		if err := tx.Create(&models.SongLike{UserID: userID, SongID: songID}).Error; err != nil {
			return err
		}
		liked = true
		return tx.Model(&models.Song{}).
			Where("id = ?", songID).
			UpdateColumn("like_count", gorm.Expr("like_count + 1")).Error
	})
	return liked, err
}
