package repository

import (
	"context"

	"github.com/zfogg/cadence/internal/models"
	"gorm.io/gorm"
)

// HistoryRepository stores what each listener has viewed
type HistoryRepository interface {
	RecordView(ctx context.Context, userID, songID string) error
	// RecentViews returns up to limit of the user's latest viewed song ids, oldest first
	RecentViews(ctx context.Context, userID string, limit int) ([]string, error)
	// ViewedSongIDs returns each viewed song once, most recently viewed first
	ViewedSongIDs(ctx context.Context, userID string) ([]string, error)
}

type historyRepository struct {
	db *gorm.DB
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *gorm.DB) HistoryRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) RecordView(ctx context.Context, userID, songID string) error {
	if userID == "" || songID == "" {
		return ErrInvalidInput
	}
	return r.db.WithContext(ctx).Create(&models.SongView{UserID: userID, SongID: songID}).Error
}

func (r *historyRepository) RecentViews(ctx context.Context, userID string, limit int) ([]string, error) {
	if limit <= 0 {
		return []string{}, nil
	}

	var ids []string
	err := r.db.WithContext(ctx).
		Model(&models.SongView{}).
		Where("user_id = ?", userID).
		Order("id DESC").
		Limit(limit).
		Pluck("song_id", &ids).Error
	if err != nil {
		return nil, err
	}

	// newest first from the query; callers expect chronological order
	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

func (r *historyRepository) ViewedSongIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&models.SongView{}).
		Where("user_id = ?", userID).
		Order("id DESC").
		Pluck("song_id", &ids).Error
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(ids))
	distinct := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		distinct = append(distinct, id)
	}
	return distinct, nil
}
