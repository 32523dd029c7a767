// Package cleanup purges deleted songs in the background.
//
// Deleting a song through the API only soft-deletes the row and makes a
// best-effort attempt to remove its audio. The cleanup service later removes
// the audio object again, drops the song's view history and hard-deletes the row.
package cleanup

import (
	"context"
	"time"

	"github.com/zfogg/cadence/internal/logger"
	"github.com/zfogg/cadence/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FileDeleter removes audio objects from storage
type FileDeleter interface {
	Delete(ctx context.Context, key string) error
}

// Service handles periodic purging of soft-deleted songs
type Service struct {
	db          *gorm.DB
	fileDeleter FileDeleter
	interval    time.Duration
	grace       time.Duration
	batchSize   int

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// Stats summarizes one purge pass
type Stats struct {
	Songs  int
	Files  int
	Views  int64
	Errors int
}

// NewService creates a cleanup service. Songs are purged once they have been
// deleted for longer than grace.
func NewService(db *gorm.DB, fileDeleter FileDeleter, interval, grace time.Duration) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		db:          db,
		fileDeleter: fileDeleter,
		interval:    interval,
		grace:       grace,
		batchSize:   500,
		ctx:         ctx,
		cancel:      cancel,
		done:        make(chan struct{}),
	}
}

// Start begins the periodic cleanup process
func (s *Service) Start() {
	logger.Log.Info("Starting song cleanup service",
		zap.Duration("interval", s.interval),
		zap.Duration("grace", s.grace),
	)
	go s.run()
}

// Stop stops the cleanup service and waits for a running pass to finish
func (s *Service) Stop() {
	logger.Log.Info("Stopping song cleanup service")
	s.cancel()
	<-s.done
}

func (s *Service) run() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.Purge(s.ctx); err != nil && s.ctx.Err() == nil {
				logger.Log.Error("Song cleanup failed", zap.Error(err))
			}
		case <-s.ctx.Done():
			return
		}
	}
}

// Purge hard-deletes songs soft-deleted before now-grace, with their audio and views
func (s *Service) Purge(ctx context.Context) (Stats, error) {
	start := time.Now()
	var stats Stats

	var songs []models.Song
	err := s.db.WithContext(ctx).Unscoped().
		Where("deleted_at IS NOT NULL AND deleted_at < ?", time.Now().UTC().Add(-s.grace)).
		Limit(s.batchSize).
		Find(&songs).Error
	if err != nil {
		return stats, err
	}
	if len(songs) == 0 {
		return stats, nil
	}

	for i := range songs {
		song := &songs[i]

		if key := song.ObjectKey(); key != "" && s.fileDeleter != nil {
			if err := s.fileDeleter.Delete(ctx, key); err != nil {
				// keep the row so the next pass retries the object
				logger.Log.Warn("Failed to delete audio of purged song",
					logger.WithSongID(song.ID), zap.String("key", key), zap.Error(err))
				stats.Errors++
				continue
			}
			stats.Files++
		}

		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			res := tx.Where("song_id = ?", song.ID).Delete(&models.SongView{})
			if res.Error != nil {
				return res.Error
			}
			stats.Views += res.RowsAffected
			return tx.Unscoped().Delete(song).Error
		})
		if err != nil {
			logger.Log.Error("Failed to purge song", logger.WithSongID(song.ID), zap.Error(err))
			stats.Errors++
			continue
		}
		stats.Songs++
	}

	logger.Log.Info("Song cleanup completed",
		zap.Int("songs", stats.Songs),
		zap.Int("files", stats.Files),
		zap.Int64("views", stats.Views),
		zap.Int("errors", stats.Errors),
		zap.Duration("took", time.Since(start)),
	)
	return stats, nil
}
