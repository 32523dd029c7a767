package cleanup

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zfogg/cadence/internal/database"
	"github.com/zfogg/cadence/internal/models"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type fakeDeleter struct {
	mu      sync.Mutex
	deleted []string
	failKey string
}

func (f *fakeDeleter) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if key == f.failKey {
		return errors.New("access denied")
	}
	f.deleted = append(f.deleted, key)
	return nil
}

func setupTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.Open("sqlite", dsn, gormlogger.Silent)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func createSong(t *testing.T, db *gorm.DB, id string, deletedAgo time.Duration) {
	song := &models.Song{
		ID:         id,
		UploadedBy: "u1",
		Title:      "Song " + id,
		Artist:     "Artist",
		AudioURL:   "https://cadence.s3.us-east-1.amazonaws.com/" + id + ".mp3",
	}
	require.NoError(t, db.Create(song).Error)
	require.NoError(t, db.Create(&models.SongView{UserID: "u1", SongID: id}).Error)
	if deletedAgo > 0 {
		require.NoError(t, db.Model(&models.Song{}).Where("id = ?", id).
			Update("deleted_at", time.Now().UTC().Add(-deletedAgo)).Error)
	}
}

func TestPurge(t *testing.T) {
	db := setupTestDB(t)
	createSong(t, db, "live", 0)
	createSong(t, db, "recent", time.Minute)
	createSong(t, db, "old", 48*time.Hour)
	createSong(t, db, "stuck", 48*time.Hour)

	deleter := &fakeDeleter{failKey: "stuck.mp3"}
	svc := NewService(db, deleter, time.Hour, 24*time.Hour)

	stats, err := svc.Purge(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Songs)
	assert.Equal(t, 1, stats.Files)
	assert.EqualValues(t, 1, stats.Views)
	assert.Equal(t, 1, stats.Errors)
	assert.Equal(t, []string{"old.mp3"}, deleter.deleted)

	var ids []string
	require.NoError(t, db.Unscoped().Model(&models.Song{}).Order("id").Pluck("id", &ids).Error)
	assert.Equal(t, []string{"live", "recent", "stuck"}, ids)

	var views int64
	require.NoError(t, db.Model(&models.SongView{}).Where("song_id = ?", "old").Count(&views).Error)
	assert.Zero(t, views)
}

func TestPurgeNothingToDo(t *testing.T) {
	db := setupTestDB(t)
	createSong(t, db, "live", 0)

	stats, err := NewService(db, &fakeDeleter{}, time.Hour, time.Hour).Purge(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stats{}, stats)
}

func TestStartStop(t *testing.T) {
	svc := NewService(setupTestDB(t), &fakeDeleter{}, time.Hour, time.Hour)
	svc.Start()
	svc.Stop()
}
