package seed

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zfogg/cadence/internal/database"
	"github.com/zfogg/cadence/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

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

func smallOptions() Options {
	opts := DefaultOptions()
	opts.Users = 5
	opts.Songs = 60
	opts.Views = 40
	opts.Likes = 30
	return opts
}

func TestSeedDev(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	res, err := NewSeeder(db, 42).SeedDev(ctx, smallOptions())
	require.NoError(t, err)
	require.Len(t, res.Users, 5)
	require.Len(t, res.Songs, 60)

	var count int64
	require.NoError(t, db.Model(&models.Song{}).Count(&count).Error)
	assert.EqualValues(t, 60, count)
	require.NoError(t, db.Model(&models.SongView{}).Count(&count).Error)
	assert.EqualValues(t, 40, count)

	var likes int64
	require.NoError(t, db.Model(&models.SongLike{}).Count(&likes).Error)
	assert.Positive(t, likes)

	var total int64
	require.NoError(t, db.Model(&models.Song{}).Select("COALESCE(SUM(like_count), 0)").Row().Scan(&total))
	assert.Equal(t, likes, total, "like counters match like rows")

	for _, song := range res.Songs {
		assert.NotEmpty(t, song.Genre)
		assert.Equal(t, song.ID+".mp3", song.ObjectKey())
	}

	user := res.Users[0]
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(DevPassword)))
}

func TestSeedDevDeterministic(t *testing.T) {
	ctx := context.Background()

	a, err := NewSeeder(setupTestDB(t), 7).SeedDev(ctx, smallOptions())
	require.NoError(t, err)
	b, err := NewSeeder(setupTestDB(t), 7).SeedDev(ctx, smallOptions())
	require.NoError(t, err)

	for i := range a.Songs {
		assert.Equal(t, a.Songs[i].Title, b.Songs[i].Title)
		assert.Equal(t, a.Songs[i].Artist, b.Songs[i].Artist)
	}
}

func TestClean(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seeder := NewSeeder(db, 1)

	_, err := seeder.SeedDev(ctx, smallOptions())
	require.NoError(t, err)
	require.NoError(t, seeder.Clean(ctx))

	for _, model := range []any{&models.User{}, &models.Song{}, &models.SongView{}, &models.SongLike{}} {
		var count int64
		require.NoError(t, db.Model(model).Unscoped().Count(&count).Error)
		assert.Zero(t, count)
	}
}
