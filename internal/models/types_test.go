package models

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestStringArrayScan(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected StringArray
	}{
		{"nil", nil, nil},
		{"empty", "{}", StringArray{}},
		{"simple", "{pop,rock}", StringArray{"pop", "rock"}},
		{"quoted with space", `{"hip hop",pop}`, StringArray{"hip hop", "pop"}},
		{"escaped quote", `{"say \"hi\""}`, StringArray{`say "hi"`}},
		{"bytes", []byte("{jazz}"), StringArray{"jazz"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var a StringArray
			require.NoError(t, a.Scan(tc.input))
			assert.Equal(t, tc.expected, a)
		})
	}
}

func TestStringArrayValueQuotesSpecialElements(t *testing.T) {
	v, err := StringArray{"hip hop", "pop", "a,b", `say "hi"`}.Value()
	require.NoError(t, err)
	assert.Equal(t, `{"hip hop","pop","a,b","say \"hi\""}`, v)

	var back StringArray
	require.NoError(t, back.Scan(v))
	assert.Equal(t, StringArray{"hip hop", "pop", "a,b", `say "hi"`}, back)

	v, err = StringArray{}.Value()
	require.NoError(t, err)
	assert.Equal(t, "{}", v)

	v, err = StringArray(nil).Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestStringArrayScanRejectsNullElements(t *testing.T) {
	var a StringArray
	assert.Error(t, a.Scan("{pop,NULL}"))

	require.NoError(t, a.Scan(`{pop,"NULL"}`))
	assert.Equal(t, StringArray{"pop", "NULL"}, a)
}

func TestSongMigratesAndRoundTripsGenre(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&User{}, &Song{}, &SongView{}, &SongLike{}, &PlaylistEntry{}))

	song := &Song{UploadedBy: "u1", Title: "Night Drive", Artist: "Neon", Genre: StringArray{"synth wave", "pop"}, AudioURL: "https://b.s3.amazonaws.com/x.mp3"}
	require.NoError(t, db.Create(song).Error)
	assert.NotEmpty(t, song.ID)

	var loaded Song
	require.NoError(t, db.First(&loaded, "id = ?", song.ID).Error)
	assert.Equal(t, StringArray{"synth wave", "pop"}, loaded.Genre)

	empty := &Song{UploadedBy: "u1", Title: "Quiet", Artist: "Nobody", AudioURL: "https://b.s3.amazonaws.com/y.mp3"}
	require.NoError(t, db.Create(empty).Error)
	require.NoError(t, db.First(&loaded, "id = ?", empty.ID).Error)
	assert.Empty(t, loaded.Genre)
}

func TestSongObjectKey(t *testing.T) {
	s := Song{AudioURL: "https://cadence-songs.s3.amazonaws.com/songs/abc123.mp3"}
	assert.Equal(t, "abc123.mp3", s.ObjectKey())
	assert.Equal(t, "", (&Song{}).ObjectKey())
}

func TestSongToCatalogItemCopiesGenre(t *testing.T) {
	s := Song{ID: "1", Title: "Blue Moon", Artist: "Abba", Genre: StringArray{"pop"}, LikeCount: 4}
	item := s.ToCatalogItem()
	s.Genre[0] = "rock"

	assert.Equal(t, "1", item.ID)
	assert.Equal(t, []string{"pop"}, item.Genre)
	assert.Equal(t, 4, item.LikeCount)
}
