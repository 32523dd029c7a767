package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/zfogg/cadence/internal/auth"
	"github.com/zfogg/cadence/internal/database"
	"github.com/zfogg/cadence/internal/discovery"
	"github.com/zfogg/cadence/internal/models"
	"github.com/zfogg/cadence/internal/ranking"
	"github.com/zfogg/cadence/internal/repository"
	"github.com/zfogg/cadence/internal/storage"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// fakeStore keeps audio objects in memory
type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	openErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (s *fakeStore) Open(_ context.Context, key string) (*storage.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.openErr != nil {
		return nil, s.openErr
	}
	data, ok := s.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return &storage.Object{
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentType:   "audio/mpeg",
		ContentLength: int64(len(data)),
	}, nil
}

func (s *fakeStore) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return storage.ObjectURL("cadence", "us-east-1", key), nil
}

func (s *fakeStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *fakeStore) CheckBucketAccess(context.Context) error { return nil }

// HandlersTestSuite runs the API against an in-memory sqlite catalog
type HandlersTestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine
	store  *fakeStore
	token  string
	userID string
	base   time.Time
}

func (s *HandlersTestSuite) SetupTest() {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.Open("sqlite", dsn, gormlogger.Silent)
	s.Require().NoError(err)
	sqlDB, err := db.DB()
	s.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)
	s.T().Cleanup(func() { _ = sqlDB.Close() })
	s.Require().NoError(database.Migrate(db))
	s.db = db

	songRepo := repository.NewSongRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	authService := auth.NewService([]byte("test-secret"), repository.NewUserRepository(db))
	s.store = newFakeStore()

	h := NewHandlers(Deps{
		Ranker:    discovery.NewService(songRepo, historyRepo, ranking.NewEngine(ranking.DefaultConfig())),
		Auth:      authService,
		Songs:     songRepo,
		History:   historyRepo,
		Playlists: repository.NewPlaylistRepository(db),
		Audio:     s.store,
	})

	gin.SetMode(gin.TestMode)
	s.router = gin.New()
	h.RegisterRoutes(s.router.Group("/api/v1"), auth.RequireAuth(authService), nil)

	resp, err := authService.Register(context.Background(), auth.RegisterRequest{
		Username: "listener", Email: "listener@example.com", Password: "password123", Password2: "password123",
	})
	s.Require().NoError(err)
	s.token = resp.Token
	s.userID = resp.User.ID
	s.base = time.Now().UTC().Add(-time.Hour)
}

func (s *HandlersTestSuite) createSong(title, artist string, likes int, genre ...string) *models.Song {
	id := uuid.NewString()
	s.base = s.base.Add(time.Second)
	song := &models.Song{
		ID:         id,
		UploadedBy: s.userID,
		Title:      title,
		Artist:     artist,
		Genre:      models.StringArray(genre),
		AudioURL:   storage.ObjectURL("cadence", "us-east-1", id+".mp3"),
		LikeCount:  likes,
		CreatedAt:  s.base,
	}
	s.Require().NoError(s.db.Create(song).Error)
	s.store.objects[id+".mp3"] = []byte("audio-" + title)
	return song
}

func (s *HandlersTestSuite) request(method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Authorization", "Bearer "+s.token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

type rankedBody struct {
	Songs     []ranking.CatalogItem `json:"songs"`
	ColdStart bool                  `json:"cold_start"`
}

func (s *HandlersTestSuite) rankedIDs(path string) ([]string, bool) {
	w := s.request(http.MethodGet, path, nil, "")
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var body rankedBody
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	ids := make([]string, len(body.Songs))
	for i, song := range body.Songs {
		ids[i] = song.ID
	}
	return ids, body.ColdStart
}

func (s *HandlersTestSuite) TestRequiresToken() {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/songs", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *HandlersTestSuite) TestSearch() {
	moon := s.createSong("Blue Moon", "Abba", 5)
	sky := s.createSong("Blue Sky", "Abby", 9)
	s.createSong("Red Sun", "Cher", 1)

	ids, coldStart := s.rankedIDs("/api/v1/songs?input=blue")
	s.False(coldStart)
	s.Equal([]string{sky.ID, moon.ID}, ids)

	ids, _ = s.rankedIDs("/api/v1/songs?input=zzzz")
	s.Empty(ids)

	ids, coldStart = s.rankedIDs("/api/v1/songs?input=%20%20")
	s.False(coldStart)
	s.Empty(ids)

	ids, coldStart = s.rankedIDs("/api/v1/songs?input=")
	s.True(coldStart)
	s.Len(ids, 3)
}

func (s *HandlersTestSuite) TestRecommendColdStartThenHistory() {
	moon := s.createSong("Blue Moon", "Abba", 5, "pop")
	sky := s.createSong("Blue Sky", "Abby", 9, "rock")
	sun := s.createSong("Red Sun", "Cher", 1, "pop")

	ids, coldStart := s.rankedIDs("/api/v1/songs")
	s.True(coldStart)
	s.Equal([]string{sky.ID, moon.ID, sun.ID}, ids)

	w := s.request(http.MethodGet, "/api/v1/songs/"+moon.ID, nil, "")
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal("audio-Blue Moon", w.Body.String())

	ids, coldStart = s.rankedIDs("/api/v1/songs")
	s.False(coldStart)
	s.Require().NotEmpty(ids)
	s.Equal(moon.ID, ids[0])
}

func (s *HandlersTestSuite) TestGetSongErrors() {
	w := s.request(http.MethodGet, "/api/v1/songs/not-a-uuid", nil, "")
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.request(http.MethodGet, "/api/v1/songs/"+uuid.NewString(), nil, "")
	s.Equal(http.StatusNotFound, w.Code)

	var views int64
	s.Require().NoError(s.db.Model(&models.SongView{}).Count(&views).Error)
	s.Zero(views)
}

func (s *HandlersTestSuite) TestGetSongStorageUnavailable() {
	song := s.createSong("Blue Moon", "Abba", 0)
	s.store.openErr = fmt.Errorf("%w: circuit breaker is open", storage.ErrStorageUnavailable)

	w := s.request(http.MethodGet, "/api/v1/songs/"+song.ID, nil, "")
	s.Equal(http.StatusServiceUnavailable, w.Code)
	s.Contains(w.Body.String(), "SERVICE_UNAVAILABLE")
	s.Contains(w.Body.String(), `"retryable":true`)
}

func (s *HandlersTestSuite) TestToggleLike() {
	song := s.createSong("Blue Moon", "Abba", 5)

	w := s.request(http.MethodPost, "/api/v1/songs/"+song.ID+"/like", nil, "")
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "Song liked")

	w = s.request(http.MethodGet, "/api/v1/liked", nil, "")
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), song.ID)

	w = s.request(http.MethodPost, "/api/v1/songs/"+song.ID+"/like", nil, "")
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "Song unliked")

	var reloaded models.Song
	s.Require().NoError(s.db.First(&reloaded, "id = ?", song.ID).Error)
	s.Equal(5, reloaded.LikeCount)
}

func (s *HandlersTestSuite) TestPlaylist() {
	first := s.createSong("One", "A", 0)
	second := s.createSong("Two", "B", 0)

	s.Equal(http.StatusOK, s.request(http.MethodPost, "/api/v1/playlist/"+second.ID, nil, "").Code)
	s.Equal(http.StatusOK, s.request(http.MethodPost, "/api/v1/playlist/"+first.ID, nil, "").Code)
	s.Equal(http.StatusConflict, s.request(http.MethodPost, "/api/v1/playlist/"+first.ID, nil, "").Code)
	s.Equal(http.StatusNotFound, s.request(http.MethodPost, "/api/v1/playlist/"+uuid.NewString(), nil, "").Code)

	w := s.request(http.MethodGet, "/api/v1/playlist", nil, "")
	s.Require().Equal(http.StatusOK, w.Code)
	var body struct {
		Songs []models.Song `json:"songs"`
		Count int           `json:"count"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	s.Require().Equal(2, body.Count)
	s.Equal(second.ID, body.Songs[0].ID)
	s.Equal(first.ID, body.Songs[1].ID)

	s.Equal(http.StatusOK, s.request(http.MethodDelete, "/api/v1/playlist/"+first.ID, nil, "").Code)
	s.Equal(http.StatusConflict, s.request(http.MethodDelete, "/api/v1/playlist/"+first.ID, nil, "").Code)
}

func (s *HandlersTestSuite) TestUploadAndDelete() {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	s.Require().NoError(mw.WriteField("title", "Night Drive"))
	s.Require().NoError(mw.WriteField("artist", "Neon Lights"))
	s.Require().NoError(mw.WriteField("genre", "synthwave, electronic"))
	s.Require().NoError(mw.WriteField("year", "2021"))
	part, err := mw.CreateFormFile("file", "drive.mp3")
	s.Require().NoError(err)
	_, _ = part.Write([]byte("mp3-bytes"))
	s.Require().NoError(mw.Close())

	w := s.request(http.MethodPost, "/api/v1/songs", &buf, mw.FormDataContentType())
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Song models.Song `json:"song"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &created))
	s.Equal([]string{"synthwave", "electronic"}, []string(created.Song.Genre))
	s.Equal(2021, created.Song.Year)
	s.Contains(s.store.objects, created.Song.ObjectKey())

	w = s.request(http.MethodGet, "/api/v1/channel", nil, "")
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), created.Song.ID)

	w = s.request(http.MethodDelete, "/api/v1/songs/"+created.Song.ID, nil, "")
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal(http.StatusNotFound, s.request(http.MethodGet, "/api/v1/songs/"+created.Song.ID, nil, "").Code)

	// the purge job removes the object later
	s.Contains(s.store.objects, created.Song.ObjectKey())
}

func (s *HandlersTestSuite) TestUploadRejectsBadFiles() {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("title", "Doc")
	_ = mw.WriteField("artist", "Someone")
	part, _ := mw.CreateFormFile("file", "notes.txt")
	_, _ = part.Write([]byte("text"))
	_ = mw.Close()

	w := s.request(http.MethodPost, "/api/v1/songs", &buf, mw.FormDataContentType())
	s.Equal(http.StatusBadRequest, w.Code)
	s.Empty(s.store.objects)
}

func (s *HandlersTestSuite) TestDeleteOthersSongForbidden() {
	song := s.createSong("Mine", "A", 0)
	s.Require().NoError(s.db.Model(song).Update("uploaded_by", "someone-else").Error)

	w := s.request(http.MethodDelete, "/api/v1/songs/"+song.ID, nil, "")
	s.Equal(http.StatusForbidden, w.Code)
}

func (s *HandlersTestSuite) TestHistory() {
	a := s.createSong("A", "X", 0)
	b := s.createSong("B", "Y", 0)
	for _, id := range []string{a.ID, b.ID, a.ID} {
		s.Require().Equal(http.StatusOK, s.request(http.MethodGet, "/api/v1/songs/"+id, nil, "").Code)
	}

	w := s.request(http.MethodGet, "/api/v1/history", nil, "")
	s.Require().Equal(http.StatusOK, w.Code)
	s.Less(strings.Index(w.Body.String(), a.ID), strings.Index(w.Body.String(), b.ID))
}

func (s *HandlersTestSuite) TestRegisterAndLogin() {
	post := func(path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		return w
	}

	w := post("/api/v1/auth/register", `{"username":"newbie","email":"newbie@example.com","password":"password123","password2":"password123"}`)
	s.Equal(http.StatusCreated, w.Code, w.Body.String())

	w = post("/api/v1/auth/register", `{"username":"newbie","email":"other@example.com","password":"password123","password2":"password123"}`)
	s.Equal(http.StatusConflict, w.Code)

	w = post("/api/v1/auth/register", `{"username":"x"}`)
	s.Equal(http.StatusBadRequest, w.Code)

	w = post("/api/v1/auth/login", `{"username":"newbie","password":"password123"}`)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "token")

	w = post("/api/v1/auth/login", `{"username":"newbie","password":"nope"}`)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func TestHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}
