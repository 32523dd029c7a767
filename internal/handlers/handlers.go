package handlers

import (
	"context"

	"github.com/zfogg/cadence/internal/auth"
	"github.com/zfogg/cadence/internal/ranking"
	"github.com/zfogg/cadence/internal/repository"
	"github.com/zfogg/cadence/internal/storage"
)

// Ranker answers search and recommendation requests.
// discovery.Service implements it.
type Ranker interface {
	Search(ctx context.Context, query string) (*ranking.Result, error)
	Recommend(ctx context.Context, userID string) (*ranking.Result, error)
}

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	ranker    Ranker
	auth      auth.AuthServiceInterface
	songs     repository.SongRepository
	history   repository.HistoryRepository
	playlists repository.PlaylistRepository
	audio     storage.AudioStore
}

// Deps groups the collaborators of Handlers
type Deps struct {
	Ranker    Ranker
	Auth      auth.AuthServiceInterface
	Songs     repository.SongRepository
	History   repository.HistoryRepository
	Playlists repository.PlaylistRepository
	Audio     storage.AudioStore
}

// NewHandlers creates a new handlers instance
func NewHandlers(deps Deps) *Handlers {
	return &Handlers{
		ranker:    deps.Ranker,
		auth:      deps.Auth,
		songs:     deps.Songs,
		history:   deps.History,
		playlists: deps.Playlists,
		audio:     deps.Audio,
	}
}
