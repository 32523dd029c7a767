package handlers

import (
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/zfogg/cadence/internal/errors"
	"github.com/zfogg/cadence/internal/logger"
	"github.com/zfogg/cadence/internal/models"
	"github.com/zfogg/cadence/internal/util"
	"go.uber.org/zap"
)

// maxUploadSize caps audio uploads
const maxUploadSize = 50 << 20

var allowedAudioExtensions = map[string]string{
	".mp3": "audio/mpeg",
	".m4a": "audio/mp4",
}

// GetChannel lists the songs the listener uploaded, newest first
// GET /api/v1/channel
func (h *Handlers) GetChannel(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	songs, err := h.songs.ListByUploader(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "load channel")
		return
	}
	c.JSON(http.StatusOK, songsResponse(songs))
}

// GetLikedSongs lists the songs the listener liked, most recent first
// GET /api/v1/liked
func (h *Handlers) GetLikedSongs(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	ids, err := h.songs.LikedSongIDs(ctx, userID)
	if err != nil {
		respondError(c, err, "load liked songs")
		return
	}
	songs, err := h.songs.FindByIDs(ctx, ids)
	if err != nil {
		respondError(c, err, "load liked songs")
		return
	}
	c.JSON(http.StatusOK, songsResponse(songs))
}

// GetHistory lists viewed songs, most recently viewed first
// GET /api/v1/history
func (h *Handlers) GetHistory(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	ids, err := h.history.ViewedSongIDs(ctx, userID)
	if err != nil {
		respondError(c, err, "load history")
		return
	}
	songs, err := h.songs.FindByIDs(ctx, ids)
	if err != nil {
		respondError(c, err, "load history")
		return
	}
	c.JSON(http.StatusOK, songsResponse(songs))
}

// UploadSong stores an mp3/m4a file and adds it to the catalog
// POST /api/v1/songs (multipart: file, title, artist, album, genre, year, duration)
func (h *Handlers) UploadSong(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)
	header, err := c.FormFile("file")
	if err != nil {
		util.RespondBadRequest(c, "no file")
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	contentType, allowed := allowedAudioExtensions[ext]
	if !allowed {
		util.RespondBadRequest(c, "invalid file type")
		return
	}

	title := strings.TrimSpace(c.PostForm("title"))
	artist := strings.TrimSpace(c.PostForm("artist"))
	if title == "" || artist == "" {
		util.RespondBadRequest(c, "title and artist are required")
		return
	}

	file, err := header.Open()
	if err != nil {
		util.RespondBadRequest(c, "unreadable file")
		return
	}
	defer file.Close()

	ctx := c.Request.Context()
	key := uuid.New().String() + ext
	url, err := h.audio.Put(ctx, key, file, header.Size, contentType)
	if err != nil {
		respondError(c, err, "upload file")
		return
	}

	song := &models.Song{
		UploadedBy: userID,
		Title:      title,
		Artist:     artist,
		Album:      strings.TrimSpace(c.PostForm("album")),
		Genre:      parseGenres(c.PostForm("genre")),
		AudioURL:   url,
	}
	song.Year, _ = strconv.Atoi(c.PostForm("year"))
	song.Duration, _ = strconv.ParseFloat(c.PostForm("duration"), 64)

	if err := h.songs.CreateSong(ctx, song); err != nil {
		if delErr := h.audio.Delete(ctx, key); delErr != nil {
			logger.Log.Error("Failed to remove orphaned upload", zap.String("key", key), zap.Error(delErr))
		}
		respondError(c, err, "save song")
		return
	}

	logger.Log.Info("Song uploaded", logger.WithSongID(song.ID), logger.WithUserID(userID))
	c.JSON(http.StatusCreated, gin.H{
		"song":      song,
		"song_path": "/api/v1/songs/" + song.ID,
	})
}

// DeleteSong removes one of the listener's uploads from the catalog
// DELETE /api/v1/songs/:id
func (h *Handlers) DeleteSong(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	songID, ok := songIDParam(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	song, err := h.songs.GetSong(ctx, songID)
	if err != nil {
		respondError(c, err, "load song")
		return
	}
	if song.UploadedBy != userID {
		util.RespondWithAPIError(c, errors.Forbidden("user is not authorized to delete this song"))
		return
	}

	// audio stays in the bucket until the cleanup service purges the row after its grace period
	if err := h.songs.DeleteSong(ctx, song.ID); err != nil {
		respondError(c, err, "delete song")
		return
	}
	logger.Log.Info("Song deleted", logger.WithSongID(song.ID), logger.WithUserID(userID))

	util.RespondMessage(c, "Song deleted")
}

// parseGenres splits a comma-separated genre field
func parseGenres(s string) models.StringArray {
	genres := models.StringArray{}
	for _, g := range strings.Split(s, ",") {
		if g = strings.TrimSpace(g); g != "" {
			genres = append(genres, g)
		}
	}
	return genres
}
