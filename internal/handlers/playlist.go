package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/cadence/internal/util"
)

// AddToPlaylist appends a song to the listener's playlist
// POST /api/v1/playlist/:id
func (h *Handlers) AddToPlaylist(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	songID, ok := songIDParam(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if _, err := h.songs.GetSong(ctx, songID); err != nil {
		respondError(c, err, "load song")
		return
	}
	if err := h.playlists.AddSong(ctx, userID, songID); err != nil {
		respondError(c, err, "add song to playlist")
		return
	}

	util.RespondMessage(c, "Song added to playlist")
}

// RemoveFromPlaylist removes a song from the listener's playlist
// DELETE /api/v1/playlist/:id
func (h *Handlers) RemoveFromPlaylist(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	songID, ok := songIDParam(c)
	if !ok {
		return
	}

	if err := h.playlists.RemoveSong(c.Request.Context(), userID, songID); err != nil {
		respondError(c, err, "remove song from playlist")
		return
	}

	util.RespondMessage(c, "Song removed from playlist")
}

// GetPlaylist lists the playlist in the order songs were added
// GET /api/v1/playlist
func (h *Handlers) GetPlaylist(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	ids, err := h.playlists.SongIDs(ctx, userID)
	if err != nil {
		respondError(c, err, "load playlist")
		return
	}
	songs, err := h.songs.FindByIDs(ctx, ids)
	if err != nil {
		respondError(c, err, "load playlist songs")
		return
	}

	c.JSON(http.StatusOK, songsResponse(songs))
}
