package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/cadence/internal/logger"
	"github.com/zfogg/cadence/internal/metrics"
	"github.com/zfogg/cadence/internal/util"
	"go.uber.org/zap"
)

// GetSongs searches the catalog when input is given, otherwise recommends for the listener
// GET /api/v1/songs?input=
func (h *Handlers) GetSongs(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	// any non-empty input searches, even all-whitespace input, which matches nothing
	if input := c.Query("input"); input != "" {
		res, err := h.ranker.Search(c.Request.Context(), input)
		if err != nil {
			respondError(c, err, "search songs")
			return
		}
		c.JSON(http.StatusOK, res)
		return
	}

	res, err := h.ranker.Recommend(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "recommend songs")
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetSong records a view and streams the song audio
// GET /api/v1/songs/:id
func (h *Handlers) GetSong(c *gin.Context) {
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

	if err := h.history.RecordView(ctx, userID, song.ID); err != nil {
		respondError(c, err, "record view")
		return
	}
	metrics.Get().SongViewsTotal.Inc()

	obj, err := h.audio.Open(ctx, song.ObjectKey())
	if err != nil {
		respondError(c, err, "open song audio")
		return
	}
	defer obj.Body.Close()

	c.Header("Content-Type", obj.ContentType)
	if obj.ContentLength > 0 {
		c.Header("Content-Length", strconv.FormatInt(obj.ContentLength, 10))
	}
	c.Status(http.StatusOK)

	n, err := io.Copy(c.Writer, obj.Body)
	metrics.Get().StreamBytesSent.Add(float64(n))
	if err != nil {
		// headers are already sent; the client sees a truncated body
		logger.Log.Warn("Song stream interrupted",
			logger.WithSongID(song.ID),
			logger.WithUserID(userID),
			zap.Int64("bytes", n),
			zap.Error(err),
		)
	}
}

// ToggleLike likes or unlikes a song
// POST /api/v1/songs/:id/like
func (h *Handlers) ToggleLike(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	songID, ok := songIDParam(c)
	if !ok {
		return
	}

	liked, err := h.songs.ToggleLike(c.Request.Context(), userID, songID)
	if err != nil {
		respondError(c, err, "toggle like")
		return
	}

	if liked {
		metrics.Get().SongLikesTotal.WithLabelValues("like").Inc()
		c.JSON(http.StatusOK, gin.H{"message": "Song liked", "liked": true})
		return
	}
	metrics.Get().SongLikesTotal.WithLabelValues("unlike").Inc()
	c.JSON(http.StatusOK, gin.H{"message": "Song unliked", "liked": false})
}
