package handlers

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the API under api. requireAuth guards every route but register and login;
// limit, when non-nil, runs after authentication so listeners are limited by user id.
func (h *Handlers) RegisterRoutes(api *gin.RouterGroup, requireAuth gin.HandlerFunc, limit gin.HandlerFunc) {
	authGroup := api.Group("/auth")
	if limit != nil {
		authGroup.Use(limit)
	}
	authGroup.POST("/register", h.Register)
	authGroup.POST("/login", h.Login)

	protected := api.Group("")
	protected.Use(requireAuth)
	if limit != nil {
		protected.Use(limit)
	}

	songs := protected.Group("/songs")
	songs.GET("", h.GetSongs)
	songs.POST("", h.UploadSong)
	songs.GET("/:id", h.GetSong)
	songs.DELETE("/:id", h.DeleteSong)
	songs.POST("/:id/like", h.ToggleLike)

	playlist := protected.Group("/playlist")
	playlist.GET("", h.GetPlaylist)
	playlist.POST("/:id", h.AddToPlaylist)
	playlist.DELETE("/:id", h.RemoveFromPlaylist)

	protected.GET("/channel", h.GetChannel)
	protected.GET("/liked", h.GetLikedSongs)
	protected.GET("/history", h.GetHistory)
}
