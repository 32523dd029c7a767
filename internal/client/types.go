package client

import "time"

// Song is a catalog entry as returned by listing endpoints
type Song struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Artist     string    `json:"artist"`
	Album      string    `json:"album"`
	Year       int       `json:"year"`
	Genre      []string  `json:"genre"`
	Likes      int       `json:"likes"`
	UploadedBy string    `json:"upload_by"`
	UploadedAt time.Time `json:"upload_date"`
}

// SongList is the body of the playlist, history, liked and channel endpoints
type SongList struct {
	Songs []Song `json:"songs"`
	Count int    `json:"count"`
}

// RankedSong is one search or recommendation hit
type RankedSong struct {
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	Artist string   `json:"artist"`
	Genre  []string `json:"genre"`
	Likes  int      `json:"likes"`
}

// Ranking is the body of GET /songs
type Ranking struct {
	Songs     []RankedSong `json:"songs"`
	Scores    []int        `json:"scores"`
	ColdStart bool         `json:"cold_start"`
}

// User is the public part of an account
type User struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	Message   string    `json:"message"`
	Token     string    `json:"token"`
	User      User      `json:"user"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}
