package repository

import "errors"

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrUserNotFound      = errors.New("user not found")
	ErrUsernameTaken     = errors.New("username already exists")
	ErrEmailTaken        = errors.New("email already exists")
	ErrSongNotFound      = errors.New("song not found")
	ErrAlreadyInPlaylist = errors.New("song already in playlist")
	ErrNotInPlaylist     = errors.New("song is not in playlist")
)
