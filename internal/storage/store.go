package storage

import (
	"context"
	"errors"
	"io"
)

// ErrObjectNotFound is returned when a key does not exist in the bucket
var ErrObjectNotFound = errors.New("storage object not found")

// Object is an open audio object. Callers must close Body.
type Object struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}

// AudioStore reads and writes song audio.
// This interface allows for easy mocking in tests.
type AudioStore interface {
	Open(ctx context.Context, key string) (*Object, error)
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (url string, err error)
	Delete(ctx context.Context, key string) error
	CheckBucketAccess(ctx context.Context) error
}

// Ensure S3Store implements AudioStore
var _ AudioStore = (*S3Store)(nil)
