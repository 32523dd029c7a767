package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/zfogg/cadence/internal/telemetry"
)

// S3Store reads song audio from an S3 bucket
type S3Store struct {
	client *s3.Client
	bucket string
	region string
}

// NewS3Store creates a store using the default AWS credential chain
func NewS3Store(ctx context.Context, region, bucket string) (*S3Store, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewS3StoreFromClient(s3.NewFromConfig(cfg), region, bucket), nil
}

// NewS3StoreFromClient wraps an existing client
func NewS3StoreFromClient(client *s3.Client, region, bucket string) *S3Store {
	return &S3Store{client: client, bucket: bucket, region: region}
}

// Open starts streaming the object stored under key
func (s *S3Store) Open(ctx context.Context, key string) (*Object, error) {
	ctx, span := telemetry.TraceStorage(ctx, "get_object", s.bucket, key)
	defer span.End()

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("%s: %w", key, ErrObjectNotFound)
		}
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to get object from S3: %w", err)
	}

	return &Object{
		Body:          out.Body,
		ContentType:   resolveContentType(aws.ToString(out.ContentType), key),
		ContentLength: aws.ToInt64(out.ContentLength),
	}, nil
}

// Put uploads an audio object and returns its public URL
func (s *S3Store) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	ctx, span := telemetry.TraceStorage(ctx, "put_object", s.bucket, key)
	defer span.End()

	if contentType == "" {
		contentType = getContentType(path.Ext(key))
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
		// audio objects never change once written
		CacheControl: aws.String("max-age=86400"),
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return s.ObjectURL(key), nil
}

// Delete removes an object from the bucket
func (s *S3Store) Delete(ctx context.Context, key string) error {
	ctx, span := telemetry.TraceStorage(ctx, "delete_object", s.bucket, key)
	defer span.End()

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}

// ObjectURL returns the virtual-hosted URL of key in this bucket
func (s *S3Store) ObjectURL(key string) string {
	return ObjectURL(s.bucket, s.region, key)
}

// ObjectURL builds a virtual-hosted S3 URL
func ObjectURL(bucket, region, key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, region, strings.TrimPrefix(key, "/"))
}

// CheckBucketAccess verifies that we can access the S3 bucket
func (s *S3Store) CheckBucketAccess(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return fmt.Errorf("cannot access S3 bucket %s: %w", s.bucket, err)
	}

	return nil
}

// resolveContentType keeps an audio/* type reported by S3 and otherwise
// derives one from the key's extension
func resolveContentType(stored, key string) string {
	if strings.HasPrefix(stored, "audio/") {
		return stored
	}
	if byExt := getContentType(path.Ext(key)); byExt != "application/octet-stream" || stored == "" {
		return byExt
	}
	return stored
}

// getContentType returns the appropriate MIME type for audio file extensions
func getContentType(extension string) string {
	switch strings.ToLower(extension) {
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	case ".ogg":
		return "audio/ogg"
	case ".m4a":
		return "audio/mp4"
	case ".flac":
		return "audio/flac"
	default:
		return "application/octet-stream"
	}
}
