// Package storage keeps thanks media in an S3-compatible bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"gratitude/internal/models"
)

var (
	// ErrNotConfigured is returned when no bucket is configured.
	ErrNotConfigured = errors.New("upload storage is not configured")
	// ErrObjectNotFound is returned by Get for a missing or empty object.
	ErrObjectNotFound = errors.New("media object not found")
)

// MediaPathPrefix is where the API serves stored objects.
const MediaPathPrefix = "/api/media/"

// PresignExpiry is how long an upload URL stays valid.
const PresignExpiry = 5 * time.Minute

// Size limits in bytes.
const (
	MaxImageSize int64 = 5 * 1024 * 1024
	MaxVideoSize int64 = 50 * 1024 * 1024
)

var extensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"video/mp4":  "mp4",
}

// Store reads and writes media objects. PresignPut lets a client upload
// directly to the bucket; Put uploads through the API.
type Store interface {
	PresignPut(ctx context.Context, obj PutObject) (string, error)
	Put(ctx context.Context, obj PutObject, body io.ReadSeeker) error
	Get(ctx context.Context, key string) (*Object, error)
	PublicURL(key string) string
}

// Object is a stored file. The caller closes Body.
type Object struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}

// PutObject describes the object a presigned URL will accept.
type PutObject struct {
	Key         string
	ContentType string
	Size        int64
	Metadata    map[string]string
	Expires     time.Duration
}

// Classify maps an upload content type to its media kind and file
// extension, enforcing the per-kind size limit.
func Classify(contentType string, size int64) (models.MediaType, string, error) {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	ext, ok := extensions[contentType]
	if !ok {
		return models.MediaNone, "", fmt.Errorf("unsupported content type %q", contentType)
	}
	if size <= 0 {
		return models.MediaNone, "", fmt.Errorf("file size must be positive")
	}

	kind, limit := models.MediaImage, MaxImageSize
	if strings.HasPrefix(contentType, "video/") {
		kind, limit = models.MediaVideo, MaxVideoSize
	}
	if size > limit {
		return models.MediaNone, "", fmt.Errorf("file too large: max %dMB for %s", limit/1024/1024, kind)
	}
	return kind, ext, nil
}

// mediaPrefixes are the key prefixes ObjectKey produces.
var mediaPrefixes = []string{"images/", "videos/"}

// ValidKey reports whether key looks like an ObjectKey result: a known
// prefix and no empty or relative path segments.
func ValidKey(key string) bool {
	known := false
	for _, p := range mediaPrefixes {
		if strings.HasPrefix(key, p) {
			known = true
			break
		}
	}
	if !known {
		return false
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return false
		}
	}
	return true
}

// MediaPath is the API path serving key.
func MediaPath(key string) string {
	return MediaPathPrefix + key
}

// ObjectKey builds "{kind}s/{userID}/{unixMillis}-{suffix}.{ext}".
func ObjectKey(userID uint, kind models.MediaType, ext string, now time.Time, suffix string) string {
	return fmt.Sprintf("%ss/%d/%d-%s.%s", kind, userID, now.UnixMilli(), suffix, ext)
}
