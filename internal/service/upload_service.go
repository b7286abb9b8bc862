package service

import (
	"context"
	"errors"
	"io"
	"strconv"
	"time"

	"gratitude/internal/models"
	"gratitude/internal/storage"

	"github.com/google/uuid"
)

// PresignInput is the body of POST /api/uploads/presign.
type PresignInput struct {
	ContentType string `json:"contentType" validate:"required"`
	FileSize    int64  `json:"fileSize" validate:"gt=0"`
}

// PresignedUpload tells the client where to PUT the file and where it will
// be served from.
type PresignedUpload struct {
	URL       string           `json:"url"`
	Key       string           `json:"key"`
	PublicURL string           `json:"publicUrl"`
	MediaType models.MediaType `json:"mediaType"`
	ExpiresAt time.Time        `json:"expiresAt"`
}

// UploadInput is a file received through POST /api/uploads.
type UploadInput struct {
	ContentType string
	Size        int64
	Body        io.ReadSeeker
}

// UploadedMedia is the stored object. PublicURL points at the media route.
type UploadedMedia struct {
	Key       string           `json:"key"`
	PublicURL string           `json:"publicUrl"`
	MediaType models.MediaType `json:"mediaType"`
}

// UploadService issues presigned upload URLs, stores uploaded files and
// reads them back for the media route.
type UploadService struct {
	store  storage.Store
	now    func() time.Time
	suffix func() string
}

// NewUploadService returns an UploadService. A nil store makes every
// request fail with an internal error once its input is valid.
func NewUploadService(store storage.Store) *UploadService {
	return &UploadService{
		store:  store,
		now:    time.Now,
		suffix: func() string { return uuid.NewString()[:8] },
	}
}

// object classifies an upload and names it.
func (s *UploadService) object(userID uint, contentType string, size int64) (storage.PutObject, models.MediaType, error) {
	kind, ext, err := storage.Classify(contentType, size)
	if err != nil {
		return storage.PutObject{}, models.MediaNone, models.NewValidationError(err.Error())
	}
	if s.store == nil {
		return storage.PutObject{}, models.MediaNone, models.NewInternalError(storage.ErrNotConfigured)
	}
	now := s.now()
	return storage.PutObject{
		Key:         storage.ObjectKey(userID, kind, ext, now, s.suffix()),
		ContentType: contentType,
		Size:        size,
		Metadata: map[string]string{
			"user-id":     strconv.FormatUint(uint64(userID), 10),
			"uploaded-at": now.UTC().Format(time.RFC3339),
		},
		Expires: storage.PresignExpiry,
	}, kind, nil
}

func (s *UploadService) Presign(ctx context.Context, userID uint, in PresignInput) (*PresignedUpload, error) {
	obj, kind, err := s.object(userID, in.ContentType, in.FileSize)
	if err != nil {
		return nil, err
	}
	url, err := s.store.PresignPut(ctx, obj)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &PresignedUpload{
		URL:       url,
		Key:       obj.Key,
		PublicURL: s.store.PublicURL(obj.Key),
		MediaType: kind,
		ExpiresAt: s.now().Add(storage.PresignExpiry).UTC(),
	}, nil
}

// Upload stores a file sent through the API, applying the same type and
// size rules as Presign.
func (s *UploadService) Upload(ctx context.Context, userID uint, in UploadInput) (*UploadedMedia, error) {
	obj, kind, err := s.object(userID, in.ContentType, in.Size)
	if err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, obj, in.Body); err != nil {
		return nil, models.NewInternalError(err)
	}
	return &UploadedMedia{
		Key:       obj.Key,
		PublicURL: storage.MediaPath(obj.Key),
		MediaType: kind,
	}, nil
}

// OpenMedia returns a stored object for the media route. Keys outside the
// media prefixes are not found.
func (s *UploadService) OpenMedia(ctx context.Context, key string) (*storage.Object, error) {
	if !storage.ValidKey(key) {
		return nil, models.NewNotFoundMessage("Media not found")
	}
	if s.store == nil {
		return nil, models.NewInternalError(storage.ErrNotConfigured)
	}
	obj, err := s.store.Get(ctx, key)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, models.NewNotFoundMessage("Media not found")
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return obj, nil
}
