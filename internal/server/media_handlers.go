package server

import (
	"gratitude/internal/models"
	"gratitude/internal/service"

	"github.com/gofiber/fiber/v2"
)

// PresignUpload handles POST /api/uploads/presign
func (s *Server) PresignUpload(c *fiber.Ctx) error {
	userID, err := mustUserID(c)
	if err != nil {
		return nil
	}
	var in service.PresignInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	upload, err := s.uploadService.Presign(c.UserContext(), userID, in)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(upload)
}

// UploadMedia handles POST /api/uploads, a multipart form with a "file"
// part. The file is stored through the API and served from /api/media.
func (s *Server) UploadMedia(c *fiber.Ctx) error {
	userID, err := mustUserID(c)
	if err != nil {
		return nil
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return s.respondError(c, models.NewFieldError("file", "File is required"))
	}
	f, err := fh.Open()
	if err != nil {
		return s.respondError(c, models.NewInternalError(err))
	}
	defer func() { _ = f.Close() }()

	media, err := s.uploadService.Upload(c.UserContext(), userID, service.UploadInput{
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Size:        fh.Size,
		Body:        f,
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(media)
}

// GetMedia handles GET /api/media/*, streaming a stored object. Keys are
// unique per upload, so responses are cached for a year.
func (s *Server) GetMedia(c *fiber.Ctx) error {
	obj, err := s.uploadService.OpenMedia(c.UserContext(), c.Params("*"))
	if err != nil {
		return s.respondError(c, err)
	}
	if obj.ContentType != "" {
		c.Set(fiber.HeaderContentType, obj.ContentType)
	}
	c.Set(fiber.HeaderCacheControl, "public, max-age=31536000, immutable")

	size := -1
	if obj.ContentLength > 0 {
		size = int(obj.ContentLength)
	}
	return c.SendStream(obj.Body, size)
}
