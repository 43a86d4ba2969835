package catalog

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/lumina/storefront/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultMaxImageSize is used when no upload limit is configured
const DefaultMaxImageSize int64 = 5 << 20

// ImageStorage stores product images and returns their public URL
type ImageStorage interface {
	PutImage(ctx context.Context, key, contentType string, data []byte) (string, error)
}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ImageService uploads product images to object storage
type ImageService struct {
	storage ImageStorage
	maxSize int64
	logger  *zap.Logger
	now     func() time.Time
}

// NewImageService creates a new ImageService
func NewImageService(storage ImageStorage, maxSize int64, logger *zap.Logger) *ImageService {
	if maxSize <= 0 {
		maxSize = DefaultMaxImageSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImageService{storage: storage, maxSize: maxSize, logger: logger, now: time.Now}
}

// MaxSize returns the upload limit in bytes
func (s *ImageService) MaxSize() int64 {
	return s.maxSize
}

// UploadImage validates the payload by sniffing its content and stores it
// under products/<yyyy>/<mm>/<uuid><ext>
func (s *ImageService) UploadImage(ctx context.Context, data []byte) (*UploadImageResult, error) {
	if len(data) == 0 {
		return nil, shared.NewValidationError("Image file is empty")
	}
	if int64(len(data)) > s.maxSize {
		return nil, shared.NewValidationError(fmt.Sprintf("Image exceeds the %d byte limit", s.maxSize))
	}

	contentType := http.DetectContentType(data)
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, shared.NewValidationError("Unsupported image type: " + contentType)
	}

	key := fmt.Sprintf("products/%s/%s%s", s.now().UTC().Format("2006/01"), uuid.New().String(), ext)
	url, err := s.storage.PutImage(ctx, key, contentType, data)
	if err != nil {
		s.logger.Error("Failed to store product image", zap.String("key", key), zap.Error(err))
		return nil, shared.NewDomainError(shared.CodeIntegration, "Failed to store image")
	}

	s.logger.Info("Product image uploaded",
		zap.String("key", key),
		zap.String("content_type", contentType),
		zap.Int("size", len(data)),
	)

	return &UploadImageResult{
		URL:         url,
		Key:         key,
		ContentType: contentType,
		Size:        len(data),
	}, nil
}
