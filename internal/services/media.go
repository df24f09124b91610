package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// MediaUploader uploads a file and returns its durable public URL.
// Sends that carry an attachment call this before any message row is
// written, so an upload failure can never leave a message referencing
// missing media.
type MediaUploader interface {
	UploadFromHeader(ctx context.Context, fileHeader *multipart.FileHeader, folder string) (string, error)
}

// CloudinaryService is the Cloudinary-backed MediaUploader.
type CloudinaryService struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinaryService constructs a CloudinaryService.
func NewCloudinaryService(cloudName, apiKey, apiSecret string) (*CloudinaryService, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("init cloudinary: %w", err)
	}
	return &CloudinaryService{cld: cld}, nil
}

// UploadFromHeader uploads a multipart file.
func (s *CloudinaryService) UploadFromHeader(ctx context.Context, fileHeader *multipart.FileHeader, folder string) (string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	result, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:       folder,
		ResourceType: "auto",
	})
	if err != nil {
		return "", fmt.Errorf("upload to cloudinary: %w", err)
	}
	return result.SecureURL, nil
}

// MediaTypeFromContentType maps an upload's MIME type to a post type.
func MediaTypeFromContentType(contentType string) string {
	if strings.HasPrefix(contentType, "video/") {
		return "video"
	}
	return "image"
}
