package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const exportFolder = "feedback-exports"

type CloudinaryService struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryService(cloudName, apiKey, apiSecret string) (*CloudinaryService, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}

	return &CloudinaryService{
		cld: cld,
	}, nil
}

// UploadSnapshot stores an exported collection as a raw file and returns its URL.
func (s *CloudinaryService) UploadSnapshot(ctx context.Context, data []byte, at time.Time) (string, error) {
	uploadResult, err := s.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		Folder:       exportFolder,
		PublicID:     "feedback-" + at.UTC().Format("20060102T150405Z") + ".json",
		ResourceType: "raw",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to Cloudinary: %w", err)
	}
	if uploadResult.Error.Message != "" {
		return "", fmt.Errorf("cloudinary rejected upload: %s", uploadResult.Error.Message)
	}

	return uploadResult.SecureURL, nil
}
