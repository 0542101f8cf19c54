package shopify

import (
	"context"

	"github.com/courierlabs/podproof/internal/domain/model"
)

// FileUploader satisfies the blob uploader contract with the platform's own
// file API, for deployments that keep proof images inside Shopify.
type FileUploader struct {
	client *Client
}

// NewFileUploader constructs FileUploader.
func NewFileUploader(client *Client) *FileUploader {
	return &FileUploader{client: client}
}

// Upload stores the image via the file API and returns the asset URL.
func (u *FileUploader) Upload(ctx context.Context, image model.ImageData, logicalName string) (string, error) {
	return u.client.UploadFile(ctx, image, logicalName)
}
