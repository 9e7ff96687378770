package assets

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

// MinioHost implements AssetHost on top of any S3-compatible object store.
type MinioHost struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewMinioHost creates an AssetHost backed by the given client and bucket.
// publicURL is the externally reachable base address for stored objects;
// when empty, the client's endpoint URL is used.
func NewMinioHost(client *minio.Client, bucket, publicURL string) *MinioHost {
	if publicURL == "" {
		publicURL = client.EndpointURL().String()
	}
	return &MinioHost{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}
}

// Upload stores the blob under a freshly generated key in the given folder
// and returns the asset's key and public URL.
func (h *MinioHost) Upload(ctx context.Context, blob Blob, folder string) (*Asset, error) {
	key := objectKey(folder, blob.ContentType)
	_, err := h.client.PutObject(ctx, h.bucket, key, blob.Reader, blob.Size, minio.PutObjectOptions{
		ContentType: blob.ContentType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload object %q: %w", key, err)
	}
	return &Asset{
		ID:  key,
		URL: fmt.Sprintf("%s/%s/%s", h.publicURL, h.bucket, key),
	}, nil
}

// Delete removes the object with the given key. An object that is already
// gone is not an error.
func (h *MinioHost) Delete(ctx context.Context, id string) error {
	err := h.client.RemoveObject(ctx, h.bucket, id, minio.RemoveObjectOptions{})
	if err != nil {
		if resp := minio.ToErrorResponse(err); resp.Code == "NoSuchKey" {
			return nil
		}
		return fmt.Errorf("failed to delete object %q: %w", id, err)
	}
	return nil
}

// objectKey builds a namespaced object key with an extension matching the content type.
func objectKey(folder, contentType string) string {
	key := uuid.NewString() + extensionFor(contentType)
	if folder == "" {
		return key
	}
	return strings.Trim(folder, "/") + "/" + key
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	default:
		return ""
	}
}
