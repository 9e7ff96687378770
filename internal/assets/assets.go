// Package assets abstracts the external host that stores product images.
package assets

import (
	"context"
	"io"
)

// Blob is a raw image payload submitted with a product request.
type Blob struct {
	Reader      io.Reader
	Size        int64
	ContentType string
}

// Asset identifies a stored image. ID is the host-side object key and is the
// handle used for deletion; URL is the public address handed to clients.
type Asset struct {
	ID  string
	URL string
}

// AssetHost is the external service storing binary media.
// Delete treats an already-removed asset as success.
type AssetHost interface {
	Upload(ctx context.Context, blob Blob, folder string) (*Asset, error)
	Delete(ctx context.Context, id string) error
}
