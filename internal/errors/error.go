// Package errors provides custom error types for product-related operations.
package errors

import "errors"

var (
	// ErrProductNotFound is returned when no product exists for a given ID.
	ErrProductNotFound = errors.New("product not found")

	// ErrBarcodeConflict is returned when a generated barcode collides with an
	// existing one and the bounded retries are exhausted.
	ErrBarcodeConflict = errors.New("barcode already exists")

	// ErrAssetUpload is returned when the image could not be stored in the
	// external asset host. The product operation carrying the image is aborted.
	ErrAssetUpload = errors.New("image upload failed")
)
