package storage

import (
	"context"
	"errors"
)

var (
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrTooLarge        = errors.New("image exceeds the size limit")
	ErrEmptyFile       = errors.New("image is empty")
)

// ImageStore persists an uploaded image and returns its public URL.
type ImageStore interface {
	Save(ctx context.Context, filename string, data []byte) (string, error)
}
