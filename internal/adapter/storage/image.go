package storage

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"net/http"

	"github.com/nfnt/resize"
)

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Processor validates uploads and shrinks oversized JPEG and PNG images.
type Processor struct {
	MaxBytes int64
	MaxWidth uint
}

// Prepare returns the bytes to store and their detected content type.
func (p Processor) Prepare(data []byte) ([]byte, string, error) {
	if len(data) == 0 {
		return nil, "", ErrEmptyFile
	}
	if p.MaxBytes > 0 && int64(len(data)) > p.MaxBytes {
		return nil, "", ErrTooLarge
	}
	contentType := http.DetectContentType(data)
	if _, ok := allowedTypes[contentType]; !ok {
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}
	if p.MaxWidth == 0 || (contentType != "image/jpeg" && contentType != "image/png") {
		return data, contentType, nil
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUnsupportedType, err)
	}
	if uint(cfg.Width) <= p.MaxWidth {
		return data, contentType, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	resized := resize.Resize(p.MaxWidth, 0, img, resize.Lanczos3)

	var buf bytes.Buffer
	if contentType == "image/png" {
		err = png.Encode(&buf, resized)
	} else {
		err = jpeg.Encode(&buf, resized, &jpeg.Options{Quality: 85})
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode resized image: %w", err)
	}
	return buf.Bytes(), contentType, nil
}

// ExtensionFor maps a detected content type to a file extension.
func ExtensionFor(contentType string) string {
	return allowedTypes[contentType]
}
