package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
)

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

type LocalStorage struct {
	dir    string
	prefix string
	log    logger.Logger
}

func NewLocalStorage(dir, publicPrefix string, log logger.Logger) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir %s: %w", dir, err)
	}
	return &LocalStorage{
		dir:    dir,
		prefix: strings.TrimRight(publicPrefix, "/"),
		log:    log.Named("LocalStorage"),
	}, nil
}

// SanitizeFilename keeps the base name and replaces anything outside
// [a-zA-Z0-9._-] with a dash.
func SanitizeFilename(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	base = unsafeChars.ReplaceAllString(base, "-")
	base = strings.Trim(base, ".-")
	if base == "" {
		base = "image"
	}
	return base
}

// Save writes data under the sanitized filename. An existing file with the
// same name is never overwritten; the new file gets a timestamp suffix.
func (s *LocalStorage) Save(_ context.Context, filename string, data []byte) (string, error) {
	name := SanitizeFilename(filename)
	f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		ext := filepath.Ext(name)
		name = fmt.Sprintf("%s-%d%s", strings.TrimSuffix(name, ext), time.Now().UnixNano(), ext)
		f, err = os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	}
	if err != nil {
		return "", fmt.Errorf("failed to create upload file %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		_ = os.Remove(filepath.Join(s.dir, name))
		return "", fmt.Errorf("failed to write upload file %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close upload file %s: %w", name, err)
	}

	s.log.Debugf("stored upload %s (%d bytes)", name, len(data))
	return path.Join(s.prefix, name), nil
}
