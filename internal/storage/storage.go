// Package storage reads property sources from local paths, http(s) URLs
// and cloud blob URLs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

var ErrNotFound = errors.New("source not found")

// ReadAll returns the full contents of a source. Sources may be a local path,
// an http(s) URL, or a blob URL like s3://bucket/key or file:///path/to/key.
func ReadAll(ctx context.Context, source string) ([]byte, error) {
	if source == "" {
		return nil, errors.New("source is required")
	}

	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return readHttp(ctx, source)
	}

	if strings.Contains(source, "://") {
		return readBlob(ctx, source)
	}

	data, err := os.ReadFile(source)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, source)
		}
		return nil, fmt.Errorf("failed to read %s: %w", source, err)
	}
	return data, nil
}
