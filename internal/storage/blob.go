package storage

import (
	"context"
	"fmt"
	"strings"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/azureblob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/s3blob"
	"gocloud.dev/gcerrors"
)

func splitBlobName(name string) (string, string, error) {
	parts := strings.Split(name, "/")
	if len(parts) < 4 {
		return "", "", fmt.Errorf("expected a name in the form <scheme>://<bucket>/<key>, got %q", name)
	}
	if parts[0] == "file:" {
		return strings.Join(parts[:len(parts)-1], "/"), parts[len(parts)-1], nil
	}
	return strings.Join(parts[:3], "/"), strings.Join(parts[3:], "/"), nil
}

func readBlob(ctx context.Context, name string) ([]byte, error) {
	bucketName, key, err := splitBlobName(name)
	if err != nil {
		return nil, err
	}

	bucket, err := blob.OpenBucket(ctx, bucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to open bucket %s, %w", bucketName, err)
	}
	defer bucket.Close()

	data, err := bucket.ReadAll(ctx, key)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("failed to read %s, %w", name, err)
	}
	return data, nil
}
