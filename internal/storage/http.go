package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

const maxHttpSourceSize = 1 << 20

func success(response *http.Response) bool {
	return response.StatusCode >= http.StatusOK && response.StatusCode < http.StatusMultipleChoices
}

func readHttp(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, url)
	}
	if !success(resp) {
		return nil, fmt.Errorf("unexpected response from %s: %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxHttpSourceSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", url, err)
	}
	if len(data) > maxHttpSourceSize {
		return nil, fmt.Errorf("response from %s is larger than %d bytes", url, maxHttpSourceSize)
	}
	return data, nil
}
