package spotify

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/maxth/mediadl/internal/constants"
)

// maxImageSize bounds cover downloads.
const maxImageSize = 20 << 20

// ImageFetcher downloads cover art.
type ImageFetcher struct {
	client *http.Client
}

func NewImageFetcher(client *http.Client) *ImageFetcher {
	if client == nil {
		client = &http.Client{Timeout: constants.ImageHTTPTimeout}
	}
	return &ImageFetcher{client: client}
}

func (f *ImageFetcher) Fetch(ctx context.Context, imageURL string) ([]byte, error) {
	if imageURL == "" {
		return nil, fmt.Errorf("no cover image available")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cover download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cover download failed: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageSize))
	if err != nil {
		return nil, fmt.Errorf("cover download failed: %w", err)
	}
	return data, nil
}
