package cache

import (
	"context"
	"fmt"
)

// DefaultThumbnailExt is the extension of stored cover art.
const DefaultThumbnailExt = "jpg"

// ThumbnailRequest identifies one cover art image.
type ThumbnailRequest struct {
	ServerID string
	ID       string
	URL      string
}

// ThumbnailCache holds cover art images.
type ThumbnailCache struct {
	store *store
	ext   string
}

func NewThumbnailCache(opts Options, ext string) *ThumbnailCache {
	if ext == "" {
		ext = DefaultThumbnailExt
	}
	return &ThumbnailCache{store: newStore(KindThumbs, opts), ext: ext}
}

func (c *ThumbnailCache) Path(req ThumbnailRequest) string {
	return Path(c.store.root, req.ServerID, KindThumbs, req.ID, c.ext)
}

// Load returns the path of the cached image, downloading it first when missing.
func (c *ThumbnailCache) Load(ctx context.Context, req ThumbnailRequest) (string, error) {
	result, err := c.store.get(ctx, fetchRequest{path: c.Path(req), url: req.URL}, nil)
	if err != nil {
		return "", err
	}
	return result.Path, nil
}

// LoadBytes is Load followed by reading the image.
func (c *ThumbnailCache) LoadBytes(ctx context.Context, req ThumbnailRequest) ([]byte, error) {
	path, err := c.Load(ctx, req)
	if err != nil {
		return nil, err
	}

	data, err := c.store.fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read thumbnail: %w", err)
	}
	return data, nil
}
