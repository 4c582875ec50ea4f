package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"sync"

	"github.com/disintegration/imaging"
)

// ImageCache keeps decoded sheet music pages in memory, keyed by file path.
//
// Pages are decoded once and shared between tool calls: segmenting a page,
// scanning one of its lines and rendering that line all start from the same
// image. ImageCache is safe for concurrent use.
//
// # Memory Management
//
// Cached pages stay in memory until Evict removes them. A scanned
// A4 page at 300 dpi is about 35 MB decoded.
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewImageCache creates an empty cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]image.Image),
	}
}

// Load returns the page at path, decoding it on first use.
//
// PNG, JPEG and GIF files are supported. JPEG pages are rotated according to
// their EXIF orientation, so photographed pages come out upright. The page is
// cached under the exact path string given; a relative and an absolute path to
// the same file are separate entries.
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to load page: %w", err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("page %s is empty", path)
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// Len returns the number of cached pages.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Evict removes the page loaded from path. Unknown paths are ignored.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}
