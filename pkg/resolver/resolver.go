// Package resolver decides which files to fetch for one media item and
// how to name them on disk.
package resolver

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"mediasync/pkg/models"
)

// Asset is one retrievable file of a media item: the remote URL and
// the destination file name relative to the account directory.
type Asset struct {
	URL      string
	Filename string
}

// Resolver maps a MediaItem onto its downloadable assets.
type Resolver struct {
	// VideoPrefix names single-video files, e.g. "reel" for Instagram
	// and "short" for YouTube.
	VideoPrefix string
}

// New returns a Resolver with the Instagram naming convention.
func New() *Resolver {
	return &Resolver{VideoPrefix: "reel"}
}

// Resolve returns the ordered list of assets for item. An empty result
// is valid: the item simply has nothing retrievable and the caller
// skips it without error.
func (r *Resolver) Resolve(item models.MediaItem) []Asset {
	switch item.Kind {
	case models.KindImage:
		if item.ImageURL == "" {
			return nil
		}
		return []Asset{{
			URL:      item.ImageURL,
			Filename: fmt.Sprintf("image_%s%s", item.ID, extensionOf(item.ImageURL, ".jpg")),
		}}

	case models.KindVideo:
		if item.VideoURL == "" {
			return nil
		}
		return []Asset{{
			URL:      item.VideoURL,
			Filename: fmt.Sprintf("%s_%s.mp4", r.VideoPrefix, item.ID),
		}}

	case models.KindGallery:
		var assets []Asset
		for idx, res := range item.Resources {
			// Prefer the video rendition when both URLs are present.
			switch {
			case res.VideoURL != "":
				assets = append(assets, Asset{
					URL:      res.VideoURL,
					Filename: fmt.Sprintf("carousel_%s_%d.mp4", item.ID, idx),
				})
			case res.ImageURL != "":
				assets = append(assets, Asset{
					URL:      res.ImageURL,
					Filename: fmt.Sprintf("carousel_%s_%d%s", item.ID, idx, extensionOf(res.ImageURL, ".jpg")),
				})
			}
		}
		return assets
	}

	return nil
}

// extensionOf extracts a file extension from the URL path, falling
// back to def when the URL has none.
func extensionOf(rawURL, def string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return def
	}
	ext := strings.ToLower(path.Ext(u.Path))
	if ext == "" {
		return def
	}
	return ext
}
