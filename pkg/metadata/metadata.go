// Package metadata writes JSON sidecar files describing where a saved image
// came from.
package metadata

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gimgdl/pkg/customsearch"
)

// sidecarExt is appended to the image path to name its metadata file
const sidecarExt = ".json"

// ImageMetadata records the search result an image was downloaded from
type ImageMetadata struct {
	// Source
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	DisplayLink string `json:"display_link,omitempty"`
	ContextLink string `json:"context_link,omitempty"`
	MIME        string `json:"mime,omitempty"`

	// Dimensions as reported by the search provider
	Width    int   `json:"width"`
	Height   int   `json:"height"`
	ByteSize int64 `json:"byte_size,omitempty"`

	// Local file
	Path     string `json:"path"`
	FileSize int64  `json:"file_size"`

	// Search context
	Query        string    `json:"query"`
	StartIndex   uint64    `json:"start_index"`
	DownloadedAt time.Time `json:"downloaded_at"`
}

// FromItem builds metadata for item saved at path
func FromItem(item customsearch.Item, query string, start uint64, path string) *ImageMetadata {
	meta := &ImageMetadata{
		URL:          item.Link,
		Title:        item.Title,
		DisplayLink:  item.DisplayLink,
		ContextLink:  item.Image.ContextLink,
		MIME:         item.Mime,
		Width:        item.Image.Width,
		Height:       item.Image.Height,
		ByteSize:     item.Image.ByteSize,
		Path:         path,
		Query:        query,
		StartIndex:   start,
		DownloadedAt: time.Now().UTC(),
	}

	if info, err := os.Stat(path); err == nil {
		meta.FileSize = info.Size()
	}

	return meta
}

// SidecarPath returns the metadata path for an image path
func SidecarPath(imagePath string) string {
	return imagePath + sidecarExt
}

// Save writes the metadata next to the image it describes
func (m *ImageMetadata) Save() error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	if err := os.WriteFile(SidecarPath(m.Path), data, 0644); err != nil {
		return fmt.Errorf("failed to write metadata file: %w", err)
	}

	return nil
}

// Load reads the metadata stored for an image
func Load(imagePath string) (*ImageMetadata, error) {
	data, err := os.ReadFile(SidecarPath(imagePath))
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata file: %w", err)
	}

	var meta ImageMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}

	return &meta, nil
}

// AspectRatio returns the aspect ratio as a string
func (m *ImageMetadata) AspectRatio() string {
	if m.Height == 0 {
		return "unknown"
	}

	ratio := float64(m.Width) / float64(m.Height)

	switch {
	case ratio > 1.7 && ratio < 1.8:
		return "16:9"
	case ratio > 1.3 && ratio < 1.4:
		return "4:3"
	case ratio > 0.9 && ratio < 1.1:
		return "1:1"
	case ratio > 0.55 && ratio < 0.57:
		return "9:16"
	case ratio > 0.74 && ratio < 0.76:
		return "3:4"
	default:
		return fmt.Sprintf("%.2f:1", ratio)
	}
}

// Exists checks if a metadata file exists for an image
func Exists(imagePath string) bool {
	_, err := os.Stat(SidecarPath(imagePath))
	return err == nil
}
