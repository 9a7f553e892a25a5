package fetcher

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"net/url"
	"path"
	"strings"

	// Formats accepted by JPEGStrategy
	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"gimgdl/pkg/config"
	errs "gimgdl/pkg/errors"
)

const opEncode = "encode"

// DefaultExtension is used when a URL carries no usable extension
const DefaultExtension = "jpg"

// maxExtensionLen bounds what is accepted as an extension token
const maxExtensionLen = 5

// Strategy turns downloaded bytes into the bytes and extension to persist
type Strategy interface {
	Name() string
	Prepare(rawURL string, data []byte) (ext string, out []byte, err error)
}

// PreserveStrategy stores bytes unchanged and takes the extension from the URL
type PreserveStrategy struct{}

func (PreserveStrategy) Name() string { return config.StrategyPreserve }

func (PreserveStrategy) Prepare(rawURL string, data []byte) (string, []byte, error) {
	return ExtensionFromURL(rawURL), data, nil
}

// JPEGStrategy decodes any supported format and re-encodes it as JPEG
type JPEGStrategy struct {
	Quality int
}

func (JPEGStrategy) Name() string { return config.StrategyJPEG }

func (s JPEGStrategy) Prepare(rawURL string, data []byte) (string, []byte, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", nil, errs.New(errs.ErrorTypeDecode, opEncode, fmt.Errorf("failed to decode image: %w", err))
	}

	quality := s.Quality
	if quality <= 0 || quality > 100 {
		quality = jpeg.DefaultQuality
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flatten(img), &jpeg.Options{Quality: quality}); err != nil {
		return "", nil, errs.New(errs.ErrorTypeDecode, opEncode, fmt.Errorf("failed to encode %s as jpeg: %w", format, err))
	}
	return DefaultExtension, buf.Bytes(), nil
}

// flatten draws img over white so transparent regions do not turn black
func flatten(img image.Image) image.Image {
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return img
	}
	bounds := img.Bounds()
	dst := image.NewRGBA(bounds)
	draw.Draw(dst, bounds, image.White, image.Point{}, draw.Src)
	draw.Draw(dst, bounds, img, bounds.Min, draw.Over)
	return dst
}

// StrategyFor returns the strategy registered under name
func StrategyFor(name string, quality int) (Strategy, error) {
	switch strings.ToLower(name) {
	case "", config.StrategyPreserve:
		return PreserveStrategy{}, nil
	case config.StrategyJPEG:
		return JPEGStrategy{Quality: quality}, nil
	default:
		return nil, errs.Newf(errs.ErrorTypeValidation, "strategy", "unknown download strategy %q", name)
	}
}

// ExtensionFromURL returns the lowercased extension of the URL path's last
// segment, ignoring any query or fragment. Anything that is not a short
// alphanumeric token yields DefaultExtension.
func ExtensionFromURL(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	} else if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}

	base := path.Base(p)
	dot := strings.LastIndex(base, ".")
	if dot < 0 || dot == len(base)-1 {
		return DefaultExtension
	}

	ext := strings.ToLower(base[dot+1:])
	if len(ext) > maxExtensionLen || !isAlnum(ext) {
		return DefaultExtension
	}
	return ext
}

func isAlnum(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
