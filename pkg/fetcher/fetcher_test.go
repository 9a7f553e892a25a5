package fetcher

import (
	"bytes"
	"context"
	stderrors "errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "gimgdl/pkg/errors"
	"gimgdl/pkg/storage"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 10), G: 80, B: 160, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func imageServer(t *testing.T, routes map[string][]byte) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write(body)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestExtensionFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://upload.wikimedia.org/a/b/Erinaceus_europaeus_LC0119.jpg", "jpg"},
		{"https://example.com/img/Hedgehog.PNG", "png"},
		{"https://example.com/photo.webp?w=800&h=600", "webp"},
		{"https://example.com/archive.tar.gz", "gz"},
		{"https://example.com/pic.gif#frame", "gif"},
		{"https://example.com/images/noext", "jpg"},
		{"https://example.com/trailing.", "jpg"},
		{"https://example.com/file.verylongext", "jpg"},
		{"https://example.com/file.jp-g", "jpg"},
		{"https://example.com/", "jpg"},
		{"", "jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtensionFromURL(tt.url))
		})
	}
}

func TestStrategyFor(t *testing.T) {
	s, err := StrategyFor("", 0)
	require.NoError(t, err)
	assert.Equal(t, "preserve", s.Name())

	s, err = StrategyFor("JPEG", 75)
	require.NoError(t, err)
	assert.Equal(t, JPEGStrategy{Quality: 75}, s)

	_, err = StrategyFor("avif", 0)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errs.Validation))
}

func TestFetchAndSavePreservesBytes(t *testing.T) {
	body := pngBytes(t, 4, 4)
	server := imageServer(t, map[string][]byte{"/hedgehog.png": body})
	dir := t.TempDir()

	f := New(storage.NewManager())
	path, err := f.FetchAndSave(context.Background(), server.URL+"/hedgehog.png?size=large", dir)
	require.NoError(t, err)

	assert.Equal(t, ".png", filepath.Ext(path))
	saved, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, body, saved)
}

func TestFetchAndSaveDefaultsToJPG(t *testing.T) {
	server := imageServer(t, map[string][]byte{"/image": []byte("opaque bytes")})

	path, err := New(nil).FetchAndSave(context.Background(), server.URL+"/image", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, ".jpg", filepath.Ext(path))
}

func TestFetchAndSaveReencodesAsJPEG(t *testing.T) {
	server := imageServer(t, map[string][]byte{"/hedgehog.png": pngBytes(t, 8, 6)})

	f := New(storage.NewManager(), WithStrategy(JPEGStrategy{Quality: 80}))
	path, err := f.FetchAndSave(context.Background(), server.URL+"/hedgehog.png", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, ".jpg", filepath.Ext(path))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	img, err := jpeg.Decode(file)
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())
	assert.Equal(t, 6, img.Bounds().Dy())
}

func TestFetchAndSaveDecodeFailure(t *testing.T) {
	server := imageServer(t, map[string][]byte{"/broken.png": []byte("<html>not an image</html>")})
	dir := t.TempDir()

	f := New(storage.NewManager(), WithStrategy(JPEGStrategy{}))
	_, err := f.FetchAndSave(context.Background(), server.URL+"/broken.png", dir)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errs.Decode))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFetchAndSaveStatusError(t *testing.T) {
	server := imageServer(t, nil)
	dir := filepath.Join(t.TempDir(), "out")

	_, err := New(nil).FetchAndSave(context.Background(), server.URL+"/missing.jpg", dir)
	require.Error(t, err)
	assert.True(t, errs.IsStatusCode(err, http.StatusNotFound))

	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr), "nothing should be written on failure")
}

func TestFetchAndSaveRejectsOversizedBody(t *testing.T) {
	server := imageServer(t, map[string][]byte{"/big.jpg": bytes.Repeat([]byte("x"), 2048)})

	f := New(nil, WithMaxBytes(1024))
	_, err := f.FetchAndSave(context.Background(), server.URL+"/big.jpg", t.TempDir())
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errs.Transport))
}

func TestFetchAndSaveInvalidURL(t *testing.T) {
	for _, raw := range []string{"", "ftp://example.com/a.jpg", "not a url", "https://"} {
		_, err := New(nil).FetchAndSave(context.Background(), raw, t.TempDir())
		require.Error(t, err, raw)
		assert.True(t, stderrors.Is(err, errs.Validation), raw)
	}
}

func TestFetchAndSaveTransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	addr := server.URL
	server.Close()

	_, err := New(nil).FetchAndSave(context.Background(), addr+"/a.jpg", t.TempDir())
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errs.Transport))
}
