package customsearch

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseQuery(t *testing.T, raw string) url.Values {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u.Query()
}

func TestStartIndex(t *testing.T) {
	assert.Equal(t, uint64(1), StartIndex(0))
	assert.Equal(t, uint64(8), StartIndex(7))
	assert.Equal(t, uint64(11), StartIndex(10))
}

func TestBuildSearchURL(t *testing.T) {
	raw := BuildSearchURL(BaseURL, "key123", "cx456", "pygmy hedgehog & friends", 11, SearchOptions{})

	assert.True(t, strings.HasPrefix(raw, BaseURL+"?"))
	q := parseQuery(t, raw)
	assert.Equal(t, "key123", q.Get("key"))
	assert.Equal(t, "cx456", q.Get("cx"))
	assert.Equal(t, "pygmy hedgehog & friends", q.Get("q"))
	assert.Equal(t, "image", q.Get("searchType"))
	assert.Equal(t, "11", q.Get("start"))

	for _, k := range []string{"safe", "imgSize", "imgType", "fileType", "num"} {
		assert.False(t, q.Has(k), "unexpected parameter %s", k)
	}
}

func TestBuildSearchURLClampsStart(t *testing.T) {
	q := parseQuery(t, BuildSearchURL(BaseURL, "k", "cx", "q", 0, SearchOptions{}))
	assert.Equal(t, "1", q.Get("start"))
}

func TestBuildSearchURLOptions(t *testing.T) {
	q := parseQuery(t, BuildSearchURL(BaseURL, "k", "cx", "q", 1, SearchOptions{
		Safe:     "active",
		ImgSize:  "large",
		ImgType:  "photo",
		FileType: "png",
		Num:      25,
	}))

	assert.Equal(t, "active", q.Get("safe"))
	assert.Equal(t, "large", q.Get("imgSize"))
	assert.Equal(t, "photo", q.Get("imgType"))
	assert.Equal(t, "png", q.Get("fileType"))
	assert.Equal(t, "10", q.Get("num"))
}
