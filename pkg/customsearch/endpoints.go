package customsearch

import (
	"net/url"
	"strconv"
)

const (
	// BaseURL is the Custom Search JSON API endpoint
	BaseURL = "https://www.googleapis.com/customsearch/v1"

	// SearchTypeImage restricts results to images
	SearchTypeImage = "image"

	// MinStartIndex is the provider's first valid start index
	MinStartIndex = 1

	// MaxNum is the largest page size the provider accepts
	MaxNum = 10
)

// SearchOptions are optional filters sent only when set
type SearchOptions struct {
	Safe     string
	ImgSize  string
	ImgType  string
	FileType string
	Num      int
}

// StartIndex maps a 0-based loop offset to the provider's 1-based start
func StartIndex(offset uint64) uint64 {
	return offset + MinStartIndex
}

// BuildSearchURL constructs the request URL for one page of image results
func BuildSearchURL(base, apiKey, engineID, query string, start uint64, opts SearchOptions) string {
	if start < MinStartIndex {
		start = MinStartIndex
	}

	params := url.Values{}
	params.Set("key", apiKey)
	params.Set("cx", engineID)
	params.Set("q", query)
	params.Set("searchType", SearchTypeImage)
	params.Set("start", strconv.FormatUint(start, 10))

	if opts.Safe != "" {
		params.Set("safe", opts.Safe)
	}
	if opts.ImgSize != "" {
		params.Set("imgSize", opts.ImgSize)
	}
	if opts.ImgType != "" {
		params.Set("imgType", opts.ImgType)
	}
	if opts.FileType != "" {
		params.Set("fileType", opts.FileType)
	}
	if opts.Num > 0 {
		num := opts.Num
		if num > MaxNum {
			num = MaxNum
		}
		params.Set("num", strconv.Itoa(num))
	}

	return base + "?" + params.Encode()
}
