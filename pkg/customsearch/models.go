package customsearch

// KindSearch is the kind tag of a search response
const KindSearch = "customsearch#search"

// SearchResponse is the top-level result of one search call
type SearchResponse struct {
	Kind              string            `json:"kind"`
	URL               SearchURL         `json:"url"`
	Queries           Queries           `json:"queries"`
	Context           Context           `json:"context"`
	SearchInformation SearchInformation `json:"searchInformation"`
	Items             []Item            `json:"items"`
}

// SearchURL describes the OpenSearch URL template
type SearchURL struct {
	Type     string `json:"type"`
	Template string `json:"template"`
}

// Queries echoes the current and next page requests
type Queries struct {
	Request  []RequestEcho `json:"request"`
	NextPage []RequestEcho `json:"nextPage"`
}

// RequestEcho holds the parameters the API used to produce a page.
// TotalResults is a decimal string; it may not fit a machine integer.
type RequestEcho struct {
	Title          string `json:"title"`
	TotalResults   string `json:"totalResults"`
	SearchTerms    string `json:"searchTerms"`
	Count          int    `json:"count"`
	StartIndex     int    `json:"startIndex"`
	InputEncoding  string `json:"inputEncoding"`
	OutputEncoding string `json:"outputEncoding"`
	Safe           string `json:"safe"`
	CX             string `json:"cx"`
	SearchType     string `json:"searchType"`
}

// Context carries the search engine display title
type Context struct {
	Title string `json:"title"`
}

// SearchInformation holds timing and result-count metadata
type SearchInformation struct {
	SearchTime            float64 `json:"searchTime"`
	FormattedSearchTime   string  `json:"formattedSearchTime"`
	TotalResults          string  `json:"totalResults"`
	FormattedTotalResults string  `json:"formattedTotalResults"`
}

// Item is one search hit. Link is the canonical image URL.
type Item struct {
	Kind        string `json:"kind"`
	Title       string `json:"title"`
	HTMLTitle   string `json:"htmlTitle"`
	Link        string `json:"link"`
	DisplayLink string `json:"displayLink"`
	Snippet     string `json:"snippet"`
	HTMLSnippet string `json:"htmlSnippet"`
	Mime        string `json:"mime"`
	FileFormat  string `json:"fileFormat"`
	Image       Image  `json:"image"`
}

// Image holds physical image metadata for an item
type Image struct {
	ContextLink     string `json:"contextLink"`
	Height          int    `json:"height"`
	Width           int    `json:"width"`
	ByteSize        int64  `json:"byteSize"`
	ThumbnailLink   string `json:"thumbnailLink"`
	ThumbnailHeight int    `json:"thumbnailHeight"`
	ThumbnailWidth  int    `json:"thumbnailWidth"`
}

// HasNextPage reports whether the provider advertised a following page
func (r *SearchResponse) HasNextPage() bool {
	return len(r.Queries.NextPage) > 0
}

// NextStartIndex returns the start index of the advertised next page, or 0
func (r *SearchResponse) NextStartIndex() uint64 {
	if !r.HasNextPage() || r.Queries.NextPage[0].StartIndex <= 0 {
		return 0
	}
	return uint64(r.Queries.NextPage[0].StartIndex)
}

// MeetsMinimum reports whether the item's declared size is at least w x h.
// Zero bounds are ignored, as are dimensions the provider did not report.
func (i Item) MeetsMinimum(w, h int) bool {
	if w > 0 && i.Image.Width > 0 && i.Image.Width < w {
		return false
	}
	if h > 0 && i.Image.Height > 0 && i.Image.Height < h {
		return false
	}
	return true
}

// APIError is the error envelope the provider returns with non-2xx statuses
type APIError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}
