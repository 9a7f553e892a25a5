// Package customsearch provides a client for the Google Custom Search JSON
// API in image mode.
//
// Example usage:
//
//	client := customsearch.NewClient(apiKey, engineID)
//
//	resp, err := client.Search(ctx, "hedgehog", customsearch.StartIndex(0))
//	if err != nil {
//	    if errors.Is(err, errs.Schema) {
//	        // the body did not match SearchResponse
//	    }
//	}
//
//	for _, item := range resp.Items {
//	    fmt.Println(item.Link)
//	}
package customsearch
