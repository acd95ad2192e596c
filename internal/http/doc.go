// Package http provides the feed retriever: an HTTP client with per-request
// timeouts, retry with exponential backoff and a typed failure taxonomy.
//
// The Client in this package handles:
//   - User-Agent and Accept headers for feed hosts
//   - A per-attempt timeout, with a longer budget for feeds registered as large
//   - Classification of failures into FetchError kinds
//   - Retrying only the retryable kinds (timeouts, 429, 5xx, network errors)
//
// # Basic Usage
//
//	client := http.NewClient(http.WithLogger(logger))
//
//	// Fetch a feed document. Empty or non-XML bodies are InvalidFormat.
//	data, err := client.Fetch(ctx, "https://example.com/feed.xml")
//
//	// Fetch any other resource (chapters JSON, API responses).
//	body, err := client.Get(ctx, chaptersURL, nil)
//
// # Errors
//
// Every failure is a *FetchError carrying the kind and, for HTTP failures,
// the status code:
//
//	var fe *http.FetchError
//	if errors.As(err, &fe) && fe.Kind == http.KindRateLimited {
//	    // back off harder
//	}
package http
