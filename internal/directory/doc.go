// Package directory is a client for a Podcast Index style directory API.
//
// Every request is signed with the X-Auth-Date, X-Auth-Key and
// Authorization headers, where Authorization is the hex SHA-1 of
// key + secret + unix timestamp.
//
//	client, err := directory.NewClient(directory.Config{
//	    APIKey:    key,
//	    APISecret: secret,
//	}, fetcher)
//
//	feed, err := client.LookupFeedByGUID(ctx, "917393e3-1b1e-5cef-ace4-edaa54e1f810")
//	if errors.Is(err, directory.ErrNotFound) {
//	    // the directory does not know this feed
//	}
//
// A response whose status flag is not the success marker, or whose payload
// field is missing, is an *Error and never a partially filled value.
// Successful feed lookups are kept in an LRU cache.
package directory
