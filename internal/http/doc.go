// Package http performs the HTTP exchanges of the resolver.
//
// The Client in this package handles:
//   - Redirect following, bounded per exchange, with 301/302/303
//     switching to GET and 307/308 preserving method and body
//   - Cookies: every hop stores Set-Cookie in a session.Store and derives
//     its Cookie header from it
//   - User-Agent headers and an optional rate limit
//   - File downloads with progress tracking
//
// # Errors
//
// A non-2xx response is a *TransportError carrying the status code and
// body. When the body is JSON with an error_message field, that message is
// used instead of the status text:
//
//	_, err := client.Get(ctx, url)
//	var te *http.TransportError
//	if errors.As(err, &te) && te.StatusCode == 403 {
//	    fmt.Println(te.Message) // "not logged in"
//	}
//
// Helpers that require content return *NoContentError for an empty 2xx
// body.
//
// # Progress Tracking
//
// The ProgressWriter type can be used to wrap any io.Writer for progress tracking:
//
//	pw := &http.ProgressWriter{
//	    Writer:   file,
//	    Total:    contentLength,
//	    OnUpdate: func(written, total int64) { /* update UI */ },
//	}
package http
