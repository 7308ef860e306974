// Package identity resolves who the session belongs to and keeps the
// anti-forgery crumbs that Bandcamp's mutating endpoints require.
//
// The Coordinator caches the current fan for the lifetime of the session
// and the crumbs for a short window (five minutes by default). Concurrent
// callers asking for the same value share one fetch. The first caller
// owns it: cancelling that caller's context aborts the fetch for everyone,
// while any other caller cancelling only stops waiting.
//
//	coord := identity.New(client, client.Session())
//	fan, err := coord.CurrentFan(ctx)
//	if err != nil {
//	    return err
//	}
//	if fan == nil {
//	    // not logged in
//	}
//
// Invalidate drops both caches and discards the results of fetches still
// in flight. It runs automatically when the session store is reset.
package identity
