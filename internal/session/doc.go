// Package session holds the cookies of one client instance.
//
// Store is an in-memory, domain-scoped cookie jar. It implements
// net/http.CookieJar and additionally derives the Cookie header for a
// request depending on whether it is same-site or cross-site, and reports
// whether the cookies describe a logged-in Bandcamp fan.
//
//	store := session.NewStore()
//	store.LoadHeader("bandcamp.com", os.Getenv("BANDCAMP_COOKIE"))
//	if store.LoggedIn() {
//	    // identity and crumbs can be resolved
//	}
//
// Reset clears every cookie and notifies the listeners registered with
// OnReset; the identity coordinator uses this to drop its caches.
package session
