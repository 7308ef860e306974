// Package client resolves Bandcamp URLs into model entities and runs the
// fan-facing operations around them.
//
// A Client owns one session: its cookie store, the identity and crumb
// caches and the list fetcher all live for as long as the client does.
//
//	c := client.New(client.WithCookie(os.Getenv("BANDCAMP_COOKIE")))
//	entity, err := c.Resolve(ctx, "https://artist.bandcamp.com/album/name", client.ResolveOptions{
//	    FetchAdditionalData: true,
//	})
//
// Resolve fetches the page, infers its kind, parses it and optionally
// enriches it. Enrichment failures are logged and the base entity is
// still returned; any other failure aborts the call.
//
// Follow, AddToWishlist and Hide, with their inverses, post the crumb of
// their endpoint. A rejected crumb is replaced with the one the platform
// returns, so retrying the call succeeds.
package client
