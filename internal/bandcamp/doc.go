// Package bandcamp parses Bandcamp pages and API replies into the types
// of the model package.
//
// Pages describe the same release in several places at once: the visible
// markup, a JSON-LD block and blobs such as data-tralbum or the fan page's
// #pagedata. Parsers read all of them and merge in that order, each source
// only replacing the fields it actually supplies.
//
// # Pages
//
//	entity, err := bandcamp.ParseTralbum(html, "https://artist.bandcamp.com/album/name")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	switch e := entity.(type) {
//	case *model.Album:
//	    fmt.Printf("%s, %d tracks\n", e.Name, len(e.Tracks))
//	case *model.Track:
//	    fmt.Println(e.Name, e.IsSingle())
//	}
//
// ParseArtist, ParseFan and ParseSearchResults cover the other page kinds.
// InferType tells them apart from a URL and the og:type meta value.
//
// # Discography Extraction
//
// Use Discography to find all album URLs from an artist's music page:
//
//	disco := bandcamp.NewDiscography()
//	urls, err := disco.GetAlbumURLs(musicPageHTML, "https://artist.bandcamp.com/music")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, u := range urls {
//	    fmt.Println(u) // e.g., "https://artist.bandcamp.com/album/my-album"
//	}
//
// # API Replies
//
// DecodeSection reads the envelope of the fancollection endpoints and
// CollectionPage, FollowedArtistsPage and FollowedFansPage map its rows.
// ParseCollectionSummary, ParseCrumbs and ParseActionResult cover the
// identity and action endpoints. The streaming init script of custom
// domain pages is handled by FindCDUIScript and ParseCDUIPayload.
//
// Bandcamp's JSON is loose: ids arrive as numbers or digit strings, dates
// in several layouts and error markers as booleans or codes. The dto
// subpackage absorbs those differences while decoding.
package bandcamp
