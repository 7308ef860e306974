// Package model defines the normalized content graph produced by the
// resolver: artists and labels, albums, tracks, fans, search results and
// the list nodes used by paginated fan sections.
//
// # Entities
//
// Every resolvable page maps to one Entity:
//
//	switch e := entity.(type) {
//	case *model.Album:
//	    fmt.Println(e.Name, len(e.Tracks))
//	case *model.Track:
//	    fmt.Println(e.Name, e.IsSingle())
//	case *model.Artist:
//	    fmt.Println(e.Name, e.Type) // "artist" or "label"
//	case *model.Fan:
//	    fmt.Println(e.Username, len(e.Collection.Items))
//	}
//
// # Merging
//
// Entities are assembled from several partially-overlapping sources.
// Refine and the Merge methods only ever add or refine fields: a value
// that is empty in the newer source never clears a populated field.
//
// # URLs and tokens
//
// CanonicalURL strips query, fragment and trailing slash so URLs can be
// compared as identity keys. Pagination tokens look like
// "1700000000:123:a::" and are opaque apart from TokenTime.
package model
