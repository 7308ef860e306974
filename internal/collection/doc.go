// Package collection pages through a fan's lists: collection, wishlist,
// hidden items, followers and the artists and fans they follow.
//
// Every list is served by a POST endpoint under
// https://bandcamp.com/api/fancollection/1/ that takes a fan id, a paging
// token and a count, and returns one page plus the token of its last
// row. Endpoints are typed by the node they produce:
//
//	f := collection.NewFetcher(client, client.Session())
//	page, err := collection.FetchSection(ctx, f, collection.CollectionItems, collection.SectionRequest{
//	    FanURL: fan.URL,
//	    FanID:  fan.ID,
//	})
//
// LoadMore continues a section from its last token and merges the new
// rows into it in place.
package collection
