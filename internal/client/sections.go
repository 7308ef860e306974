package client

import (
	"context"
	"fmt"

	"github.com/handiism/bandcamp-fetch/internal/collection"
	"github.com/handiism/bandcamp-fetch/internal/model"
)

// SectionKind names one of a fan's lists.
type SectionKind string

const (
	SectionCollection       SectionKind = "collection"
	SectionWishlist         SectionKind = "wishlist"
	SectionHidden           SectionKind = "hidden"
	SectionFollowers        SectionKind = "followers"
	SectionFollowingArtists SectionKind = "following-artists"
	SectionFollowingFans    SectionKind = "following-fans"
)

// SectionKinds lists every section in display order.
var SectionKinds = []SectionKind{
	SectionCollection, SectionWishlist, SectionHidden,
	SectionFollowers, SectionFollowingArtists, SectionFollowingFans,
}

// LoadMore fetches the next page of one of fan's sections and merges it
// in place. A section the fan page did not preload starts from the
// newest rows.
func (c *Client) LoadMore(ctx context.Context, fan *model.Fan, kind SectionKind) error {
	if fan == nil || fan.ID == 0 {
		return fmt.Errorf("load %s: fan id unknown", kind)
	}
	req := collection.SectionRequest{FanURL: fan.URL, FanID: fan.ID}

	switch kind {
	case SectionCollection:
		return loadInto(ctx, c.sections, collection.CollectionItems, &fan.Collection, req)
	case SectionWishlist:
		req.Referer = fan.URL + "/wishlist"
		return loadInto(ctx, c.sections, collection.WishlistItems, &fan.Wishlist, req)
	case SectionHidden:
		return loadInto(ctx, c.sections, collection.HiddenItems, &fan.Hidden, req)
	case SectionFollowers:
		req.Referer = fan.URL + "/followers"
		return loadInto(ctx, c.sections, collection.Followers, &fan.Followers, req)
	case SectionFollowingArtists:
		req.Referer = fan.URL + "/following/artists_and_labels"
		return loadInto(ctx, c.sections, collection.FollowingBands, &fan.FollowingArtists, req)
	case SectionFollowingFans:
		req.Referer = fan.URL + "/following/fans"
		return loadInto(ctx, c.sections, collection.FollowingFans, &fan.FollowingFans, req)
	}
	return fmt.Errorf("load %s: unknown section", kind)
}

func loadInto[N any, P model.SectionNode[N]](ctx context.Context, f *collection.Fetcher, ep collection.Endpoint[N], sec **model.FanSection[N], req collection.SectionRequest) error {
	if *sec == nil {
		*sec = &model.FanSection[N]{HasMore: true}
	}
	if err := collection.LoadMore[N, P](ctx, f, ep, *sec, req); err != nil {
		return fmt.Errorf("load %s: %w", ep.Name, err)
	}
	return nil
}

// SearchCollection searches the fan's collection or wishlist.
func (c *Client) SearchCollection(ctx context.Context, fan *model.Fan, query string, kind collection.SearchKind) (model.SectionPage[model.CollectionNode], error) {
	if fan == nil || fan.ID == 0 {
		return model.SectionPage[model.CollectionNode]{}, fmt.Errorf("search collection: fan id unknown")
	}
	return c.sections.SearchCollection(ctx, collection.SectionRequest{FanURL: fan.URL, FanID: fan.ID}, query, kind)
}
