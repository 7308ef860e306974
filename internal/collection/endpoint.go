package collection

import (
	"github.com/handiism/bandcamp-fetch/internal/bandcamp"
	"github.com/handiism/bandcamp-fetch/internal/bandcamp/dto"
	"github.com/handiism/bandcamp-fetch/internal/model"
)

// Endpoint names a list endpoint and maps its rows to nodes of type N.
type Endpoint[N any] struct {
	Name string
	page func(*dto.SectionResponse) model.SectionPage[N]
}

var (
	CollectionItems = Endpoint[model.CollectionNode]{Name: "collection_items", page: bandcamp.CollectionPage}
	WishlistItems   = Endpoint[model.CollectionNode]{Name: "wishlist_items", page: bandcamp.CollectionPage}
	HiddenItems     = Endpoint[model.CollectionNode]{Name: "hidden_items", page: bandcamp.CollectionPage}

	FollowingBands = Endpoint[model.FollowedNode[model.Artist]]{Name: "following_bands", page: bandcamp.FollowedArtistsPage}
	FollowingFans  = Endpoint[model.FollowedNode[model.Fan]]{Name: "following_fans", page: bandcamp.FollowedFansPage}
	Followers      = Endpoint[model.FollowedNode[model.Fan]]{Name: "followers", page: bandcamp.FollowedFansPage}

	SearchItems = Endpoint[model.CollectionNode]{Name: "search_items", page: bandcamp.CollectionPage}
)
