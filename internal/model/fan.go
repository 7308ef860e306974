package model

// FanInfo identifies the authenticated fan.
type FanInfo struct {
	ID       int64  `json:"id"`
	URL      string `json:"url"`
	Name     string `json:"name,omitempty"`
	Username string `json:"username"`
}

// Fan is a fan profile with its list sections. The sections are
// accumulators: loading more rows merges into them in place.
type Fan struct {
	ID                    int64   `json:"id,omitempty"`
	Username              string  `json:"username,omitempty"`
	Name                  string  `json:"name"`
	URL                   string  `json:"url,omitempty"`
	Location              string  `json:"location,omitempty"`
	Website               string  `json:"website,omitempty"`
	Description           string  `json:"description,omitempty"`
	Images                []Image `json:"images,omitempty"`
	FollowersCount        int     `json:"followersCount,omitempty"`
	FollowingArtistsCount int     `json:"followingArtistsCount,omitempty"`
	FollowingFansCount    int     `json:"followingFansCount,omitempty"`
	FollowingGenresCount  int     `json:"followingGenresCount,omitempty"`
	CollectionCount       int     `json:"collectionCount,omitempty"`
	WishlistCount         int     `json:"wishlistCount,omitempty"`
	IsCurrentUser         bool    `json:"isCurrentUser,omitempty"`

	Collection       *FanSection[CollectionNode]         `json:"collection,omitempty"`
	Wishlist         *FanSection[CollectionNode]         `json:"wishlist,omitempty"`
	Hidden           *FanSection[CollectionNode]         `json:"hidden,omitempty"`
	Followers        *FanSection[FollowedNode[Fan]]      `json:"followers,omitempty"`
	FollowingArtists *FanSection[FollowedNode[Artist]]   `json:"followingArtists,omitempty"`
	FollowingFans    *FanSection[FollowedNode[Fan]]      `json:"followingFans,omitempty"`
}

// ItemID returns the fan id; it is the merge key in follow lists.
func (f Fan) ItemID() int64 { return f.ID }

// Merge refines f with src. Sections are merged row by row.
func (f *Fan) Merge(src *Fan) {
	if f == nil || src == nil {
		return
	}
	tmp := *src
	tmp.Collection, tmp.Wishlist, tmp.Hidden = nil, nil, nil
	tmp.Followers, tmp.FollowingArtists, tmp.FollowingFans = nil, nil, nil
	Refine(f, &tmp)

	f.Collection = mergeSectionPtr(f.Collection, src.Collection, true)
	f.Wishlist = mergeSectionPtr(f.Wishlist, src.Wishlist, true)
	f.Hidden = mergeSectionPtr(f.Hidden, src.Hidden, true)
	f.Followers = mergeSectionPtr(f.Followers, src.Followers, true)
	f.FollowingArtists = mergeSectionPtr(f.FollowingArtists, src.FollowingArtists, true)
	f.FollowingFans = mergeSectionPtr(f.FollowingFans, src.FollowingFans, true)
}

func mergeSectionPtr[N any, P SectionNode[N]](dst, src *FanSection[N], sortByDate bool) *FanSection[N] {
	if src == nil {
		return dst
	}
	if dst == nil {
		dst = &FanSection[N]{}
	}
	MergeSection[N, P](dst, SectionPage[N]{
		HasMore:   src.HasMore,
		LastToken: src.LastToken,
		Items:     src.Items,
	}, sortByDate)
	if src.TotalCount > dst.TotalCount {
		dst.TotalCount = src.TotalCount
	}
	return dst
}

// CollectionNode is one row of a collection, wishlist or hidden list.
type CollectionNode struct {
	Token     string          `json:"token,omitempty"`
	DateAdded string          `json:"dateAdded,omitempty"`
	Note      string          `json:"note,omitempty"`
	Hidden    bool            `json:"hidden,omitempty"`
	Item      *CollectionItem `json:"item,omitempty"`
}

// CollectionItem is the album or track a collection row points at.
type CollectionItem struct {
	Type               ItemType     `json:"type"`
	ID                 int64        `json:"id,omitempty"`
	Name               string       `json:"name"`
	URL                string       `json:"url,omitempty"`
	Artist             *Artist      `json:"artist,omitempty"`
	Images             []Image      `json:"images,omitempty"`
	FeaturedTrack      *Track       `json:"featuredTrack,omitempty"`
	Tracks             []AlbumTrack `json:"tracks,omitempty"`
	Purchased          string       `json:"purchased,omitempty"`
	InViewerCollection bool         `json:"inViewerCollection,omitempty"`
}

// MergeKey returns the item id when the row carries one.
func (n *CollectionNode) MergeKey() (int64, bool) {
	if n.Item == nil || n.Item.ID == 0 {
		return 0, false
	}
	return n.Item.ID, true
}

// SortDate returns the date the item was added.
func (n *CollectionNode) SortDate() string { return n.DateAdded }

// Merge refines n with src, reusing n's item as the base.
func (n *CollectionNode) Merge(src *CollectionNode) {
	if src == nil {
		return
	}
	tmp := *src
	tmp.Item = nil
	Refine(n, &tmp)
	if n.Item == nil {
		n.Item = src.Item
		return
	}
	n.Item.Merge(src.Item)
}

// Merge refines i with src.
func (i *CollectionItem) Merge(src *CollectionItem) {
	if i == nil || src == nil {
		return
	}
	tracks := i.Tracks
	if len(src.Tracks) > 0 {
		tracks = MergeAlbumTracks(i.Tracks, src.Tracks)
	}
	featured := i.FeaturedTrack
	if featured == nil {
		featured = src.FeaturedTrack
	} else {
		featured.Merge(src.FeaturedTrack)
	}
	tmp := *src
	tmp.Tracks = nil
	tmp.FeaturedTrack = nil
	Refine(i, &tmp)
	i.Tracks = tracks
	i.FeaturedTrack = featured
}

// Identifiable is implemented by entities that can appear in follow lists.
type Identifiable interface {
	ItemID() int64
}

// FollowedNode is one row of a followers or following list.
type FollowedNode[T Identifiable] struct {
	Token        string `json:"token,omitempty"`
	DateFollowed string `json:"dateFollowed,omitempty"`
	Item         *T     `json:"item,omitempty"`
}

// MergeKey returns the followed entity's id when present.
func (n *FollowedNode[T]) MergeKey() (int64, bool) {
	if n.Item == nil {
		return 0, false
	}
	id := (*n.Item).ItemID()
	return id, id != 0
}

// SortDate returns the date the follow happened.
func (n *FollowedNode[T]) SortDate() string { return n.DateFollowed }

// Merge refines n with src.
func (n *FollowedNode[T]) Merge(src *FollowedNode[T]) {
	if src == nil {
		return
	}
	Refine(n, src)
}
