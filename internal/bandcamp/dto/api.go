package dto

import "strconv"

// CollectionRow is one item returned by the collection, wishlist, hidden
// and search_items endpoints, and cached in a fan page's item_cache.
type CollectionRow struct {
	FanID                 Number `json:"fan_id"`
	ItemID                Number `json:"item_id"`
	ItemType              string `json:"item_type"`
	BandID                Number `json:"band_id"`
	Added                 Date   `json:"added"`
	Updated               Date   `json:"updated"`
	Purchased             Date   `json:"purchased"`
	TralbumID             Number `json:"tralbum_id"`
	TralbumType           string `json:"tralbum_type"`
	AlbumID               Number `json:"album_id"`
	AlbumTitle            string `json:"album_title"`
	FeaturedTrack         Number `json:"featured_track"`
	FeaturedTrackTitle    string `json:"featured_track_title"`
	FeaturedTrackNumber   Number `json:"featured_track_number"`
	FeaturedTrackDuration Float  `json:"featured_track_duration"`
	FeaturedTrackURL      string `json:"featured_track_url"`
	Why                   string `json:"why"`
	Hidden                Flag   `json:"hidden"`
	ItemTitle             string `json:"item_title"`
	ItemURL               string `json:"item_url"`
	ItemArtID             Number `json:"item_art_id"`
	ItemArtURL            string `json:"item_art_url"`
	BandName              string `json:"band_name"`
	BandURL               string `json:"band_url"`
	Token                 string `json:"token"`
	ReleaseDate           Date   `json:"package_release_date"`
}

// Key returns the tralbum key used by tracklists and item caches, such
// as "a123" or "t456".
func (r CollectionRow) Key() string {
	id := r.TralbumID
	if id == 0 {
		id = r.ItemID
	}
	if id == 0 {
		return ""
	}
	return r.typeChar() + strconv.FormatInt(id.Int64(), 10)
}

func (r CollectionRow) typeChar() string {
	switch {
	case r.TralbumType != "":
		return r.TralbumType[:1]
	case r.ItemType != "":
		return r.ItemType[:1]
	}
	return "a"
}

// TracklistEntry is a track of a collection item's tracklist.
type TracklistEntry struct {
	ID          Number            `json:"id"`
	Title       string            `json:"title"`
	Artist      string            `json:"artist"`
	TrackNumber Number            `json:"track_number"`
	Duration    Float             `json:"duration"`
	File        map[string]string `json:"file"`
}

// URLHints locate an artist's page from its subdomain or custom domain.
type URLHints struct {
	Subdomain    string `json:"subdomain"`
	CustomDomain string `json:"custom_domain"`
}

// FollowRow is one entry of a followers or following list.
type FollowRow struct {
	BandID       Number    `json:"band_id"`
	FanID        Number    `json:"fan_id"`
	Name         string    `json:"name"`
	Location     string    `json:"location"`
	ImageID      Number    `json:"image_id"`
	ArtID        Number    `json:"art_id"`
	URLHints     *URLHints `json:"url_hints"`
	TrackpipeURL string    `json:"trackpipe_url"`
	DateFollowed Date      `json:"date_followed"`
	Token        string    `json:"token"`
	IsFollowing  bool      `json:"is_following"`
}

// SectionResponse is the envelope of every fancollection endpoint.
// Follow lists use the "followeers" key, search uses "tralbums".
type SectionResponse struct {
	Items         []CollectionRow             `json:"items"`
	Tralbums      []CollectionRow             `json:"tralbums"`
	Followeers    []FollowRow                 `json:"followeers"`
	Tracklists    map[string][]TracklistEntry `json:"tracklists"`
	MoreAvailable bool                        `json:"more_available"`
	LastToken     string                      `json:"last_token"`
	Error         Flag                        `json:"error"`
	ErrorMessage  string                      `json:"error_message"`
}

// CollectionRows returns the item rows whichever key carried them.
func (r *SectionResponse) CollectionRows() []CollectionRow {
	if len(r.Items) > 0 {
		return r.Items
	}
	return r.Tralbums
}

// CollectionSummaryResponse is returned by api/fan/2/collection_summary.
type CollectionSummaryResponse struct {
	FanID        Number             `json:"fan_id"`
	Summary      *CollectionSummary `json:"collection_summary"`
	Error        Flag               `json:"error"`
	ErrorMessage string             `json:"error_message"`
}

// CollectionSummary lists what the logged-in fan owns and follows.
type CollectionSummary struct {
	FanID         Number                   `json:"fan_id"`
	Username      string                   `json:"username"`
	URL           string                   `json:"url"`
	TralbumLookup map[string]TralbumLookup `json:"tralbum_lookup"`
	Follows       struct {
		Following map[string]bool `json:"following"`
	} `json:"follows"`
}

// TralbumLookup is one owned release in a collection summary.
type TralbumLookup struct {
	ItemType  string `json:"item_type"`
	ItemID    Number `json:"item_id"`
	BandID    Number `json:"band_id"`
	Purchased Date   `json:"purchased"`
}

// ActionResult is the reply of a mutating endpoint. OK is absent from
// some replies.
type ActionResult struct {
	OK           *bool  `json:"ok"`
	Error        Flag   `json:"error"`
	ErrorMessage string `json:"error_message"`
	Crumb        string `json:"crumb"`
}

// CDUIPayload is the argument of CDUI.init in the streaming script.
type CDUIPayload struct {
	ID        Number            `json:"id"`
	File      map[string]string `json:"file"`
	Tracks    []CDUITrack       `json:"tracks"`
	TrackInfo []CDUITrack       `json:"trackinfo"`
}

// AllTracks returns the track entries whichever key carried them.
func (p *CDUIPayload) AllTracks() []CDUITrack {
	if len(p.Tracks) > 0 {
		return p.Tracks
	}
	return p.TrackInfo
}

// CDUITrack is one track of a CDUI payload.
type CDUITrack struct {
	ID       Number            `json:"id"`
	TrackID  Number            `json:"track_id"`
	Title    string            `json:"title"`
	TrackNum Number            `json:"track_num"`
	File     map[string]string `json:"file"`
}
