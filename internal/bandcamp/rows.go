package bandcamp

import (
	"encoding/json"
	"strings"

	"github.com/handiism/bandcamp-fetch/internal/bandcamp/dto"
	"github.com/handiism/bandcamp-fetch/internal/model"
)

// DecodeSection decodes the envelope of a fancollection endpoint.
func DecodeSection(endpoint string, body []byte) (*dto.SectionResponse, error) {
	var resp dto.SectionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &ParseError{URL: endpoint, Field: "section response", Err: err}
	}
	return &resp, nil
}

// CollectionPage maps collection, wishlist, hidden or search rows.
func CollectionPage(resp *dto.SectionResponse) model.SectionPage[model.CollectionNode] {
	rows := resp.CollectionRows()
	items := make([]model.CollectionNode, 0, len(rows))
	for _, row := range rows {
		items = append(items, CollectionNodeFromRow(row, resp.Tracklists[row.Key()]))
	}
	return model.SectionPage[model.CollectionNode]{
		HasMore:   resp.MoreAvailable,
		LastToken: resp.LastToken,
		Items:     items,
	}
}

// FollowedArtistsPage maps following_bands rows.
func FollowedArtistsPage(resp *dto.SectionResponse) model.SectionPage[model.FollowedNode[model.Artist]] {
	items := make([]model.FollowedNode[model.Artist], 0, len(resp.Followeers))
	for _, row := range resp.Followeers {
		items = append(items, FollowedArtistFromRow(row))
	}
	return model.SectionPage[model.FollowedNode[model.Artist]]{
		HasMore:   resp.MoreAvailable,
		LastToken: resp.LastToken,
		Items:     items,
	}
}

// FollowedFansPage maps followers and following_fans rows.
func FollowedFansPage(resp *dto.SectionResponse) model.SectionPage[model.FollowedNode[model.Fan]] {
	items := make([]model.FollowedNode[model.Fan], 0, len(resp.Followeers))
	for _, row := range resp.Followeers {
		items = append(items, FollowedFanFromRow(row))
	}
	return model.SectionPage[model.FollowedNode[model.Fan]]{
		HasMore:   resp.MoreAvailable,
		LastToken: resp.LastToken,
		Items:     items,
	}
}

func rowItemType(row dto.CollectionRow) model.ItemType {
	t := row.TralbumType
	if t == "" {
		t = row.ItemType
	}
	if strings.HasPrefix(t, "t") {
		return model.TypeTrack
	}
	return model.TypeAlbum
}

// CollectionNodeFromRow maps one API row and its tracklist.
func CollectionNodeFromRow(row dto.CollectionRow, tracklist []dto.TracklistEntry) model.CollectionNode {
	id := row.TralbumID
	if id == 0 {
		id = row.ItemID
	}
	item := &model.CollectionItem{
		Type:      rowItemType(row),
		ID:        id.Int64(),
		Name:      row.ItemTitle,
		URL:       model.CanonicalURL(row.ItemURL),
		Purchased: string(row.Purchased),
	}
	if row.BandName != "" || row.BandURL != "" {
		item.Artist = &model.Artist{
			Type: model.TypeArtist,
			ID:   row.BandID.Int64(),
			Name: row.BandName,
			URL:  model.CanonicalURL(row.BandURL),
		}
	}
	if row.ItemArtID != 0 {
		item.Images = model.ImagesFromID(row.ItemArtID.Int64(), model.ImageKindArt)
	} else {
		item.Images = imagesFromURL(row.ItemArtURL)
	}
	if row.FeaturedTrack != 0 || row.FeaturedTrackTitle != "" {
		item.FeaturedTrack = &model.Track{
			ID:          row.FeaturedTrack.Int64(),
			Name:        row.FeaturedTrackTitle,
			URL:         model.CanonicalURL(row.FeaturedTrackURL),
			TrackNumber: row.FeaturedTrackNumber.Int(),
			Duration:    float64(row.FeaturedTrackDuration),
		}
	}
	for _, e := range tracklist {
		var artist *model.Artist
		if e.Artist != "" {
			artist = &model.Artist{Type: model.TypeArtist, Name: e.Artist}
		}
		item.Tracks = append(item.Tracks, model.AlbumTrack{
			ID:           e.ID.Int64(),
			Name:         e.Title,
			TrackNumber:  e.TrackNumber.Int(),
			Duration:     float64(e.Duration),
			Artist:       artist,
			AudioSources: audioSources(e.File),
		})
	}
	if item.Type == model.TypeAlbum {
		model.RenumberTracks(item.Tracks)
	}

	return model.CollectionNode{
		Token:     row.Token,
		DateAdded: string(row.Added),
		Note:      row.Why,
		Hidden:    row.Hidden.Set,
		Item:      item,
	}
}

func hintsURL(h *dto.URLHints) string {
	if h == nil {
		return ""
	}
	if h.CustomDomain != "" {
		return "https://" + strings.ToLower(h.CustomDomain)
	}
	if h.Subdomain != "" {
		return "https://" + strings.ToLower(h.Subdomain) + ".bandcamp.com"
	}
	return ""
}

// FollowedArtistFromRow maps a followed artist or label. Follow rows carry
// no marker telling labels from artists, so every row is typed as an
// artist; resolving the URL yields the real kind.
func FollowedArtistFromRow(row dto.FollowRow) model.FollowedNode[model.Artist] {
	imageID := row.ImageID
	if imageID == 0 {
		imageID = row.ArtID
	}
	return model.FollowedNode[model.Artist]{
		Token:        row.Token,
		DateFollowed: string(row.DateFollowed),
		Item: &model.Artist{
			Type:     model.TypeArtist,
			ID:       row.BandID.Int64(),
			Name:     row.Name,
			URL:      hintsURL(row.URLHints),
			Location: row.Location,
			Images:   model.ImagesFromID(imageID.Int64(), model.ImageKindPhoto),
		},
	}
}

// FollowedFanFromRow maps a follower or followed fan.
func FollowedFanFromRow(row dto.FollowRow) model.FollowedNode[model.Fan] {
	u := model.CanonicalURL(row.TrackpipeURL)
	return model.FollowedNode[model.Fan]{
		Token:        row.Token,
		DateFollowed: string(row.DateFollowed),
		Item: &model.Fan{
			ID:       row.FanID.Int64(),
			Name:     row.Name,
			URL:      u,
			Username: FanUsername(u),
			Location: row.Location,
			Images:   model.ImagesFromID(row.ImageID.Int64(), model.ImageKindPhoto),
		},
	}
}
