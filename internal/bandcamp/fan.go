package bandcamp

import (
	"strings"

	"github.com/handiism/bandcamp-fetch/internal/bandcamp/dto"
	"github.com/handiism/bandcamp-fetch/internal/model"
)

// ParseFan extracts a fan profile and its preloaded sections from the
// #pagedata blob, using the page's og meta tags as a baseline.
func ParseFan(html, pageURL string) (*model.Fan, error) {
	p, err := newPage(html, pageURL)
	if err != nil {
		return nil, err
	}

	fan := &model.Fan{
		Name:   strings.TrimSuffix(p.meta("og:title"), " | Bandcamp"),
		URL:    fanPageURL(p),
		Images: imagesFromURL(p.meta("og:image")),
	}
	fan.Username = FanUsername(fan.URL)

	var blob dto.FanBlob
	ok, err := p.jsonAttr("#pagedata", "data-blob", &blob)
	if err != nil {
		return nil, err
	}
	if ok {
		fan.Merge(fanFromBlob(p, &blob))
	}

	if fan.Name == "" && fan.Username == "" {
		return nil, &ParseError{URL: pageURL, Field: "fan name"}
	}
	if fan.Name == "" {
		fan.Name = fan.Username
	}
	return fan, nil
}

// FanPageURL returns the fan's canonical profile URL from the page's
// og:url, falling back to pageURL.
func FanPageURL(html, pageURL string) string {
	p, err := newPage(html, pageURL)
	if err != nil {
		return model.CanonicalURL(pageURL)
	}
	return fanPageURL(p)
}

func fanPageURL(p *page) string {
	if og := p.meta("og:url"); og != "" {
		return p.resolve(og)
	}
	return model.CanonicalURL(p.url)
}

func fanFromBlob(p *page, blob *dto.FanBlob) *model.Fan {
	fd := blob.FanData
	f := &model.Fan{
		ID:                    fd.FanID.Int64(),
		Username:              fd.Username,
		Name:                  fd.Name,
		URL:                   p.resolve(fd.TrackpipeURL),
		Location:              fd.Location,
		Website:               fd.WebsiteURL,
		Description:           fd.Bio,
		FollowersCount:        fd.FollowersCount.Int(),
		FollowingArtistsCount: fd.FollowingBandsCount.Int(),
		FollowingFansCount:    fd.FollowingFansCount.Int(),
		FollowingGenresCount:  fd.FollowingGenresCount.Int(),
		CollectionCount:       blob.CollectionData.ItemCount.Int(),
		WishlistCount:         blob.WishlistData.ItemCount.Int(),
		IsCurrentUser:         fd.IsOwnPage,
	}
	if fd.Photo != nil {
		f.Images = model.ImagesFromID(fd.Photo.ImageID.Int64(), model.ImageKindPhoto)
	}

	f.Collection = collectionSection(blob.CollectionData, blob.ItemCache.Collection, blob.Tracklists["collection"])
	f.Wishlist = collectionSection(blob.WishlistData, blob.ItemCache.Wishlist, blob.Tracklists["wishlist"])
	f.Hidden = collectionSection(blob.HiddenData, blob.ItemCache.Hidden, blob.Tracklists["hidden"])
	f.Followers = followSection(blob.FollowersData, blob.ItemCache.Followers, FollowedFanFromRow)
	f.FollowingArtists = followSection(blob.FollowingBandsData, blob.ItemCache.FollowingBands, FollowedArtistFromRow)
	f.FollowingFans = followSection(blob.FollowingFansData, blob.ItemCache.FollowingFans, FollowedFanFromRow)
	return f
}

func sectionPresent(data dto.SectionData) bool {
	return len(data.Sequence) > 0 || data.ItemCount > 0 || data.LastToken != ""
}

func collectionSection(data dto.SectionData, cache map[string]dto.CollectionRow, tracklists map[string][]dto.TracklistEntry) *model.FanSection[model.CollectionNode] {
	if !sectionPresent(data) {
		return nil
	}
	var nodes []model.CollectionNode
	for _, key := range data.Sequence {
		row, ok := cache[key]
		if !ok {
			continue
		}
		tracks := tracklists[row.Key()]
		if tracks == nil {
			tracks = tracklists[key]
		}
		nodes = append(nodes, CollectionNodeFromRow(row, tracks))
	}
	return newSection(data, model.MergeItems(nil, nodes, false))
}

func followSection[T model.Identifiable](data dto.SectionData, cache map[string]dto.FollowRow, mapRow func(dto.FollowRow) model.FollowedNode[T]) *model.FanSection[model.FollowedNode[T]] {
	if !sectionPresent(data) {
		return nil
	}
	var nodes []model.FollowedNode[T]
	for _, key := range data.Sequence {
		if row, ok := cache[key]; ok {
			nodes = append(nodes, mapRow(row))
		}
	}
	return newSection(data, model.MergeItems(nil, nodes, false))
}

func newSection[N any](data dto.SectionData, items []N) *model.FanSection[N] {
	total := data.ItemCount.Int()
	if total < len(items) {
		total = len(items)
	}
	return &model.FanSection[N]{
		Items:      items,
		LastToken:  data.LastToken,
		HasMore:    total > len(items),
		TotalCount: total,
	}
}
