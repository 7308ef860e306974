package bandcamp

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/handiism/bandcamp-fetch/internal/bandcamp/dto"
	"github.com/handiism/bandcamp-fetch/internal/model"
)

// ParseArtist extracts an artist or label from its home, /music or
// /artists page. The DOM is refined by the MusicGroup JSON-LD block and
// the data-band blob.
func ParseArtist(html, pageURL string) (*model.Artist, error) {
	p, err := newPage(html, pageURL)
	if err != nil {
		return nil, err
	}

	artist := artistFromDOM(p)
	if ld := p.jsonLD(); ld != nil && (ld.Is("MusicGroup") || ld.Is("Organization")) {
		artist.Merge(artistFromLD(p, ld))
	}

	var band dto.Band
	hasBand, err := p.jsonAttr("[data-band]", "data-band", &band)
	if err != nil {
		return nil, err
	}
	if hasBand {
		artist.Merge(&model.Artist{
			ID:     band.ID.Int64(),
			Name:   band.Name,
			URL:    p.resolve(band.URL),
			Images: model.ImagesFromID(band.ImageID.Int64(), model.ImageKindPhoto),
		})
	}

	var items []dto.ClientItem
	if _, err := p.jsonAttr("[data-client-items]", "data-client-items", &items); err != nil {
		return nil, err
	}
	artist.Merge(&model.Artist{Discography: clientItems(p, items)})

	if isLabelPage(p, band.IsLabel) || len(artist.Artists) > 0 {
		artist.Type = model.TypeLabel
	} else {
		artist.Type = model.TypeArtist
	}

	if artist.Name == "" {
		return nil, &ParseError{URL: pageURL, Field: "artist name"}
	}
	return artist, nil
}

func isLabelPage(p *page, flagged bool) bool {
	if flagged {
		return true
	}
	if t, ok := typeFromURL(p.url); ok && t == model.TypeLabel {
		return true
	}
	return p.doc.Find(".label-band-selector, #label-band-selector, .artists-grid").Length() > 0
}

func artistFromDOM(p *page) *model.Artist {
	name := p.text("#band-name-location .title")
	if name == "" {
		name = p.meta("og:site_name")
	}

	bio := p.doc.Find("#bio-text").First().Clone()
	bio.Find(".peekaboo-link, .peekaboo-ellipsis").Remove()

	photo := p.attr(".bio-pic a.popupImage", "href")
	if photo == "" {
		photo = p.attr("img.band-photo", "src")
	}

	a := &model.Artist{
		Name:        name,
		URL:         siteRoot(p.url),
		Location:    p.text("#band-name-location .location"),
		Description: blockText(bio),
		Images:      imagesFromURL(photo),
		Shows:       domShows(p),
		Links:       domLinks(p),
		Discography: domDiscography(p),
		Artists:     domRoster(p),
	}

	if back := p.doc.Find("a.back-to-label-link").First(); back.Length() > 0 {
		href, _ := back.Attr("href")
		labelName := cleanText(back.Find(".back-to-label-name").Text())
		if labelName == "" {
			labelName = cleanText(back.Text())
		}
		a.Label = &model.Artist{Type: model.TypeLabel, Name: labelName, URL: p.resolve(href)}
	}
	return a
}

func artistFromLD(p *page, e *dto.LDEntity) *model.Artist {
	a := &model.Artist{
		Name:        e.Name,
		Description: e.Description,
		Images:      imagesFromURL(e.Image.First()),
	}
	if e.FoundingLocation != nil {
		a.Location = e.FoundingLocation.Name
	}
	if link := e.Link(); link != "" {
		a.URL = siteRoot(p.resolve(link))
	}
	return a
}

func domShows(p *page) []model.Show {
	var shows []model.Show
	p.doc.Find("#showography li").Each(func(_ int, s *goquery.Selection) {
		venue := s.Find(".showVenue a").First()
		href, _ := venue.Attr("href")
		show := model.Show{
			Date:     NormalizeDate(cleanText(s.Find(".showDate").Text())),
			Venue:    cleanText(venue.Text()),
			VenueURL: strings.TrimSpace(href),
			Location: cleanText(s.Find(".showLoc").Text()),
		}
		if show.Date != "" || show.Venue != "" {
			shows = append(shows, show)
		}
	})
	return shows
}

func domLinks(p *page) []model.Link {
	var links []model.Link
	p.doc.Find("#band-links li a").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if href = strings.TrimSpace(href); href != "" {
			links = append(links, model.Link{Name: cleanText(s.Text()), URL: href})
		}
	})
	return links
}

func discographyType(pageURL string) model.ItemType {
	if strings.Contains(pageURL, "/track/") {
		return model.TypeTrack
	}
	return model.TypeAlbum
}

func domDiscography(p *page) []model.DiscographyItem {
	var items []model.DiscographyItem
	p.doc.Find("#music-grid .music-grid-item").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Find("a").First().Attr("href")
		if href == "" {
			return
		}
		title := s.Find(".title").First().Clone()
		override := cleanText(title.Find(".artist-override").Text())
		title.Find(".artist-override").Remove()

		img := s.Find("img").First()
		src, ok := img.Attr("data-original")
		if !ok {
			src, _ = img.Attr("src")
		}

		u := p.resolve(href)
		item := model.DiscographyItem{
			Type:       discographyType(u),
			Name:       cleanText(title.Text()),
			URL:        u,
			ArtistName: override,
			Images:     imagesFromURL(src),
		}
		if dataID, ok := s.Attr("data-item-id"); ok {
			_, num, _ := strings.Cut(dataID, "-")
			if n, ok := NormalizeNumber(num); ok {
				item.ID = n
			}
		}
		items = append(items, item)
	})
	return items
}

func clientItems(p *page, items []dto.ClientItem) []model.DiscographyItem {
	out := make([]model.DiscographyItem, 0, len(items))
	for _, it := range items {
		u := p.resolve(it.PageURL)
		if u == "" {
			continue
		}
		t := model.TypeAlbum
		if it.Type == "track" {
			t = model.TypeTrack
		}
		out = append(out, model.DiscographyItem{
			Type:       t,
			ID:         it.ID.Int64(),
			Name:       it.Title,
			URL:        u,
			ArtistName: it.Artist,
			Images:     model.ImagesFromID(it.ArtID.Int64(), model.ImageKindArt),
		})
	}
	return out
}

func domRoster(p *page) []model.Artist {
	var roster []model.Artist
	p.doc.Find(".artists-grid-item").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Find("a").First().Attr("href")
		name := cleanText(s.Find(".artists-grid-name").Text())
		if name == "" || href == "" {
			return
		}
		img := s.Find("img").First()
		src, ok := img.Attr("data-src")
		if !ok {
			src, _ = img.Attr("src")
		}
		roster = append(roster, model.Artist{
			Type:     model.TypeArtist,
			Name:     name,
			URL:      siteRoot(p.resolve(href)),
			Location: cleanText(s.Find(".artists-grid-location").Text()),
			Images:   imagesFromURL(src),
		})
	})
	return roster
}
