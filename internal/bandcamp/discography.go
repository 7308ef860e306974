package bandcamp

import (
	"errors"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoAlbumFound is returned when a page links to no album or track.
var ErrNoAlbumFound = errors.New("no album found on page")

// ErrAmbiguousAlbum is returned when a page that should show a single
// release links to several.
var ErrAmbiguousAlbum = errors.New("found multiple album URLs, expected exactly one")

// Discography lists the release URLs of an artist's /music page.
//
// An artist with a single release usually has /music redirect to that
// release's page; the #discography sidebar gives it away and the one
// album it links to is returned.
//
//	disco := NewDiscography()
//	urls, err := disco.GetAlbumURLs(musicPageHTML, "https://artist.bandcamp.com/music")
type Discography struct{}

// NewDiscography creates a new Discography service.
func NewDiscography() *Discography {
	return &Discography{}
}

var clientItemURL = regexp.MustCompile(`"page_url"\s*:\s*"([^"]+)"`)

// GetAlbumURLs returns the canonical album and track URLs linked from a
// music page, resolved against pageURL, sorted and without duplicates.
// Grid items that are only listed in data-client-items count too.
func (d *Discography) GetAlbumURLs(musicPageHTML, pageURL string) ([]string, error) {
	p, err := newPage(musicPageHTML, pageURL)
	if err != nil {
		return nil, err
	}

	if p.doc.Find("#discography").Length() > 0 {
		u, err := singleRelease(p)
		if err != nil {
			return nil, err
		}
		return []string{u}, nil
	}

	set := map[string]struct{}{}
	p.doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if isReleasePath(href) {
			set[p.resolve(href)] = struct{}{}
		}
	})
	p.doc.Find("[data-client-items]").Each(func(_ int, s *goquery.Selection) {
		raw, _ := s.Attr("data-client-items")
		for _, m := range clientItemURL.FindAllStringSubmatch(raw, -1) {
			if isReleasePath(m[1]) {
				set[p.resolve(m[1])] = struct{}{}
			}
		}
	})
	delete(set, "")

	if len(set) == 0 {
		return nil, ErrNoAlbumFound
	}
	urls := make([]string, 0, len(set))
	for u := range set {
		urls = append(urls, u)
	}
	sort.Strings(urls)
	return urls, nil
}

func singleRelease(p *page) (string, error) {
	set := map[string]struct{}{}
	p.doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if u, err := url.Parse(href); err == nil && strings.HasPrefix(u.Path, "/album/") {
			set[p.resolve(href)] = struct{}{}
		}
	})
	switch len(set) {
	case 0:
		return "", ErrNoAlbumFound
	case 1:
		for u := range set {
			return u, nil
		}
	}
	return "", ErrAmbiguousAlbum
}

func isReleasePath(ref string) bool {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return false
	}
	return strings.HasPrefix(u.Path, "/album/") || strings.HasPrefix(u.Path, "/track/")
}
