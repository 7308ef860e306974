package bandcamp

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/handiism/bandcamp-fetch/internal/model"
)

var searchItemTypes = map[string]model.ItemType{
	"artist": model.TypeArtist,
	"label":  model.TypeLabel,
	"album":  model.TypeAlbum,
	"track":  model.TypeTrack,
	"fan":    model.TypeFan,
}

// ParseSearchResults extracts one page of results from the search page.
func ParseSearchResults(html, pageURL string, query string, kind model.SearchType, pageNum int) (*model.SearchResultsList, error) {
	p, err := newPage(html, pageURL)
	if err != nil {
		return nil, err
	}
	if pageNum < 1 {
		pageNum = 1
	}

	list := &model.SearchResultsList{
		Query: query,
		Type:  kind,
		Page:  pageNum,
		Items: []model.SearchResult{},
	}
	p.doc.Find(".result-items li.searchresult").Each(func(_ int, s *goquery.Selection) {
		if r, ok := searchResult(p, s); ok {
			list.Items = append(list.Items, r)
		}
	})

	list.TotalPages = pageNum
	p.doc.Find(".pagelist .pagenum").Each(func(_ int, s *goquery.Selection) {
		if n, err := strconv.Atoi(cleanText(s.Text())); err == nil && n > list.TotalPages {
			list.TotalPages = n
		}
	})
	return list, nil
}

// stripLabel flattens s onto one line and drops a leading label such as
// "by" or "tags:".
func stripLabel(s, label string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) >= len(label) && strings.EqualFold(s[:len(label)], label) {
		s = strings.TrimSpace(s[len(label):])
	}
	return s
}

func searchResult(p *page, s *goquery.Selection) (model.SearchResult, bool) {
	kind, ok := searchItemTypes[strings.ToLower(cleanText(s.Find(".itemtype").Text()))]
	if !ok {
		return model.SearchResult{}, false
	}

	heading := s.Find(".heading a").First()
	link := cleanText(s.Find(".itemurl").Text())
	if link == "" {
		link, _ = heading.Attr("href")
	}
	img, _ := s.Find(".art img").First().Attr("src")

	r := model.SearchResult{
		Type:     kind,
		Name:     cleanText(heading.Text()),
		URL:      p.resolve(link),
		ImageURL: strings.TrimSpace(img),
		Genre:    stripLabel(s.Find(".genre").Text(), "genre:"),
	}
	if r.Name == "" || r.URL == "" {
		return model.SearchResult{}, false
	}

	if tags := stripLabel(s.Find(".tags").Text(), "tags:"); tags != "" {
		for _, t := range strings.Split(tags, ",") {
			if t = strings.TrimSpace(t); t != "" {
				r.Tags = append(r.Tags, t)
			}
		}
	}
	if released := stripLabel(s.Find(".released").Text(), "released"); released != "" {
		r.ReleaseDate = NormalizeDate(released)
	}

	subhead := stripLabel(s.Find(".subhead").Text(), "")
	switch kind {
	case model.TypeArtist, model.TypeLabel, model.TypeFan:
		r.Location = subhead
	case model.TypeAlbum:
		r.Artist = stripLabel(subhead, "by")
	case model.TypeTrack:
		rest := stripLabel(subhead, "from")
		if album, artist, found := strings.Cut(rest, " by "); found {
			r.Album = strings.TrimSpace(album)
			r.Artist = strings.TrimSpace(artist)
		} else {
			r.Artist = stripLabel(rest, "by")
		}
	}

	length := cleanText(s.Find(".length").Text())
	if kind == model.TypeAlbum {
		if n, _, found := strings.Cut(length, " track"); found {
			r.NumTracks, _ = strconv.Atoi(strings.TrimSpace(n))
		}
	}
	if kind == model.TypeTrack {
		r.Duration = stripLabel(length, "length")
	}
	return r, true
}
