package bandcamp

import (
	"net/url"
	"strings"

	"github.com/handiism/bandcamp-fetch/internal/model"
)

var ogTypes = map[string]model.ItemType{
	"band":    model.TypeArtist,
	"song":    model.TypeTrack,
	"album":   model.TypeAlbum,
	"profile": model.TypeFan,
}

// Paths on bandcamp.com itself that are not fan profiles.
var reservedRootPaths = map[string]bool{
	"search": true, "api": true, "tag": true, "discover": true, "help": true,
	"about": true, "login": true, "signup": true, "artists": true, "fans": true,
	"terms_of_use": true, "privacy": true, "cart": true, "settings": true,
	"fan_signup": true, "guide": true, "gift_cards": true, "EmbeddedPlayer": true,
}

// InferType determines the kind of page from its URL path, falling back
// to the og:type meta value. It reports false when neither is conclusive.
func InferType(pageURL, ogType string) (model.ItemType, bool) {
	if t, ok := typeFromURL(pageURL); ok {
		return t, true
	}
	t, ok := ogTypes[strings.ToLower(strings.TrimSpace(ogType))]
	return t, ok
}

func typeFromURL(pageURL string) (model.ItemType, bool) {
	u, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil {
		return "", false
	}
	host := strings.ToLower(u.Hostname())
	path := strings.TrimRight(u.Path, "/")

	if host == "bandcamp.com" || host == "www.bandcamp.com" {
		first, _, _ := strings.Cut(strings.TrimPrefix(path, "/"), "/")
		if first != "" && !reservedRootPaths[first] {
			return model.TypeFan, true
		}
		return "", false
	}

	switch {
	case strings.HasPrefix(path, "/album/"):
		return model.TypeAlbum, true
	case strings.HasPrefix(path, "/track/"):
		return model.TypeTrack, true
	case path == "" || path == "/music":
		return model.TypeArtist, true
	case path == "/artists":
		return model.TypeLabel, true
	}
	return "", false
}

// IsFanRootPage reports whether pageURL is a fan's profile root rather
// than one of its sub-pages such as /wishlist.
func IsFanRootPage(pageURL string) bool {
	u, err := url.Parse(pageURL)
	if err != nil {
		return false
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	return len(segments) == 1 && segments[0] != ""
}

// FanUsername extracts the username from a fan URL.
func FanUsername(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	first, _, _ := strings.Cut(strings.Trim(u.Path, "/"), "/")
	return first
}

// PageType infers the kind of a fetched page from its URL and og:type.
func PageType(html, pageURL string) (model.ItemType, bool) {
	if t, ok := typeFromURL(pageURL); ok {
		return t, true
	}
	p, err := newPage(html, pageURL)
	if err != nil {
		return "", false
	}
	return InferType(pageURL, p.meta("og:type"))
}
