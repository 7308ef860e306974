package bandcamp

import (
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slugify folds diacritics, lower-cases s and joins its alphanumeric runs
// with hyphens, the way Bandcamp builds page slugs.
//
//	Slugify("Café del Mar (Remix)") // "cafe-del-mar-remix"
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}

// URLSlug returns the last path segment of raw.
func URLSlug(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	path := strings.TrimRight(u.Path, "/")
	if i := strings.LastIndex(path, "/"); i >= 0 {
		path = path[i+1:]
	}
	return strings.ToLower(path)
}

const artistTitleSeparator = " - "

// SplitArtistTitle splits a track name of the form "Artist - Title" using
// the track's URL slug to find the right separator. The first separator
// whose remainder slugifies to the URL slug, or to a prefix of it at
// least half as long, wins. ok is false when no separator matches.
func SplitArtistTitle(name, trackURL string) (artist, title string, ok bool) {
	slug := URLSlug(trackURL)
	if slug == "" {
		return "", "", false
	}
	for from := 0; from < len(name); {
		i := strings.Index(name[from:], artistTitleSeparator)
		if i < 0 {
			break
		}
		at := from + i
		rest := name[at+len(artistTitleSeparator):]
		candidate := Slugify(rest)
		if candidate != "" && (candidate == slug ||
			(2*len(candidate) >= len(slug) && strings.HasPrefix(slug, candidate))) {
			artist = strings.TrimSpace(name[:at])
			title = strings.TrimSpace(rest)
			if artist != "" && title != "" {
				return artist, title, true
			}
		}
		from = at + 1
	}
	return "", "", false
}
