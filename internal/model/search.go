package model

// SearchType narrows a search to one kind of result.
type SearchType string

// Search types accepted by the search page.
const (
	SearchAll     SearchType = ""
	SearchArtists SearchType = "b"
	SearchAlbums  SearchType = "a"
	SearchTracks  SearchType = "t"
	SearchFans    SearchType = "f"
)

// ParseSearchType maps a user facing name to a SearchType.
func ParseSearchType(s string) (SearchType, bool) {
	switch s {
	case "", "all":
		return SearchAll, true
	case "b", "artist", "artists", "label", "labels":
		return SearchArtists, true
	case "a", "album", "albums":
		return SearchAlbums, true
	case "t", "track", "tracks":
		return SearchTracks, true
	case "f", "fan", "fans":
		return SearchFans, true
	}
	return "", false
}

// SearchResult is one hit on the search page.
type SearchResult struct {
	Type        ItemType `json:"type"`
	Name        string   `json:"name"`
	URL         string   `json:"url"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	Location    string   `json:"location,omitempty"`
	Genre       string   `json:"genre,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Artist      string   `json:"artist,omitempty"`
	Album       string   `json:"album,omitempty"`
	ReleaseDate string   `json:"releaseDate,omitempty"`
	NumTracks   int      `json:"numTracks,omitempty"`
	Duration    string   `json:"duration,omitempty"`
}

// SearchResultsList is one page of search results.
type SearchResultsList struct {
	Query      string         `json:"query"`
	Type       SearchType     `json:"type"`
	Page       int            `json:"page"`
	TotalPages int            `json:"totalPages"`
	Items      []SearchResult `json:"items"`
}

// HasMore reports whether another page is available.
func (l *SearchResultsList) HasMore() bool {
	return l.Page < l.TotalPages
}
