package model

// Artist is an artist or label page. Type distinguishes the two; labels
// additionally list the artists on their roster.
type Artist struct {
	Type        ItemType          `json:"type,omitempty"`
	ID          int64             `json:"id,omitempty"`
	Name        string            `json:"name"`
	URL         string            `json:"url,omitempty"`
	Location    string            `json:"location,omitempty"`
	Description string            `json:"description,omitempty"`
	Images      []Image           `json:"images,omitempty"`
	Label       *Artist           `json:"label,omitempty"`
	Shows       []Show            `json:"shows,omitempty"`
	Links       []Link            `json:"links,omitempty"`
	Discography []DiscographyItem `json:"discography,omitempty"`
	Artists     []Artist          `json:"artists,omitempty"`
}

// ItemID returns the artist id; it is the merge key in follow lists.
func (a Artist) ItemID() int64 { return a.ID }

// Show is an upcoming live date listed on an artist page.
type Show struct {
	Date     string `json:"date"`
	Venue    string `json:"venue,omitempty"`
	VenueURL string `json:"venueUrl,omitempty"`
	Location string `json:"location,omitempty"`
}

// Link is an external link from an artist's profile.
type Link struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// DiscographyItem is one release listed on an artist's music page.
type DiscographyItem struct {
	Type       ItemType `json:"type"`
	ID         int64    `json:"id,omitempty"`
	Name       string   `json:"name"`
	URL        string   `json:"url"`
	ArtistName string   `json:"artistName,omitempty"`
	Images     []Image  `json:"images,omitempty"`
}

// Merge refines a with the non-empty fields of src. Discography entries
// are matched by URL.
func (a *Artist) Merge(src *Artist) {
	if a == nil || src == nil {
		return
	}
	disco := mergeDiscography(a.Discography, src.Discography)
	tmp := *src
	tmp.Discography = nil
	Refine(a, &tmp)
	a.Discography = disco
}

func mergeDiscography(dst, add []DiscographyItem) []DiscographyItem {
	index := make(map[string]int, len(dst))
	for i, d := range dst {
		index[CanonicalURL(d.URL)] = i
	}
	for _, d := range add {
		key := CanonicalURL(d.URL)
		if i, ok := index[key]; ok && key != "" {
			Refine(&dst[i], &d)
			continue
		}
		index[key] = len(dst)
		dst = append(dst, d)
	}
	return dst
}
