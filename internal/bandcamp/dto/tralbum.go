package dto

// Tralbum is the data-tralbum blob embedded in album and track pages.
type Tralbum struct {
	ID               Number         `json:"id"`
	ItemType         string         `json:"item_type"`
	URL              string         `json:"url"`
	Artist           string         `json:"artist"`
	ArtID            Number         `json:"art_id"`
	AlbumURL         string         `json:"album_url"`
	AlbumReleaseDate Date           `json:"album_release_date"`
	Current          TralbumCurrent `json:"current"`
	TrackInfo        []TrackInfo    `json:"trackinfo"`
}

// TralbumCurrent describes the page's own release.
type TralbumCurrent struct {
	ID          Number `json:"id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	About       string `json:"about"`
	Credits     string `json:"credits"`
	Lyrics      string `json:"lyrics"`
	ReleaseDate Date   `json:"release_date"`
	PublishDate Date   `json:"publish_date"`
	TrackNumber Number `json:"track_number"`
	ArtID       Number `json:"art_id"`
	BandID      Number `json:"band_id"`
	AlbumID     Number `json:"album_id"`
}

// TrackInfo is one entry of the trackinfo array. File maps an encoding
// tag to a stream URL.
type TrackInfo struct {
	ID        Number            `json:"id"`
	TrackID   Number            `json:"track_id"`
	Title     string            `json:"title"`
	Artist    string            `json:"artist"`
	TrackNum  Number            `json:"track_num"`
	Duration  Float             `json:"duration"`
	TitleLink string            `json:"title_link"`
	Lyrics    string            `json:"lyrics"`
	File      map[string]string `json:"file"`
}

// TrackIdentifier prefers track_id over id.
func (t TrackInfo) TrackIdentifier() int64 {
	if t.TrackID != 0 {
		return t.TrackID.Int64()
	}
	return t.ID.Int64()
}

// Embed is the data-embed blob; track pages use it to name their album.
type Embed struct {
	AlbumTitle string `json:"album_title"`
	Linkback   string `json:"linkback"`
}

// Band is the data-band blob on artist and label pages.
type Band struct {
	ID      Number `json:"id"`
	Name    string `json:"name"`
	URL     string `json:"url"`
	ImageID Number `json:"image_id"`
	IsLabel bool   `json:"is_label"`
}

// ClientItem is one entry of the music grid's data-client-items.
type ClientItem struct {
	ID       Number `json:"id"`
	Type     string `json:"type"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	PageURL  string `json:"page_url"`
	ArtID    Number `json:"art_id"`
	BandID   Number `json:"band_id"`
	BandName string `json:"band_name"`
}
