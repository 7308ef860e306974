package bandcamp

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/handiism/bandcamp-fetch/internal/bandcamp/dto"
	"github.com/handiism/bandcamp-fetch/internal/model"
)

// ParseTralbum extracts an album or a track from its page.
//
// Every field is first read from the DOM, then overwritten by the JSON-LD
// block and finally by the data-tralbum blob, each source only replacing
// values it actually supplies. The result is a *model.Album or a
// *model.Track depending on what the page describes.
//
// Returns a *ParseError if the page type cannot be determined or the
// release has no name.
func ParseTralbum(html, pageURL string) (model.Entity, error) {
	p, err := newPage(html, pageURL)
	if err != nil {
		return nil, err
	}

	var tr dto.Tralbum
	hasTralbum, err := p.jsonAttr("[data-tralbum]", "data-tralbum", &tr)
	if err != nil {
		return nil, err
	}
	var tralbum *dto.Tralbum
	if hasTralbum {
		tralbum = &tr
	}
	ld := p.jsonLD()

	switch tralbumKind(p, tralbum, ld) {
	case model.TypeAlbum:
		album, err := parseAlbum(p, tralbum, ld)
		if err != nil {
			return nil, err
		}
		return album, nil
	case model.TypeTrack:
		track, err := parseTrack(p, tralbum, ld)
		if err != nil {
			return nil, err
		}
		return track, nil
	}
	return nil, &ParseError{URL: pageURL, Field: "item type"}
}

func tralbumKind(p *page, tr *dto.Tralbum, ld *dto.LDEntity) model.ItemType {
	if tr != nil {
		switch strings.ToLower(tr.ItemType) {
		case "album":
			return model.TypeAlbum
		case "track":
			return model.TypeTrack
		}
	}
	if ld != nil {
		switch {
		case ld.Is("MusicAlbum"):
			return model.TypeAlbum
		case ld.Is("MusicRecording"):
			return model.TypeTrack
		}
	}
	t, _ := InferType(p.url, p.meta("og:type"))
	return t
}

func parseAlbum(p *page, tr *dto.Tralbum, ld *dto.LDEntity) (*model.Album, error) {
	album := albumFromDOM(p)
	if ld != nil && ld.Is("MusicAlbum") {
		album.Merge(albumFromLD(p, ld))
	}
	if tr != nil {
		album.Merge(albumFromTralbum(p, tr))
	}

	for i := range album.Tracks {
		splitTrackArtist(&album.Tracks[i])
	}
	model.RenumberTracks(album.Tracks)
	if len(album.Tracks) > 0 {
		album.NumTracks = len(album.Tracks)
	}

	if album.Name == "" {
		return nil, &ParseError{URL: p.url, Field: "album name"}
	}
	return album, nil
}

func parseTrack(p *page, tr *dto.Tralbum, ld *dto.LDEntity) (*model.Track, error) {
	track := trackFromDOM(p)
	if ld != nil && ld.Is("MusicRecording") {
		track.Merge(trackFromLD(p, ld))
	}
	if tr != nil {
		track.Merge(trackFromTralbum(p, tr))
	}

	if track.Name == "" {
		return nil, &ParseError{URL: p.url, Field: "track name"}
	}
	if track.Album == nil || track.Album.URL == "" || model.SameURL(track.Album.URL, track.URL) {
		track.MarkSingle()
	}
	return track, nil
}

// splitTrackArtist applies the "Artist - Title" heuristic to a track
// without its own artist.
func splitTrackArtist(t *model.AlbumTrack) {
	if t.Artist != nil && t.Artist.Name != "" {
		return
	}
	if artist, title, ok := SplitArtistTitle(t.Name, t.URL); ok {
		t.Artist = &model.Artist{Type: model.TypeArtist, Name: artist}
		t.Name = title
	}
}

// AlbumFromSingle wraps a single track in a one-track album carrying the
// track's artist, images, tags and description.
func AlbumFromSingle(t *model.Track) *model.Album {
	return &model.Album{
		ID:          t.ID,
		Name:        t.Name,
		URL:         t.URL,
		Artist:      t.Artist,
		Label:       t.Label,
		Images:      t.Images,
		Tags:        t.Tags,
		Description: t.Description,
		Credits:     t.Credits,
		ReleaseDate: t.ReleaseDate,
		NumTracks:   1,
		Tracks: []model.AlbumTrack{{
			ID:           t.ID,
			Name:         t.Name,
			URL:          t.URL,
			TrackNumber:  1,
			Duration:     t.Duration,
			Lyrics:       t.Lyrics,
			AudioSources: t.AudioSources,
		}},
	}
}

// DOM baseline

func selfURL(p *page) string {
	if og := p.meta("og:url"); og != "" {
		return p.resolve(og)
	}
	return model.CanonicalURL(p.url)
}

func domArtist(p *page) *model.Artist {
	link := p.doc.Find("#name-section h3 span a").Last()
	href, _ := link.Attr("href")
	return artistRef(cleanText(link.Text()), p.resolve(href))
}

func domImages(p *page) []model.Image {
	if href := p.attr("#tralbumArt a.popupImage", "href"); href != "" {
		return imagesFromURL(href)
	}
	return imagesFromURL(p.meta("og:image"))
}

func domTags(p *page) []model.Tag {
	var tags []model.Tag
	p.doc.Find(".tralbum-tags a.tag").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		tags = append(tags, model.Tag{Name: cleanText(s.Text()), URL: p.resolve(href)})
	})
	return model.MergeTags(nil, tags)
}

var releasedLine = regexp.MustCompile(`(?i)released\s+([A-Za-z]+ \d{1,2}, \d{4})`)

// domCredits splits the credits block into its "released ..." date and
// the remaining credits text.
func domCredits(p *page) (credits, released string) {
	text := blockText(p.doc.Find(".tralbum-credits"))
	if m := releasedLine.FindStringSubmatchIndex(text); m != nil {
		released = NormalizeDate(text[m[2]:m[3]])
		text = strings.TrimSpace(text[:m[0]] + text[m[1]:])
	}
	return text, released
}

func domTrackRows(p *page) []model.AlbumTrack {
	var tracks []model.AlbumTrack
	p.doc.Find("#track_table .track_row_view").Each(func(i int, s *goquery.Selection) {
		num := i + 1
		if rel, ok := s.Attr("rel"); ok {
			if n, ok := NormalizeNumber(strings.TrimPrefix(rel, "tracknum=")); ok && n > 0 {
				num = int(n)
			}
		}
		name := cleanText(s.Find(".track-title").First().Text())
		href, _ := s.Find(".title a").First().Attr("href")
		tracks = append(tracks, model.AlbumTrack{
			Name:     name,
			URL:      p.resolve(href),
			Duration: ParseDuration(s.Find(".time").First().Text()),
			Lyrics:   blockText(p.doc.Find(fmt.Sprintf("#lyrics_row_%d .lyricsText", num))),
		})
	})
	return tracks
}

func albumFromDOM(p *page) *model.Album {
	credits, released := domCredits(p)
	return &model.Album{
		Name:        p.text("#name-section .trackTitle"),
		URL:         selfURL(p),
		Artist:      domArtist(p),
		Images:      domImages(p),
		Tags:        domTags(p),
		Description: blockText(p.doc.Find(".tralbum-about")),
		Credits:     credits,
		ReleaseDate: released,
		Tracks:      domTrackRows(p),
	}
}

func trackFromDOM(p *page) *model.Track {
	credits, released := domCredits(p)
	t := &model.Track{
		Name:        p.text("#name-section .trackTitle"),
		URL:         selfURL(p),
		Artist:      domArtist(p),
		Images:      domImages(p),
		Tags:        domTags(p),
		Description: blockText(p.doc.Find(".tralbum-about")),
		Credits:     credits,
		ReleaseDate: released,
		Lyrics:      blockText(p.doc.Find(".lyricsText")),
	}
	if from := p.doc.Find("#name-section .fromAlbum").First(); from.Length() > 0 {
		href, ok := from.Closest("a").Attr("href")
		if !ok {
			href, _ = from.Find("a").Attr("href")
		}
		t.Album = &model.Album{Name: cleanText(from.Text()), URL: p.resolve(href)}
	}
	return t
}

// JSON-LD

func ldAudioSources(e *dto.LDEntity) []model.AudioSource {
	files := map[string]string{}
	for _, prop := range e.AdditionalProperty {
		if t, ok := strings.CutPrefix(prop.Name, "file_"); ok {
			files[t] = prop.String()
		}
	}
	return audioSources(files)
}

func ldID(e *dto.LDEntity, name string) int64 {
	v, ok := e.Property(name)
	if !ok {
		return 0
	}
	n, _ := strconv.ParseInt(v, 10, 64)
	return n
}

func ldLabel(p *page, e *dto.LDEntity) *model.Artist {
	if e.Publisher == nil || e.Publisher.Name == "" {
		return nil
	}
	if e.ByArtist != nil && e.ByArtist.Name == e.Publisher.Name {
		return nil
	}
	return &model.Artist{Type: model.TypeLabel, Name: e.Publisher.Name, URL: p.resolve(e.Publisher.Link())}
}

func ldArtist(p *page, e *dto.LDEntity) *model.Artist {
	if e.ByArtist == nil {
		return nil
	}
	return artistRef(e.ByArtist.Name, p.resolve(e.ByArtist.Link()))
}

func albumFromLD(p *page, e *dto.LDEntity) *model.Album {
	a := &model.Album{
		ID:          ldID(e, "item_id"),
		Name:        e.Name,
		URL:         p.resolve(e.Link()),
		Artist:      ldArtist(p, e),
		Label:       ldLabel(p, e),
		Images:      imagesFromURL(e.Image.First()),
		Tags:        tagsFromKeywords(e.Keywords),
		Description: e.Description,
		Credits:     e.CreditText,
		ReleaseDate: string(e.DatePublished),
		NumTracks:   e.NumTracks.Int(),
	}
	if e.Track == nil {
		return a
	}
	items := append([]dto.LDListItem(nil), e.Track.ItemListElement...)
	sort.SliceStable(items, func(i, j int) bool { return items[i].Position < items[j].Position })
	for _, it := range items {
		item := it.Item
		a.Tracks = append(a.Tracks, model.AlbumTrack{
			ID:           ldID(&item, "track_id"),
			Name:         item.Name,
			URL:          p.resolve(item.Link()),
			Duration:     ParseDuration(item.Duration),
			Lyrics:       item.Lyrics(),
			Artist:       ldArtist(p, &item),
			AudioSources: ldAudioSources(&item),
		})
	}
	return a
}

func trackFromLD(p *page, e *dto.LDEntity) *model.Track {
	t := &model.Track{
		ID:           ldID(e, "track_id"),
		Name:         e.Name,
		URL:          p.resolve(e.Link()),
		Duration:     ParseDuration(e.Duration),
		Artist:       ldArtist(p, e),
		Label:        ldLabel(p, e),
		Images:       imagesFromURL(e.Image.First()),
		Tags:         tagsFromKeywords(e.Keywords),
		Description:  e.Description,
		Credits:      e.CreditText,
		Lyrics:       e.Lyrics(),
		ReleaseDate:  string(e.DatePublished),
		AudioSources: ldAudioSources(e),
	}
	if n, err := strconv.Atoi(firstProperty(e, "tracknum", "track_number")); err == nil {
		t.TrackNumber = n
	}
	if e.InAlbum != nil && (e.InAlbum.Name != "" || e.InAlbum.Link() != "") {
		t.Album = &model.Album{Name: e.InAlbum.Name, URL: p.resolve(e.InAlbum.Link())}
	}
	return t
}

func firstProperty(e *dto.LDEntity, names ...string) string {
	for _, n := range names {
		if v, ok := e.Property(n); ok {
			return v
		}
	}
	return ""
}

// data-tralbum

func tralbumArtist(p *page, tr *dto.Tralbum) *model.Artist {
	name := tr.Artist
	if name == "" {
		name = tr.Current.Artist
	}
	if name == "" {
		return nil
	}
	return artistRef(name, siteRoot(p.url))
}

func tralbumImages(tr *dto.Tralbum) []model.Image {
	id := tr.ArtID
	if id == 0 {
		id = tr.Current.ArtID
	}
	return model.ImagesFromID(id.Int64(), model.ImageKindArt)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func albumFromTralbum(p *page, tr *dto.Tralbum) *model.Album {
	id := tr.ID
	if id == 0 {
		id = tr.Current.ID
	}
	a := &model.Album{
		ID:          id.Int64(),
		Name:        tr.Current.Title,
		URL:         p.resolve(tr.URL),
		Artist:      tralbumArtist(p, tr),
		Images:      tralbumImages(tr),
		Description: tr.Current.About,
		Credits:     tr.Current.Credits,
		ReleaseDate: firstNonEmpty(string(tr.AlbumReleaseDate), string(tr.Current.ReleaseDate), string(tr.Current.PublishDate)),
	}
	for _, ti := range tr.TrackInfo {
		var artist *model.Artist
		if ti.Artist != "" {
			artist = &model.Artist{Type: model.TypeArtist, Name: ti.Artist}
		}
		a.Tracks = append(a.Tracks, model.AlbumTrack{
			ID:           ti.TrackIdentifier(),
			Name:         ti.Title,
			URL:          p.resolve(ti.TitleLink),
			Duration:     float64(ti.Duration),
			Lyrics:       ti.Lyrics,
			Artist:       artist,
			AudioSources: audioSources(ti.File),
		})
	}
	return a
}

func trackFromTralbum(p *page, tr *dto.Tralbum) *model.Track {
	id := tr.ID
	if id == 0 {
		id = tr.Current.ID
	}
	t := &model.Track{
		ID:          id.Int64(),
		Name:        tr.Current.Title,
		URL:         p.resolve(tr.URL),
		TrackNumber: tr.Current.TrackNumber.Int(),
		Artist:      tralbumArtist(p, tr),
		Images:      tralbumImages(tr),
		Description: tr.Current.About,
		Credits:     tr.Current.Credits,
		Lyrics:      tr.Current.Lyrics,
		ReleaseDate: firstNonEmpty(string(tr.Current.ReleaseDate), string(tr.AlbumReleaseDate), string(tr.Current.PublishDate)),
	}
	if len(tr.TrackInfo) > 0 {
		ti := tr.TrackInfo[0]
		t.Duration = float64(ti.Duration)
		t.AudioSources = audioSources(ti.File)
		if ti.Lyrics != "" {
			t.Lyrics = ti.Lyrics
		}
		if t.TrackNumber == 0 {
			t.TrackNumber = ti.TrackNum.Int()
		}
	}
	if tr.AlbumURL != "" {
		var embed dto.Embed
		_, _ = p.jsonAttr("[data-embed]", "data-embed", &embed)
		t.Album = &model.Album{Name: embed.AlbumTitle, URL: p.resolve(tr.AlbumURL)}
	}
	return t
}
