package model

// Track is a standalone track page. A track without a containing album
// is a single: Album mirrors the track's own name and URL and
// TrackNumber is zero.
type Track struct {
	ID           int64         `json:"id,omitempty"`
	Name         string        `json:"name"`
	URL          string        `json:"url,omitempty"`
	TrackNumber  int           `json:"trackNumber,omitempty"`
	Duration     float64       `json:"duration,omitempty"`
	Artist       *Artist       `json:"artist,omitempty"`
	Album        *Album        `json:"album,omitempty"`
	Label        *Artist       `json:"label,omitempty"`
	Images       []Image       `json:"images,omitempty"`
	Tags         []Tag         `json:"tags,omitempty"`
	Description  string        `json:"description,omitempty"`
	Credits      string        `json:"credits,omitempty"`
	Lyrics       string        `json:"lyrics,omitempty"`
	ReleaseDate  string        `json:"releaseDate,omitempty"`
	AudioSources []AudioSource `json:"audioSources,omitempty"`
}

// IsSingle reports whether the track stands alone.
func (t *Track) IsSingle() bool {
	return t.Album != nil && t.Album.URL != "" && t.Album.URL == t.URL
}

// MarkSingle mirrors the track into its album reference and drops the
// track number.
func (t *Track) MarkSingle() {
	t.Album = &Album{
		Name:        t.Name,
		URL:         t.URL,
		ReleaseDate: t.ReleaseDate,
	}
	t.TrackNumber = 0
}

// Merge refines t with src, unioning audio sources and tags.
func (t *Track) Merge(src *Track) {
	if t == nil || src == nil {
		return
	}
	sources := MergeAudioSources(t.AudioSources, src.AudioSources)
	tags := MergeTags(t.Tags, src.Tags)
	tmp := *src
	tmp.AudioSources = nil
	tmp.Tags = nil
	Refine(t, &tmp)
	t.AudioSources = sources
	t.Tags = tags
}
