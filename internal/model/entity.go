package model

// ItemType tags the kind of an entity or list item.
type ItemType string

const (
	TypeArtist     ItemType = "artist"
	TypeLabel      ItemType = "label"
	TypeAlbum      ItemType = "album"
	TypeTrack      ItemType = "track"
	TypeAlbumTrack ItemType = "albumTrack"
	TypeFan        ItemType = "fan"
)

// Entity is one resolved page. The set of implementations is closed:
// *Artist, *Album, *Track and *Fan.
type Entity interface {
	Kind() ItemType
	PageURL() string
	isEntity()
}

func (a *Artist) Kind() ItemType {
	if a.Type == TypeLabel {
		return TypeLabel
	}
	return TypeArtist
}

func (a *Album) Kind() ItemType { return TypeAlbum }
func (t *Track) Kind() ItemType { return TypeTrack }
func (f *Fan) Kind() ItemType   { return TypeFan }

func (a *Artist) PageURL() string { return a.URL }
func (a *Album) PageURL() string  { return a.URL }
func (t *Track) PageURL() string  { return t.URL }
func (f *Fan) PageURL() string    { return f.URL }

func (*Artist) isEntity() {}
func (*Album) isEntity()  {}
func (*Track) isEntity()  {}
func (*Fan) isEntity()    {}

// AudioSource is one playable stream of a track. Type is a platform
// encoding tag such as "mp3-128", "mp3-v0" or "flac"; unknown tags are kept.
type AudioSource struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// Tag is a genre or free-form tag attached to a release.
type Tag struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// HasAudioSource reports whether sources already contain the URL or type.
func HasAudioSource(sources []AudioSource, s AudioSource) bool {
	for _, existing := range sources {
		if existing.URL == s.URL || existing.Type == s.Type {
			return true
		}
	}
	return false
}

// MergeAudioSources appends the sources from add whose URL and type are
// not already present.
func MergeAudioSources(dst, add []AudioSource) []AudioSource {
	for _, s := range add {
		if s.URL == "" || HasAudioSource(dst, s) {
			continue
		}
		dst = append(dst, s)
	}
	return dst
}

// MergeTags unions tags by name, keeping the first URL seen for a name
// unless it was empty.
func MergeTags(dst, add []Tag) []Tag {
	index := make(map[string]int, len(dst))
	for i, t := range dst {
		index[t.Name] = i
	}
	for _, t := range add {
		if t.Name == "" {
			continue
		}
		if i, ok := index[t.Name]; ok {
			if dst[i].URL == "" {
				dst[i].URL = t.URL
			}
			continue
		}
		index[t.Name] = len(dst)
		dst = append(dst, t)
	}
	return dst
}
