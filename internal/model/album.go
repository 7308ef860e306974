package model

// Album is a release page with its track listing.
type Album struct {
	ID          int64        `json:"id,omitempty"`
	Name        string       `json:"name"`
	URL         string       `json:"url,omitempty"`
	Artist      *Artist      `json:"artist,omitempty"`
	Label       *Artist      `json:"label,omitempty"`
	Images      []Image      `json:"images,omitempty"`
	Tags        []Tag        `json:"tags,omitempty"`
	Description string       `json:"description,omitempty"`
	Credits     string       `json:"credits,omitempty"`
	ReleaseDate string       `json:"releaseDate,omitempty"`
	NumTracks   int          `json:"numTracks,omitempty"`
	Tracks      []AlbumTrack `json:"tracks,omitempty"`
}

// AlbumTrack is a track as listed inside an album. TrackNumber is
// 1-based and dense in listing order.
type AlbumTrack struct {
	ID           int64         `json:"id,omitempty"`
	Name         string        `json:"name"`
	URL          string        `json:"url,omitempty"`
	TrackNumber  int           `json:"trackNumber"`
	Duration     float64       `json:"duration,omitempty"`
	Lyrics       string        `json:"lyrics,omitempty"`
	Artist       *Artist       `json:"artist,omitempty"`
	AudioSources []AudioSource `json:"audioSources,omitempty"`
}

// HasAudio reports whether any track of the album is playable.
func (a *Album) HasAudio() bool {
	for _, t := range a.Tracks {
		if len(t.AudioSources) > 0 {
			return true
		}
	}
	return false
}

// Merge refines a with src. Tracks are matched by position, audio
// sources and tags are unioned, and track numbers are renumbered.
func (a *Album) Merge(src *Album) {
	if a == nil || src == nil {
		return
	}
	tracks := MergeAlbumTracks(a.Tracks, src.Tracks)
	tags := MergeTags(a.Tags, src.Tags)

	tmp := *src
	tmp.Tracks = nil
	tmp.Tags = nil
	Refine(a, &tmp)

	a.Tracks = tracks
	a.Tags = tags
	if len(a.Tracks) > 0 {
		a.NumTracks = len(a.Tracks)
	}
}

// Merge refines t with src, unioning audio sources.
func (t *AlbumTrack) Merge(src *AlbumTrack) {
	if t == nil || src == nil {
		return
	}
	sources := MergeAudioSources(t.AudioSources, src.AudioSources)
	tmp := *src
	tmp.AudioSources = nil
	Refine(t, &tmp)
	t.AudioSources = sources
}

// MergeAlbumTracks merges add into dst position by position, appends any
// extra tracks and renumbers the result 1..n.
func MergeAlbumTracks(dst, add []AlbumTrack) []AlbumTrack {
	out := make([]AlbumTrack, len(dst), max(len(dst), len(add)))
	copy(out, dst)
	for i := range add {
		if i < len(out) {
			out[i].Merge(&add[i])
			continue
		}
		out = append(out, add[i])
	}
	RenumberTracks(out)
	return out
}

// RenumberTracks assigns dense 1-based track numbers in slice order.
func RenumberTracks(tracks []AlbumTrack) {
	for i := range tracks {
		tracks[i].TrackNumber = i + 1
	}
}
