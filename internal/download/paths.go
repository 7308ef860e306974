package download

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/handiism/bandcamp-fetch/internal/bandcamp"
	ioutils "github.com/handiism/bandcamp-fetch/internal/io"
	"github.com/handiism/bandcamp-fetch/internal/model"
)

// nameVars holds the placeholder values of one file. Every value is
// sanitized before substitution, so a value can never add a path
// separator.
type nameVars struct {
	artist   string
	album    string
	year     string
	label    string
	title    string
	tracknum string
	ext      string
}

func albumVars(a *model.Album) nameVars {
	v := nameVars{album: a.Name}
	if a.Artist != nil {
		v.artist = a.Artist.Name
	}
	if a.Label != nil {
		v.label = a.Label.Name
	}
	if len(a.ReleaseDate) >= 4 {
		v.year = a.ReleaseDate[:4]
	}
	return v
}

func (v nameVars) withTrack(t model.AlbumTrack, ext string) nameVars {
	v.title = t.Name
	v.tracknum = twoDigits(t.TrackNumber)
	v.ext = ext
	if t.Artist != nil && t.Artist.Name != "" {
		v.artist = t.Artist.Name
	}
	return v
}

func (v nameVars) expand(format string) string {
	return strings.NewReplacer(
		"{artist}", ioutils.SanitizeFileName(v.artist),
		"{album}", ioutils.SanitizeFileName(v.album),
		"{year}", ioutils.SanitizeFileName(v.year),
		"{label}", ioutils.SanitizeFileName(v.label),
		"{title}", ioutils.SanitizeFileName(v.title),
		"{tracknum}", v.tracknum,
		"{ext}", v.ext,
	).Replace(format)
}

// albumDir expands the downloads path template. Placeholders are
// substituted per path element, so "{artist}" can never climb out of
// the downloads root.
func albumDir(template string, a *model.Album) string {
	v := albumVars(a)
	template = ioutils.ExpandHome(template)
	parts := strings.Split(filepath.ToSlash(template), "/")
	for i, p := range parts {
		if strings.Contains(p, "{") {
			parts[i] = orUnknown(v.expand(p))
		}
	}
	return filepath.FromSlash(strings.Join(parts, "/"))
}

// fileName expands a file name template. A missing ".{ext}" is added.
func fileName(format string, v nameVars) string {
	if !strings.Contains(format, "{ext}") {
		format += ".{ext}"
	}
	return ioutils.SanitizeFileName(v.expand(format))
}

func orUnknown(s string) string {
	if strings.Trim(s, " _") == "" {
		return "Unknown"
	}
	return s
}

func twoDigits(n int) string {
	if n <= 0 {
		return "00"
	}
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// extension maps a stream encoding tag to the file extension it is
// saved with.
func extension(encoding string) string {
	e := strings.ToLower(encoding)
	switch {
	case strings.HasPrefix(e, "mp3"):
		return "mp3"
	case e == "flac":
		return "flac"
	case e == "vorbis" || e == "ogg":
		return "ogg"
	case strings.HasPrefix(e, "aac") || e == "alac":
		return "m4a"
	case strings.HasPrefix(e, "aiff"):
		return "aiff"
	case e == "wav":
		return "wav"
	default:
		return "mp3"
	}
}

// pickSource returns the first source whose encoding appears earliest
// in prefs. Without a preferred match the first source wins.
func pickSource(sources []model.AudioSource, prefs []string) (model.AudioSource, bool) {
	if len(sources) == 0 {
		return model.AudioSource{}, false
	}
	for _, want := range prefs {
		for _, s := range sources {
			if strings.EqualFold(s.Type, strings.TrimSpace(want)) {
				return s, true
			}
		}
	}
	return sources[0], true
}

// releaseFromTrack turns a track page into a release with one track. A
// track that belongs to an album keeps the album's name and its own
// track number.
func releaseFromTrack(t *model.Track) *model.Album {
	album := bandcamp.AlbumFromSingle(t)
	if t.Album != nil && !t.IsSingle() {
		if t.Album.Name != "" {
			album.Name = t.Album.Name
		}
		if t.Album.URL != "" {
			album.URL = t.Album.URL
		}
		if t.TrackNumber > 0 {
			album.Tracks[0].TrackNumber = t.TrackNumber
		}
	}
	return album
}
