package audio

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bogem/id3v2"
	"go.senan.xyz/taglib"
)

// TagEditAction defines how to handle an individual tag.
type TagEditAction int

const (
	// TagEmpty clears the tag.
	TagEmpty TagEditAction = iota

	// TagModify writes the value resolved from Bandcamp.
	TagModify

	// TagDoNotModify leaves the existing value unchanged.
	TagDoNotModify
)

// TagConfig selects what happens to each tag field.
type TagConfig struct {
	// ModifyTags is a master switch. If false, no text tags are touched.
	ModifyTags bool

	Artist      TagEditAction
	AlbumArtist TagEditAction
	Album       TagEditAction
	Date        TagEditAction
	TrackNumber TagEditAction
	DiscNumber  TagEditAction
	Title       TagEditAction
	Lyrics      TagEditAction
	Genre       TagEditAction
	Label       TagEditAction
	Comments    TagEditAction
}

// DefaultTagConfig modifies every field except comments, which are
// cleared.
func DefaultTagConfig() *TagConfig {
	return &TagConfig{
		ModifyTags:  true,
		Artist:      TagModify,
		AlbumArtist: TagModify,
		Album:       TagModify,
		Date:        TagModify,
		TrackNumber: TagModify,
		DiscNumber:  TagModify,
		Title:       TagModify,
		Lyrics:      TagModify,
		Genre:       TagModify,
		Label:       TagModify,
		Comments:    TagEmpty,
	}
}

// TrackTags is the format-neutral metadata written to a downloaded file.
type TrackTags struct {
	Title       string
	Artist      string
	AlbumArtist string
	Album       string
	Label       string
	// Date is an ISO 8601 date or timestamp; only the day part is written.
	Date        string
	TrackNumber int
	DiscNumber  int
	Lyrics      string
	Genres      []string
}

// Year returns the four-digit year of Date, or "".
func (t TrackTags) Year() string {
	if len(t.Date) >= 4 {
		return t.Date[:4]
	}
	return ""
}

func (t TrackTags) day() string {
	if len(t.Date) >= 10 {
		return t.Date[:10]
	}
	return t.Date
}

// Tagger writes tags to downloaded audio files. MP3 files get ID3v2
// frames, including embedded cover art. Every other container (FLAC,
// Ogg, AAC, ALAC) goes through TagLib property maps.
type Tagger struct {
	config *TagConfig

	readTags  func(path string) (map[string][]string, error)
	writeTags func(path string, tags map[string][]string, opts taglib.WriteOption) error
}

// NewTagger creates a Tagger. A nil config means DefaultTagConfig.
func NewTagger(config *TagConfig) *Tagger {
	if config == nil {
		config = DefaultTagConfig()
	}
	return &Tagger{
		config:    config,
		readTags:  taglib.ReadTags,
		writeTags: taglib.WriteTags,
	}
}

// SaveTags writes tags and, for MP3 files, artwork to the file at path.
// A nil artwork leaves existing pictures alone.
func (t *Tagger) SaveTags(path string, tags TrackTags, artwork []byte) error {
	if strings.EqualFold(filepath.Ext(path), ".mp3") {
		return t.saveID3(path, tags, artwork)
	}
	if !t.config.ModifyTags {
		return nil
	}
	return t.saveProperties(path, tags)
}

func (t *Tagger) saveID3(path string, tags TrackTags, artwork []byte) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		tag = id3v2.NewEmptyTag()
	}
	defer tag.Close()

	if t.config.ModifyTags {
		t.updateFrames(tag, tags)
	}
	if artwork != nil {
		tag.DeleteFrames(tag.CommonID("Attached picture"))
		tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    "image/jpeg",
			PictureType: id3v2.PTFrontCover,
			Description: "Cover",
			Picture:     artwork,
		})
	}
	return tag.Save()
}

func (t *Tagger) updateFrames(tag *id3v2.Tag, tags TrackTags) {
	text := func(action TagEditAction, id, value string) {
		switch action {
		case TagEmpty:
			tag.DeleteFrames(id)
		case TagModify:
			if value != "" {
				tag.AddTextFrame(id, id3v2.EncodingUTF8, value)
			}
		}
	}

	text(t.config.Artist, "TPE1", tags.Artist)
	text(t.config.AlbumArtist, "TPE2", tags.AlbumArtist)
	text(t.config.Album, "TALB", tags.Album)
	text(t.config.Title, "TIT2", tags.Title)
	text(t.config.Label, "TPUB", tags.Label)
	text(t.config.Date, "TYER", tags.Year())
	text(t.config.Date, "TDRC", tags.day())
	text(t.config.TrackNumber, "TRCK", number(tags.TrackNumber))
	text(t.config.DiscNumber, "TPOS", number(tags.DiscNumber))
	text(t.config.Genre, "TCON", strings.Join(tags.Genres, "; "))

	lyricsID := tag.CommonID("Unsynchronised lyrics/text transcription")
	switch t.config.Lyrics {
	case TagEmpty:
		tag.DeleteFrames(lyricsID)
	case TagModify:
		if tags.Lyrics != "" {
			tag.DeleteFrames(lyricsID)
			tag.AddUnsynchronisedLyricsFrame(id3v2.UnsynchronisedLyricsFrame{
				Encoding: id3v2.EncodingUTF8,
				Language: "eng",
				Lyrics:   tags.Lyrics,
			})
		}
	}

	if t.config.Comments == TagEmpty {
		tag.DeleteFrames(tag.CommonID("Comments"))
	}
}

func (t *Tagger) saveProperties(path string, tags TrackTags) error {
	existing, err := t.readTags(path)
	if err != nil {
		return err
	}

	props := map[string][]string{}
	set := func(action TagEditAction, key string, values ...string) {
		switch action {
		case TagEmpty:
			if _, ok := existing[key]; ok {
				props[key] = nil
			}
		case TagModify:
			if len(values) > 0 && values[0] != "" {
				props[key] = values
			}
		}
	}

	set(t.config.Artist, taglib.Artist, tags.Artist)
	set(t.config.AlbumArtist, taglib.AlbumArtist, tags.AlbumArtist)
	set(t.config.Album, taglib.Album, tags.Album)
	set(t.config.Title, taglib.Title, tags.Title)
	set(t.config.Label, "LABEL", tags.Label)
	set(t.config.Date, taglib.Date, tags.day())
	set(t.config.TrackNumber, taglib.TrackNumber, number(tags.TrackNumber))
	set(t.config.DiscNumber, taglib.DiscNumber, number(tags.DiscNumber))
	set(t.config.Lyrics, "LYRICS", tags.Lyrics)
	set(t.config.Genre, taglib.Genre, tags.Genres...)
	set(t.config.Comments, "COMMENT")

	if len(props) == 0 {
		return nil
	}
	return t.writeTags(path, props, 0)
}

func number(n int) string {
	if n <= 0 {
		return ""
	}
	return strconv.Itoa(n)
}
