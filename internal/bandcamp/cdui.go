package bandcamp

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dlclark/regexp2"

	"github.com/handiism/bandcamp-fetch/internal/bandcamp/dto"
	"github.com/handiism/bandcamp-fetch/internal/model"
)

// cduiInit matches the CDUI.init call up to its JSON argument.
var cduiInit = regexp2.MustCompile(`CDUI\.init\(\s*(?=\{)`, regexp2.None)

// FindCDUIScript returns the absolute URL of the streaming init script
// referenced by a page.
func FindCDUIScript(html, pageURL string) (string, bool) {
	p, err := newPage(html, pageURL)
	if err != nil {
		return "", false
	}
	var src string
	p.doc.Find(`script[src*="/cdui/"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src, _ = s.Attr("src")
		return src == ""
	})
	if src == "" {
		return "", false
	}
	return model.ResolveURL(pageURL, strings.TrimSpace(src)), true
}

// ParseCDUIPayload extracts and decodes the JSON passed to CDUI.init.
func ParseCDUIPayload(scriptURL, js string) (*dto.CDUIPayload, error) {
	m, err := cduiInit.FindStringMatch(js)
	if err != nil {
		return nil, &ParseError{URL: scriptURL, Field: "CDUI payload", Err: err}
	}
	if m == nil {
		return nil, &ParseError{URL: scriptURL, Field: "CDUI payload", Err: errors.New("no CDUI.init call")}
	}
	// regexp2 reports rune offsets. The decoder stops at the end of the
	// object, so a ");" inside a string value is read as data.
	rest := string([]rune(js)[m.Index+m.Length:])
	var payload dto.CDUIPayload
	if err := json.NewDecoder(strings.NewReader(rest)).Decode(&payload); err != nil {
		return nil, &ParseError{URL: scriptURL, Field: "CDUI payload", Err: err}
	}
	return &payload, nil
}

// ApplyCDUI attaches the payload's streams to an album or track, skipping
// any whose URL or type is already present. It returns the number of
// sources added.
func ApplyCDUI(entity model.Entity, payload *dto.CDUIPayload) int {
	if payload == nil {
		return 0
	}
	tracks := payload.AllTracks()
	added := 0

	switch e := entity.(type) {
	case *model.Track:
		files := payload.File
		if len(files) == 0 {
			if t, ok := matchCDUITrack(tracks, e.ID, 0); ok {
				files = t.File
			}
		}
		before := len(e.AudioSources)
		e.AudioSources = model.MergeAudioSources(e.AudioSources, audioSources(files))
		added += len(e.AudioSources) - before

	case *model.Album:
		for i := range e.Tracks {
			t, ok := matchCDUITrack(tracks, e.Tracks[i].ID, i)
			if !ok {
				continue
			}
			before := len(e.Tracks[i].AudioSources)
			e.Tracks[i].AudioSources = model.MergeAudioSources(e.Tracks[i].AudioSources, audioSources(t.File))
			added += len(e.Tracks[i].AudioSources) - before
		}
	}
	return added
}

// matchCDUITrack finds a payload track by id, falling back to position.
func matchCDUITrack(tracks []dto.CDUITrack, id int64, pos int) (dto.CDUITrack, bool) {
	if id != 0 {
		for _, t := range tracks {
			if t.ID.Int64() == id || t.TrackID.Int64() == id {
				return t, true
			}
		}
	}
	if pos < len(tracks) {
		return tracks[pos], true
	}
	return dto.CDUITrack{}, false
}

// NeedsAudio reports whether an entity has no playable source at all.
func NeedsAudio(entity model.Entity) bool {
	switch e := entity.(type) {
	case *model.Track:
		return len(e.AudioSources) == 0
	case *model.Album:
		return !e.HasAudio()
	}
	return false
}
