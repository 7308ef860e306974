package audio

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// PlaylistFormat represents a supported playlist file format.
type PlaylistFormat int

const (
	// FormatM3U creates .m3u files, optionally with #EXTINF lines.
	FormatM3U PlaylistFormat = iota

	// FormatPLS creates INI-style .pls files.
	FormatPLS

	// FormatWPL creates Windows Media Player .wpl files.
	FormatWPL

	// FormatZPL creates Zune .zpl files.
	FormatZPL
)

// ParsePlaylistFormat maps a settings value such as "pls" to a format.
// Unknown values fall back to M3U.
func ParsePlaylistFormat(s string) PlaylistFormat {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pls":
		return FormatPLS
	case "wpl":
		return FormatWPL
	case "zpl":
		return FormatZPL
	default:
		return FormatM3U
	}
}

// Extension returns the file extension for the format, without the dot.
func (f PlaylistFormat) Extension() string {
	switch f {
	case FormatPLS:
		return "pls"
	case FormatWPL:
		return "wpl"
	case FormatZPL:
		return "zpl"
	default:
		return "m3u"
	}
}

// Playlist is an ordered list of downloaded files.
type Playlist struct {
	Title   string
	Artist  string
	Entries []PlaylistEntry
}

// PlaylistEntry is one file of a Playlist. Path is written as its base
// name, so the playlist must live next to the files.
type PlaylistEntry struct {
	Path     string
	Title    string
	Artist   string
	Duration time.Duration
}

func (e PlaylistEntry) artist(p *Playlist) string {
	if e.Artist != "" {
		return e.Artist
	}
	return p.Artist
}

// PlaylistCreator renders playlists in one format.
//
//	creator := NewPlaylistCreator(FormatM3U, true)
//	content := creator.CreatePlaylist(playlist)
//
//	// #EXTM3U
//	// #EXTINF:180,Artist - Song Title
//	// 01 Artist - Song Title.mp3
type PlaylistCreator struct {
	format   PlaylistFormat
	extended bool
}

// NewPlaylistCreator creates a PlaylistCreator. extended only affects M3U.
func NewPlaylistCreator(format PlaylistFormat, extended bool) *PlaylistCreator {
	return &PlaylistCreator{format: format, extended: extended}
}

// Format returns the format the creator renders.
func (p *PlaylistCreator) Format() PlaylistFormat {
	return p.format
}

// CreatePlaylist renders pl.
func (p *PlaylistCreator) CreatePlaylist(pl *Playlist) string {
	switch p.format {
	case FormatPLS:
		return p.createPLS(pl)
	case FormatWPL:
		return p.createWPL(pl)
	case FormatZPL:
		return p.createZPL(pl)
	default:
		return p.createM3U(pl)
	}
}

func (p *PlaylistCreator) createM3U(pl *Playlist) string {
	var sb strings.Builder
	if p.extended {
		sb.WriteString("#EXTM3U\n")
	}
	for _, e := range pl.Entries {
		if p.extended {
			fmt.Fprintf(&sb, "#EXTINF:%d,%s - %s\n", int(e.Duration.Seconds()), e.artist(pl), e.Title)
		}
		sb.WriteString(filepath.Base(e.Path) + "\n")
	}
	return sb.String()
}

func (p *PlaylistCreator) createPLS(pl *Playlist) string {
	var sb strings.Builder
	sb.WriteString("[playlist]\n")
	for i, e := range pl.Entries {
		idx := i + 1
		fmt.Fprintf(&sb, "File%d=%s\n", idx, filepath.Base(e.Path))
		fmt.Fprintf(&sb, "Title%d=%s\n", idx, e.Title)
		fmt.Fprintf(&sb, "Length%d=%d\n", idx, int(e.Duration.Seconds()))
	}
	fmt.Fprintf(&sb, "NumberOfEntries=%d\n", len(pl.Entries))
	sb.WriteString("Version=2\n")
	return sb.String()
}

func (p *PlaylistCreator) createWPL(pl *Playlist) string {
	var sb strings.Builder
	sb.WriteString("<?wpl version=\"1.0\"?>\n<smil>\n  <head>\n")
	fmt.Fprintf(&sb, "    <title>%s</title>\n", escapeXML(pl.Title))
	sb.WriteString("  </head>\n  <body>\n    <seq>\n")
	for _, e := range pl.Entries {
		fmt.Fprintf(&sb, "      <media src=\"%s\"/>\n", escapeXML(filepath.Base(e.Path)))
	}
	sb.WriteString("    </seq>\n  </body>\n</smil>\n")
	return sb.String()
}

func (p *PlaylistCreator) createZPL(pl *Playlist) string {
	var sb strings.Builder
	sb.WriteString("<?zpl version=\"2.0\"?>\n<smil>\n  <head>\n")
	fmt.Fprintf(&sb, "    <title>%s</title>\n", escapeXML(pl.Title))
	sb.WriteString("    <meta name=\"Generator\" content=\"bandcamp-fetch\"/>\n")
	fmt.Fprintf(&sb, "    <meta name=\"ItemCount\" content=\"%d\"/>\n", len(pl.Entries))
	sb.WriteString("  </head>\n  <body>\n    <seq>\n")
	for _, e := range pl.Entries {
		fmt.Fprintf(&sb, "      <media src=\"%s\" albumTitle=\"%s\" albumArtist=\"%s\" trackTitle=\"%s\" trackArtist=\"%s\" duration=\"%d\"/>\n",
			escapeXML(filepath.Base(e.Path)),
			escapeXML(pl.Title),
			escapeXML(pl.Artist),
			escapeXML(e.Title),
			escapeXML(e.artist(pl)),
			e.Duration.Milliseconds())
	}
	sb.WriteString("    </seq>\n  </body>\n</smil>\n")
	return sb.String()
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}
