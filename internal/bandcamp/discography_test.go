package bandcamp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscography_GetAlbumURLs(t *testing.T) {
	const pageURL = "https://artist.bandcamp.com/music"

	tests := []struct {
		name    string
		html    string
		want    []string
		wantErr error
	}{
		{
			name: "single album link",
			html: `<html><body><a href="/album/test-album">Album</a></body></html>`,
			want: []string{"https://artist.bandcamp.com/album/test-album"},
		},
		{
			name: "albums and tracks sorted",
			html: `<ol id="music-grid">
				<li><a href="/track/single-track">T</a></li>
				<li><a href="/album/second-album">B</a></li>
				<li><a href="https://artist.bandcamp.com/album/first-album">A</a></li>
				<li><a href="/merch">Merch</a></li>
			</ol>`,
			want: []string{
				"https://artist.bandcamp.com/album/first-album",
				"https://artist.bandcamp.com/album/second-album",
				"https://artist.bandcamp.com/track/single-track",
			},
		},
		{
			name: "duplicates filtered",
			html: `<a href="/album/same-album">x</a><a href="/album/same-album?from=grid">y</a>`,
			want: []string{"https://artist.bandcamp.com/album/same-album"},
		},
		{
			name: "client items",
			html: `<ol id="music-grid" data-client-items="[{&quot;page_url&quot;:&quot;/album/lazy&quot;},{&quot;page_url&quot;:&quot;/track/later&quot;}]">
				<li><a href="/album/eager">E</a></li>
			</ol>`,
			want: []string{
				"https://artist.bandcamp.com/album/eager",
				"https://artist.bandcamp.com/album/lazy",
				"https://artist.bandcamp.com/track/later",
			},
		},
		{
			name:    "no albums found",
			html:    `<html><body>No music here</body></html>`,
			wantErr: ErrNoAlbumFound,
		},
		{
			name: "single album artist page",
			html: `<div id="discography"><a href="/album/only-album">Only Album</a></div>
				<a href="/album/only-album#buy">Buy</a>
				<a href="/track/a-track">Track</a>`,
			want: []string{"https://artist.bandcamp.com/album/only-album"},
		},
		{
			name:    "single album page with several albums",
			html:    `<div id="discography"><a href="/album/one">1</a><a href="/album/two">2</a></div>`,
			wantErr: ErrAmbiguousAlbum,
		},
	}

	d := NewDiscography()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			urls, err := d.GetAlbumURLs(tt.html, pageURL)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, urls)
		})
	}
}

func TestFixJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "fix URL concatenation",
			input: `url: "http://example.bandcamp.com" + "/album/test",`,
			want:  `url: "http://example.bandcamp.com/album/test",`,
		},
		{
			name:  "fix quoted key",
			input: `"url": "http://example.bandcamp.com" + "/album/test",`,
			want:  `"url": "http://example.bandcamp.com/album/test",`,
		},
		{
			name:  "no change needed",
			input: `url: "http://example.bandcamp.com/album/test",`,
			want:  `url: "http://example.bandcamp.com/album/test",`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fixJSON(tt.input))
		})
	}
}
