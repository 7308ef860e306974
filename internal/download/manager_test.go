package download

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/bandcamp-fetch/internal/client"
	"github.com/handiism/bandcamp-fetch/internal/config"
	bchttp "github.com/handiism/bandcamp-fetch/internal/http"
	"github.com/handiism/bandcamp-fetch/internal/model"
)

type fakeResolver map[string]model.Entity

func (f fakeResolver) Resolve(_ context.Context, rawURL string, _ client.ResolveOptions) (model.Entity, error) {
	if e, ok := f[rawURL]; ok {
		return e, nil
	}
	return nil, fmt.Errorf("resolve %s: %w", rawURL, errors.New("not found"))
}

type fileServer struct {
	*httptest.Server

	mu    sync.Mutex
	gets  map[string]int
	fails map[string]int
}

func newFileServer(t *testing.T, files map[string][]byte) *fileServer {
	t.Helper()
	fs := &fileServer{gets: map[string]int{}, fails: map[string]int{}}
	fs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, ok := files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		if r.Method == http.MethodGet {
			fs.mu.Lock()
			fs.gets[r.URL.Path]++
			fail := fs.fails[r.URL.Path] > 0
			if fail {
				fs.fails[r.URL.Path]--
			}
			fs.mu.Unlock()
			if fail {
				http.Error(w, "try again", http.StatusServiceUnavailable)
				return
			}
		}
		http.ServeContent(w, r, filepath.Base(r.URL.Path), time.Time{}, bytes.NewReader(data))
	}))
	t.Cleanup(fs.Close)
	return fs
}

func (fs *fileServer) getCount(path string) int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.gets[path]
}

func (fs *fileServer) failNext(path string, n int) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.fails[path] = n
}

func coverPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	return buf.Bytes()
}

func testSettings(t *testing.T) *config.Settings {
	s := config.DefaultSettings()
	s.DownloadsPath = filepath.Join(t.TempDir(), "{artist}", "{album}")
	s.AudioFormats = []string{"flac", "mp3-128"}
	s.DownloadRetryCooldown = 0
	s.DownloadMaxRetries = 3
	s.ModifyTags = false
	s.SaveCoverArtInTags = false
	return s
}

type recorder struct {
	mu     sync.Mutex
	events []ProgressEvent
}

func (r *recorder) record(e ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) has(level ProgressLevel, substr string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.Level == level && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

func releaseFixture(base string) *model.Album {
	return &model.Album{
		Name:        "First Light",
		URL:         "https://someone.bandcamp.com/album/first-light",
		Artist:      &model.Artist{Name: "Someone"},
		ReleaseDate: "2024-02-05T00:00:00Z",
		Images:      []model.Image{{URL: base + "/cover.png", Size: model.ImageLarge}},
		Tracks: []model.AlbumTrack{
			{Name: "Intro", TrackNumber: 1, Duration: 61.5, AudioSources: []model.AudioSource{{Type: "mp3-128", URL: base + "/1.mp3"}}},
			{Name: "Body", TrackNumber: 2, Duration: 120, AudioSources: []model.AudioSource{
				{Type: "mp3-128", URL: base + "/2.mp3"},
				{Type: "flac", URL: base + "/2.flac"},
			}},
			{Name: "Locked", TrackNumber: 3},
		},
	}
}

func TestDownloadRelease(t *testing.T) {
	fs := newFileServer(t, map[string][]byte{
		"/1.mp3":     []byte("intro-audio"),
		"/2.flac":    []byte("body-audio-lossless"),
		"/cover.png": coverPNG(t),
	})
	settings := testSettings(t)
	settings.SaveCoverArtInFolder = true
	settings.CreatePlaylist = true

	rec := &recorder{}
	const input = "https://someone.bandcamp.com/album/first-light"
	m := newManager(settings, fakeResolver{input: releaseFixture(fs.URL)}, bchttp.NewClient(nil), rec.record)

	ctx := context.Background()
	require.NoError(t, m.Initialize(ctx, "  "+input+"\nnot a url\n"))

	jobs := m.Jobs()
	require.Len(t, jobs, 1)
	job := jobs[0]
	require.Len(t, job.Tracks, 2, "tracks without audio are not planned")
	assert.Equal(t, "flac", job.Tracks[1].Source.Type)
	assert.Equal(t, []string{"Someone - First Light (2 tracks)"}, m.GetAlbumNames())

	require.NoError(t, m.StartDownloads(ctx))

	data, err := os.ReadFile(filepath.Join(job.Dir, "01 Someone - Intro.mp3"))
	require.NoError(t, err)
	assert.Equal(t, "intro-audio", string(data))

	data, err = os.ReadFile(filepath.Join(job.Dir, "02 Someone - Body.flac"))
	require.NoError(t, err)
	assert.Equal(t, "body-audio-lossless", string(data))

	cover, err := os.ReadFile(filepath.Join(job.Dir, "First Light.jpg"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xd8}, cover[:2], "cover should be converted to JPEG")

	playlist, err := os.ReadFile(filepath.Join(job.Dir, "First Light.m3u"))
	require.NoError(t, err)
	assert.Equal(t, "#EXTM3U\n#EXTINF:61,Someone - Intro\n01 Someone - Intro.mp3\n#EXTINF:120,Someone - Body\n02 Someone - Body.flac\n", string(playlist))

	received, total, files, totalFiles := m.GetProgress()
	assert.EqualValues(t, 3, files)
	assert.EqualValues(t, 3, totalFiles)
	assert.EqualValues(t, len("intro-audio")+len("body-audio-lossless"), total)
	assert.Equal(t, total, received)
	assert.True(t, rec.has(LevelSuccess, "Successfully downloaded: First Light"))

	_, err = os.Stat(filepath.Join(job.Dir, "01 Someone - Intro.mp3.part"))
	assert.True(t, os.IsNotExist(err), "partial files should be renamed")
}

func TestDownloadRetriesThenSkipsExisting(t *testing.T) {
	fs := newFileServer(t, map[string][]byte{"/1.mp3": []byte("intro-audio")})
	fs.failNext("/1.mp3", 2)

	album := releaseFixture(fs.URL)
	album.Images = nil
	album.Tracks = album.Tracks[:1]
	const input = "https://someone.bandcamp.com/album/first-light"

	rec := &recorder{}
	settings := testSettings(t)
	ctx := context.Background()

	m := newManager(settings, fakeResolver{input: album}, bchttp.NewClient(nil), rec.record)
	require.NoError(t, m.Initialize(ctx, input))
	require.NoError(t, m.StartDownloads(ctx))
	assert.Equal(t, 3, fs.getCount("/1.mp3"))
	assert.True(t, rec.has(LevelWarning, "Retry 2/2 for Intro"))

	again := newManager(settings, fakeResolver{input: album}, bchttp.NewClient(nil), rec.record)
	require.NoError(t, again.Initialize(ctx, input))
	require.NoError(t, again.StartDownloads(ctx))
	assert.Equal(t, 3, fs.getCount("/1.mp3"), "an existing file of the right size is not downloaded again")
	assert.True(t, rec.has(LevelVerbose, "Skipping existing: 01 Someone - Intro.mp3"))
}

func TestDownloadGivesUpAfterRetries(t *testing.T) {
	fs := newFileServer(t, map[string][]byte{"/1.mp3": []byte("intro-audio")})
	fs.failNext("/1.mp3", 10)

	album := releaseFixture(fs.URL)
	album.Images = nil
	album.Tracks = album.Tracks[:1]
	const input = "https://someone.bandcamp.com/album/first-light"

	rec := &recorder{}
	m := newManager(testSettings(t), fakeResolver{input: album}, bchttp.NewClient(nil), rec.record)
	require.NoError(t, m.Initialize(context.Background(), input))
	require.NoError(t, m.StartDownloads(context.Background()))

	assert.True(t, rec.has(LevelError, "Error downloading Intro"))
	assert.True(t, rec.has(LevelWarning, "some tracks failed"))
	entries, err := os.ReadDir(m.Jobs()[0].Dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestInitializeSkipsPagesWithoutReleases(t *testing.T) {
	resolver := fakeResolver{
		"https://bandcamp.com/somefan":   &model.Fan{Name: "Some Fan"},
		"https://someone.bandcamp.com":   &model.Artist{Type: model.TypeArtist, Name: "Someone"},
		"https://someone.bandcamp.com/x": &model.Album{Name: "Silent", Tracks: []model.AlbumTrack{{Name: "No audio"}}},
	}
	rec := &recorder{}
	m := newManager(testSettings(t), resolver, bchttp.NewClient(nil), rec.record)

	err := m.Initialize(context.Background(), strings.Join([]string{
		"https://bandcamp.com/somefan",
		"https://someone.bandcamp.com",
		"https://someone.bandcamp.com/x",
		"https://someone.bandcamp.com/missing",
	}, "\n"))

	assert.ErrorIs(t, err, ErrNothingToDownload)
	assert.True(t, rec.has(LevelWarning, "nothing to download from a fan page"))
	assert.True(t, rec.has(LevelWarning, "download_artist_discography"))
	assert.True(t, rec.has(LevelWarning, "no playable tracks"))
	assert.True(t, rec.has(LevelError, "Error resolving https://someone.bandcamp.com/missing"))
}

func TestInitializeExpandsDiscography(t *testing.T) {
	var base string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/music" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprintf(w, `<ol><li><a href="/album/b">B</a></li><li><a href="%s/album/a">A</a></li></ol>`, base)
	}))
	defer srv.Close()
	base = srv.URL

	release := func(name string) *model.Album {
		return &model.Album{
			Name:   name,
			Artist: &model.Artist{Name: "Someone"},
			Tracks: []model.AlbumTrack{{Name: "t", TrackNumber: 1, AudioSources: []model.AudioSource{{Type: "mp3-128", URL: base + "/t.mp3"}}}},
		}
	}
	resolver := fakeResolver{
		base: &model.Artist{
			Type:        model.TypeArtist,
			Name:        "Someone",
			URL:         base,
			Discography: []model.DiscographyItem{{Type: model.TypeAlbum, Name: "A", URL: base + "/album/a"}},
		},
		base + "/album/a": release("A"),
		base + "/album/b": release("B"),
	}

	settings := testSettings(t)
	settings.DownloadArtistDiscography = true
	m := newManager(settings, resolver, bchttp.NewClient(nil), nil)
	require.NoError(t, m.Initialize(context.Background(), base))

	var names []string
	for _, job := range m.Jobs() {
		names = append(names, job.Album.Name)
	}
	assert.Equal(t, []string{"A", "B"}, names)
}

func TestTrackTags(t *testing.T) {
	album := releaseFixture("http://x")
	album.Label = &model.Artist{Name: "Tiny Label"}
	album.Tags = []model.Tag{{Name: "ambient"}}
	track := album.Tracks[0]
	track.Artist = &model.Artist{Name: "Guest"}

	tags := trackTags(album, track)
	assert.Equal(t, "Guest", tags.Artist)
	assert.Equal(t, "Someone", tags.AlbumArtist)
	assert.Equal(t, "Tiny Label", tags.Label)
	assert.Equal(t, []string{"ambient"}, tags.Genres)
	assert.Equal(t, "2024", tags.Year())
}
