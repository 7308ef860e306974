package download

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/handiism/bandcamp-fetch/internal/audio"
	"github.com/handiism/bandcamp-fetch/internal/bandcamp"
	"github.com/handiism/bandcamp-fetch/internal/client"
	"github.com/handiism/bandcamp-fetch/internal/config"
	ioutils "github.com/handiism/bandcamp-fetch/internal/io"
	"github.com/handiism/bandcamp-fetch/internal/model"
	"golang.org/x/sync/errgroup"
)

// ErrNothingToDownload is returned by Initialize when no input resolved
// to a playable release.
var ErrNothingToDownload = errors.New("nothing to download")

// ProgressLevel indicates the severity of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent is a download progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// Resolver turns a Bandcamp URL into an entity.
type Resolver interface {
	Resolve(ctx context.Context, rawURL string, opts client.ResolveOptions) (model.Entity, error)
}

// Fetcher moves bytes. *http.Client from the http package implements it.
type Fetcher interface {
	GetString(ctx context.Context, url string) (string, error)
	GetFileSize(ctx context.Context, url string) (int64, error)
	DownloadFile(ctx context.Context, url, destPath string, onProgress func(written, total int64)) error
	DownloadBytes(ctx context.Context, url string) ([]byte, error)
}

// Job is one release queued for download.
type Job struct {
	Album        *model.Album
	Dir          string
	CoverPath    string
	PlaylistPath string
	Tracks       []TrackJob
}

// TrackJob is one file of a Job.
type TrackJob struct {
	Track  model.AlbumTrack
	Source model.AudioSource
	Path   string
}

// Manager coordinates release downloads.
type Manager struct {
	settings     *config.Settings
	resolver     Resolver
	fetcher      Fetcher
	discography  *bandcamp.Discography
	tagger       *audio.Tagger
	playlist     *audio.PlaylistCreator
	imageService *ioutils.ImageService

	mu              sync.RWMutex
	jobs            []*Job
	totalBytes      int64
	receivedBytes   int64
	totalFiles      int32
	downloadedFiles int32

	onProgress func(ProgressEvent)
}

// NewManager creates a Manager resolving and downloading through c.
func NewManager(settings *config.Settings, c *client.Client, onProgress func(ProgressEvent)) *Manager {
	return newManager(settings, c, c.HTTP(), onProgress)
}

func newManager(settings *config.Settings, r Resolver, f Fetcher, onProgress func(ProgressEvent)) *Manager {
	tags := audio.DefaultTagConfig()
	tags.ModifyTags = settings.ModifyTags

	return &Manager{
		settings:     settings,
		resolver:     r,
		fetcher:      f,
		discography:  bandcamp.NewDiscography(),
		tagger:       audio.NewTagger(tags),
		playlist:     audio.NewPlaylistCreator(audio.ParsePlaylistFormat(settings.PlaylistFormat), settings.M3UExtended),
		imageService: ioutils.NewImageService(),
		onProgress:   onProgress,
	}
}

// Initialize resolves every URL in input (one per line) into download
// jobs. Artist and label pages expand to their discography when
// DownloadArtistDiscography is set. Failing inputs are reported and
// skipped.
func (m *Manager) Initialize(ctx context.Context, input string) error {
	for _, inputURL := range parseInputURLs(input) {
		if err := ctx.Err(); err != nil {
			return err
		}
		m.addInput(ctx, inputURL)
	}

	m.mu.RLock()
	n := len(m.jobs)
	m.mu.RUnlock()
	if n == 0 {
		return ErrNothingToDownload
	}

	m.calculateTotals(ctx)
	return nil
}

func (m *Manager) addInput(ctx context.Context, inputURL string) {
	entity, err := m.resolver.Resolve(ctx, inputURL, client.ResolveOptions{FetchAdditionalData: true})
	if err != nil {
		m.progress(LevelError, "Error resolving %s: %v", inputURL, err)
		return
	}

	switch e := entity.(type) {
	case *model.Album:
		m.addRelease(e)
	case *model.Track:
		m.addRelease(releaseFromTrack(e))
	case *model.Artist:
		if !m.settings.DownloadArtistDiscography {
			m.progress(LevelWarning, "Skipping %s: artist pages need download_artist_discography", inputURL)
			return
		}
		for _, u := range m.discographyURLs(ctx, e) {
			m.addInput(ctx, u)
		}
	default:
		m.progress(LevelWarning, "Skipping %s: nothing to download from a %s page", inputURL, entity.Kind())
	}
}

// discographyURLs merges the releases listed on an artist's home page
// with those scraped from its /music page.
func (m *Manager) discographyURLs(ctx context.Context, a *model.Artist) []string {
	seen := map[string]bool{}
	var urls []string
	add := func(u string) {
		u = model.CanonicalURL(u)
		if u != "" && !seen[u] {
			seen[u] = true
			urls = append(urls, u)
		}
	}

	for _, d := range a.Discography {
		add(d.URL)
	}

	root, err := url.Parse(a.URL)
	if err != nil || root.Host == "" {
		return urls
	}
	musicURL := root.Scheme + "://" + root.Host + "/music"
	html, err := m.fetcher.GetString(ctx, musicURL)
	if err != nil {
		m.progress(LevelWarning, "Error fetching %s: %v", musicURL, err)
		return urls
	}
	found, err := m.discography.GetAlbumURLs(html, musicURL)
	if err != nil {
		m.progress(LevelWarning, "No releases found on %s: %v", musicURL, err)
		return urls
	}
	for _, u := range found {
		add(u)
	}
	return urls
}

func (m *Manager) addRelease(album *model.Album) {
	job := m.plan(album)
	if len(job.Tracks) == 0 {
		m.progress(LevelWarning, "Skipping %s: no playable tracks", album.Name)
		return
	}

	m.mu.Lock()
	m.jobs = append(m.jobs, job)
	m.mu.Unlock()
	m.progress(LevelInfo, "Found release: %s - %s (%d tracks)", artistName(album), album.Name, len(job.Tracks))
}

// plan lays out the files of a release on disk.
func (m *Manager) plan(album *model.Album) *Job {
	dir := albumDir(m.settings.DownloadsPath, album)
	vars := albumVars(album)
	job := &Job{Album: album, Dir: dir}

	for _, t := range album.Tracks {
		src, ok := pickSource(t.AudioSources, m.settings.AudioFormats)
		if !ok {
			continue
		}
		name := fileName(m.settings.FileNameFormat, vars.withTrack(t, extension(src.Type)))
		job.Tracks = append(job.Tracks, TrackJob{Track: t, Source: src, Path: filepath.Join(dir, name)})
	}

	if _, ok := model.LargestImage(album.Images); ok {
		cover := vars
		cover.ext = "jpg"
		job.CoverPath = filepath.Join(dir, fileName(m.settings.CoverArtFileNameFormat, cover))
	}
	list := vars
	list.ext = m.playlist.Format().Extension()
	job.PlaylistPath = filepath.Join(dir, fileName(m.settings.PlaylistFileNameFormat, list))
	return job
}

// Jobs returns the queued jobs.
func (m *Manager) Jobs() []*Job {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*Job(nil), m.jobs...)
}

// StartDownloads downloads every queued job.
func (m *Manager) StartDownloads(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, m.settings.MaxConcurrentAlbumsDownload))

	for _, job := range m.Jobs() {
		g.Go(func() error {
			return m.downloadJob(ctx, job)
		})
	}
	return g.Wait()
}

// GetProgress returns current download progress.
func (m *Manager) GetProgress() (received, total int64, filesReceived, filesTotal int32) {
	return atomic.LoadInt64(&m.receivedBytes), atomic.LoadInt64(&m.totalBytes),
		atomic.LoadInt32(&m.downloadedFiles), atomic.LoadInt32(&m.totalFiles)
}

// GetAlbumNames returns a display line per queued job.
func (m *Manager) GetAlbumNames() []string {
	jobs := m.Jobs()
	names := make([]string, len(jobs))
	for i, job := range jobs {
		names[i] = fmt.Sprintf("%s - %s (%d tracks)", artistName(job.Album), job.Album.Name, len(job.Tracks))
	}
	return names
}

func parseInputURLs(input string) []string {
	var urls []string
	for _, line := range strings.FieldsFunc(input, func(r rune) bool { return r == '\n' || r == ' ' || r == '\t' || r == '\r' }) {
		if strings.HasPrefix(line, "http://") || strings.HasPrefix(line, "https://") {
			urls = append(urls, line)
		}
	}
	return urls
}

func (m *Manager) calculateTotals(ctx context.Context) {
	for _, job := range m.Jobs() {
		for _, t := range job.Tracks {
			atomic.AddInt32(&m.totalFiles, 1)
			if size, err := m.fetcher.GetFileSize(ctx, t.Source.URL); err == nil {
				atomic.AddInt64(&m.totalBytes, size)
			}
		}
		if job.CoverPath != "" {
			atomic.AddInt32(&m.totalFiles, 1)
		}
	}
}

func (m *Manager) downloadJob(ctx context.Context, job *Job) error {
	if err := ioutils.EnsureDir(job.Dir); err != nil {
		m.progress(LevelError, "Error creating directory: %v", err)
		return err
	}

	var artwork []byte
	if (m.settings.SaveCoverArtInTags || m.settings.SaveCoverArtInFolder) && job.CoverPath != "" {
		var err error
		artwork, err = m.downloadArtwork(ctx, job)
		if err != nil {
			m.progress(LevelWarning, "Error downloading artwork for %s: %v", job.Album.Name, err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, m.settings.MaxConcurrentTracksDownload))

	var successCount int32
	for _, t := range job.Tracks {
		g.Go(func() error {
			if err := m.downloadTrack(gctx, t, job, artwork); err != nil {
				m.progress(LevelError, "Error downloading %s: %v", t.Track.Name, err)
				return nil
			}
			atomic.AddInt32(&successCount, 1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if m.settings.CreatePlaylist {
		content := m.playlist.CreatePlaylist(playlistOf(job))
		if err := ioutils.WriteFile(ctx, job.PlaylistPath, []byte(content)); err != nil {
			m.progress(LevelWarning, "Error creating playlist: %v", err)
		} else {
			m.progress(LevelSuccess, "Created playlist for %s", job.Album.Name)
		}
	}

	if int(successCount) == len(job.Tracks) {
		m.progress(LevelSuccess, "Successfully downloaded: %s", job.Album.Name)
	} else {
		m.progress(LevelWarning, "Finished %s, some tracks failed", job.Album.Name)
	}
	return nil
}

func (m *Manager) downloadArtwork(ctx context.Context, job *Job) ([]byte, error) {
	img, _ := model.LargestImage(job.Album.Images)

	var artwork []byte
	err := m.retry(ctx, "cover of "+job.Album.Name, func() error {
		var err error
		artwork, err = m.fetcher.DownloadBytes(ctx, img.URL)
		return err
	})
	if err != nil {
		return nil, err
	}
	atomic.AddInt32(&m.downloadedFiles, 1)

	if m.settings.SaveCoverArtInFolder {
		toSave := m.prepareArtwork(ctx, artwork, m.settings.CoverArtInFolderResize, m.settings.CoverArtInFolderMaxSize)
		if err := ioutils.WriteFile(ctx, job.CoverPath, toSave); err != nil {
			m.progress(LevelWarning, "Error saving artwork: %v", err)
		}
	}
	if !m.settings.SaveCoverArtInTags {
		return nil, nil
	}

	m.progress(LevelVerbose, "Downloaded artwork for %s", job.Album.Name)
	return m.prepareArtwork(ctx, artwork, m.settings.CoverArtInTagsResize, m.settings.CoverArtInTagsMaxSize), nil
}

// prepareArtwork resizes and converts artwork as configured. Processing
// failures keep the original bytes.
func (m *Manager) prepareArtwork(ctx context.Context, data []byte, resize bool, maxSize int) []byte {
	out := data
	if resize && maxSize > 0 {
		if resized, err := m.imageService.ResizeImage(ctx, out, maxSize, maxSize); err == nil {
			out = resized
		}
	}
	if m.settings.ConvertCoverArtToJPG {
		if converted, err := m.imageService.ConvertToJPEG(ctx, out); err == nil {
			out = converted
		}
	}
	return out
}

func (m *Manager) downloadTrack(ctx context.Context, t TrackJob, job *Job, artwork []byte) error {
	if size := ioutils.FileSize(t.Path); size >= 0 {
		expected, err := m.fetcher.GetFileSize(ctx, t.Source.URL)
		if err == nil && expected > 0 {
			diff := math.Abs(float64(size-expected)) / float64(expected)
			if diff <= m.settings.AllowedFileSizeDifference {
				m.progress(LevelVerbose, "Skipping existing: %s", filepath.Base(t.Path))
				atomic.AddInt32(&m.downloadedFiles, 1)
				atomic.AddInt64(&m.receivedBytes, size)
				return nil
			}
		}
	}

	partial := t.Path + ".part"
	err := m.retry(ctx, t.Track.Name, func() error {
		var last int64
		err := m.fetcher.DownloadFile(ctx, t.Source.URL, partial, func(written, _ int64) {
			atomic.AddInt64(&m.receivedBytes, written-last)
			last = written
		})
		if err != nil {
			atomic.AddInt64(&m.receivedBytes, -last)
		}
		return err
	})
	if err != nil {
		os.Remove(partial)
		return err
	}
	if err := os.Rename(partial, t.Path); err != nil {
		return err
	}
	atomic.AddInt32(&m.downloadedFiles, 1)

	if m.settings.ModifyTags || artwork != nil {
		if err := m.tagger.SaveTags(t.Path, trackTags(job.Album, t.Track), artwork); err != nil {
			m.progress(LevelWarning, "Error tagging %s: %v", t.Track.Name, err)
		}
	}

	m.progress(LevelVerbose, "Downloaded: %s", filepath.Base(t.Path))
	return nil
}

// retry runs fn up to DownloadMaxRetries times with exponential backoff.
func (m *Manager) retry(ctx context.Context, what string, fn func() error) error {
	attempts := max(1, m.settings.DownloadMaxRetries)
	var err error
	for tries := 0; tries < attempts; tries++ {
		if err = fn(); err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if tries+1 < attempts {
			m.progress(LevelWarning, "Retry %d/%d for %s", tries+1, attempts-1, what)
			m.waitForRetry(ctx, tries)
		}
	}
	return err
}

func (m *Manager) waitForRetry(ctx context.Context, tries int) {
	cooldown := m.settings.DownloadRetryCooldown * math.Pow(m.settings.DownloadRetryExponent, float64(tries))
	timer := time.NewTimer(time.Duration(cooldown * float64(time.Second)))
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func (m *Manager) progress(level ProgressLevel, format string, args ...any) {
	if m.onProgress != nil {
		m.onProgress(ProgressEvent{Message: fmt.Sprintf(format, args...), Level: level})
	}
}

func trackTags(a *model.Album, t model.AlbumTrack) audio.TrackTags {
	tags := audio.TrackTags{
		Title:       t.Name,
		Album:       a.Name,
		Date:        a.ReleaseDate,
		TrackNumber: t.TrackNumber,
		Lyrics:      t.Lyrics,
	}
	tags.AlbumArtist = artistName(a)
	tags.Artist = tags.AlbumArtist
	if t.Artist != nil && t.Artist.Name != "" {
		tags.Artist = t.Artist.Name
	}
	if a.Label != nil {
		tags.Label = a.Label.Name
	}
	for _, tag := range a.Tags {
		tags.Genres = append(tags.Genres, tag.Name)
	}
	return tags
}

func playlistOf(job *Job) *audio.Playlist {
	pl := &audio.Playlist{Title: job.Album.Name, Artist: artistName(job.Album)}
	for _, t := range job.Tracks {
		e := audio.PlaylistEntry{
			Path:     t.Path,
			Title:    t.Track.Name,
			Duration: time.Duration(t.Track.Duration * float64(time.Second)),
		}
		if t.Track.Artist != nil {
			e.Artist = t.Track.Artist.Name
		}
		pl.Entries = append(pl.Entries, e)
	}
	return pl
}

func artistName(a *model.Album) string {
	if a.Artist != nil {
		return a.Artist.Name
	}
	return ""
}
