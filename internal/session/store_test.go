package session

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestLoggedIn(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   bool
	}{
		{"both cookies", "identity=abc; js_logged_in=1", true},
		{"identity only", "identity=abc", false},
		{"flag only", "js_logged_in=1", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			require.NoError(t, s.LoadHeader("bandcamp.com", tt.header))
			assert.Equal(t, tt.want, s.LoggedIn())
		})
	}
}

func TestDomainScoping(t *testing.T) {
	s := NewStore()
	s.SetCookies(mustURL(t, "https://artist.bandcamp.com/album/x"), []*http.Cookie{
		{Name: "host_only", Value: "1"},
		{Name: "shared", Value: "2", Domain: ".bandcamp.com", Path: "/"},
		{Name: "foreign", Value: "3", Domain: "example.org"},
	})

	assert.Equal(t, "host_only=1; shared=2", s.HeaderFor(mustURL(t, "https://artist.bandcamp.com/album/y"), nil))
	assert.Equal(t, "shared=2", s.HeaderFor(mustURL(t, "https://bandcamp.com/"), nil))
	assert.Empty(t, s.HeaderFor(mustURL(t, "https://example.org/"), nil))
}

func TestCrossSiteHeader(t *testing.T) {
	s := NewStore()
	s.SetCookies(mustURL(t, "https://music.example.org/"), []*http.Cookie{
		{Name: "lax", Value: "1", Path: "/"},
		{Name: "none", Value: "2", Path: "/", SameSite: http.SameSiteNoneMode, Secure: true},
	})
	target := mustURL(t, "https://music.example.org/track/a")

	assert.Equal(t, "lax=1; none=2", s.HeaderFor(target, mustURL(t, "https://music.example.org/album/b")))
	assert.Equal(t, "none=2", s.HeaderFor(target, mustURL(t, "https://elsewhere.net/")))
	assert.Empty(t, s.HeaderFor(mustURL(t, "http://music.example.org/track/a"), mustURL(t, "https://elsewhere.net/")))
}

func TestExpiryAndDeletion(t *testing.T) {
	s := NewStore()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	u := mustURL(t, "https://bandcamp.com/")

	s.SetCookies(u, []*http.Cookie{
		{Name: "short", Value: "1", MaxAge: 60},
		{Name: "gone", Value: "2", Expires: now.Add(-time.Hour)},
		{Name: "keep", Value: "3"},
	})
	assert.Equal(t, "keep=3; short=1", s.HeaderFor(u, nil))

	now = now.Add(2 * time.Minute)
	assert.Equal(t, "keep=3", s.HeaderFor(u, nil))

	s.SetCookies(u, []*http.Cookie{{Name: "keep", MaxAge: -1}})
	assert.False(t, s.HasCookies(u))
}

func TestPathMatching(t *testing.T) {
	s := NewStore()
	s.SetCookies(mustURL(t, "https://bandcamp.com/"), []*http.Cookie{
		{Name: "api", Value: "1", Path: "/api"},
	})
	assert.True(t, s.HasCookies(mustURL(t, "https://bandcamp.com/api/fan/2/collection_summary")))
	assert.False(t, s.HasCookies(mustURL(t, "https://bandcamp.com/apix")))
	assert.False(t, s.HasCookies(mustURL(t, "https://bandcamp.com/")))
}

func TestResetNotifiesListeners(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.LoadHeader("bandcamp.com", "identity=abc; js_logged_in=1"))
	calls := 0
	s.OnReset(func() { calls++ })

	s.Reset()
	assert.Equal(t, 1, calls)
	assert.False(t, s.LoggedIn())
	assert.False(t, s.HasCookies(mustURL(t, "https://bandcamp.com/")))
}

func TestLoadHeaderRejectsGarbage(t *testing.T) {
	s := NewStore()
	assert.Error(t, s.LoadHeader("bandcamp.com", "=novalue"))
}
