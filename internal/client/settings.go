package client

import (
	"log/slog"

	"github.com/handiism/bandcamp-fetch/internal/config"
	bchttp "github.com/handiism/bandcamp-fetch/internal/http"
)

// NewFromSettings creates a client configured by the session and
// transport keys of s.
func NewFromSettings(s *config.Settings, logger *slog.Logger, opts ...Option) (*Client, error) {
	base := []Option{
		WithCookie(s.Cookie),
		WithCrumbTTL(s.CrumbTTL),
		WithLogger(logger),
		WithHTTPOptions(
			bchttp.WithUserAgent(s.UserAgent),
			bchttp.WithMaxRedirects(s.MaxRedirects),
			bchttp.WithRateLimit(s.RequestsPerSecond),
		),
	}
	return New(append(base, opts...)...)
}
