package client

import (
	"context"
	"fmt"

	"github.com/handiism/bandcamp-fetch/internal/bandcamp"
	"github.com/handiism/bandcamp-fetch/internal/model"
)

// ResolveOptions tunes Resolve.
type ResolveOptions struct {
	// ForceType skips type inference. Forcing TypeAlbum on a single
	// track yields a one-track album.
	ForceType model.ItemType

	// FetchAdditionalData enables enrichment: the collection summary and
	// wishlist for fans, streaming sources for off-platform releases
	// without audio.
	FetchAdditionalData bool
}

// Resolve fetches rawURL and parses it into an entity.
func (c *Client) Resolve(ctx context.Context, rawURL string, opts ResolveOptions) (model.Entity, error) {
	html, final, err := c.http.GetPage(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	pageURL := model.CanonicalURL(final)

	kind := opts.ForceType
	if kind == "" {
		var ok bool
		if kind, ok = bandcamp.PageType(html, pageURL); !ok {
			return nil, &bandcamp.ParseError{URL: pageURL, Field: "item type"}
		}
	}
	c.logger.Debug("resolving", "url", pageURL, "type", kind)

	var entity model.Entity
	switch kind {
	case model.TypeFan:
		return c.resolveFan(ctx, html, pageURL, opts)
	case model.TypeArtist, model.TypeLabel:
		artist, err := bandcamp.ParseArtist(html, pageURL)
		if err != nil {
			return nil, err
		}
		entity = artist
	case model.TypeAlbum, model.TypeTrack:
		entity, err = bandcamp.ParseTralbum(html, pageURL)
		if err != nil {
			return nil, err
		}
		if t, ok := entity.(*model.Track); ok && opts.ForceType == model.TypeAlbum && (t.Album == nil || t.IsSingle()) {
			entity = bandcamp.AlbumFromSingle(t)
		}
	default:
		return nil, fmt.Errorf("resolve %s: unsupported type %q", pageURL, kind)
	}

	if opts.FetchAdditionalData {
		c.enrichAudio(ctx, html, pageURL, entity)
	}
	return entity, nil
}

func (c *Client) resolveFan(ctx context.Context, html, pageURL string, opts ResolveOptions) (*model.Fan, error) {
	fanURL := bandcamp.FanPageURL(html, pageURL)

	var summary *bandcamp.Summary
	if opts.FetchAdditionalData && c.store.LoggedIn() {
		s, err := c.identity.Summary(ctx)
		if err != nil {
			c.logger.Warn("collection summary unavailable", "url", fanURL, "error", err)
		}
		summary = s
	}

	fan, err := bandcamp.ParseFan(html, pageURL)
	if err != nil {
		return nil, err
	}

	if bandcamp.IsFanRootPage(pageURL) {
		c.mergeWishlist(ctx, fan, fanURL)
	}
	bandcamp.ApplySummary(fan, summary)
	return fan, nil
}

// mergeWishlist loads the fan's /wishlist page, whose blob carries the
// wishlist section the root page omits.
func (c *Client) mergeWishlist(ctx context.Context, fan *model.Fan, fanURL string) {
	wishURL := fanURL + "/wishlist"
	html, final, err := c.http.GetPage(ctx, wishURL)
	if err != nil {
		c.logger.Warn("wishlist unavailable", "url", wishURL, "error", err)
		return
	}
	wish, err := bandcamp.ParseFan(html, final)
	if err != nil {
		c.logger.Warn("wishlist unavailable", "url", wishURL, "error", err)
		return
	}
	fan.Merge(&model.Fan{Wishlist: wish.Wishlist, WishlistCount: wish.WishlistCount})
}

// enrichAudio attaches streaming sources to off-platform releases that
// have none, when the viewer is logged in.
func (c *Client) enrichAudio(ctx context.Context, html, pageURL string, entity model.Entity) {
	if !model.IsOffPlatform(pageURL) || !bandcamp.NeedsAudio(entity) || !c.store.LoggedIn() {
		return
	}
	script, ok := bandcamp.FindCDUIScript(html, pageURL)
	if !ok {
		c.logger.Debug("no streaming script", "url", pageURL)
		return
	}
	js, err := c.http.GetString(ctx, script)
	if err != nil {
		c.logger.Warn("streaming script unavailable", "url", script, "error", err)
		return
	}
	payload, err := bandcamp.ParseCDUIPayload(script, js)
	if err != nil {
		c.logger.Warn("streaming script unreadable", "url", script, "error", err)
		return
	}
	added := bandcamp.ApplyCDUI(entity, payload)
	c.logger.Debug("streaming sources attached", "url", pageURL, "count", added)
}
