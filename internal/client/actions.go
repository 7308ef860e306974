package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/handiism/bandcamp-fetch/internal/bandcamp"
	bchttp "github.com/handiism/bandcamp-fetch/internal/http"
	"github.com/handiism/bandcamp-fetch/internal/model"
)

// Action endpoints. Each name is also the key of its crumb.
const (
	followEndpoint     = "fan_follow_band_cb"
	unfollowEndpoint   = "fan_unfollow_band_cb"
	collectEndpoint    = "collect_item_cb"
	uncollectEndpoint  = "uncollect_item_cb"
	hideUnhideEndpoint = "api/collectionowner/1/hide_unhide_item"
)

// CurrentFan returns the logged-in fan, or nil when not logged in.
func (c *Client) CurrentFan(ctx context.Context) (*model.FanInfo, error) {
	return c.identity.CurrentFan(ctx)
}

// Crumbs returns the action crumbs of the logged-in fan, or nil when not
// logged in.
func (c *Client) Crumbs(ctx context.Context) (map[string]string, error) {
	return c.identity.Crumbs(ctx)
}

// WishlistItem identifies a release to add to or remove from the
// wishlist.
type WishlistItem struct {
	Type   model.ItemType
	ID     int64
	BandID int64
}

// Follow follows an artist or label.
func (c *Client) Follow(ctx context.Context, bandID int64) error {
	return c.postForm(ctx, followEndpoint, url.Values{"band_id": {strconv.FormatInt(bandID, 10)}})
}

// Unfollow stops following an artist or label.
func (c *Client) Unfollow(ctx context.Context, bandID int64) error {
	return c.postForm(ctx, unfollowEndpoint, url.Values{"band_id": {strconv.FormatInt(bandID, 10)}})
}

// AddToWishlist adds a release to the wishlist.
func (c *Client) AddToWishlist(ctx context.Context, item WishlistItem) error {
	return c.postForm(ctx, collectEndpoint, wishlistForm(item))
}

// RemoveFromWishlist removes a release from the wishlist.
func (c *Client) RemoveFromWishlist(ctx context.Context, item WishlistItem) error {
	return c.postForm(ctx, uncollectEndpoint, wishlistForm(item))
}

func wishlistForm(item WishlistItem) url.Values {
	return url.Values{
		"item_type": {itemTypeCode(item.Type)},
		"item_id":   {strconv.FormatInt(item.ID, 10)},
		"band_id":   {strconv.FormatInt(item.BandID, 10)},
	}
}

// Hide hides a release in the collection.
func (c *Client) Hide(ctx context.Context, t model.ItemType, id int64) error {
	return c.hideUnhide(ctx, "hide", t, id)
}

// Unhide shows a hidden release in the collection again.
func (c *Client) Unhide(ctx context.Context, t model.ItemType, id int64) error {
	return c.hideUnhide(ctx, "unhide", t, id)
}

func itemTypeCode(t model.ItemType) string {
	if t == model.TypeTrack {
		return "t"
	}
	return "a"
}

type hideRequest struct {
	FanID    int64  `json:"fan_id"`
	ItemType string `json:"item_type"`
	ItemID   int64  `json:"item_id"`
	Action   string `json:"action"`
	Crumb    string `json:"crumb"`
}

func (c *Client) hideUnhide(ctx context.Context, action string, t model.ItemType, id int64) error {
	fan, crumb, err := c.actionContext(ctx, hideUnhideEndpoint)
	if err != nil {
		return err
	}
	endpoint := c.baseURL + "/" + hideUnhideEndpoint
	body, err := c.http.PostJSON(ctx, endpoint, hideRequest{
		FanID:    fan.ID,
		ItemType: itemTypeCode(t),
		ItemID:   id,
		Action:   action,
		Crumb:    crumb,
	}, bchttp.XHRHeader(fan.URL))
	if err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}
	return c.actionResult(hideUnhideEndpoint, endpoint, body)
}

func (c *Client) postForm(ctx context.Context, name string, form url.Values) error {
	fan, crumb, err := c.actionContext(ctx, name)
	if err != nil {
		return err
	}
	form.Set("fan_id", strconv.FormatInt(fan.ID, 10))
	form.Set("crumb", crumb)

	endpoint := c.baseURL + "/" + name
	body, err := c.http.PostForm(ctx, endpoint, form, bchttp.XHRHeader(fan.URL))
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return c.actionResult(name, endpoint, body)
}

// actionContext returns the logged-in fan and the crumb for an action.
func (c *Client) actionContext(ctx context.Context, name string) (*model.FanInfo, string, error) {
	fan, err := c.identity.CurrentFan(ctx)
	if err != nil {
		return nil, "", err
	}
	if fan == nil {
		return nil, "", fmt.Errorf("%s: %w", name, bandcamp.ErrNotLoggedIn)
	}
	crumb, err := c.identity.Crumb(ctx, name)
	if err != nil {
		return nil, "", fmt.Errorf("%s crumb: %w", name, err)
	}
	return fan, crumb, nil
}

// actionResult decodes an action reply. A rejected crumb is replaced in
// the cache with the one the reply carries.
func (c *Client) actionResult(name, endpoint string, body []byte) error {
	err := bandcamp.ParseActionResult(endpoint, body)
	var ae *bandcamp.ActionError
	if errors.As(err, &ae) && ae.InvalidCrumb() && ae.Crumb != "" {
		c.logger.Info("crumb refreshed", "action", name)
		c.identity.UpdateCrumb(name, ae.Crumb)
	}
	return err
}
