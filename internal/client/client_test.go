package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/bandcamp-fetch/internal/bandcamp"
	"github.com/handiism/bandcamp-fetch/internal/collection"
	"github.com/handiism/bandcamp-fetch/internal/config"
	bchttp "github.com/handiism/bandcamp-fetch/internal/http"
	"github.com/handiism/bandcamp-fetch/internal/model"
)

const loggedInCookie = "identity=abc; js_logged_in=1"

const plainAlbumPage = `<html><head><meta property="og:type" content="album"></head><body>
<div id="name-section"><h2 class="trackTitle">Plain Album</h2>
<h3>by <span><a href="https://artist.bandcamp.com">Someone</a></span></h3></div>
<script src="/cdui/init.js?id=7"></script>
<table id="track_table">
  <tr class="track_row_view"><td class="title"><a href="/track/a"><span class="track-title">A</span></a><span class="time">1:00</span></td></tr>
  <tr class="track_row_view"><td class="title"><a href="/track/b"><span class="track-title">B</span></a><span class="time">2:00</span></td></tr>
</table></body></html>`

const cduiScript = `CDUI.init({"tracks":[
 {"title":"A","file":{"mp3-128":"https://t4.bcbits.com/stream/a"}},
 {"title":"B","file":{"mp3-128":"https://t4.bcbits.com/stream/b"}}]});`

const singlePage = `<html><head></head><body>
<div id="name-section"><h2 class="trackTitle">Lonely</h2>
<h3>by <span><a href="https://artist.bandcamp.com">The Artist</a></span></h3></div>
<div data-tralbum='{"id":55,"item_type":"track","url":"/track/lonely","artist":"The Artist",
  "current":{"title":"Lonely","track_number":null},
  "trackinfo":[{"track_id":55,"title":"Lonely","track_num":null,"duration":120,"file":{"mp3-128":"https://t4.bcbits.com/stream/lonely"}}]}'></div>
</body></html>`

const artistHome = `<html><head><meta property="og:type" content="band"></head><body>
<div id="band-name-location"><span class="title">The Artist</span><span class="location">Porto</span></div>
<div data-band='{"id":500,"name":"The Artist","image_id":77}'></div>
</body></html>`

const fanRoot = `<html><head>
<meta property="og:type" content="profile">
<meta property="og:title" content="Some Fan | Bandcamp">
</head><body>
<div id="js-crumbs-data" data-crumbs='{"fan_follow_band_cb":"c1","collect_item_cb":"c3","api/collectionowner/1/hide_unhide_item":"c4"}'></div>
<div id="pagedata" data-blob='{
 "fan_data":{"fan_id":900,"name":"Some Fan","username":"somefan"},
 "collection_data":{"sequence":["a1"],"last_token":"1609495200:1:a::","item_count":3},
 "item_cache":{"collection":{
   "a1":{"item_id":1,"item_type":"album","tralbum_id":1,"tralbum_type":"a","item_title":"Owned Album","added":"01 Jan 2021 10:00:00 GMT"}}}
}'></div>
</body></html>`

const fanWishlist = `<html><head>
<meta property="og:title" content="Some Fan | Bandcamp">
</head><body>
<div id="pagedata" data-blob='{
 "fan_data":{"fan_id":900,"name":"Some Fan","username":"somefan"},
 "wishlist_data":{"sequence":["a7"],"item_count":1},
 "item_cache":{"wishlist":{
   "a7":{"item_id":7,"item_type":"album","tralbum_id":7,"tralbum_type":"a","item_title":"Wanted","added":"05 Jan 2021 10:00:00 GMT"}}}
}'></div>
</body></html>`

const searchPage = `<html><body>
<ul class="result-items">
  <li class="searchresult data-search"><div class="result-info">
    <div class="itemtype">ALBUM</div>
    <div class="heading"><a href="https://artist.bandcamp.com/album/test-album">Test Album</a></div>
    <div class="subhead">by The Artist</div>
  </div></li>
  <li class="searchresult data-search"><div class="result-info">
    <div class="itemtype">ALBUM</div>
    <div class="heading"><a href="https://other.bandcamp.com/album/tests">Tests</a></div>
    <div class="subhead">by Other</div>
  </div></li>
</ul></body></html>`

type fakeBandcamp struct {
	t   *testing.T
	srv *httptest.Server

	mu     sync.Mutex
	hits   map[string]int
	forms  []map[string]string
	action func(w http.ResponseWriter, r *http.Request)
}

func newFakeBandcamp(t *testing.T) *fakeBandcamp {
	t.Helper()
	fb := &fakeBandcamp{t: t, hits: map[string]int{}}
	fb.action = func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"ok":true}`)
	}

	page := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			fb.hit(r.URL.Path)
			w.Header().Set("Content-Type", "text/html")
			_, _ = io.WriteString(w, body)
		}
	}

	mux := http.NewServeMux()
	mux.Handle("/album/plain", page(plainAlbumPage))
	mux.Handle("/track/lonely", page(singlePage))
	mux.Handle("/music", page(artistHome))
	mux.Handle("/somefan", page(fanRoot))
	mux.Handle("/somefan/wishlist", page(fanWishlist))
	mux.Handle("/cdui/init.js", page(cduiScript))
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		fb.hit(r.URL.Path + "?" + r.URL.RawQuery)
		_, _ = io.WriteString(w, searchPage)
	})
	mux.HandleFunc("/api/fan/2/collection_summary", func(w http.ResponseWriter, r *http.Request) {
		fb.hit(r.URL.Path)
		_, _ = io.WriteString(w, `{"fan_id":900,"collection_summary":{"fan_id":900,"username":"somefan",
			"url":"`+fb.srv.URL+`/somefan","tralbum_lookup":{"a1":{"item_type":"album","item_id":1}},
			"follows":{"following":{"500":true}}}}`)
	})
	mux.HandleFunc("/api/fancollection/1/collection_items", func(w http.ResponseWriter, r *http.Request) {
		fb.hit(r.URL.Path)
		_, _ = io.WriteString(w, `{"items":[
			{"item_id":2,"item_type":"album","tralbum_id":2,"tralbum_type":"a","item_title":"Older Album","added":"01 Dec 2020 10:00:00 GMT"}],
			"more_available":false,"last_token":"1606816800:2:a::"}`)
	})
	mux.HandleFunc("/api/fancollection/1/following_fans", func(w http.ResponseWriter, r *http.Request) {
		fb.hit(r.URL.Path)
		_, _ = io.WriteString(w, `{"followeers":[{"fan_id":77,"name":"Friend","trackpipe_url":"https://bandcamp.com/friend","date_followed":"01 Feb 2021 00:00:00 GMT"}],
			"more_available":true,"last_token":"t77"}`)
	})
	actionHandler := func(w http.ResponseWriter, r *http.Request) {
		fb.hit(r.URL.Path)
		form := map[string]string{"path": r.URL.Path}
		if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			for k, v := range body {
				form[k] = fmt.Sprint(v)
			}
		} else {
			_ = r.ParseForm()
			for k := range r.PostForm {
				form[k] = r.PostForm.Get(k)
			}
		}
		fb.mu.Lock()
		fb.forms = append(fb.forms, form)
		action := fb.action
		fb.mu.Unlock()
		action(w, r)
	}
	for _, p := range []string{"/fan_follow_band_cb", "/fan_unfollow_band_cb", "/collect_item_cb", "/uncollect_item_cb", "/api/collectionowner/1/hide_unhide_item"} {
		mux.HandleFunc(p, actionHandler)
	}

	fb.srv = httptest.NewServer(mux)
	t.Cleanup(fb.srv.Close)
	return fb
}

func (fb *fakeBandcamp) setAction(fn func(w http.ResponseWriter, r *http.Request)) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.action = fn
}

func (fb *fakeBandcamp) hit(key string) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.hits[key]++
}

func (fb *fakeBandcamp) count(key string) int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.hits[key]
}

func (fb *fakeBandcamp) lastForm() map[string]string {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	require.NotEmpty(fb.t, fb.forms)
	return fb.forms[len(fb.forms)-1]
}

func (fb *fakeBandcamp) client(t *testing.T, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{
		WithBaseURL(fb.srv.URL),
		WithLogger(slog.New(slog.DiscardHandler)),
	}, opts...)
	c, err := New(opts...)
	require.NoError(t, err)
	return c
}

func TestResolveAlbum(t *testing.T) {
	fb := newFakeBandcamp(t)
	c := fb.client(t)

	entity, err := c.Resolve(context.Background(), fb.srv.URL+"/album/plain?from=test", ResolveOptions{})
	require.NoError(t, err)
	album, ok := entity.(*model.Album)
	require.True(t, ok, "got %T", entity)
	assert.Equal(t, "Plain Album", album.Name)
	assert.Equal(t, fb.srv.URL+"/album/plain", album.URL)
	require.Len(t, album.Tracks, 2)
	assert.False(t, album.HasAudio())
	assert.Zero(t, fb.count("/cdui/init.js"))
}

func TestResolveEnrichesOffPlatformAudio(t *testing.T) {
	fb := newFakeBandcamp(t)
	c := fb.client(t, WithCookie(loggedInCookie))

	entity, err := c.Resolve(context.Background(), fb.srv.URL+"/album/plain", ResolveOptions{FetchAdditionalData: true})
	require.NoError(t, err)
	album := entity.(*model.Album)
	assert.True(t, album.HasAudio())
	assert.Equal(t, "https://t4.bcbits.com/stream/b", album.Tracks[1].AudioSources[0].URL)
	assert.Equal(t, 1, fb.count("/cdui/init.js"))
}

func TestResolveSkipsEnrichmentWhenLoggedOut(t *testing.T) {
	fb := newFakeBandcamp(t)
	c := fb.client(t)

	entity, err := c.Resolve(context.Background(), fb.srv.URL+"/album/plain", ResolveOptions{FetchAdditionalData: true})
	require.NoError(t, err)
	assert.False(t, entity.(*model.Album).HasAudio())
	assert.Zero(t, fb.count("/cdui/init.js"))
}

func TestResolveForcedAlbumCollapsesSingle(t *testing.T) {
	fb := newFakeBandcamp(t)
	c := fb.client(t)
	ctx := context.Background()

	entity, err := c.Resolve(ctx, fb.srv.URL+"/track/lonely", ResolveOptions{})
	require.NoError(t, err)
	track, ok := entity.(*model.Track)
	require.True(t, ok, "got %T", entity)
	assert.True(t, track.IsSingle())

	entity, err = c.Resolve(ctx, fb.srv.URL+"/track/lonely", ResolveOptions{ForceType: model.TypeAlbum})
	require.NoError(t, err)
	album, ok := entity.(*model.Album)
	require.True(t, ok, "got %T", entity)
	require.Len(t, album.Tracks, 1)
	assert.Equal(t, track.Name, album.Tracks[0].Name)
	assert.Equal(t, track.URL, album.Tracks[0].URL)
	assert.Equal(t, 1, album.Tracks[0].TrackNumber)
}

func TestResolveArtist(t *testing.T) {
	fb := newFakeBandcamp(t)
	c := fb.client(t)

	entity, err := c.Resolve(context.Background(), fb.srv.URL+"/music", ResolveOptions{})
	require.NoError(t, err)
	artist, ok := entity.(*model.Artist)
	require.True(t, ok, "got %T", entity)
	assert.Equal(t, "The Artist", artist.Name)
	assert.EqualValues(t, 500, artist.ID)
}

func TestResolveFan(t *testing.T) {
	fb := newFakeBandcamp(t)
	c := fb.client(t, WithCookie(loggedInCookie))

	entity, err := c.Resolve(context.Background(), fb.srv.URL+"/somefan", ResolveOptions{FetchAdditionalData: true})
	require.NoError(t, err)
	fan, ok := entity.(*model.Fan)
	require.True(t, ok, "got %T", entity)

	assert.EqualValues(t, 900, fan.ID)
	assert.Equal(t, "Some Fan", fan.Name)
	assert.True(t, fan.IsCurrentUser)

	require.NotNil(t, fan.Collection)
	require.Len(t, fan.Collection.Items, 1)
	assert.True(t, fan.Collection.Items[0].Item.InViewerCollection)

	require.NotNil(t, fan.Wishlist)
	require.Len(t, fan.Wishlist.Items, 1)
	assert.Equal(t, "Wanted", fan.Wishlist.Items[0].Item.Name)
	assert.Equal(t, 1, fan.WishlistCount)

	assert.Equal(t, 1, fb.count("/somefan/wishlist"))
	assert.Equal(t, 1, fb.count("/api/fan/2/collection_summary"))
}

func TestResolveFanSubPageSkipsWishlist(t *testing.T) {
	fb := newFakeBandcamp(t)
	c := fb.client(t)

	entity, err := c.Resolve(context.Background(), fb.srv.URL+"/somefan/wishlist", ResolveOptions{ForceType: model.TypeFan})
	require.NoError(t, err)
	fan := entity.(*model.Fan)
	require.NotNil(t, fan.Wishlist)
	assert.Equal(t, 1, fb.count("/somefan/wishlist"))
	assert.Zero(t, fb.count("/api/fan/2/collection_summary"))
}

func TestResolveErrors(t *testing.T) {
	fb := newFakeBandcamp(t)
	c := fb.client(t)
	ctx := context.Background()

	_, err := c.Resolve(ctx, fb.srv.URL+"/missing", ResolveOptions{})
	assert.Equal(t, http.StatusNotFound, bchttp.StatusCode(err))

	// the search page has no type hint
	_, err = c.Resolve(ctx, fb.srv.URL+"/search", ResolveOptions{})
	var pe *bandcamp.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "item type", pe.Field)
}

func TestSearch(t *testing.T) {
	fb := newFakeBandcamp(t)
	c := fb.client(t)

	list, err := c.Search(context.Background(), "test album", SearchOptions{Type: model.SearchAlbums, Page: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, fb.count("/search?item_type=a&page=2&q=test+album"))
	assert.Equal(t, 2, list.Page)
	require.Len(t, list.Items, 2)

	best, ok := BestMatch(list.Items, "the artist test album")
	require.True(t, ok)
	assert.Equal(t, "Test Album", best.Name)

	best, ok = BestMatch(list.Items, "tests")
	require.True(t, ok)
	assert.Equal(t, "Tests", best.Name)

	_, ok = BestMatch(nil, "x")
	assert.False(t, ok)
}

func TestLoadMore(t *testing.T) {
	fb := newFakeBandcamp(t)
	c := fb.client(t)
	ctx := context.Background()

	entity, err := c.Resolve(ctx, fb.srv.URL+"/somefan", ResolveOptions{})
	require.NoError(t, err)
	fan := entity.(*model.Fan)

	require.NoError(t, c.LoadMore(ctx, fan, SectionCollection))
	require.Len(t, fan.Collection.Items, 2)
	assert.Equal(t, "Owned Album", fan.Collection.Items[0].Item.Name)
	assert.Equal(t, "Older Album", fan.Collection.Items[1].Item.Name)
	assert.False(t, fan.Collection.HasMore)

	// exhausted
	require.NoError(t, c.LoadMore(ctx, fan, SectionCollection))
	assert.Equal(t, 1, fb.count("/api/fancollection/1/collection_items"))

	require.Nil(t, fan.FollowingFans)
	require.NoError(t, c.LoadMore(ctx, fan, SectionFollowingFans))
	require.NotNil(t, fan.FollowingFans)
	require.Len(t, fan.FollowingFans.Items, 1)
	assert.Equal(t, "Friend", fan.FollowingFans.Items[0].Item.Name)
	assert.True(t, fan.FollowingFans.HasMore)

	assert.Error(t, c.LoadMore(ctx, &model.Fan{}, SectionCollection))
	assert.Error(t, c.LoadMore(ctx, fan, SectionKind("bogus")))
}

func TestCurrentFanAndLogout(t *testing.T) {
	fb := newFakeBandcamp(t)
	c := fb.client(t, WithCookie(loggedInCookie))
	ctx := context.Background()

	fan, err := c.CurrentFan(ctx)
	require.NoError(t, err)
	require.NotNil(t, fan)
	assert.EqualValues(t, 900, fan.ID)
	assert.Equal(t, "Some Fan", fan.Name)

	crumbs, err := c.Crumbs(ctx)
	require.NoError(t, err)
	assert.Equal(t, "c1", crumbs["fan_follow_band_cb"])

	c.Logout()
	fan, err = c.CurrentFan(ctx)
	require.NoError(t, err)
	assert.Nil(t, fan)
	crumbs, err = c.Crumbs(ctx)
	require.NoError(t, err)
	assert.Nil(t, crumbs)
}

func TestActions(t *testing.T) {
	fb := newFakeBandcamp(t)
	c := fb.client(t, WithCookie(loggedInCookie))
	ctx := context.Background()

	require.NoError(t, c.Follow(ctx, 500))
	form := fb.lastForm()
	assert.Equal(t, "/fan_follow_band_cb", form["path"])
	assert.Equal(t, "500", form["band_id"])
	assert.Equal(t, "900", form["fan_id"])
	assert.Equal(t, "c1", form["crumb"])

	require.NoError(t, c.AddToWishlist(ctx, WishlistItem{Type: model.TypeTrack, ID: 42, BandID: 500}))
	form = fb.lastForm()
	assert.Equal(t, "/collect_item_cb", form["path"])
	assert.Equal(t, "t", form["item_type"])
	assert.Equal(t, "42", form["item_id"])
	assert.Equal(t, "c3", form["crumb"])

	require.NoError(t, c.Hide(ctx, model.TypeAlbum, 1))
	form = fb.lastForm()
	assert.Equal(t, "/api/collectionowner/1/hide_unhide_item", form["path"])
	assert.Equal(t, "hide", form["action"])
	assert.Equal(t, "a", form["item_type"])
	assert.Equal(t, "c4", form["crumb"])
	assert.Equal(t, "900", form["fan_id"])
}

func TestActionRefreshesRejectedCrumb(t *testing.T) {
	fb := newFakeBandcamp(t)
	c := fb.client(t, WithCookie(loggedInCookie))
	ctx := context.Background()

	fb.setAction(func(w http.ResponseWriter, r *http.Request) {
		if r.PostForm.Get("crumb") == "fresh" {
			_, _ = io.WriteString(w, `{"ok":true}`)
			return
		}
		_, _ = io.WriteString(w, `{"error":"invalid_crumb","crumb":"fresh"}`)
	})

	err := c.Unfollow(ctx, 500)
	var ae *bandcamp.ActionError
	require.ErrorAs(t, err, &ae)
	assert.True(t, ae.InvalidCrumb())

	require.NoError(t, c.Unfollow(ctx, 500))
	assert.Equal(t, "fresh", fb.lastForm()["crumb"])
	assert.Equal(t, 1, fb.count("/somefan"), "crumbs come from one fan page load")
}

func TestActionsRequireLogin(t *testing.T) {
	fb := newFakeBandcamp(t)
	c := fb.client(t)

	err := c.Follow(context.Background(), 500)
	assert.ErrorIs(t, err, bandcamp.ErrNotLoggedIn)
	assert.Zero(t, fb.count("/fan_follow_band_cb"))
}

func TestSearchCollection(t *testing.T) {
	fb := newFakeBandcamp(t)
	c := fb.client(t)

	_, err := c.SearchCollection(context.Background(), nil, "x", collection.KindCollection)
	assert.Error(t, err)
}

func TestNewFromSettings(t *testing.T) {
	fb := newFakeBandcamp(t)
	s := config.DefaultSettings()
	s.Cookie = "identity=abc; client_id=xyz"
	s.UserAgent = "fetch-test/1.0"

	c, err := NewFromSettings(s, slog.New(slog.DiscardHandler), WithBaseURL(fb.srv.URL))
	require.NoError(t, err)

	u, _ := url.Parse("https://bandcamp.com/")
	assert.Len(t, c.Session().Cookies(u), 2)

	s.Cookie = "not a cookie header"
	_, err = NewFromSettings(s, nil)
	assert.Error(t, err)
}
