package bandcamp

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/handiism/bandcamp-fetch/internal/bandcamp/dto"
	"github.com/handiism/bandcamp-fetch/internal/model"
)

// ErrNotLoggedIn is returned when an endpoint reports that the session
// has no authenticated fan.
var ErrNotLoggedIn = errors.New("not logged in")

// Summary is the logged-in fan's collection summary.
type Summary struct {
	Fan       model.FanInfo
	Owned     map[string]bool
	Following map[int64]bool
}

// ParseCollectionSummary decodes api/fan/2/collection_summary. A response
// without a fan id, or flagged as an error, yields ErrNotLoggedIn.
func ParseCollectionSummary(endpoint string, body []byte) (*Summary, error) {
	var resp dto.CollectionSummaryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &ParseError{URL: endpoint, Field: "collection summary", Err: err}
	}
	if resp.Error.Set || resp.Summary == nil {
		return nil, ErrNotLoggedIn
	}
	cs := resp.Summary
	id := cs.FanID
	if id == 0 {
		id = resp.FanID
	}
	if id == 0 {
		return nil, ErrNotLoggedIn
	}

	info := model.FanInfo{
		ID:       id.Int64(),
		Username: cs.Username,
		URL:      model.CanonicalURL(cs.URL),
	}
	if info.URL == "" && info.Username != "" {
		info.URL = "https://bandcamp.com/" + info.Username
	}
	if info.Username == "" {
		info.Username = FanUsername(info.URL)
	}

	s := &Summary{
		Fan:       info,
		Owned:     make(map[string]bool, len(cs.TralbumLookup)),
		Following: make(map[int64]bool, len(cs.Follows.Following)),
	}
	for key, item := range cs.TralbumLookup {
		if item.ItemID != 0 && item.ItemType != "" {
			key = item.ItemType[:1] + strconv.FormatInt(item.ItemID.Int64(), 10)
		}
		s.Owned[key] = true
	}
	for key, following := range cs.Follows.Following {
		digits := strings.TrimLeftFunc(key, func(r rune) bool { return r < '0' || r > '9' })
		if id, ok := NormalizeNumber(digits); ok && following {
			s.Following[id] = true
		}
	}
	return s, nil
}

// Owns reports whether the viewer's collection holds the release.
func (s *Summary) Owns(t model.ItemType, id int64) bool {
	if s == nil || id == 0 {
		return false
	}
	prefix := "a"
	if t == model.TypeTrack {
		prefix = "t"
	}
	return s.Owned[prefix+strconv.FormatInt(id, 10)]
}

// ApplySummary flags every collection-like item the viewer owns.
func ApplySummary(fan *model.Fan, s *Summary) {
	if fan == nil || s == nil {
		return
	}
	for _, sec := range []*model.FanSection[model.CollectionNode]{fan.Collection, fan.Wishlist, fan.Hidden} {
		if sec == nil {
			continue
		}
		for i := range sec.Items {
			if item := sec.Items[i].Item; item != nil && s.Owns(item.Type, item.ID) {
				item.InViewerCollection = true
			}
		}
	}
	if fan.ID != 0 && fan.ID == s.Fan.ID {
		fan.IsCurrentUser = true
	}
}

// ParseCrumbs reads the action crumbs from #js-crumbs-data.
func ParseCrumbs(html, pageURL string) (map[string]string, error) {
	p, err := newPage(html, pageURL)
	if err != nil {
		return nil, err
	}
	crumbs := map[string]string{}
	ok, err := p.jsonAttr("#js-crumbs-data", "data-crumbs", &crumbs)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &ParseError{URL: pageURL, Field: "crumbs"}
	}
	return crumbs, nil
}

// ParseActionResult decodes the reply of a mutating endpoint. A reply that
// is not ok is an *ActionError carrying the platform's message and, for
// stale crumbs, the replacement crumb.
func ParseActionResult(endpoint string, body []byte) error {
	var res dto.ActionResult
	if err := json.Unmarshal(body, &res); err != nil {
		return &ParseError{URL: endpoint, Field: "action result", Err: err}
	}
	failed := res.Error.Set || res.ErrorMessage != "" || (res.OK != nil && !*res.OK)
	if !failed {
		return nil
	}
	return &ActionError{
		URL:     endpoint,
		Message: res.ErrorMessage,
		Code:    res.Error.Code,
		Crumb:   res.Crumb,
	}
}
