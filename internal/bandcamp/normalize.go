package bandcamp

import (
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/handiism/bandcamp-fetch/internal/bandcamp/dto"
	"github.com/handiism/bandcamp-fetch/internal/model"
)

// NormalizeDate rewrites a parseable date as 2006-01-02T15:04:05.000Z.
// Unparseable input is returned unchanged.
func NormalizeDate(s string) string {
	return dto.NormalizeDate(s)
}

// NormalizeNumber converts a string of digits into a number.
func NormalizeNumber(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if !dto.IsDigits(s) {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	return n, err == nil
}

var isoDuration = regexp.MustCompile(`^P(?:(\d+)D)?T?(?:(\d+)H)?(?:(\d+)M)?(?:([\d.]+)S)?$`)

// ParseDuration reads "mm:ss", "h:mm:ss" and ISO-8601 "P00H03M21S"
// durations into seconds.
func ParseDuration(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if m := isoDuration.FindStringSubmatch(s); m != nil {
		var total float64
		units := []float64{86400, 3600, 60, 1}
		for i, u := range units {
			if m[i+1] == "" {
				continue
			}
			v, _ := strconv.ParseFloat(m[i+1], 64)
			total += v * u
		}
		return total
	}
	var total float64
	for _, part := range strings.Split(s, ":") {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return 0
		}
		total = total*60 + v
	}
	return total
}

var imageIDPattern = regexp.MustCompile(`/img/(a?)(\d+)_\d+\.`)

// imagesFromURL expands a bcbits image URL into the standard renditions,
// or wraps a foreign URL as a single large image.
func imagesFromURL(raw string) []model.Image {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if m := imageIDPattern.FindStringSubmatch(raw); m != nil {
		id, _ := strconv.ParseInt(m[2], 10, 64)
		kind := model.ImageKindPhoto
		if m[1] == "a" {
			kind = model.ImageKindArt
		}
		if images := model.ImagesFromID(id, kind); images != nil {
			return images
		}
	}
	return []model.Image{{URL: raw, Size: model.ImageLarge}}
}

// audioSources turns an encoding→URL map into sources ordered by type.
func audioSources(files map[string]string) []model.AudioSource {
	if len(files) == 0 {
		return nil
	}
	types := make([]string, 0, len(files))
	for t := range files {
		types = append(types, t)
	}
	sort.Strings(types)
	out := make([]model.AudioSource, 0, len(types))
	for _, t := range types {
		u := strings.TrimSpace(files[t])
		if u == "" {
			continue
		}
		if strings.HasPrefix(u, "//") {
			u = "https:" + u
		}
		out = append(out, model.AudioSource{Type: t, URL: u})
	}
	return out
}

func resolveURL(base, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	return model.CanonicalURL(model.ResolveURL(base, ref))
}

// siteRoot returns scheme://host of raw.
func siteRoot(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host)
}

func tagsFromKeywords(keywords dto.StringList) []model.Tag {
	var tags []model.Tag
	for _, k := range keywords {
		for _, part := range strings.Split(k, ",") {
			if name := strings.TrimSpace(part); name != "" {
				tags = append(tags, model.Tag{Name: name})
			}
		}
	}
	return model.MergeTags(nil, tags)
}

func artistRef(name, link string) *model.Artist {
	name = strings.TrimSpace(name)
	if name == "" && link == "" {
		return nil
	}
	return &model.Artist{Type: model.TypeArtist, Name: name, URL: link}
}
