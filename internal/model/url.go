package model

import (
	"net/url"
	"strings"
)

// CanonicalURL lower-cases scheme and host, drops the query, the fragment
// and any trailing slash. Unparseable input is returned trimmed.
func CanonicalURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return strings.TrimRight(raw, "/")
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.RawQuery = ""
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	return u.String()
}

// SameURL reports whether a and b canonicalize to the same address.
func SameURL(a, b string) bool {
	return a != "" && CanonicalURL(a) == CanonicalURL(b)
}

// IsBandcampHost reports whether host is bandcamp.com or one of its
// subdomains.
func IsBandcampHost(host string) bool {
	host = strings.ToLower(host)
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	return host == "bandcamp.com" || strings.HasSuffix(host, ".bandcamp.com")
}

// IsOffPlatform reports whether raw points at a custom domain rather than
// a bandcamp.com host.
func IsOffPlatform(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	return !IsBandcampHost(u.Host)
}

// ResolveURL resolves ref against base. Absolute refs are returned as is.
func ResolveURL(base, ref string) string {
	if ref == "" {
		return ""
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	if r.IsAbs() {
		return ref
	}
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}
