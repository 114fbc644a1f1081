package crawler

import (
	"net/url"
	"strings"
)

// NormalizeLink resolves href against origin and returns the site-relative
// path key, or false when href is malformed or points at another origin.
// Query strings and fragments are dropped; pages are tracked by path only.
func NormalizeLink(href string, origin *url.URL) (string, bool) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", false
	}
	resolved := origin.ResolveReference(ref)
	if !sameOrigin(resolved, origin) {
		return "", false
	}
	return pathKey(resolved), true
}

func sameOrigin(a, b *url.URL) bool {
	return strings.EqualFold(a.Scheme, b.Scheme) && strings.EqualFold(a.Host, b.Host)
}

func pathKey(u *url.URL) string {
	p := strings.TrimRight(u.EscapedPath(), "/")
	if p == "" {
		return "/"
	}
	// A key starting with "//" would resolve as a network-path reference.
	if strings.HasPrefix(p, "//") {
		p = "/" + strings.TrimLeft(p, "/")
	}
	return p
}

// isCandidateLink reports whether an anchor href is root-relative or
// same-origin absolute. Relative paths, bare fragments and non-http
// schemes never reach the frontier.
func isCandidateLink(href, origin string) bool {
	href = strings.TrimSpace(href)
	if href == "" || href == "#" {
		return false
	}
	lower := strings.ToLower(href)
	for _, scheme := range []string{"javascript:", "mailto:", "tel:", "data:"} {
		if strings.HasPrefix(lower, scheme) {
			return false
		}
	}
	return strings.HasPrefix(href, "/") || strings.HasPrefix(lower, strings.ToLower(origin))
}

// resolvePath turns a path key back into an absolute URL on origin.
func resolvePath(origin *url.URL, path string) string {
	ref, err := url.Parse(path)
	if err != nil {
		return origin.String() + path
	}
	return origin.ResolveReference(ref).String()
}
