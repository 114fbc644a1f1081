package crawler

import "strings"

// Filters holds the keyword lists behind the image relevance heuristic.
// It is an allow-list, not a classifier.
type Filters struct {
	// ImageKeywords match against either the image src or its alt text.
	ImageKeywords []string
	// AltKeywords match against the alt text only.
	AltKeywords []string
}

// DefaultFilters picks out logos, hero banners and trust badges.
func DefaultFilters() Filters {
	return Filters{
		ImageKeywords: []string{"logo", "hero", "bbb", "google", "trust"},
		AltKeywords:   []string{"badge"},
	}
}

// IsRelevantImage reports whether an image looks like a brand asset.
func (f Filters) IsRelevantImage(src, alt string) bool {
	src = strings.ToLower(src)
	alt = strings.ToLower(alt)
	for _, kw := range f.ImageKeywords {
		kw = strings.ToLower(kw)
		if kw == "" {
			continue
		}
		if strings.Contains(src, kw) || strings.Contains(alt, kw) {
			return true
		}
	}
	for _, kw := range f.AltKeywords {
		kw = strings.ToLower(kw)
		if kw != "" && strings.Contains(alt, kw) {
			return true
		}
	}
	return false
}

// CollectServiceAreas adds every service area and address locality named
// in the structured-data blocks to areas.
func CollectServiceAreas(blocks []map[string]any, areas *StringSet) {
	for _, block := range blocks {
		if hasType(block["@type"], "LocalBusiness") {
			for _, name := range areaNames(block["serviceArea"]) {
				areas.Add(name)
			}
		}
		for _, locality := range localities(block["address"]) {
			areas.Add(locality)
		}
	}
}

func hasType(v any, want string) bool {
	switch t := v.(type) {
	case string:
		return t == want
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && s == want {
				return true
			}
		}
	}
	return false
}

// areaNames accepts a single area or a list, each either a string or an
// object with a name.
func areaNames(v any) []string {
	var names []string
	switch t := v.(type) {
	case string:
		names = append(names, t)
	case map[string]any:
		if name, ok := t["name"].(string); ok {
			names = append(names, name)
		}
	case []any:
		for _, item := range t {
			names = append(names, areaNames(item)...)
		}
	}
	return names
}

func localities(v any) []string {
	switch t := v.(type) {
	case map[string]any:
		if loc, ok := t["addressLocality"].(string); ok {
			return []string{loc}
		}
	case []any:
		var out []string
		for _, item := range t {
			out = append(out, localities(item)...)
		}
		return out
	}
	return nil
}

// StringSet is a set of strings that remembers insertion order.
type StringSet struct {
	seen  map[string]struct{}
	items []string
}

func NewStringSet() *StringSet {
	return &StringSet{seen: make(map[string]struct{})}
}

// Add inserts v unless it is blank or already present.
func (s *StringSet) Add(v string) {
	v = strings.TrimSpace(v)
	if v == "" {
		return
	}
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
}

func (s *StringSet) Len() int {
	return len(s.items)
}

// Slice returns the members in insertion order.
func (s *StringSet) Slice() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}
