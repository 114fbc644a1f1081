package domain

// Tier identifies which fetch strategy produced a crawl result.
type Tier string

const (
	TierStatic  Tier = "static"
	TierBrowser Tier = "browser"
)

// PageRecord holds the extracted information from one crawled page.
type PageRecord struct {
	Path            string           `json:"path"`
	Title           string           `json:"title"`
	MetaDescription string           `json:"metaDescription"`
	MetaRobots      string           `json:"metaRobots"`
	Canonical       string           `json:"canonical"`
	FirstH1         string           `json:"firstH1"`
	AllH2s          []string         `json:"allH2s"`
	StructuredData  []map[string]any `json:"structuredData"`
	InternalLinks   []string         `json:"internalLinks"`
}

// ImageRecord is a brand-relevant image found on a page.
type ImageRecord struct {
	URL  string `json:"url"`
	Alt  string `json:"alt"`
	Page string `json:"page"` // path of the page it was found on
}

// SiteMapEntry is one line of site-map.json.
type SiteMapEntry struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// CrawlResult is the output of one strategy run.
type CrawlResult struct {
	Origin       string        `json:"origin"`
	Tier         Tier          `json:"tier"`
	Pages        []PageRecord  `json:"pages"`
	Images       []ImageRecord `json:"images"`
	ServiceAreas []string      `json:"serviceAreas"`
	Success      bool          `json:"success"`
}

// SiteMap lists every crawled page in crawl order.
func (r *CrawlResult) SiteMap() []SiteMapEntry {
	entries := make([]SiteMapEntry, 0, len(r.Pages))
	for _, p := range r.Pages {
		entries = append(entries, SiteMapEntry{URL: r.Origin + p.Path, Title: p.Title})
	}
	return entries
}
