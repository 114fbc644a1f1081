package crawler

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/user/site-scraper/internal/domain"
	"go.uber.org/zap"
)

// extract parses a fully loaded document into a PageRecord. Internal links
// go onto the frontier, relevant images onto the image list and service
// areas into the shared set. liveLinks, when non-nil, replaces the anchors
// found in the HTML.
func (s *crawlState) extract(htmlContent, pagePath, pageURL string, liveLinks []string) (domain.PageRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return domain.PageRecord{}, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	record := domain.PageRecord{
		Path:            pagePath,
		Title:           strings.TrimSpace(doc.Find("title").First().Text()),
		MetaDescription: metaContent(doc, "description"),
		MetaRobots:      metaContent(doc, "robots"),
		Canonical:       canonicalHref(doc),
		FirstH1:         strings.TrimSpace(doc.Find("h1").First().Text()),
		AllH2s:          []string{},
		StructuredData:  s.structuredData(doc, pageURL),
		InternalLinks:   []string{},
	}

	doc.Find("h2").Each(func(i int, sel *goquery.Selection) {
		record.AllH2s = append(record.AllH2s, strings.TrimSpace(sel.Text()))
	})

	CollectServiceAreas(record.StructuredData, s.areas)

	hrefs := liveLinks
	if hrefs == nil {
		doc.Find("a[href]").Each(func(i int, sel *goquery.Selection) {
			href, _ := sel.Attr("href")
			hrefs = append(hrefs, href)
		})
	}
	origin := s.origin.String()
	for _, href := range hrefs {
		if !isCandidateLink(href, origin) {
			continue
		}
		path, ok := NormalizeLink(href, s.origin)
		if !ok || s.isVisited(path) {
			continue
		}
		record.InternalLinks = append(record.InternalLinks, path)
		s.enqueue(path)
	}

	s.collectImages(doc, pagePath, pageURL)

	return record, nil
}

func metaContent(doc *goquery.Document, name string) string {
	var content string
	doc.Find("meta[name]").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		n, _ := sel.Attr("name")
		if !strings.EqualFold(strings.TrimSpace(n), name) {
			return true
		}
		content, _ = sel.Attr("content")
		return false
	})
	return strings.TrimSpace(content)
}

func canonicalHref(doc *goquery.Document) string {
	var href string
	doc.Find("link[rel]").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		rel, _ := sel.Attr("rel")
		for _, token := range strings.Fields(rel) {
			if strings.EqualFold(token, "canonical") {
				href, _ = sel.Attr("href")
				return false
			}
		}
		return true
	})
	return strings.TrimSpace(href)
}

// structuredData parses every JSON-LD block on its own. A malformed block
// is dropped without failing the page. Top-level arrays contribute each
// object element.
func (s *crawlState) structuredData(doc *goquery.Document, pageURL string) []map[string]any {
	blocks := make([]map[string]any, 0)
	doc.Find("script[type]").Each(func(i int, sel *goquery.Selection) {
		typ, _ := sel.Attr("type")
		if !strings.EqualFold(strings.TrimSpace(typ), "application/ld+json") {
			return
		}
		var v any
		if err := json.Unmarshal([]byte(sel.Text()), &v); err != nil {
			s.logger.Warn("dropping malformed JSON-LD block", zap.String("url", pageURL), zap.Int("index", i), zap.Error(err))
			return
		}
		switch t := v.(type) {
		case map[string]any:
			blocks = append(blocks, t)
		case []any:
			for _, item := range t {
				if obj, ok := item.(map[string]any); ok {
					blocks = append(blocks, obj)
				}
			}
		}
	})
	return blocks
}

// collectImages appends relevant images; duplicates are pruned when the
// run finishes.
func (s *crawlState) collectImages(doc *goquery.Document, pagePath, pageURL string) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return
	}
	doc.Find("img[src]").Each(func(i int, sel *goquery.Selection) {
		src, _ := sel.Attr("src")
		src = strings.TrimSpace(src)
		if src == "" || strings.HasPrefix(strings.ToLower(src), "data:") {
			return
		}
		ref, err := url.Parse(src)
		if err != nil {
			return
		}
		alt, _ := sel.Attr("alt")
		if !s.filters.IsRelevantImage(src, alt) {
			return
		}
		s.images = append(s.images, domain.ImageRecord{
			URL:  base.ResolveReference(ref).String(),
			Alt:  strings.TrimSpace(alt),
			Page: pagePath,
		})
	})
}
