package locator

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Report summarizes what a saved page snapshot contains that the strategies
// look for. It is written next to failed pages to help adjust selectors.
type Report struct {
	Title         string
	Thumbnails    int
	VectorImages  int
	MatchingLinks []string
}

// Inspect parses markup and counts navigation thumbnails and inline images,
// collecting every image link that contains prefix.
func Inspect(markup, prefix string) (Report, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return Report{}, fmt.Errorf("failed to parse snapshot: %w", err)
	}

	report := Report{
		Title:      strings.TrimSpace(doc.Find("title").First().Text()),
		Thumbnails: doc.Find("img[data-pageflip-goto]").Length(),
	}

	doc.Find("img[data-pageflip-goto]").Each(func(_ int, s *goquery.Selection) {
		if src, ok := s.Attr("data-src"); ok && prefix != "" && strings.Contains(src, prefix) {
			report.MatchingLinks = append(report.MatchingLinks, src)
		}
	})

	// xlink:href is parsed into a namespaced attribute, so match on key only
	doc.Find("image").Each(func(_ int, s *goquery.Selection) {
		report.VectorImages++
		for _, node := range s.Nodes {
			for _, attr := range node.Attr {
				if attr.Key == "href" && prefix != "" && strings.Contains(attr.Val, prefix) {
					report.MatchingLinks = append(report.MatchingLinks, attr.Val)
				}
			}
		}
	})

	return report, nil
}

// String renders the report as a short single-line summary
func (r Report) String() string {
	return fmt.Sprintf("title=%q thumbnails=%d images=%d matching=%d",
		r.Title, r.Thumbnails, r.VectorImages, len(r.MatchingLinks))
}
