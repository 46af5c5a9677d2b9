// internal/crawler/parser.go
package crawler

import (
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/xmlquery"
	"github.com/romangod6/sitemap-downloader/internal/models"
	"github.com/romangod6/sitemap-downloader/internal/utils"
)

var (
	errNoRootElement = errors.New("no root element")
	errJunkAfterRoot = errors.New("junk after document element")
)

// sitemapRoots are the root element names accepted in XML sitemaps.
var sitemapRoots = map[string]bool{
	"sitemapindex": true,
	"urlset":       true,
}

// ExtractLinks returns candidate sitemap URLs found in page, dispatching on
// the page kind. Links are returned in document order without dedup or
// normalisation.
func ExtractLinks(page models.Page, logger *utils.CrawlerLogger) []string {
	switch page.Kind {
	case models.KindXML:
		return ExtractXMLLinks(page.Content, logger)
	case models.KindHTML:
		return ExtractHTMLLinks(page.Content, logger)
	default:
		return nil
	}
}

// ExtractXMLLinks collects <loc> values from a sitemapindex or urlset
// document. Only loc elements in the root's namespace are considered.
func ExtractXMLLinks(content string, logger *utils.CrawlerLogger) []string {
	doc, err := xmlquery.Parse(strings.NewReader(content))
	if err != nil {
		logger.LogError("XML ParseError: %v", err)
		return nil
	}

	root, err := documentElement(doc)
	if err != nil {
		logger.LogError("XML ParseError: %v", err)
		return nil
	}
	if !sitemapRoots[root.Data] {
		logger.LogWarning("Not a valid XML sitemap format. Skipping.")
		return nil
	}

	var links []string
	var walk func(*xmlquery.Node)
	walk = func(n *xmlquery.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != xmlquery.ElementNode {
				continue
			}
			if c.Data == "loc" && c.NamespaceURI == root.NamespaceURI {
				if link := strings.TrimSpace(c.InnerText()); isSitemapLink(link) {
					links = append(links, link)
				}
			}
			walk(c)
		}
	}
	walk(root)

	logger.LogInfo("%d links found in XML sitemap.", len(links))
	return links
}

// ExtractHTMLLinks collects anchor hrefs that point at .xml or .html files.
func ExtractHTMLLinks(content string, logger *utils.CrawlerLogger) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		logger.LogError("HTML parse error: %v", err)
		return nil
	}

	var links []string
	doc.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		if href, exists := s.Attr("href"); exists && isSitemapLink(href) {
			links = append(links, href)
		}
	})

	logger.LogInfo("%d links found in HTML sitemap.", len(links))
	return links
}

// documentElement returns the single top-level element. xmlquery accepts
// bare text, empty input and trailing elements, none of which are well-formed.
func documentElement(doc *xmlquery.Node) (*xmlquery.Node, error) {
	var root *xmlquery.Node
	for n := doc.FirstChild; n != nil; n = n.NextSibling {
		switch n.Type {
		case xmlquery.ElementNode:
			if root != nil {
				return nil, errJunkAfterRoot
			}
			root = n
		case xmlquery.TextNode, xmlquery.CharDataNode:
			if strings.TrimSpace(n.Data) == "" {
				continue
			}
			if root != nil {
				return nil, errJunkAfterRoot
			}
			return nil, errNoRootElement
		}
	}
	if root == nil {
		return nil, errNoRootElement
	}
	return root, nil
}

func isSitemapLink(link string) bool {
	return strings.HasSuffix(link, ".xml") || strings.HasSuffix(link, ".html")
}
