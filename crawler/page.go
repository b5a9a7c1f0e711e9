package crawler

import (
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var skipExtensions = map[string]struct{}{
	".pdf": {}, ".doc": {}, ".docx": {}, ".xls": {}, ".xlsx": {},
	".ppt": {}, ".pptx": {}, ".zip": {}, ".gz": {}, ".rar": {},
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".svg": {}, ".webp": {},
	".ico": {}, ".css": {}, ".js": {}, ".mp3": {}, ".mp4": {}, ".avi": {},
}

// pageTitle returns the trimmed <title> text, if any.
func pageTitle(doc *goquery.Document) string {
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// pageText strips boilerplate subtrees and flattens the rest of the page to
// text, one node per line, with blank-line runs collapsed.
func pageText(doc *goquery.Document) string {
	doc.Find("script, style, nav, footer, header, noscript").Remove()

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}

	var sb strings.Builder
	for _, n := range root.Nodes {
		writeNodeText(n, &sb)
	}
	return strings.TrimSpace(sb.String())
}

func writeNodeText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.TextNode {
		if t := strings.TrimSpace(n.Data); t != "" {
			sb.WriteString(t)
			sb.WriteString("\n")
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeNodeText(c, sb)
	}
}

// pageLinks collects same-host links from the (already boilerplate-stripped)
// page, resolved against base, fragments dropped, binary assets skipped.
func pageLinks(doc *goquery.Document, base *url.URL) []string {
	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || href == "" {
			return
		}
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref)
		abs.Fragment = ""
		if abs.Scheme != "http" && abs.Scheme != "https" {
			return
		}
		if abs.Host != base.Host {
			return
		}
		if _, skip := skipExtensions[strings.ToLower(path.Ext(abs.Path))]; skip {
			return
		}
		links = append(links, abs.String())
	})
	return links
}
