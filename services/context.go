package services

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ndisplan/ragserver/vectorstore"
)

var wsRunRe = regexp.MustCompile(`\s+`)

var titleCaser = cases.Title(language.English)

// BuildContext renders retrieved chunks as the numbered block the model
// answers from: "[i] text" followed by a source line, entries separated by a
// blank line. Hits keep their retrieval order. No hits means an empty string.
func BuildContext(hits []vectorstore.SearchHit) string {
	entries := make([]string, 0, len(hits))
	for i, hit := range hits {
		text := strings.TrimSpace(wsRunRe.ReplaceAllString(hit.Content, " "))
		if text == "" {
			continue
		}
		entries = append(entries, fmt.Sprintf("[%d] %s\n(Source: %s)", i+1, text, referenceLabel(hit)))
	}
	return strings.Join(entries, "\n\n")
}

// referenceLabel produces the human-readable citation for a hit. Web chunks
// cite "Title - url"; file chunks cite the document title with a page number
// when one was recorded.
func referenceLabel(hit vectorstore.SearchHit) string {
	source := hit.Source
	if source == "" {
		source = "local"
	}

	if hit.SourceType == "web" || strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		title := hit.Title
		if title == "" {
			title = titleFromName(source)
		}
		return title + " - " + source
	}

	title := titleFromName(source)
	if hit.Page > 0 {
		title = fmt.Sprintf("%s (Page %d)", title, hit.Page)
	}
	return title
}

// titleFromName turns a file name or URL tail into a display title: strip the
// extension, underscores become spaces, words get title case.
func titleFromName(name string) string {
	base := path.Base(strings.TrimSuffix(name, "/"))
	stem := strings.TrimSuffix(base, path.Ext(base))
	if stem == "" {
		return name
	}
	stem = strings.ReplaceAll(stem, "_", " ")
	return titleCaser.String(stem)
}
