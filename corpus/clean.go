package corpus

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	pageArtifactRe = regexp.MustCompile(`(?i)page\s+\d+(\s+of\s+\d+)?`)
	spaceRunRe     = regexp.MustCompile(`[ \t]+`)
	newlineRunRe   = regexp.MustCompile(`\n{3,}`)
)

// NormalizeText cleans extracted document text before chunking: NFKC
// normalisation, non-breaking spaces to plain spaces, "page N [of M]"
// artifacts stripped, horizontal whitespace runs collapsed to one space and
// blank-line runs to a single blank line.
func NormalizeText(text string) string {
	text = norm.NFKC.String(text)
	text = strings.ReplaceAll(text, " ", " ")
	text = pageArtifactRe.ReplaceAllString(text, " ")
	text = spaceRunRe.ReplaceAllString(text, " ")
	text = newlineRunRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
