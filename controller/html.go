package controller

import (
	"bytes"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// RenderAnswerHTML converts a model answer from markdown to HTML for the chat
// page. If the markdown does not render, the escaped text is returned in a
// paragraph so the answer is never lost.
func RenderAnswerHTML(answer string) string {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(fixBullets(answer)), &buf); err != nil {
		return "<p>" + html.EscapeString(answer) + "</p>"
	}
	return buf.String()
}

// fixBullets normalises the loose bullet style models produce: "•" markers
// become "-", and a list that starts directly under a sentence gets the blank
// line markdown needs to recognise it.
func fixBullets(md string) string {
	lines := strings.Split(md, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(trimmed, "•") {
			rest := strings.TrimPrefix(trimmed, "•")
			indent := line[:len(line)-len(trimmed)]
			line = indent + "- " + strings.TrimLeft(rest, " ")
			trimmed = strings.TrimLeft(line, " \t")
		}

		if isListItem(trimmed) && len(out) > 0 {
			prev := strings.TrimSpace(out[len(out)-1])
			if prev != "" && !isListItem(prev) {
				out = append(out, "")
			}
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func isListItem(line string) bool {
	return strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* ") || strings.HasPrefix(line, "+ ")
}
