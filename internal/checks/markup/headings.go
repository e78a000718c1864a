package markup

import (
	"regexp"
	"strings"
)

var (
	reHeadingOpen  = regexp.MustCompile(`(?i)<h([1-6])\b[^>]*>`)
	reHeadingClose = [7]*regexp.Regexp{
		1: regexp.MustCompile(`(?i)</h1>`),
		2: regexp.MustCompile(`(?i)</h2>`),
		3: regexp.MustCompile(`(?i)</h3>`),
		4: regexp.MustCompile(`(?i)</h4>`),
		5: regexp.MustCompile(`(?i)</h5>`),
		6: regexp.MustCompile(`(?i)</h6>`),
	}
)

type Heading struct {
	Level int
	// Inner is the raw content between the tags.
	Inner string
	// Text is Inner without tags, trimmed. Entities are not decoded.
	Text string
}

// Headings scans the raw document for `<hN ...>...</hN>` pairs, closing each
// one at the first matching end tag. The scan is textual, so headings inside
// comments, noscript or script templates count too. An opening tag with no
// end tag is skipped and the scan resumes right after its '<'.
func Headings(html string) []Heading {
	var out []Heading
	pos := 0
	for pos < len(html) {
		loc := reHeadingOpen.FindStringSubmatchIndex(html[pos:])
		if loc == nil {
			break
		}
		start, openEnd := pos+loc[0], pos+loc[1]
		level := int(html[pos+loc[2]] - '0')

		end := reHeadingClose[level].FindStringIndex(html[openEnd:])
		if end == nil {
			pos = start + 1
			continue
		}
		inner := html[openEnd : openEnd+end[0]]
		out = append(out, Heading{
			Level: level,
			Inner: inner,
			Text:  strings.TrimSpace(RemoveTags(inner)),
		})
		pos = openEnd + end[1]
	}
	return out
}
