// Package markup holds the pattern-matching helpers shared by the analyzers.
// Everything here works on raw HTML text and never fails on malformed input.
package markup

import (
	"regexp"
	"strings"
	"sync"
)

var (
	reTag   = regexp.MustCompile(`<[^>]+>`)
	reSpace = regexp.MustCompile(`\s+`)
	reBody  = regexp.MustCompile(`(?is)<body\b[^>]*>(.*)</body>`)

	reMetaNameFirst    = regexp.MustCompile(`(?i)<meta\b[^>]*name\s*=\s*["']description["'][^>]*content\s*=\s*["']([^"']*)["'][^>]*>`)
	reMetaContentFirst = regexp.MustCompile(`(?i)<meta\b[^>]*content\s*=\s*["']([^"']*)["'][^>]*name\s*=\s*["']description["'][^>]*>`)

	cacheMu sync.RWMutex
	cache   = map[string]*regexp.Regexp{}
)

// compile caches patterns built from tag and attribute names.
func compile(pattern string) *regexp.Regexp {
	cacheMu.RLock()
	re, ok := cache[pattern]
	cacheMu.RUnlock()
	if ok {
		return re
	}
	re = regexp.MustCompile(pattern)
	cacheMu.Lock()
	cache[pattern] = re
	cacheMu.Unlock()
	return re
}

// RemoveTags drops tags and leaves everything else, whitespace and entities
// included, untouched.
func RemoveTags(s string) string {
	return reTag.ReplaceAllString(s, "")
}

// StripTags removes tags, turns &nbsp; into spaces and collapses whitespace.
func StripTags(s string) string {
	s = reTag.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "&nbsp;", " ")
	return strings.TrimSpace(reSpace.ReplaceAllString(s, " "))
}

// OpenTags returns every opening tag named name, e.g. all `<img ...>`.
func OpenTags(html, name string) []string {
	return compile(`(?i)<` + regexp.QuoteMeta(name) + `\b[^>]*>`).FindAllString(html, -1)
}

// Element is one non-nested element match: the full text, its opening tag
// and the inner content.
type Element struct {
	Outer string
	Open  string
	Inner string
}

// Elements matches `<name ...>...</name>` lazily. Nested elements of the same
// name are not balanced.
func Elements(html, name string) []Element {
	n := regexp.QuoteMeta(name)
	re := compile(`(?is)(<` + n + `\b[^>]*>)(.*?)</` + n + `>`)
	var out []Element
	for _, m := range re.FindAllStringSubmatch(html, -1) {
		out = append(out, Element{Outer: m[0], Open: m[1], Inner: m[2]})
	}
	return out
}

// First returns the first element named name.
func First(html, name string) (Element, bool) {
	els := Elements(html, name)
	if len(els) == 0 {
		return Element{}, false
	}
	return els[0], true
}

// Body returns the content of <body>, or the whole document when there is none.
func Body(html string) string {
	if m := reBody.FindStringSubmatch(html); m != nil {
		return m[1]
	}
	return html
}

// MetaDescription returns the trimmed content of the description meta tag,
// accepting either attribute order.
func MetaDescription(html string) (string, bool) {
	m := reMetaNameFirst.FindStringSubmatch(html)
	if m == nil {
		m = reMetaContentFirst.FindStringSubmatch(html)
	}
	if m == nil {
		return "", false
	}
	desc := strings.TrimSpace(m[1])
	return desc, desc != ""
}

// Attr returns the quoted value of attribute name inside tag.
func Attr(tag, name string) (string, bool) {
	re := compile(`(?i)\b` + regexp.QuoteMeta(name) + `\s*=\s*["']([^"']*)["']`)
	m := re.FindStringSubmatch(tag)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// HasAttr reports whether tag declares attribute name, with or without a value.
func HasAttr(tag, name string) bool {
	return compile(`(?i)\b` + regexp.QuoteMeta(name) + `\s*=`).MatchString(tag)
}

// AttrIs reports whether attribute name equals one of values, case-insensitively.
func AttrIs(tag, name string, values ...string) bool {
	v, ok := Attr(tag, name)
	if !ok {
		return false
	}
	for _, want := range values {
		if strings.EqualFold(strings.TrimSpace(v), want) {
			return true
		}
	}
	return false
}

// HasLabelFor reports whether html contains `<label for="id">`.
func HasLabelFor(html, id string) bool {
	re := compile(`(?i)<label[^>]*\bfor\s*=\s*["']` + regexp.QuoteMeta(id) + `["']`)
	return re.MatchString(html)
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
