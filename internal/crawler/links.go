package crawler

import (
	"net"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const maxLinksPerPage = 500

var staticAssetExt = map[string]struct{}{
	".png":   {},
	".jpg":   {},
	".jpeg":  {},
	".gif":   {},
	".svg":   {},
	".webp":  {},
	".avif":  {},
	".ico":   {},
	".css":   {},
	".js":    {},
	".pdf":   {},
	".zip":   {},
	".rar":   {},
	".7z":    {},
	".mp3":   {},
	".mp4":   {},
	".avi":   {},
	".mov":   {},
	".woff":  {},
	".woff2": {},
	".ttf":   {},
	".eot":   {},
}

var skippedHrefPrefixes = []string{"#", "mailto:", "tel:", "javascript:"}

// normalizeURL builds the visited-set key: scheme, host, path without a
// trailing slash, and the raw query. Fragments are dropped.
func normalizeURL(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", false
	}

	port := u.Port()
	switch {
	case u.Scheme == "http" && port == "80":
		u.Host = host
	case u.Scheme == "https" && port == "443":
		u.Host = host
	case port != "":
		u.Host = net.JoinHostPort(host, port)
	default:
		u.Host = host
	}

	p := u.EscapedPath()
	if p != "/" {
		p = strings.TrimSuffix(p, "/")
	}
	if p == "" {
		p = "/"
	}

	key := u.Scheme + "://" + u.Host + p
	if u.RawQuery != "" {
		key += "?" + u.RawQuery
	}
	return key, true
}

func shouldSkipByExtension(u *url.URL) bool {
	ext := strings.ToLower(path.Ext(u.Path))
	_, skip := staticAssetExt[ext]
	return skip
}

// extractLinks returns the absolute, fragment-free anchors of doc that stay
// on the host of pageURL, in document order and without duplicates.
func extractLinks(pageURL *url.URL, doc string) []string {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return nil
	}

	hrefs, base := extractHrefs(root)
	resolveBase := pageURL
	if base != nil {
		resolveBase = pageURL.ResolveReference(base)
	}

	host := strings.ToLower(pageURL.Hostname())
	seen := make(map[string]struct{}, len(hrefs))
	var out []string
	for _, href := range hrefs {
		link, ok := resolveLink(resolveBase, href)
		if !ok || strings.ToLower(link.Hostname()) != host || shouldSkipByExtension(link) {
			continue
		}
		s := link.String()
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
		if len(out) >= maxLinksPerPage {
			break
		}
	}
	return out
}

func resolveLink(base *url.URL, href string) (*url.URL, bool) {
	href = strings.TrimSpace(href)
	if href == "" {
		return nil, false
	}
	lower := strings.ToLower(href)
	for _, prefix := range skippedHrefPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return nil, false
		}
	}
	ref, err := url.Parse(href)
	if err != nil {
		return nil, false
	}
	u := base.ResolveReference(ref)
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, false
	}
	u.Fragment = ""
	u.RawFragment = ""
	return u, true
}

func extractHrefs(root *html.Node) ([]string, *url.URL) {
	doc := goquery.NewDocumentFromNode(root)

	var base *url.URL
	doc.Find("base[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		v, _ := s.Attr("href")
		parsed, err := url.Parse(v)
		if err != nil {
			return true
		}
		base = parsed
		return false
	})

	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		v, _ := s.Attr("href")
		links = append(links, v)
	})
	return links, base
}
