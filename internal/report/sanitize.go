package report

import (
	"net/url"
	"regexp"
	"strings"
	"sync"

	"github.com/MOYARU/uxaudit/internal/config"
)

var (
	reBearer    = regexp.MustCompile(`(?i)\b(bearer\s+)([a-z0-9\-\._~\+\/]+=*)`)
	reApiKeyKV  = regexp.MustCompile(`(?i)\b(api[_-]?key|access[_-]?token|token|secret|authorization)\s*[:=]\s*([^\s,;&]+)`)
	reLongToken = regexp.MustCompile(`\b[a-zA-Z0-9_\-]{32,}\b`)
	customOnce  sync.Once
	customRes   []*regexp.Regexp
)

// SanitizeText redacts credentials from free text that ends up in run logs
// and failure summaries.
func SanitizeText(s string) string {
	out := s
	out = reBearer.ReplaceAllString(out, "${1}<redacted>")
	out = reApiKeyKV.ReplaceAllString(out, "${1}=<redacted>")
	out = reLongToken.ReplaceAllStringFunc(out, func(tok string) string {
		return tok[:4] + "...<redacted>..." + tok[len(tok)-4:]
	})
	for _, re := range customRegexes() {
		out = re.ReplaceAllString(out, "<redacted>")
	}
	return out
}

func customRegexes() []*regexp.Regexp {
	customOnce.Do(func() {
		for _, p := range config.LoadAuditPolicy().RedactionPatterns {
			re, err := regexp.Compile(p)
			if err == nil {
				customRes = append(customRes, re)
			}
		}
	})
	return customRes
}

// SanitizeURL redacts sensitive-looking query values. URLs without such
// parameters are returned unchanged.
func SanitizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return SanitizeText(raw)
	}
	if u.RawQuery == "" {
		return raw
	}

	q := u.Query()
	redacted := false
	for k := range q {
		if sensitiveParam(k) {
			q.Set(k, "<redacted>")
			redacted = true
		}
	}
	if !redacted {
		return raw
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func sensitiveParam(name string) bool {
	kl := strings.ToLower(name)
	for _, marker := range []string{"token", "key", "secret", "auth", "session", "pass", "sig"} {
		if strings.Contains(kl, marker) {
			return true
		}
	}
	return false
}
