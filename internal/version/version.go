package version

const Value = "1.0.0"

// BrowserUserAgent is sent by the headless browser while crawling.
func BrowserUserAgent() string {
	return "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) HeadlessChrome Safari/537.36 uxaudit/" + Value
}

// PreflightUserAgent is used by the plain HTTP reachability check.
func PreflightUserAgent() string {
	return "uxaudit/" + Value
}
