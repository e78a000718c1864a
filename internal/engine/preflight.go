package engine

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPSReachable reports whether host answers a HEAD request over https.
// Any response counts, whatever its status.
func HTTPSReachable(ctx context.Context, client *http.Client, host string) bool {
	if host == "" {
		return false
	}
	target := &url.URL{Scheme: "https", Host: host, Path: "/"}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target.String(), nil)
	if err != nil {
		return false
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return true
}

// NormalizeTarget turns user input into an absolute start URL. A bare host
// gets https when it answers over https, http otherwise.
func NormalizeTarget(ctx context.Context, rawTarget string) (string, error) {
	client := NewHTTPClient(false, 3*time.Second)
	return normalizeTarget(rawTarget, func(host string) bool {
		return HTTPSReachable(ctx, client, host)
	})
}

func normalizeTarget(rawTarget string, httpsReachable func(host string) bool) (string, error) {
	target := strings.TrimSpace(rawTarget)
	if target == "" {
		return "", fmt.Errorf("target is empty")
	}

	if !strings.Contains(target, "://") {
		host := target
		if i := strings.IndexAny(host, "/?#"); i >= 0 {
			host = host[:i]
		}
		if httpsReachable(host) {
			target = "https://" + target
		} else {
			target = "http://" + target
		}
	}

	parsed, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("invalid target URL: %w", err)
	}
	parsed.Scheme = strings.ToLower(parsed.Scheme)
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("unsupported URL scheme: %s (only http/https allowed)", parsed.Scheme)
	}
	if parsed.Hostname() == "" {
		return "", fmt.Errorf("invalid target URL: missing host")
	}
	return parsed.String(), nil
}

// ValidateHost resolves the target host and opens one TCP connection to it,
// so an unreachable target fails before the browser starts.
func ValidateHost(ctx context.Context, target string) error {
	parsed, err := url.Parse(target)
	if err != nil {
		return err
	}

	host := parsed.Hostname()
	if host == "" {
		return fmt.Errorf("missing host")
	}

	lookupCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	ips, err := net.DefaultResolver.LookupIPAddr(lookupCtx, host)
	if err != nil {
		return fmt.Errorf("DNS lookup failed for %s: %w", host, err)
	}
	if len(ips) == 0 {
		return fmt.Errorf("no IP address found for %s", host)
	}

	port := parsed.Port()
	if port == "" {
		if parsed.Scheme == "https" {
			port = "443"
		} else {
			port = "80"
		}
	}

	dialCtx, dialCancel := context.WithTimeout(ctx, 2*time.Second)
	defer dialCancel()
	addr := net.JoinHostPort(host, port)
	conn, err := (&net.Dialer{}).DialContext(dialCtx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connection to %s failed: %w", addr, err)
	}
	_ = conn.Close()
	return nil
}
