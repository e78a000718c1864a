package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const PolicyFile = ".uxaudit.yaml"

// AuditPolicy carries the tunables an operator may pin in PolicyFile.
type AuditPolicy struct {
	MaxPages          int
	MaxDepth          int
	DelayMs           int
	Categories        []string
	Viewports         []Viewport
	NavigationTimeout time.Duration
	SettleDelay       time.Duration
	ViewportSettle    time.Duration
	StateGrace        time.Duration
	RedactionPatterns []string
}

type rawPolicy struct {
	MaxPages          *int       `yaml:"max_pages"`
	MaxDepth          *int       `yaml:"max_depth"`
	DelayMs           *int       `yaml:"delay_ms"`
	Categories        []string   `yaml:"categories"`
	Viewports         []Viewport `yaml:"viewports"`
	NavigationTimeout string     `yaml:"navigation_timeout"`
	SettleDelay       string     `yaml:"settle_delay"`
	ViewportSettle    string     `yaml:"viewport_settle"`
	StateGrace        string     `yaml:"state_grace"`
	RedactionPatterns []string   `yaml:"redaction_patterns"`
}

var policyCache struct {
	mu      sync.RWMutex
	path    string
	exists  bool
	modTime int64
	policy  AuditPolicy
}

func DefaultAuditPolicy() AuditPolicy {
	return AuditPolicy{
		MaxPages:          DefaultMaxPages,
		MaxDepth:          DefaultMaxDepth,
		DelayMs:           DefaultDelayMs,
		Viewports:         DefaultViewports(),
		NavigationTimeout: 30 * time.Second,
		SettleDelay:       800 * time.Millisecond,
		ViewportSettle:    300 * time.Millisecond,
		StateGrace:        10 * time.Minute,
	}
}

// LoadAuditPolicy reads optional keys from ".uxaudit.yaml":
// max_pages: 25
// max_depth: 3
// delay_ms: 500
// categories: [ACCESSIBILITY, SEO]
// viewports:
//   - {name: desktop, width: 1440, height: 900}
// navigation_timeout: 20s
// settle_delay: 1s
// viewport_settle: 300ms
// state_grace: 5m
// redaction_patterns:
//   - 'sess-[0-9a-f]+'
//
// Invalid values keep their defaults.
func LoadAuditPolicy() AuditPolicy {
	p := DefaultAuditPolicy()
	path := PolicyFile
	if absPath, err := filepath.Abs(path); err == nil {
		path = absPath
	}

	st, statErr := os.Stat(path)
	if statErr != nil {
		policyCache.mu.RLock()
		if policyCache.path == path && !policyCache.exists {
			cached := policyCache.policy
			policyCache.mu.RUnlock()
			return cached
		}
		policyCache.mu.RUnlock()
		storePolicy(path, false, 0, p)
		return p
	}

	modTime := st.ModTime().UnixNano()
	policyCache.mu.RLock()
	if policyCache.path == path && policyCache.exists && policyCache.modTime == modTime {
		cached := policyCache.policy
		policyCache.mu.RUnlock()
		return cached
	}
	policyCache.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return p
	}
	var raw rawPolicy
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return p
	}
	applyRawPolicy(&p, raw)

	storePolicy(path, true, modTime, p)
	return p
}

func storePolicy(path string, exists bool, modTime int64, p AuditPolicy) {
	policyCache.mu.Lock()
	policyCache.path = path
	policyCache.exists = exists
	policyCache.modTime = modTime
	policyCache.policy = p
	policyCache.mu.Unlock()
}

// validViewportName reports whether name can be part of a screenshot file
// name.
func validViewportName(name string) bool {
	return name != "" && name != "." && !strings.Contains(name, "..") && !strings.ContainsAny(name, `/\`)
}

func applyRawPolicy(p *AuditPolicy, raw rawPolicy) {
	if raw.MaxPages != nil && *raw.MaxPages > 0 {
		p.MaxPages = *raw.MaxPages
	}
	if raw.MaxDepth != nil && *raw.MaxDepth >= 0 {
		p.MaxDepth = *raw.MaxDepth
	}
	if raw.DelayMs != nil && *raw.DelayMs >= 0 {
		p.DelayMs = *raw.DelayMs
	}
	for _, c := range raw.Categories {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c != "" {
			p.Categories = append(p.Categories, c)
		}
	}

	var viewports []Viewport
	for _, vp := range raw.Viewports {
		vp.Name = strings.TrimSpace(vp.Name)
		if !validViewportName(vp.Name) || vp.Width <= 0 || vp.Height <= 0 {
			continue
		}
		viewports = append(viewports, vp)
	}
	if len(viewports) > 0 {
		p.Viewports = viewports
	}

	setDuration(&p.NavigationTimeout, raw.NavigationTimeout)
	setDuration(&p.SettleDelay, raw.SettleDelay)
	setDuration(&p.ViewportSettle, raw.ViewportSettle)
	setDuration(&p.StateGrace, raw.StateGrace)

	for _, pattern := range raw.RedactionPatterns {
		if pattern = strings.TrimSpace(pattern); pattern != "" {
			p.RedactionPatterns = append(p.RedactionPatterns, pattern)
		}
	}
}

func setDuration(dst *time.Duration, v string) {
	v = strings.TrimSpace(v)
	if v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return
	}
	*dst = d
}
