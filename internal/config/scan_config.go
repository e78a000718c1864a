package config

import "time"

const (
	MinPages = 1
	MaxPages = 100
	MinDepth = 0
	MaxDepth = 5

	DefaultMaxPages = 10
	DefaultMaxDepth = 2
	DefaultDelayMs  = 1000
)

type Viewport struct {
	Name   string `json:"name" yaml:"name"`
	Width  int    `json:"width" yaml:"width"`
	Height int    `json:"height" yaml:"height"`
}

func DefaultViewports() []Viewport {
	return []Viewport{
		{Name: "desktop", Width: 1920, Height: 1080},
		{Name: "tablet", Width: 768, Height: 1024},
		{Name: "mobile", Width: 375, Height: 812},
	}
}

// ScanConfig is the immutable input of one audit run. Build it with
// NewScanConfig; the slices are private copies.
type ScanConfig struct {
	MaxPages             int        `json:"maxPages"`
	MaxDepth             int        `json:"maxDepth"`
	Viewports            []Viewport `json:"viewports"`
	DelayBetweenRequests int        `json:"delayBetweenRequests"`
	Categories           []string   `json:"categories"`
}

// NewScanConfig clamps the page and depth bounds. An empty category list
// enables every category; empty viewports fall back to the defaults.
func NewScanConfig(maxPages, maxDepth, delayMs int, viewports []Viewport, categories []string) ScanConfig {
	if len(viewports) == 0 {
		viewports = DefaultViewports()
	}
	if delayMs < 0 {
		delayMs = 0
	}
	return ScanConfig{
		MaxPages:             clamp(maxPages, MinPages, MaxPages),
		MaxDepth:             clamp(maxDepth, MinDepth, MaxDepth),
		Viewports:            append([]Viewport(nil), viewports...),
		DelayBetweenRequests: delayMs,
		Categories:           append([]string(nil), categories...),
	}
}

func (c ScanConfig) Delay() time.Duration {
	return time.Duration(c.DelayBetweenRequests) * time.Millisecond
}

func (c ScanConfig) CategoryEnabled(category string) bool {
	if len(c.Categories) == 0 {
		return true
	}
	for _, cat := range c.Categories {
		if cat == category {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
