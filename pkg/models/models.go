package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// PatternType identifies how a pattern selector is interpreted
type PatternType string

const (
	PatternCSS   PatternType = "css"
	PatternXPath PatternType = "xpath"
	PatternRegex PatternType = "regex"
	PatternJSON  PatternType = "json"
	PatternAuto  PatternType = "auto"
)

// PatternTypes returns every recognized pattern type in display order.
func PatternTypes() []PatternType {
	return []PatternType{PatternCSS, PatternXPath, PatternRegex, PatternJSON, PatternAuto}
}

// Known reports whether t is one of the recognized pattern types.
func (t PatternType) Known() bool {
	switch t {
	case PatternCSS, PatternXPath, PatternRegex, PatternJSON, PatternAuto:
		return true
	}
	return false
}

// PatternSpec is a named selector plus its type
type PatternSpec struct {
	Name     string      `json:"name" yaml:"name" validate:"required"`
	Type     PatternType `json:"type" yaml:"type" validate:"required,oneof=css xpath regex json auto"`
	Selector string      `json:"selector" yaml:"selector"`
}

// ScrapeOptions holds optional request settings. Nil fields mean "use the default".
type ScrapeOptions struct {
	IncludeHTML      *bool `json:"includeHtml,omitempty" yaml:"includeHtml,omitempty"`
	IncludeText      *bool `json:"includeText,omitempty" yaml:"includeText,omitempty"`
	MaxDepth         *int  `json:"maxDepth,omitempty" yaml:"maxDepth,omitempty" validate:"omitempty,min=1,max=5"`
	RequestDelay     *int  `json:"requestDelay,omitempty" yaml:"requestDelay,omitempty" validate:"omitempty,min=0"`
	FollowLinks      *bool `json:"followLinks,omitempty" yaml:"followLinks,omitempty"`
	RespectRobotsTxt *bool `json:"respectRobotsTxt,omitempty" yaml:"respectRobotsTxt,omitempty"`
}

// HTMLEnabled reports whether item HTML should be included.
func (o ScrapeOptions) HTMLEnabled() bool {
	return o.IncludeHTML != nil && *o.IncludeHTML
}

// Depth returns the configured max depth, or 1 when unset.
func (o ScrapeOptions) Depth() int {
	if o.MaxDepth == nil {
		return 1
	}
	return *o.MaxDepth
}

// Delay returns the configured per-request delay.
func (o ScrapeOptions) Delay() time.Duration {
	if o.RequestDelay == nil {
		return 0
	}
	return time.Duration(*o.RequestDelay) * time.Millisecond
}

// Bool and Int build option pointers inline.
func Bool(v bool) *bool { return &v }
func Int(v int) *int    { return &v }

// ScrapeRequest is the canonical request submitted to a scraper
type ScrapeRequest struct {
	URL      string        `json:"url" yaml:"url" validate:"required"`
	Patterns []PatternSpec `json:"patterns" yaml:"patterns" validate:"required,min=1,dive"`
	Options  ScrapeOptions `json:"options" yaml:"options"`
}

// Status is the outcome of a scrape
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// ScrapeResultGroup holds the items produced for one submitted pattern
type ScrapeResultGroup struct {
	Pattern  string      `json:"pattern" yaml:"pattern"`
	Type     PatternType `json:"type" yaml:"type"`
	Selector string      `json:"selector" yaml:"selector"`
	Items    []Item      `json:"items" yaml:"items"`
}

// MarshalJSON keeps items encoded as an array even when nil.
func (g ScrapeResultGroup) MarshalJSON() ([]byte, error) {
	type alias ScrapeResultGroup
	out := alias(g)
	if out.Items == nil {
		out.Items = []Item{}
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes items into the variant matching the group type.
func (g *ScrapeResultGroup) UnmarshalJSON(b []byte) error {
	var raw struct {
		Pattern  string            `json:"pattern"`
		Type     PatternType       `json:"type"`
		Selector string            `json:"selector"`
		Items    []json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	g.Pattern = raw.Pattern
	g.Type = raw.Type
	g.Selector = raw.Selector
	g.Items = make([]Item, 0, len(raw.Items))
	for i, msg := range raw.Items {
		item, err := decodeItem(raw.Type, msg)
		if err != nil {
			return fmt.Errorf("group %q item %d: %w", raw.Pattern, i, err)
		}
		g.Items = append(g.Items, item)
	}
	return nil
}

// ScrapeResult is the response of one scrape invocation. It is never mutated once returned.
//
// Data and every group's Items are non-nil (empty when there is nothing). Decoding always
// yields empty slices, so a result built with nil slices only compares equal to its stored
// copy after Normalize.
type ScrapeResult struct {
	Status    Status              `json:"status" yaml:"status"`
	Timestamp time.Time           `json:"timestamp" yaml:"timestamp"`
	URL       string              `json:"url" yaml:"url"`
	Message   string              `json:"message,omitempty" yaml:"message,omitempty"`
	Data      []ScrapeResultGroup `json:"data" yaml:"data"`
}

// MarshalJSON keeps data encoded as an array even when empty.
func (r ScrapeResult) MarshalJSON() ([]byte, error) {
	type alias ScrapeResult
	out := alias(r)
	if out.Data == nil {
		out.Data = []ScrapeResultGroup{}
	}
	return json.Marshal(out)
}

// Normalize returns r with nil Data and nil group Items replaced by empty slices.
func (r ScrapeResult) Normalize() ScrapeResult {
	groups := make([]ScrapeResultGroup, len(r.Data))
	for i, g := range r.Data {
		if g.Items == nil {
			g.Items = []Item{}
		}
		groups[i] = g
	}
	r.Data = groups
	return r
}

// OK reports whether the scrape succeeded.
func (r ScrapeResult) OK() bool {
	return r.Status == StatusSuccess
}

// ItemCount returns the number of items across all groups.
func (r ScrapeResult) ItemCount() int {
	n := 0
	for _, g := range r.Data {
		n += len(g.Items)
	}
	return n
}

// RequestFromResult rebuilds an editable request from a stored result.
// Options are not part of a result, so the returned request carries none.
func RequestFromResult(r ScrapeResult) ScrapeRequest {
	patterns := make([]PatternSpec, 0, len(r.Data))
	for _, g := range r.Data {
		patterns = append(patterns, PatternSpec{
			Name:     g.Pattern,
			Type:     g.Type,
			Selector: g.Selector,
		})
	}
	return ScrapeRequest{URL: r.URL, Patterns: patterns}
}

// Template is a named, reusable request preset
type Template struct {
	ID          string        `json:"id" yaml:"id"`
	Name        string        `json:"name" yaml:"name"`
	Description string        `json:"description" yaml:"description"`
	URL         string        `json:"url" yaml:"url"`
	Patterns    []PatternSpec `json:"patterns" yaml:"patterns"`
	Options     ScrapeOptions `json:"options" yaml:"options"`
	CreatedAt   time.Time     `json:"createdAt" yaml:"createdAt"`
	LastUsed    *time.Time    `json:"lastUsed,omitempty" yaml:"lastUsed,omitempty"`
}

// Request converts the template to a scrape request.
func (t Template) Request() ScrapeRequest {
	patterns := make([]PatternSpec, len(t.Patterns))
	copy(patterns, t.Patterns)
	return ScrapeRequest{
		URL:      t.URL,
		Patterns: patterns,
		Options:  t.Options,
	}
}
