package models

import (
	"encoding/json"
	"fmt"
)

// Item is one extracted record. The concrete type depends on the pattern type of its group:
//   - css, xpath: *ElementItem
//   - regex:      *MatchItem
//   - json:       *ValueItem
//   - auto/other: *ContentItem
type Item interface {
	ItemID() string
	// Fields returns the item's keys and values in a stable order for tabular exports.
	Fields() []Field
	isItem()
}

// Field is a single key/value pair of an item
type Field struct {
	Key   string
	Value any
}

// ElementItem is produced by css and xpath patterns
type ElementItem struct {
	ID   string  `json:"id" yaml:"id"`
	Text string  `json:"text" yaml:"text"`
	Href *string `json:"href" yaml:"href"`
	HTML string  `json:"html,omitempty" yaml:"html,omitempty"`
}

func (i *ElementItem) ItemID() string { return i.ID }
func (*ElementItem) isItem()          {}

func (i *ElementItem) Fields() []Field {
	var href any
	if i.Href != nil {
		href = *i.Href
	}
	fields := []Field{{"id", i.ID}, {"text", i.Text}, {"href", href}}
	if i.HTML != "" {
		fields = append(fields, Field{"html", i.HTML})
	}
	return fields
}

// MatchItem is produced by regex patterns
type MatchItem struct {
	ID     string   `json:"id" yaml:"id"`
	Match  string   `json:"match" yaml:"match"`
	Groups []string `json:"groups" yaml:"groups"`
}

func (i *MatchItem) ItemID() string { return i.ID }
func (*MatchItem) isItem()          {}

func (i *MatchItem) Fields() []Field {
	return []Field{{"id", i.ID}, {"match", i.Match}, {"groups", i.Groups}}
}

// NestedValue is the inner object of a ValueObject
type NestedValue struct {
	Data string `json:"data" yaml:"data"`
}

// ValueObject is the structured payload of a json pattern item
type ValueObject struct {
	Key    string      `json:"key" yaml:"key"`
	Nested NestedValue `json:"nested" yaml:"nested"`
}

// ValueItem is produced by json patterns
type ValueItem struct {
	ID    string      `json:"id" yaml:"id"`
	Value ValueObject `json:"value" yaml:"value"`
}

func (i *ValueItem) ItemID() string { return i.ID }
func (*ValueItem) isItem()          {}

func (i *ValueItem) Fields() []Field {
	return []Field{{"id", i.ID}, {"value", i.Value}}
}

// ContentItem is produced by auto patterns and any unrecognized type
type ContentItem struct {
	ID      string `json:"id" yaml:"id"`
	Content string `json:"content" yaml:"content"`
}

func (i *ContentItem) ItemID() string { return i.ID }
func (*ContentItem) isItem()          {}

func (i *ContentItem) Fields() []Field {
	return []Field{{"id", i.ID}, {"content", i.Content}}
}

// NewItem returns an empty item of the variant used for pattern type t.
func NewItem(t PatternType) Item {
	switch t {
	case PatternCSS, PatternXPath:
		return &ElementItem{}
	case PatternRegex:
		return &MatchItem{}
	case PatternJSON:
		return &ValueItem{}
	default:
		return &ContentItem{}
	}
}

func decodeItem(t PatternType, msg json.RawMessage) (Item, error) {
	item := NewItem(t)
	if err := json.Unmarshal(msg, item); err != nil {
		return nil, fmt.Errorf("decode %s item: %w", t, err)
	}
	return item, nil
}
