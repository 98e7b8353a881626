package mock

import (
	"fmt"

	"github.com/law-makers/scrapedeck/pkg/models"
)

// placeholderItem fabricates the index-th item for p
func placeholderItem(p models.PatternSpec, index int, includeHTML bool) models.Item {
	id := fmt.Sprintf("item-%d", index)

	switch p.Type {
	case models.PatternCSS, models.PatternXPath:
		item := &models.ElementItem{
			ID:   id,
			Text: fmt.Sprintf("Sample text for %s #%d", p.Name, index+1),
		}
		if index%2 == 0 {
			href := fmt.Sprintf("https://example.com/item-%d", index)
			item.Href = &href
		}
		if includeHTML {
			item.HTML = fmt.Sprintf(`<div class="sample">Sample HTML for %s #%d</div>`, p.Name, index+1)
		}
		return item

	case models.PatternRegex:
		return &models.MatchItem{
			ID:     id,
			Match:  fmt.Sprintf("Match %d for %s", index+1, p.Name),
			Groups: []string{fmt.Sprintf("group1-%d", index), fmt.Sprintf("group2-%d", index)},
		}

	case models.PatternJSON:
		return &models.ValueItem{
			ID: id,
			Value: models.ValueObject{
				Key:    fmt.Sprintf("value-%d", index),
				Nested: models.NestedValue{Data: fmt.Sprintf("nested-%d", index)},
			},
		}

	default:
		return &models.ContentItem{
			ID:      id,
			Content: fmt.Sprintf("Content for %s #%d", p.Name, index+1),
		}
	}
}
