package output

import (
	"encoding/json"

	"github.com/law-makers/scrapedeck/pkg/models"
)

// FormatJSON renders the result's data as indented JSON
func FormatJSON(result models.ScrapeResult) ([]byte, error) {
	data := result.Data
	if data == nil {
		data = []models.ScrapeResultGroup{}
	}
	content, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(content, '\n'), nil
}
