package output

import (
	"bytes"

	"gopkg.in/yaml.v3"

	"github.com/law-makers/scrapedeck/pkg/models"
)

// FormatYAML renders the result's data as a YAML sequence of groups
func FormatYAML(result models.ScrapeResult) ([]byte, error) {
	data := result.Data
	if data == nil {
		data = []models.ScrapeResultGroup{}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(data); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
