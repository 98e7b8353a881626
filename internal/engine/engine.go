package engine

import (
	"context"
	"errors"
	"time"

	"github.com/law-makers/scrapedeck/pkg/models"
)

// Scraper is the interface that all scraping engines must implement
type Scraper interface {
	// Scrape resolves a request into a result. It never returns a Go error:
	// failures are reported through the result status and message.
	Scrape(ctx context.Context, req models.ScrapeRequest) models.ScrapeResult

	// Name returns the name of the scraper implementation
	Name() string
}

// ErrorResult builds an error result for url from err.
// An *EngineError contributes its Message, anything else its Error() text.
func ErrorResult(url string, err error, now func() time.Time) models.ScrapeResult {
	msg := err.Error()
	var ee *EngineError
	if errors.As(err, &ee) {
		msg = ee.Message
	}
	return models.ScrapeResult{
		Status:    models.StatusError,
		Timestamp: now(),
		URL:       url,
		Message:   msg,
		Data:      []models.ScrapeResultGroup{},
	}
}

// Now returns the current UTC time at millisecond precision, the resolution results carry
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
