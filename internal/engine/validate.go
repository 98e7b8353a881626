package engine

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/law-makers/scrapedeck/internal/pattern"
	urlutil "github.com/law-makers/scrapedeck/internal/utils/url"
	"github.com/law-makers/scrapedeck/pkg/models"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func requestValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
		v.RegisterStructValidation(validateRequestURL, models.ScrapeRequest{})
		v.RegisterStructValidation(validatePatternSelector, models.PatternSpec{})
		validate = v
	})
	return validate
}

func validateRequestURL(sl validator.StructLevel) {
	req := sl.Current().Interface().(models.ScrapeRequest)
	if req.URL == "" {
		return
	}
	if err := urlutil.ValidateURL(req.URL); err != nil {
		sl.ReportError(req.URL, "url", "URL", "url", "")
	}
}

func validatePatternSelector(sl validator.StructLevel) {
	p := sl.Current().Interface().(models.PatternSpec)
	// Unknown types are already reported by the oneof tag
	if !p.Type.Known() {
		return
	}
	if !pattern.Validate(p.Selector, p.Type) {
		sl.ReportError(p.Selector, "selector", "Selector", "selector", string(p.Type))
	}
}

// ValidateRequest checks a request before it reaches a scraper.
//
// The returned error is an *EngineError with code VALIDATION whose Details map
// each offending field (for example "patterns[1].selector") to a description.
func ValidateRequest(req models.ScrapeRequest) error {
	err := requestValidator().Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return NewEngineError(ErrCodeInternal, "request validation failed", err)
	}

	ee := NewEngineError(ErrCodeValidation, "", ErrInvalidRequest)
	var messages []string
	for _, fe := range verrs {
		field := fieldPath(fe.Namespace())
		msg := describeFieldError(field, fe)
		ee.WithDetail(field, msg)
		messages = append(messages, msg)
	}
	sort.Strings(messages)
	ee.Message = messages[0]
	if len(messages) > 1 {
		ee.Message = fmt.Sprintf("%s (and %d more)", messages[0], len(messages)-1)
	}
	return ee
}

// fieldPath drops the root struct name: "ScrapeRequest.patterns[0].name" -> "patterns[0].name"
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describeFieldError(field string, fe validator.FieldError) string {
	switch {
	case field == "url":
		return "Please enter a valid URL"
	case field == "patterns":
		return "Please add at least one pattern"
	case strings.HasSuffix(field, ".name"):
		return fmt.Sprintf("%s: pattern name is required", field)
	case strings.HasSuffix(field, ".type"):
		return fmt.Sprintf("%s: unknown pattern type %q", field, fe.Value())
	case strings.HasSuffix(field, ".selector"):
		return fmt.Sprintf("%s: invalid %s selector %q", field, fe.Param(), fe.Value())
	case field == "options.maxDepth":
		return "options.maxDepth: must be between 1 and 5"
	case field == "options.requestDelay":
		return "options.requestDelay: must not be negative"
	}
	return fmt.Sprintf("%s: failed %s", field, fe.Tag())
}
