// Package pattern validates extraction selectors and provides pattern presets.
package pattern

import (
	"strings"
	"sync"

	"github.com/dop251/goja"
	"github.com/rs/zerolog/log"

	"github.com/law-makers/scrapedeck/pkg/models"
)

// runtimes caches goja VMs; a Runtime is not safe for concurrent use.
var runtimes = sync.Pool{
	New: func() any {
		vm := goja.New()
		return vm
	},
}

// Validate reports whether selector is acceptable for the given pattern type.
//
// The checks are intentionally shallow:
//   - css:   non-empty after trimming
//   - xpath: non-empty and contains at least one '/'
//   - regex: compiles as a JavaScript regular expression
//   - json:  contains '$' or '.'
//   - auto:  always valid
//
// Unknown types are rejected. The empty string is invalid for every type except auto.
func Validate(selector string, t models.PatternType) bool {
	switch t {
	case models.PatternCSS:
		return strings.TrimSpace(selector) != ""
	case models.PatternXPath:
		return strings.TrimSpace(selector) != "" && strings.Contains(selector, "/")
	case models.PatternRegex:
		if selector == "" {
			return false
		}
		return compilesAsRegExp(selector)
	case models.PatternJSON:
		return strings.ContainsAny(selector, "$.")
	case models.PatternAuto:
		return true
	default:
		return false
	}
}

// compilesAsRegExp evaluates `new RegExp(pattern)` in a JS runtime so the dialect
// matches what a browser would accept (lookbehind, named groups, \d etc).
func compilesAsRegExp(pattern string) bool {
	vm := runtimes.Get().(*goja.Runtime)
	defer runtimes.Put(vm)

	ctor, ok := goja.AssertConstructor(vm.Get("RegExp"))
	if !ok {
		log.Error().Msg("RegExp constructor unavailable in JS runtime")
		return false
	}

	if _, err := ctor(nil, vm.ToValue(pattern)); err != nil {
		log.Debug().Str("pattern", pattern).Err(err).Msg("Regex rejected")
		return false
	}
	// goja accepts repeated group names, browsers do not
	if name, dup := duplicateGroupName(pattern); dup {
		log.Debug().Str("pattern", pattern).Str("group", name).Msg("Regex rejected: duplicate capture group name")
		return false
	}
	return true
}

// duplicateGroupName reports the first named capture group declared twice in pattern.
// Escapes and character classes are skipped; (?<= and (?<! are lookbehinds, not names.
func duplicateGroupName(pattern string) (string, bool) {
	seen := make(map[string]bool)
	inClass := false
	for i := 0; i < len(pattern); i++ {
		switch c := pattern[i]; {
		case c == '\\':
			i++
		case inClass:
			if c == ']' {
				inClass = false
			}
		case c == '[':
			inClass = true
		case strings.HasPrefix(pattern[i:], "(?<") && i+3 < len(pattern) && pattern[i+3] != '=' && pattern[i+3] != '!':
			end := strings.IndexByte(pattern[i+3:], '>')
			if end < 0 {
				return "", false
			}
			name := pattern[i+3 : i+3+end]
			if seen[name] {
				return name, true
			}
			seen[name] = true
			i += 3 + end
		}
	}
	return "", false
}

// Describe returns a short hint of the selector syntax expected for t.
func Describe(t models.PatternType) string {
	switch t {
	case models.PatternCSS:
		return `CSS selectors like "div.class" or "#id"`
	case models.PatternXPath:
		return `XPath expressions like "//div[@class='name']"`
	case models.PatternRegex:
		return `Regular expressions like "[a-z0-9]+"`
	case models.PatternJSON:
		return `JSON path like "$.items[*].name"`
	case models.PatternAuto:
		return "Automatic detection based on content"
	default:
		return ""
	}
}
