// Package filter implements per-source spam filtering of candidate items.
package filter

import (
	"fmt"
	"regexp"
	"strings"

	"newsbot/internal/model"
)

// Match checks whether an item passes the source's filter rules.
// A source with no rules passes everything.
// Exclude rules use AND logic (none must match).
// Include rules use OR logic (at least one must match, if any exist).
func Match(item model.CandidateItem, src model.Source) bool {
	text := strings.ToLower(item.Title + " " + item.Summary)

	for _, word := range src.Exclude {
		if strings.Contains(text, strings.ToLower(word)) {
			return false
		}
	}
	for _, pattern := range src.ExcludeRe {
		re, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			continue
		}
		if re.MatchString(text) {
			return false
		}
	}

	if len(src.Include) == 0 {
		return true
	}
	for _, word := range src.Include {
		if strings.Contains(text, strings.ToLower(word)) {
			return true
		}
	}
	return false
}

// ValidatePatterns checks that every regex rule of a source compiles.
func ValidatePatterns(src model.Source) error {
	for _, pattern := range src.ExcludeRe {
		if _, err := regexp.Compile("(?i)" + pattern); err != nil {
			return fmt.Errorf("source %q: invalid regex %q: %w", src.Name, pattern, err)
		}
	}
	return nil
}
