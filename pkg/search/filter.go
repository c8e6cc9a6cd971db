// Package search filters tabs by title or URL and debounces query input.
package search

import (
	"strings"

	"github.com/b/vertical-tabs/pkg/browser"
)

// Normalize trims and lowercases a raw query.
func Normalize(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// Matches reports whether tab's title or URL contains query, ignoring case. An empty
// query matches every tab.
func Matches(tab browser.Tab, query string) bool {
	q := Normalize(query)
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(tab.Title), q) ||
		strings.Contains(strings.ToLower(tab.URL), q)
}

// Filter returns a predicate for query, or nil when the query matches everything.
func Filter(query string) func(browser.Tab) bool {
	q := Normalize(query)
	if q == "" {
		return nil
	}
	return func(tab browser.Tab) bool {
		return strings.Contains(strings.ToLower(tab.Title), q) ||
			strings.Contains(strings.ToLower(tab.URL), q)
	}
}
