// Package icons picks the favicon source for a tab and remembers sources that failed
// to load.
package icons

import (
	"net/url"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	gocache "github.com/patrickmn/go-cache"
)

// Placeholder is shown for tabs without a usable favicon: a rounded grey square.
const Placeholder = "data:image/svg+xml,%3Csvg xmlns='http://www.w3.org/2000/svg' width='16' height='16'%3E%3Crect width='16' height='16' rx='3' fill='%23ccc'/%3E%3C/svg%3E"

// DefaultFailureTTL is how long a failed source keeps resolving to the placeholder.
const DefaultFailureTTL = 10 * time.Minute

// Resolver maps tabs to icon sources.
type Resolver struct {
	extensionID string
	failures    *gocache.Cache
}

// NewResolver returns a resolver. With an extension id, tabs without an http(s) favicon
// use the browser's favicon service through that extension.
func NewResolver(extensionID string, failureTTL time.Duration) *Resolver {
	if failureTTL <= 0 {
		failureTTL = DefaultFailureTTL
	}
	return &Resolver{
		extensionID: extensionID,
		// No janitor: expired entries are skipped by Get and overwritten on the next failure.
		failures: gocache.New(failureTTL, 0),
	}
}

// SetExtensionID changes the extension used for the favicon service.
func (r *Resolver) SetExtensionID(id string) {
	r.extensionID = id
}

// Resolve returns the icon source for a tab.
func (r *Resolver) Resolve(favIconURL, pageURL string) string {
	src := r.candidate(favIconURL, pageURL)
	if src == "" {
		return Placeholder
	}
	if _, failed := r.failures.Get(src); failed {
		return Placeholder
	}
	return src
}

func (r *Resolver) candidate(favIconURL, pageURL string) string {
	if strings.HasPrefix(favIconURL, "http") {
		return favIconURL
	}
	if r.extensionID == "" || pageURL == "" {
		return ""
	}
	return "chrome-extension://" + r.extensionID + "/_favicon/?pageUrl=" + url.QueryEscape(pageURL) + "&size=16"
}

// MarkFailed records that src did not load. Resolve returns the placeholder for it
// until the entry expires.
func (r *Resolver) MarkFailed(src string) bool {
	if src == "" || src == Placeholder {
		return false
	}
	r.failures.SetDefault(src, struct{}{})
	return true
}

// Failed reports whether src is currently marked failed.
func (r *Resolver) Failed(src string) bool {
	_, ok := r.failures.Get(src)
	return ok
}

// Glyph returns a one-cell stand-in for an icon source in the terminal: the first
// letter of the page's host, or a dot for the placeholder.
func Glyph(src, pageURL string) string {
	if src == Placeholder {
		return "·"
	}
	u, err := url.Parse(pageURL)
	if err != nil {
		return "·"
	}
	host := strings.TrimPrefix(u.Hostname(), "www.")
	if host == "" {
		host = u.Scheme
	}
	first, _ := utf8.DecodeRuneInString(host)
	if first == utf8.RuneError || !unicode.IsLetter(first) && !unicode.IsDigit(first) {
		return "·"
	}
	return string(unicode.ToUpper(first))
}
