// Package routes defines HTTP route constants for the application.
package routes

import (
	"net/url"
	"slices"
	"strings"
	"unicode"
)

const (
	Root    = "/"
	Welcome = "/welcome"
	Random  = "/random"
	NewPost = "/new-post"

	Static  = "/static/"
	Metrics = "/metrics"
	Healthz = "/healthz"
	Robots  = "/robots.txt"
)

// Mux patterns.
const (
	PatternIndex       = "GET /{$}"
	PatternWelcome     = "GET " + Welcome
	PatternWelcomeAck  = "POST " + Welcome
	PatternRandom      = "GET " + Random
	PatternNewPostForm = "GET " + NewPost
	PatternNewPost     = "POST " + NewPost
	PatternPost        = "GET /{" + PostParam + "}"
	PatternStatic      = "GET " + Static
	PatternMetrics     = "GET " + Metrics
	PatternHealthz     = "GET " + Healthz
	PatternRobots      = "GET " + Robots
	PatternNotFound    = "/"

	PostParam = "permalink"
	PageParam = "page"
)

// reserved holds the first path segments that a post can never own.
var reserved = []string{"welcome", "random", "new-post", "static", "metrics", "healthz", "robots.txt"}

// Reserved reports whether a permalink would be shadowed by a fixed route.
func Reserved(permalink string) bool {
	return slices.Contains(reserved, permalink)
}

// PostPath is the detail route of the post with the given permalink.
func PostPath(permalink string) string {
	return Root + url.PathEscape(permalink)
}

// WelcomePath is the welcome route that returns to next once acknowledged.
func WelcomePath(next string) string {
	if next == "" || next == Root {
		return Welcome
	}
	return Welcome + "?" + url.Values{"next": {next}}.Encode()
}

// SafeNext returns next when it is a local absolute path and Root otherwise.
// Browsers drop tabs and newlines from URLs, so any control character
// disqualifies next.
func SafeNext(next string) string {
	if next == "" || next[0] != '/' || strings.ContainsFunc(next, unicode.IsControl) {
		return Root
	}
	if len(next) > 1 && (next[1] == '/' || next[1] == '\\') {
		return Root
	}
	return next
}
