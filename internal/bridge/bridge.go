// Package bridge carries a single article between the list and detail views
// as a URL-safe token.
package bridge

import (
	"encoding/json"
	"net/url"

	"headlines/internal/domain"
)

// Encode serializes a as JSON and query-escapes the result. Round-trips are
// exact for valid UTF-8 text, which is all the API returns; invalid bytes come
// back as U+FFFD.
func Encode(a domain.Article) string {
	// Article holds only strings and string pointers; Marshal cannot fail.
	data, _ := json.Marshal(a)
	return url.QueryEscape(string(data))
}

// Decode reverses Encode. Any malformed token yields false rather than an
// error, so detail views can fall back to a not-available state.
func Decode(token string) (domain.Article, bool) {
	if token == "" {
		return domain.Article{}, false
	}

	data, err := url.QueryUnescape(token)
	if err != nil {
		return domain.Article{}, false
	}

	var a *domain.Article
	if err := json.Unmarshal([]byte(data), &a); err != nil || a == nil {
		return domain.Article{}, false
	}

	return *a, true
}
