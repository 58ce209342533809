package domain

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf16"
)

const idSegmentLen = 20

var truncationMarker = regexp.MustCompile(`\[\+\d+\s+chars]`)

// Source identifies the outlet an article was published by.
type Source struct {
	ID   *string `json:"id"`
	Name string  `json:"name"`
}

// Article is a single headline. Values are built from API responses or
// decoded navigation tokens and never mutated afterwards.
type Article struct {
	Source      Source  `json:"source"`
	Author      *string `json:"author"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	URL         string  `json:"url"`
	ImageURL    *string `json:"urlToImage"`
	PublishedAt string  `json:"publishedAt"` // verbatim from the API
	Content     *string `json:"content"`
}

// publishedLayouts are tried in order; the second accepts timestamps without seconds.
var publishedLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04Z07:00"}

// PublishedInstant parses PublishedAt. Unparsable values map to the Unix epoch.
func (a Article) PublishedInstant() time.Time {
	for _, layout := range publishedLayouts {
		if t, err := time.Parse(layout, a.PublishedAt); err == nil {
			return t
		}
	}
	return time.Unix(0, 0).UTC()
}

// ID returns a stable cache key derived from the source name and the URL.
// It is not collision-proof and must not be used for anything security related.
func (a Article) ID() string {
	var sb strings.Builder
	sb.WriteString(strings.ToLower(strings.ReplaceAll(a.Source.Name, " ", "-")))
	sb.WriteString("-")
	sb.WriteString(lastSegment(a.URL, idSegmentLen))
	sb.WriteString("-")
	sb.WriteString(strings.ReplaceAll(strconv.Itoa(int(urlHash(a.URL))), "-", "0"))
	return sb.String()
}

// CleanContent strips the "[+N chars]" truncation marker NewsAPI appends to content.
func (a Article) CleanContent() string {
	if a.Content == nil {
		return ""
	}
	return strings.TrimSpace(truncationMarker.ReplaceAllString(*a.Content, ""))
}

// lastSegment returns the text after the last "/" cut to limit UTF-16 code
// units. A surrogate pair split by the cut decodes to U+FFFD.
func lastSegment(url string, limit int) string {
	seg := url[strings.LastIndex(url, "/")+1:]
	if units := utf16.Encode([]rune(seg)); len(units) > limit {
		return string(utf16.Decode(units[:limit]))
	}
	return seg
}

// urlHash is the 32-bit polynomial string hash over UTF-16 code units,
// kept so ids match the ones issued by the mobile clients.
func urlHash(s string) int32 {
	var h int32
	for _, u := range utf16.Encode([]rune(s)) {
		h = 31*h + int32(u)
	}
	return h
}
