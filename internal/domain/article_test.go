package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T { return &v }

func bbcArticle(url string) Article {
	return Article{
		Source:      Source{ID: ptr("bbc-news"), Name: "BBC News"},
		Author:      ptr("Test Author"),
		Title:       "Test Article",
		Description: ptr("Description"),
		URL:         url,
		PublishedAt: "2024-01-01T10:00:00Z",
		Content:     ptr("Content"),
	}
}

func TestArticle_ID(t *testing.T) {
	a := bbcArticle("https://bbc.com/test")

	assert.Equal(t, "bbc-news-test-02141768166", a.ID())
	assert.Regexp(t, `^bbc-news-test-\d+$`, a.ID())
}

func TestArticle_ID_Deterministic(t *testing.T) {
	a := bbcArticle("https://bbc.com/test")
	b := bbcArticle("https://bbc.com/test")
	b.Title = "Different title"

	assert.Equal(t, a.ID(), a.ID())
	assert.Equal(t, a.ID(), b.ID())
}

func TestArticle_ID_ChangesWithURL(t *testing.T) {
	one := bbcArticle("https://bbc.com/1")
	two := bbcArticle("https://bbc.com/2")

	assert.NotEqual(t, one.ID(), two.ID())
	assert.Equal(t, "bbc-news-1-0440943703", one.ID())
	assert.Equal(t, "bbc-news-2-0440943702", two.ID())
}

func TestArticle_ID_TruncatesSegment(t *testing.T) {
	a := bbcArticle("https://bbc.com/news/a-very-long-article-slug-that-keeps-going")

	assert.Regexp(t, `^bbc-news-a-very-long-article--\d+$`, a.ID())
}

func TestArticle_ID_TruncatesSegmentByUTF16Units(t *testing.T) {
	tests := []struct {
		name    string
		segment string
		want    string
	}{
		{"ascii", strings.Repeat("a", 25), strings.Repeat("a", 20)},
		{"emoji", strings.Repeat("😀", 12), strings.Repeat("😀", 10)},
		{"accented", strings.Repeat("é", 22), strings.Repeat("é", 20)},
		{"split pair", "a" + strings.Repeat("😀", 10), "a" + strings.Repeat("😀", 9) + "\uFFFD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Article{Source: Source{Name: "BBC"}, URL: "https://bbc.com/" + tt.segment}

			id := a.ID()

			assert.True(t, strings.HasPrefix(id, "bbc-"+tt.want+"-"), "got %s", id)
			assert.Regexp(t, `-\d+$`, id)
		})
	}
}

func TestArticle_ID_NoSlash(t *testing.T) {
	a := Article{Source: Source{Name: "Tech Crunch"}, URL: "plain"}

	assert.Regexp(t, `^tech-crunch-plain-\d+$`, a.ID())
}

func TestArticle_PublishedInstant(t *testing.T) {
	tests := []struct {
		name        string
		publishedAt string
		want        time.Time
	}{
		{"utc", "2024-01-02T10:00:00Z", time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)},
		{"fractional", "2024-01-02T10:00:00.123Z", time.Date(2024, 1, 2, 10, 0, 0, 123000000, time.UTC)},
		{"offset", "2024-01-02T12:00:00+02:00", time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)},
		{"no seconds", "2024-01-01T10:00Z", time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)},
		{"no seconds offset", "2024-01-01T12:30+02:00", time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC)},
		{"garbage", "yesterday", time.Unix(0, 0).UTC()},
		{"empty", "", time.Unix(0, 0).UTC()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Article{PublishedAt: tt.publishedAt}
			assert.NotPanics(t, func() { a.PublishedInstant() })
			assert.True(t, tt.want.Equal(a.PublishedInstant()), "got %s", a.PublishedInstant())
		})
	}
}

func TestArticle_CleanContent(t *testing.T) {
	a := Article{Content: ptr("The minister said on Tuesday that talks would resume… [+2345 chars]")}
	assert.Equal(t, "The minister said on Tuesday that talks would resume…", a.CleanContent())

	assert.Equal(t, "", Article{}.CleanContent())
	assert.Equal(t, "", Article{Content: ptr("[+12 chars]")}.CleanContent())
}
