// Package testutil provides testing utilities and fixtures
package testutil

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/Kush-Singh-26/dailypost/builder/models"
)

// StaticSource is an in-memory feed source
type StaticSource struct {
	Label   string
	Entries []models.FeedEntry
	Err     error
	Calls   int
}

func (s *StaticSource) Name() string {
	return s.Label
}

func (s *StaticSource) Fetch(ctx context.Context) ([]models.FeedEntry, error) {
	s.Calls++
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Entries, nil
}

// EmptySource creates a source with no entries
func EmptySource(label string) *StaticSource {
	return &StaticSource{Label: label}
}

// FailingSource creates a source whose fetch always fails
func FailingSource(label string) *StaticSource {
	return &StaticSource{Label: label, Err: fmt.Errorf("%s: connection refused", label)}
}

// CreateSampleTime returns a fixed render time
func CreateSampleTime() time.Time {
	return time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC)
}

// FixedClock returns a clock that always reports t
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// CreateSampleEntry creates the entry used by the end-to-end scenario
func CreateSampleEntry() models.FeedEntry {
	return models.FeedEntry{
		Title:   "A <B>",
		Link:    "http://x",
		Summary: "<p>hi</p> there",
	}
}

// CreateSampleTopic creates a valid Topic for testing
func CreateSampleTopic() models.Topic {
	return models.Topic{
		Title:      "새 노트북 출시 <리뷰>",
		SourceLink: "https://example.com/laptop",
		Summary:    "가볍고 빠른 새 노트북이 나왔습니다. Battery life & price inside.",
	}
}

// CreateSampleCatalog creates a catalog with a few records
func CreateSampleCatalog() models.PostCatalog {
	return models.PostCatalog{
		{Title: "오늘의 추천 아이템", Date: "2026-01-13", File: "2026-01-13-오늘의-추천-아이템.html"},
		{Title: "Hello World", Date: "2026-01-14", File: "2026-01-14-hello-world.html"},
	}
}

// RSSItem is one item of a generated RSS document
type RSSItem struct {
	Title       string
	Link        string
	Description string
}

// CreateRSS renders a minimal RSS 2.0 document
func CreateRSS(items ...RSSItem) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<rss version="2.0"><channel><title>Test Feed</title><link>https://example.com</link><description>test</description>`)
	for _, it := range items {
		b.WriteString("<item>")
		if it.Title != "" {
			b.WriteString("<title>" + html.EscapeString(it.Title) + "</title>")
		}
		if it.Link != "" {
			b.WriteString("<link>" + html.EscapeString(it.Link) + "</link>")
		}
		if it.Description != "" {
			b.WriteString("<description><![CDATA[" + it.Description + "]]></description>")
		}
		b.WriteString("</item>")
	}
	b.WriteString("</channel></rss>")
	return b.String()
}
