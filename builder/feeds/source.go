package feeds

import (
	"context"
	"errors"
	"fmt"

	"github.com/mmcdole/gofeed"

	"github.com/Kush-Singh-26/dailypost/builder/models"
)

// ErrMissingParser is returned when sources are requested without a feed parser.
// Callers treat it as a fatal startup condition.
var ErrMissingParser = errors.New("feed parser is not available")

// Source yields the entries of one syndication feed.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]models.FeedEntry, error)
}

// NewParser returns the gofeed parser shared by every GofeedSource.
func NewParser(userAgent string) *gofeed.Parser {
	p := gofeed.NewParser()
	if userAgent != "" {
		p.UserAgent = userAgent
	}
	return p
}

// NewSources builds one GofeedSource per URL, keeping the given order.
func NewSources(parser *gofeed.Parser, urls []string) ([]Source, error) {
	if parser == nil {
		return nil, ErrMissingParser
	}
	sources := make([]Source, 0, len(urls))
	for _, u := range urls {
		sources = append(sources, &GofeedSource{URL: u, parser: parser})
	}
	return sources, nil
}

// GofeedSource fetches and parses an RSS/Atom/JSON feed over HTTP.
type GofeedSource struct {
	URL    string
	parser *gofeed.Parser
}

func (s *GofeedSource) Name() string {
	return s.URL
}

// Fetch retrieves the feed and maps its items in feed order.
func (s *GofeedSource) Fetch(ctx context.Context) ([]models.FeedEntry, error) {
	feed, err := s.parser.ParseURLWithContext(s.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed %s: %w", s.URL, err)
	}

	entries := make([]models.FeedEntry, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		entries = append(entries, entryFromItem(item))
	}
	return entries, nil
}

// entryFromItem maps a gofeed item. gofeed already folds RSS <description> and
// Atom <summary> into Description, so full content serves as the second choice.
func entryFromItem(item *gofeed.Item) models.FeedEntry {
	return models.FeedEntry{
		Title:       item.Title,
		Link:        item.Link,
		Summary:     item.Description,
		Description: item.Content,
	}
}
