// Package feeds picks the topic of the day from an ordered list of feeds.
package feeds

import (
	"context"
	"log/slog"
	"regexp"
	"time"

	"github.com/Kush-Singh-26/dailypost/builder/models"
)

const (
	// DefaultSummaryMaxLen bounds topic summaries, counted in runes
	DefaultSummaryMaxLen = 600

	// UntitledTitle replaces a missing entry title
	UntitledTitle = "오늘의 이슈"

	FallbackTitle   = "오늘의 추천 아이템"
	FallbackSummary = "오늘은 실무에서 바로 쓰는 추천 리스트를 정리합니다."
)

// tagRe matches one HTML tag; text between tags is kept
var tagRe = regexp.MustCompile(`<[^<]+?>`)

// FallbackTopic is used when no source yields an entry.
func FallbackTopic() models.Topic {
	return models.Topic{
		Title:      FallbackTitle,
		SourceLink: "",
		Summary:    FallbackSummary,
	}
}

// Selection is the outcome of a pick, with the source that supplied it.
type Selection struct {
	Topic    models.Topic
	Source   string // empty when the fallback topic was used
	Index    int    // position in the source list, -1 for the fallback
	Tried    int    // sources queried, including the winner
	Fallback bool
}

// Selector walks sources in priority order.
type Selector struct {
	logger        *slog.Logger
	timeout       time.Duration
	summaryMaxLen int
}

// NewSelector returns a selector. timeout bounds each fetch (0 means no extra bound);
// summaryMaxLen outside 1..DefaultSummaryMaxLen uses DefaultSummaryMaxLen.
func NewSelector(logger *slog.Logger, timeout time.Duration, summaryMaxLen int) *Selector {
	if logger == nil {
		logger = slog.Default()
	}
	if summaryMaxLen <= 0 || summaryMaxLen > DefaultSummaryMaxLen {
		summaryMaxLen = DefaultSummaryMaxLen
	}
	return &Selector{
		logger:        logger,
		timeout:       timeout,
		summaryMaxLen: summaryMaxLen,
	}
}

// Select returns the topic of the first source with at least one entry,
// or FallbackTopic. It never fails.
func (s *Selector) Select(ctx context.Context, sources []Source) models.Topic {
	return s.Pick(ctx, sources).Topic
}

// Pick is Select with provenance.
func (s *Selector) Pick(ctx context.Context, sources []Source) Selection {
	for i, src := range sources {
		entry, ok := s.firstEntry(ctx, src)
		if !ok {
			continue
		}
		return Selection{
			Topic:  TopicFromEntry(entry, s.summaryMaxLen),
			Source: src.Name(),
			Index:  i,
			Tried:  i + 1,
		}
	}

	s.logger.Warn("No feed yielded an entry, using fallback topic", "sources", len(sources))
	return Selection{
		Topic:    FallbackTopic(),
		Index:    -1,
		Tried:    len(sources),
		Fallback: true,
	}
}

// firstEntry reduces a source to an optional entry.
// A fetch error and an empty feed are the same absence.
func (s *Selector) firstEntry(ctx context.Context, src Source) (models.FeedEntry, bool) {
	fetchCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	entries, err := src.Fetch(fetchCtx)
	if err != nil {
		s.logger.Warn("Feed unavailable, trying next", "source", src.Name(), "error", err)
		return models.FeedEntry{}, false
	}
	if len(entries) == 0 {
		s.logger.Info("Feed has no entries, trying next", "source", src.Name())
		return models.FeedEntry{}, false
	}
	return entries[0], true
}

// TopicFromEntry applies the title/link/summary defaults to a feed entry.
func TopicFromEntry(e models.FeedEntry, summaryMaxLen int) models.Topic {
	title := e.Title
	if title == "" {
		title = UntitledTitle
	}

	summary := e.Summary
	if summary == "" {
		summary = e.Description
	}

	return models.Topic{
		Title:      title,
		SourceLink: e.Link,
		Summary:    Truncate(StripTags(summary), summaryMaxLen),
	}
}

// StripTags removes every <...> sequence from s.
func StripTags(s string) string {
	return tagRe.ReplaceAllString(s, "")
}

// Truncate cuts s to at most n runes with no word-boundary handling.
func Truncate(s string, n int) string {
	if n < 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
