package feeds

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/Kush-Singh-26/dailypost/builder/models"
	"github.com/Kush-Singh-26/dailypost/builder/testutil"
)

func newTestSelector() *Selector {
	return NewSelector(testutil.NewTestLogger(), time.Second, 0)
}

func TestSelect_ThirdSourceWins(t *testing.T) {
	first := testutil.EmptySource("first")
	second := testutil.EmptySource("second")
	third := &testutil.StaticSource{
		Label: "third",
		Entries: []models.FeedEntry{
			{Title: "Winner", Link: "https://example.com/win", Summary: "picked"},
			{Title: "Runner up", Link: "https://example.com/second"},
		},
	}

	sel := newTestSelector().Pick(context.Background(), []Source{first, second, third})

	want := models.Topic{Title: "Winner", SourceLink: "https://example.com/win", Summary: "picked"}
	if sel.Topic != want {
		t.Errorf("Topic = %#v, want %#v", sel.Topic, want)
	}
	if sel.Source != "third" || sel.Index != 2 || sel.Tried != 3 || sel.Fallback {
		t.Errorf("Selection = %+v, want third source at index 2", sel)
	}
	if first.Calls != 1 || second.Calls != 1 || third.Calls != 1 {
		t.Errorf("calls = %d/%d/%d, want each source queried once", first.Calls, second.Calls, third.Calls)
	}
}

func TestSelect_FirstNonEmptyShortCircuits(t *testing.T) {
	first := &testutil.StaticSource{Label: "first", Entries: []models.FeedEntry{{Title: "Early"}}}
	second := &testutil.StaticSource{Label: "second", Entries: []models.FeedEntry{{Title: "Late"}}}

	topic := newTestSelector().Select(context.Background(), []Source{first, second})

	if topic.Title != "Early" {
		t.Errorf("Title = %q, want %q", topic.Title, "Early")
	}
	if second.Calls != 0 {
		t.Errorf("second source queried %d times, want 0", second.Calls)
	}
}

func TestSelect_FetchErrorFallsThrough(t *testing.T) {
	broken := testutil.FailingSource("broken")
	good := &testutil.StaticSource{Label: "good", Entries: []models.FeedEntry{{Title: "Recovered"}}}

	sel := newTestSelector().Pick(context.Background(), []Source{broken, good})

	if sel.Topic.Title != "Recovered" {
		t.Errorf("Title = %q, want %q", sel.Topic.Title, "Recovered")
	}
	if sel.Index != 1 {
		t.Errorf("Index = %d, want 1", sel.Index)
	}
}

func TestSelect_AllEmptyReturnsFallback(t *testing.T) {
	tests := []struct {
		name    string
		sources []Source
	}{
		{"no sources", nil},
		{"all empty", []Source{testutil.EmptySource("a"), testutil.EmptySource("b"), testutil.EmptySource("c")}},
		{"empty and failing", []Source{testutil.FailingSource("a"), testutil.EmptySource("b")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := newTestSelector().Pick(context.Background(), tt.sources)

			if !sel.Fallback || sel.Index != -1 || sel.Source != "" {
				t.Errorf("Selection = %+v, want fallback", sel)
			}
			if sel.Topic.Title != "오늘의 추천 아이템" {
				t.Errorf("Title = %q, want fallback title", sel.Topic.Title)
			}
			if sel.Topic.SourceLink != "" {
				t.Errorf("SourceLink = %q, want empty", sel.Topic.SourceLink)
			}
			if sel.Topic != FallbackTopic() {
				t.Errorf("Topic = %#v, want %#v", sel.Topic, FallbackTopic())
			}
			if sel.Tried != len(tt.sources) {
				t.Errorf("Tried = %d, want %d", sel.Tried, len(tt.sources))
			}
		})
	}
}

func TestSelect_CancelledContextFallsBack(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &ctxSource{}
	topic := newTestSelector().Select(ctx, []Source{src})

	if topic != FallbackTopic() {
		t.Errorf("Topic = %#v, want fallback", topic)
	}
}

// ctxSource fails when its context is done
type ctxSource struct{}

func (ctxSource) Name() string { return "ctx" }

func (ctxSource) Fetch(ctx context.Context) ([]models.FeedEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []models.FeedEntry{{Title: "too late"}}, nil
}

func TestSelect_AppliesTimeout(t *testing.T) {
	src := &deadlineSource{}
	NewSelector(testutil.NewTestLogger(), 5*time.Second, 0).Select(context.Background(), []Source{src})

	if !src.hadDeadline {
		t.Error("fetch context should carry a deadline")
	}
}

type deadlineSource struct {
	hadDeadline bool
}

func (s *deadlineSource) Name() string { return "deadline" }

func (s *deadlineSource) Fetch(ctx context.Context) ([]models.FeedEntry, error) {
	_, s.hadDeadline = ctx.Deadline()
	return nil, nil
}

func TestTopicFromEntry(t *testing.T) {
	tests := []struct {
		name     string
		entry    models.FeedEntry
		expected models.Topic
	}{
		{
			name:     "all fields",
			entry:    testutil.CreateSampleEntry(),
			expected: models.Topic{Title: "A <B>", SourceLink: "http://x", Summary: "hi there"},
		},
		{
			name:     "missing title",
			entry:    models.FeedEntry{Link: "https://example.com", Summary: "s"},
			expected: models.Topic{Title: "오늘의 이슈", SourceLink: "https://example.com", Summary: "s"},
		},
		{
			name:     "description used when summary missing",
			entry:    models.FeedEntry{Title: "T", Description: "<b>from</b> description"},
			expected: models.Topic{Title: "T", Summary: "from description"},
		},
		{
			name:     "summary preferred over description",
			entry:    models.FeedEntry{Title: "T", Summary: "summary", Description: "description"},
			expected: models.Topic{Title: "T", Summary: "summary"},
		},
		{
			name:     "nothing but a title",
			entry:    models.FeedEntry{Title: "Bare"},
			expected: models.Topic{Title: "Bare"},
		},
		{
			name:     "title is not stripped",
			entry:    models.FeedEntry{Title: "<i>Raw</i> title"},
			expected: models.Topic{Title: "<i>Raw</i> title"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TopicFromEntry(tt.entry, DefaultSummaryMaxLen); got != tt.expected {
				t.Errorf("TopicFromEntry() = %#v, want %#v", got, tt.expected)
			}
		})
	}
}

func TestTopicFromEntry_TruncatesSummary(t *testing.T) {
	long := "<p>" + strings.Repeat("가나다", 300) + "</p>"
	topic := TopicFromEntry(models.FeedEntry{Title: "T", Summary: long}, DefaultSummaryMaxLen)

	if n := utf8.RuneCountInString(topic.Summary); n != DefaultSummaryMaxLen {
		t.Errorf("summary has %d runes, want %d", n, DefaultSummaryMaxLen)
	}
	if strings.Contains(topic.Summary, "<") {
		t.Error("summary should not contain tags")
	}
}

func TestNewSelector_SummaryCap(t *testing.T) {
	entry := models.FeedEntry{Title: "T", Summary: strings.Repeat("가", 3000)}
	src := &testutil.StaticSource{Label: "long", Entries: []models.FeedEntry{entry}}

	topic := NewSelector(testutil.NewTestLogger(), time.Second, 5000).Select(context.Background(), []Source{src})
	if n := utf8.RuneCountInString(topic.Summary); n != DefaultSummaryMaxLen {
		t.Errorf("summary has %d runes, want cap %d", n, DefaultSummaryMaxLen)
	}
}

func TestStripTags(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"<p>hi</p> there", "hi there"},
		{`<a href="https://x">link</a>`, "link"},
		{"<img src='a.png'/>caption", "caption"},
		{"no tags", "no tags"},
		{"a < b and c > d", "a  d"},
		{"<<b>>bold", "<>bold"},
		{"unclosed <tag", "unclosed <tag"},
		{"<br>\n<br/>", "\n"},
		{"&amp; entities stay", "&amp; entities stay"},
	}
	for _, tt := range tests {
		if got := StripTags(tt.in); got != tt.want {
			t.Errorf("StripTags(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello world", 5, "hello"},
		{"한국어 텍스트", 3, "한국어"},
		{"", 3, ""},
		{"abc", 0, ""},
		{"abc", -1, "abc"},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
