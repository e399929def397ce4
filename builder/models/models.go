// defines the data structures shared by the feed selector, renderer and catalog
package models

// --- Feed Structures ---

// FeedEntry is one parsed item of a syndication feed.
// An empty field means the feed did not provide it.
type FeedEntry struct {
	Title       string
	Link        string
	Summary     string
	Description string
}

// Topic is the subject picked for a single run.
type Topic struct {
	Title      string
	SourceLink string
	Summary    string // tag-stripped, length-bounded
}

// --- Catalog Structures ---

// IndexRecord is one generated post as listed in posts.json.
type IndexRecord struct {
	Title string `json:"title"`
	Date  string `json:"date"` // YYYY-MM-DD
	File  string `json:"file"`
}

// PostCatalog is the ordered, append-only list of generated posts.
type PostCatalog []IndexRecord

// Contains reports whether a record for file is already listed.
func (c PostCatalog) Contains(file string) bool {
	for _, r := range c {
		if r.File == file {
			return true
		}
	}
	return false
}

// DateLayout is the layout of every date stamp in filenames and records.
const DateLayout = "2006-01-02"
