// Package catalog persists the ordered list of generated posts (posts.json).
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/afero"

	"github.com/Kush-Singh-26/dailypost/builder/models"
	"github.com/Kush-Singh-26/dailypost/builder/utils"
)

// ErrMalformedCatalog marks a catalog file that is not a JSON array of records.
// It is never repaired automatically.
var ErrMalformedCatalog = errors.New("malformed post catalog")

// Store owns the catalog file. No other component writes it.
type Store struct {
	fs   afero.Fs
	path string
}

// NewStore returns a store for the catalog at path on fs.
func NewStore(fs afero.Fs, path string) *Store {
	return &Store{fs: fs, path: path}
}

// Path returns the catalog file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the catalog. A missing file is an empty catalog, not an error.
func (s *Store) Load() (models.PostCatalog, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return models.PostCatalog{}, nil
		}
		return nil, fmt.Errorf("failed to read catalog %s: %w", s.path, err)
	}

	// json.Unmarshal accepts null for a slice; the catalog must be an array
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: %s is not a JSON array", ErrMalformedCatalog, s.path)
	}

	catalog := models.PostCatalog{}
	if err := json.Unmarshal(trimmed, &catalog); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedCatalog, s.path, err)
	}

	return catalog, nil
}

// Save replaces the catalog file with c.
// Output is indented and keeps non-ASCII text and HTML characters unescaped.
func (s *Store) Save(c models.PostCatalog) error {
	data, err := Marshal(c)
	if err != nil {
		return err
	}

	if err := utils.WriteFileAtomic(s.fs, s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to save catalog: %w", err)
	}
	return nil
}

// Marshal encodes c the way Save writes it.
func Marshal(c models.PostCatalog) ([]byte, error) {
	if c == nil {
		c = models.PostCatalog{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("failed to encode catalog: %w", err)
	}
	return unescapeLineSeparators(buf.Bytes()), nil
}

// unescapeLineSeparators turns the \u2028 and \u2029 escapes encoding/json
// always emits back into raw runes. Other escapes are copied unchanged.
func unescapeLineSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}

	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] != '\\' || i+1 >= len(data) {
			out = append(out, data[i])
			continue
		}
		if rest := data[i+1:]; len(rest) >= 5 && string(rest[:4]) == "u202" && (rest[4] == '8' || rest[4] == '9') {
			if rest[4] == '8' {
				out = append(out, "\u2028"...)
			} else {
				out = append(out, "\u2029"...)
			}
			i += 5
			continue
		}
		// Keep the escape pair together so an escaped backslash is never
		// mistaken for the start of another escape
		out = append(out, data[i], data[i+1])
		i++
	}
	return out
}

// Append returns c with r added at the end.
// The result never shares its backing array with c.
func Append(c models.PostCatalog, r models.IndexRecord) models.PostCatalog {
	out := make(models.PostCatalog, len(c), len(c)+1)
	copy(out, c)
	return append(out, r)
}
