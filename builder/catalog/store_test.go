package catalog

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/Kush-Singh-26/dailypost/builder/models"
)

func sampleCatalog() models.PostCatalog {
	return models.PostCatalog{
		{Title: "오늘의 추천 아이템", Date: "2026-01-13", File: "2026-01-13-오늘의-추천-아이템.html"},
		{Title: "A <B> & C", Date: "2026-01-14", File: "2026-01-14-a-b-c.html"},
		{Title: "Same Day", Date: "2026-01-14", File: "2026-01-14-same-day-2.html"},
	}
}

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	s := NewStore(afero.NewMemMapFs(), "posts/posts.json")

	c, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c == nil || len(c) != 0 {
		t.Errorf("Load() = %#v, want empty non-nil catalog", c)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		catalog models.PostCatalog
	}{
		{"empty", models.PostCatalog{}},
		{"single", models.PostCatalog{{Title: "One", Date: "2026-01-15", File: "2026-01-15-one.html"}}},
		{"mixed scripts and specials", sampleCatalog()},
		{"quotes and backslashes", models.PostCatalog{{Title: `say "hi" \ bye`, Date: "2026-02-01", File: "2026-02-01-say-hi-bye.html"}}},
		{"line separators", models.PostCatalog{{Title: "a\u2028b\u2029c", Date: "2026-02-02", File: "2026-02-02-abc.html"}}},
		{"escaped backslash before u2028 text", models.PostCatalog{{Title: `x\u2028y \\u2029`, Date: "2026-02-03", File: "2026-02-03-x.html"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore(afero.NewMemMapFs(), "posts/posts.json")
			if err := s.Save(tt.catalog); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			got, err := s.Load()
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if !reflect.DeepEqual(got, tt.catalog) {
				t.Errorf("round trip = %#v, want %#v", got, tt.catalog)
			}
		})
	}
}

func TestSave_Format(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewStore(fs, "posts/posts.json")

	c := models.PostCatalog{{Title: "한글 <제목> & more", Date: "2026-01-15", File: "2026-01-15-한글-제목-more.html"}}
	if err := s.Save(c); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := afero.ReadFile(fs, "posts/posts.json")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	want := `[
  {
    "title": "한글 <제목> & more",
    "date": "2026-01-15",
    "file": "2026-01-15-한글-제목-more.html"
  }
]
`
	if string(data) != want {
		t.Errorf("saved catalog =\n%s\nwant\n%s", data, want)
	}
	if strings.Contains(string(data), `\u`) {
		t.Error("non-ASCII or HTML characters should not be escaped")
	}
}

func TestMarshal_LineSeparatorsUnescaped(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"line separator", "a\u2028b 한글", `"title": "a` + "\u2028" + `b 한글"`},
		{"paragraph separator", "c\u2029d", `"title": "c` + "\u2029" + `d"`},
		{"literal backslash text", `x\u2028y`, `"title": "x\\u2028y"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Marshal(models.PostCatalog{{Title: tt.title, Date: "2026-01-15", File: "f.html"}})
			if err != nil {
				t.Fatalf("Marshal failed: %v", err)
			}
			if !strings.Contains(string(data), tt.want) {
				t.Errorf("Marshal() =\n%s\nwant it to contain %q", data, tt.want)
			}
		})
	}
}

func TestSave_NilCatalogWritesEmptyArray(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewStore(fs, "posts/posts.json")

	if err := s.Save(nil); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	data, _ := afero.ReadFile(fs, "posts/posts.json")
	if string(data) != "[]\n" {
		t.Errorf("saved = %q, want %q", data, "[]\n")
	}
}

func TestSave_OverwritesPriorContent(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewStore(fs, "posts/posts.json")

	if err := s.Save(sampleCatalog()); err != nil {
		t.Fatal(err)
	}
	short := models.PostCatalog{{Title: "Only", Date: "2026-01-15", File: "2026-01-15-only.html"}}
	if err := s.Save(short); err != nil {
		t.Fatal(err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(got, short) {
		t.Errorf("Load() = %#v, want %#v", got, short)
	}
}

func TestLoad_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty file", ""},
		{"whitespace only", "  \n"},
		{"truncated", `[{"title": "x"`},
		{"object", `{"title": "x", "date": "2026-01-15", "file": "x.html"}`},
		{"null", "null"},
		{"wrong field type", `[{"title": 42, "date": "2026-01-15", "file": "x.html"}]`},
		{"array of strings", `["a", "b"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			_ = afero.WriteFile(fs, "posts/posts.json", []byte(tt.content), 0644)

			_, err := NewStore(fs, "posts/posts.json").Load()
			if !errors.Is(err, ErrMalformedCatalog) {
				t.Errorf("Load() error = %v, want ErrMalformedCatalog", err)
			}
		})
	}
}

func TestLoad_MalformedIsNotRepaired(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "posts/posts.json", []byte("{broken"), 0644)

	_, _ = NewStore(fs, "posts/posts.json").Load()

	data, _ := afero.ReadFile(fs, "posts/posts.json")
	if string(data) != "{broken" {
		t.Errorf("malformed catalog was modified: %q", data)
	}
}

func TestAppend(t *testing.T) {
	r := models.IndexRecord{Title: "New", Date: "2026-01-15", File: "2026-01-15-new.html"}

	catalogs := []models.PostCatalog{
		nil,
		{},
		sampleCatalog(),
	}

	for _, c := range catalogs {
		before := append(models.PostCatalog(nil), c...)
		got := Append(c, r)

		if len(got) != len(c)+1 {
			t.Fatalf("len = %d, want %d", len(got), len(c)+1)
		}
		for i := range c {
			if got[i] != before[i] {
				t.Errorf("record %d = %#v, want %#v", i, got[i], before[i])
			}
			if c[i] != before[i] {
				t.Errorf("input record %d mutated: %#v", i, c[i])
			}
		}
		if got[len(got)-1] != r {
			t.Errorf("last = %#v, want %#v", got[len(got)-1], r)
		}
	}
}

func TestAppend_DoesNotAlias(t *testing.T) {
	base := make(models.PostCatalog, 1, 10)
	base[0] = models.IndexRecord{Title: "Base", Date: "2026-01-14", File: "a.html"}

	first := Append(base, models.IndexRecord{Title: "First", File: "b.html"})
	second := Append(base, models.IndexRecord{Title: "Second", File: "c.html"})

	if first[1].Title != "First" {
		t.Errorf("first[1] = %q, overwritten by a later append", first[1].Title)
	}
	if second[1].Title != "Second" {
		t.Errorf("second[1] = %q, want Second", second[1].Title)
	}
}
