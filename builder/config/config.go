// handles command-line flags, the yaml config file and DAILYPOST_* environment overrides
package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "DAILYPOST_"

type Config struct {
	OutputDir     string        `yaml:"outputDir"`
	CatalogFile   string        `yaml:"catalogFile"`
	Feeds         []string      `yaml:"feeds"`
	FeedTimeout   time.Duration `yaml:"feedTimeout"`
	UserAgent     string        `yaml:"userAgent"`
	Timezone      string        `yaml:"timezone"` // IANA name, empty for local time
	SummaryMaxLen int           `yaml:"summaryMaxLen"`
	SlugMaxLen    int           `yaml:"slugMaxLen"`
	Compress      bool          `yaml:"compress"`
	CacheDir      string        `yaml:"cacheDir"`
	Journal       bool          `yaml:"journal"`

	// Resolved at load time
	Location   *time.Location `yaml:"-"`
	ConfigPath string         `yaml:"-"` // empty when no file was read
	Args       []string       `yaml:"-"` // positional arguments left after flags
}

// Load builds the configuration: defaults, then the yaml file, then the
// environment, then flags.
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("dailypost", flag.ContinueOnError)
	configFlag := fs.String("config", DefaultConfigFile, "Path to the yaml config file")
	outFlag := fs.String("out", "", "Directory for posts and the catalog")
	feedsFlag := fs.String("feeds", "", "Comma-separated feed URLs in priority order")
	compressFlag := fs.Bool("compress", false, "Minify generated HTML")
	noJournalFlag := fs.Bool("no-journal", false, "Disable the run journal")
	tzFlag := fs.String("timezone", "", "IANA time zone for the date stamp")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	cfg := Default()
	if err := cfg.loadFile(*configFlag, set["config"]); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if set["out"] {
		cfg.OutputDir = *outFlag
	}
	if set["feeds"] {
		cfg.Feeds = splitList(*feedsFlag)
	}
	if set["compress"] {
		cfg.Compress = *compressFlag
	}
	if set["no-journal"] {
		cfg.Journal = !*noJournalFlag
	}
	if set["timezone"] {
		cfg.Timezone = *tzFlag
	}

	cfg.validate()

	loc, err := loadLocation(cfg.Timezone)
	if err != nil {
		return nil, err
	}
	cfg.Location = loc
	cfg.Args = fs.Args()

	return cfg, nil
}

// applyEnv overrides fields from DAILYPOST_* variables
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		return strings.TrimSpace(v), ok
	}

	if v, ok := get("OUTPUT_DIR"); ok {
		c.OutputDir = v
	}
	if v, ok := get("CATALOG_FILE"); ok {
		c.CatalogFile = v
	}
	if v, ok := get("FEEDS"); ok {
		c.Feeds = splitList(v)
	}
	if v, ok := get("USER_AGENT"); ok {
		c.UserAgent = v
	}
	if v, ok := get("TIMEZONE"); ok {
		c.Timezone = v
	}
	if v, ok := get("CACHE_DIR"); ok {
		c.CacheDir = v
	}
	if v, ok := get("FEED_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %sFEED_TIMEOUT: %w", EnvPrefix, err)
		}
		c.FeedTimeout = d
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"SUMMARY_MAX_LEN", &c.SummaryMaxLen},
		{"SLUG_MAX_LEN", &c.SlugMaxLen},
	}
	for _, f := range ints {
		if v, ok := get(f.name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s%s: %w", EnvPrefix, f.name, err)
			}
			*f.dst = n
		}
	}

	bools := []struct {
		name string
		dst  *bool
	}{
		{"COMPRESS", &c.Compress},
		{"JOURNAL", &c.Journal},
	}
	for _, f := range bools {
		if v, ok := get(f.name); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid %s%s: %w", EnvPrefix, f.name, err)
			}
			*f.dst = b
		}
	}

	return nil
}

// CatalogPath is where posts.json lives
func (c *Config) CatalogPath() string {
	return filepath.Join(c.OutputDir, c.CatalogFile)
}

// Now returns the current time in the configured zone
func (c *Config) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", name, err)
	}
	return loc, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
