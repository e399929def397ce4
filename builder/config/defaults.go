package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Kush-Singh-26/dailypost/builder/feeds"
	"github.com/Kush-Singh-26/dailypost/builder/utils"
)

// DefaultConfigFile is read from the working directory unless -config is given
const DefaultConfigFile = "dailypost.yaml"

// DefaultFeeds are queried in this order
var DefaultFeeds = []string{
	"https://www.theverge.com/rss/index.xml",
	"https://www.wired.com/feed/rss",
	"https://hnrss.org/frontpage",
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		OutputDir:     "posts",
		CatalogFile:   "posts.json",
		Feeds:         append([]string(nil), DefaultFeeds...),
		FeedTimeout:   20 * time.Second,
		UserAgent:     "dailypost/1.0",
		SummaryMaxLen: feeds.DefaultSummaryMaxLen,
		SlugMaxLen:    utils.SlugMaxLen,
		Compress:      false,
		CacheDir:      ".dailypost-cache",
		Journal:       true,
	}
}

// loadFile merges the yaml file at path over c.
// A missing file is only an error when required is set.
func (c *Config) loadFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	c.ConfigPath = path
	return nil
}

// validate ensures configuration values are within reasonable bounds
func (c *Config) validate() {
	// Timeouts
	if c.FeedTimeout < 1*time.Second {
		c.FeedTimeout = 1 * time.Second
	}
	if c.FeedTimeout > 2*time.Minute {
		c.FeedTimeout = 2 * time.Minute
	}

	// Lengths
	// Both may be lowered, never raised past the fixed caps
	if c.SummaryMaxLen < 1 || c.SummaryMaxLen > feeds.DefaultSummaryMaxLen {
		c.SummaryMaxLen = feeds.DefaultSummaryMaxLen
	}
	if c.SlugMaxLen < 8 {
		c.SlugMaxLen = 8
	}
	if c.SlugMaxLen > utils.SlugMaxLen {
		c.SlugMaxLen = utils.SlugMaxLen
	}

	// Paths
	if c.OutputDir == "" {
		c.OutputDir = "posts"
	}
	if c.CatalogFile == "" {
		c.CatalogFile = "posts.json"
	}
	if c.CacheDir == "" {
		c.CacheDir = ".dailypost-cache"
	}
}
