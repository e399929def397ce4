package run

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/afero"

	"github.com/Kush-Singh-26/dailypost/builder/cache"
	"github.com/Kush-Singh-26/dailypost/builder/catalog"
	"github.com/Kush-Singh-26/dailypost/builder/config"
	"github.com/Kush-Singh-26/dailypost/builder/feeds"
	"github.com/Kush-Singh-26/dailypost/builder/renderer"
)

// Journal is the part of the run journal the builder needs
type Journal interface {
	Begin(rec cache.RunRecord, html []byte) (uint64, error)
	Commit(id uint64) error
	Abort(id uint64) error
	Pending() ([]cache.RunRecord, error)
	Get(id uint64) (*cache.RunRecord, error)
	Runs() ([]cache.RunRecord, error)
	Snapshot(hash string) ([]byte, error)
	Prune() (int, error)
}

// Options overrides the collaborators NewBuilder would otherwise create from the config
type Options struct {
	Fs      afero.Fs
	Sources []feeds.Source
	Journal Journal
	Clock   func() time.Time
	Logger  *slog.Logger
	Out     io.Writer // progress lines
}

// Builder generates one post per run
type Builder struct {
	cfg      *config.Config
	fs       afero.Fs
	sources  []feeds.Source
	selector *feeds.Selector
	rnd      *renderer.Renderer
	catalog  *catalog.Store
	journal  Journal // nil when disabled
	closer   io.Closer
	now      func() time.Time
	logger   *slog.Logger
	out      io.Writer
}

// NewBuilder wires the pipeline. Without Options.Sources, one gofeed source is
// created per configured feed; without Options.Journal, the journal under
// cfg.CacheDir is opened when cfg.Journal is set.
func NewBuilder(cfg *config.Config, opts Options) (*Builder, error) {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Clock == nil {
		opts.Clock = cfg.Now
	}

	sources := opts.Sources
	if sources == nil {
		var err error
		sources, err = feeds.NewSources(feeds.NewParser(cfg.UserAgent), cfg.Feeds)
		if err != nil {
			return nil, err
		}
	}

	rnd, err := renderer.New(cfg.Compress)
	if err != nil {
		return nil, err
	}

	b := &Builder{
		cfg:      cfg,
		fs:       opts.Fs,
		sources:  sources,
		selector: feeds.NewSelector(opts.Logger, cfg.FeedTimeout, cfg.SummaryMaxLen),
		rnd:      rnd,
		catalog:  catalog.NewStore(opts.Fs, cfg.CatalogPath()),
		now:      opts.Clock,
		logger:   opts.Logger,
		out:      opts.Out,
	}

	switch {
	case opts.Journal != nil:
		b.journal = opts.Journal
	case cfg.Journal:
		j, err := cache.Open(cfg.CacheDir)
		if err != nil {
			return nil, fmt.Errorf("failed to open run journal: %w", err)
		}
		b.journal = j
		b.closer = j
	}

	return b, nil
}

// Close releases the journal if the builder opened it
func (b *Builder) Close() error {
	if b.closer != nil {
		return b.closer.Close()
	}
	return nil
}

// Config returns the builder's configuration
func (b *Builder) Config() *config.Config {
	return b.cfg
}

// Catalog returns the store for posts.json
func (b *Builder) Catalog() *catalog.Store {
	return b.catalog
}
