// api.go
package api

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/tesh254/chatmd/internal/conversation"
	"github.com/tesh254/chatmd/internal/export"
	"github.com/tesh254/chatmd/internal/logger"
	"github.com/tesh254/chatmd/internal/scraper"
	"github.com/tesh254/chatmd/internal/storage"
)

// ErrNoArchive is returned by archive operations when no storage is attached.
var ErrNoArchive = errors.New("archive not configured")

// API ties loading, extraction, rendering and the archive together.
type API struct {
	storage   *storage.Storage
	extractor *conversation.Extractor
	loader    *scraper.Config
	export    export.Options
	cache     *cache.Cache
	log       *logger.Logger
}

// Option configures an API.
type Option func(*API)

func WithLoaderConfig(cfg *scraper.Config) Option {
	return func(a *API) {
		if cfg != nil {
			a.loader = cfg
		}
	}
}

func WithExportOptions(opts export.Options) Option {
	return func(a *API) {
		a.export = opts
	}
}

// WithCacheTTL sets how long converted pages are remembered.
func WithCacheTTL(ttl time.Duration) Option {
	return func(a *API) {
		a.cache = cache.New(ttl, 2*ttl)
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(a *API) {
		if l != nil {
			a.log = l
		}
	}
}

// NewAPI creates a new API instance. storage may be nil when nothing is
// archived.
func NewAPI(storage *storage.Storage, extractor *conversation.Extractor, opts ...Option) *API {
	a := &API{
		storage:   storage,
		extractor: extractor,
		loader:    scraper.DefaultConfig(),
		export:    export.DefaultOptions(),
		cache:     cache.New(10*time.Minute, 20*time.Minute),
		log:       logger.Discard(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ExportOptions returns the document layout used by Render and Archive.
func (a *API) ExportOptions() export.Options {
	return a.export
}

// Load reads a source and its metadata.
func (a *API) Load(ctx context.Context, source string) (*scraper.Scraper, error) {
	s := scraper.New(source, a.loader)
	if err := s.GetContent(ctx); err != nil {
		return nil, err
	}
	if err := s.GetMetadata(); err != nil {
		return nil, err
	}
	return s, nil
}

// Convert extracts the conversation from a loaded page. Results are cached by
// page checksum and options.
func (a *API) Convert(ctx context.Context, s *scraper.Scraper, opts conversation.Options) (*conversation.Conversation, error) {
	key := cacheKey(s.Raw, opts)
	if cached, ok := a.cached(key); ok {
		cached.Source = opts.Source
		return cached, nil
	}

	doc, err := s.Document()
	if err != nil {
		return nil, err
	}
	conv, err := a.extractor.Extract(ctx, doc, opts)
	if err != nil {
		return nil, err
	}
	if conv.Title == "" {
		conv.Title = s.Metadata.Title
	}

	if data, err := json.Marshal(conv); err == nil {
		a.cache.Set(key, data, cache.DefaultExpiration)
	}
	return conv, nil
}

// ConvertSource loads source and extracts its conversation.
func (a *API) ConvertSource(ctx context.Context, source string, opts conversation.Options) (*conversation.Conversation, *scraper.Scraper, error) {
	s, err := a.Load(ctx, source)
	if err != nil {
		return nil, nil, err
	}
	if opts.Source == "" {
		opts.Source = source
	}
	conv, err := a.Convert(ctx, s, opts)
	if err != nil {
		return nil, s, err
	}
	return conv, s, nil
}

// ConvertHTML extracts the conversation from an HTML string.
func (a *API) ConvertHTML(ctx context.Context, html string, opts conversation.Options) (*conversation.Conversation, error) {
	s, err := scraper.FromBytes(opts.Source, []byte(html))
	if err != nil {
		return nil, err
	}
	if err := s.GetMetadata(); err != nil {
		return nil, err
	}
	return a.Convert(ctx, s, opts)
}

func (a *API) cached(key string) (*conversation.Conversation, bool) {
	val, found := a.cache.Get(key)
	if !found {
		return nil, false
	}
	data, ok := val.([]byte)
	if !ok {
		return nil, false
	}
	var conv conversation.Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, false
	}
	return &conv, true
}

func cacheKey(raw []byte, opts conversation.Options) string {
	h := sha256.New()
	h.Write(raw)
	fmt.Fprintf(h, "\x00%s\x00%s", opts.Platform, opts.Title)
	return "conversation:" + hex.EncodeToString(h.Sum(nil))
}

// Render formats a conversation as md or json.
func (a *API) Render(c *conversation.Conversation, format string) ([]byte, error) {
	return export.Render(c, format, a.export)
}

// Archive stores the Markdown rendering of c.
func (a *API) Archive(c *conversation.Conversation) (*storage.Export, error) {
	if a.storage == nil {
		return nil, ErrNoArchive
	}
	stored, err := a.storage.UpsertExport(&storage.Export{
		Source:   c.Source,
		Platform: c.Platform,
		Title:    c.Title,
		Markdown: export.Markdown(c, a.export),
		Messages: len(c.Messages),
	})
	if err != nil {
		return nil, err
	}
	a.log.ExportStored(stored.ID, stored.Source, stored.Messages)
	return stored, nil
}

// GetExport retrieves an archived export.
func (a *API) GetExport(id string) (*storage.Export, error) {
	if a.storage == nil {
		return nil, ErrNoArchive
	}
	return a.storage.GetExport(id)
}

// ListExports lists archived exports, newest first.
func (a *API) ListExports(limit, offset int) ([]*storage.Export, int, error) {
	if a.storage == nil {
		return nil, 0, ErrNoArchive
	}
	return a.storage.ListExports(limit, offset)
}

// SearchExports finds archived exports containing query.
func (a *API) SearchExports(query string, limit int) ([]*storage.Export, error) {
	if a.storage == nil {
		return nil, ErrNoArchive
	}
	return a.storage.SearchExports(query, limit)
}

// DeleteExport deletes by id, or by source prefix when no id matches. It
// returns the number of exports removed.
func (a *API) DeleteExport(idOrPrefix string) (int64, error) {
	if a.storage == nil {
		return 0, ErrNoArchive
	}
	err := a.storage.DeleteExport(idOrPrefix)
	if err == nil {
		return 1, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return 0, err
	}

	n, err := a.storage.DeleteExportsBySource(idOrPrefix)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, storage.ErrNotFound
	}
	return n, nil
}

// Clean removes every archived export and forgets cached conversions.
func (a *API) Clean() error {
	a.cache.Flush()
	if a.storage == nil {
		return ErrNoArchive
	}
	return a.storage.Clean()
}
