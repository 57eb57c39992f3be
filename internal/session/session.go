// Package session owns the per-run state: the read cache and the view-model
// store are created when a session opens and discarded when it closes.
package session

import (
	"errors"
	"log/slog"

	"github.com/mmcdole/roster/internal/cache"
	"github.com/mmcdole/roster/internal/config"
	"github.com/mmcdole/roster/internal/domain"
	"github.com/mmcdole/roster/internal/record"
	"github.com/mmcdole/roster/internal/viewmodel"
)

// Recorder receives cache lookups and snapshot sizes (e.g. metrics.Collector)
type Recorder interface {
	ObserveCache(result string)
	SetRecords(n int)
}

// Options holds everything a session is built from
type Options struct {
	Config   *config.Config
	Client   domain.CollectionClient
	Prompter domain.Prompter
	Reporter domain.Reporter
	Recorder Recorder
	Logger   *slog.Logger
}

// Session bundles the services the UI talks to
type Session struct {
	Records *record.Service
	Store   *viewmodel.Store
	Cache   *cache.ReadThrough

	unsubscribe func()
	logger      *slog.Logger
}

// Open starts a session: empty snapshot, empty (or persisted) cache
func Open(opts Options) (*Session, error) {
	if opts.Config == nil || opts.Client == nil {
		return nil, errors.New("session requires config and client")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	cfg := opts.Config

	store, err := cache.ParseStore(cfg.Cache.Store)
	if err != nil {
		return nil, err
	}

	cacheOpts := cache.Options{
		Store:  store,
		Dir:    cfg.Cache.Dir,
		Scope:  cfg.Server.SiteURL,
		TTL:    cfg.Cache.TTL,
		Logger: opts.Logger,
	}
	if opts.Recorder != nil {
		cacheOpts.Recorder = opts.Recorder
	}
	reads, err := cache.New(opts.Client, cacheOpts)
	if err != nil {
		return nil, err
	}

	snapshot := viewmodel.NewStore()
	s := &Session{
		Store:       snapshot,
		Cache:       reads,
		unsubscribe: func() {},
		logger:      opts.Logger,
	}
	if opts.Recorder != nil {
		rec := opts.Recorder
		s.unsubscribe = snapshot.Subscribe(domain.ObserverFunc(func(records []domain.Record) {
			rec.SetRecords(len(records))
		}))
	}

	svc, err := record.NewService(record.Config{
		Collection:        cfg.Server.Collection,
		Reader:            reads,
		Writer:            opts.Client,
		Store:             snapshot,
		Prompter:          opts.Prompter,
		Reporter:          opts.Reporter,
		Logger:            opts.Logger,
		Invalidator:       reads,
		InvalidateOnWrite: cfg.Cache.InvalidateOnWrite,
	})
	if err != nil {
		reads.Close()
		return nil, err
	}
	s.Records = svc

	opts.Logger.Info("session opened",
		"collection", svc.Collection(),
		"cache", string(store),
		"invalidateOnWrite", cfg.Cache.InvalidateOnWrite,
	)
	return s, nil
}

// Close ends the session, discarding the snapshot and session cache entries
func (s *Session) Close() error {
	s.unsubscribe()
	s.Store.Reset()
	err := s.Cache.Close()
	s.logger.Info("session closed")
	return err
}

// Logout clears saved server credentials and the persisted cache
func Logout(cfgManager *config.Manager, cacheDir string) error {
	// Clear server configuration
	if err := cfgManager.ClearServerConfig(); err != nil {
		return err
	}

	// Clear cache
	if err := config.ClearCache(cacheDir); err != nil {
		return err
	}

	return nil
}
