package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/dori/ectrack/internal/cache"
	"github.com/dori/ectrack/internal/config"
	"github.com/dori/ectrack/internal/db"
	"github.com/dori/ectrack/internal/model"
	"github.com/dori/ectrack/internal/notify"
	"github.com/dori/ectrack/internal/source"
	"github.com/dori/ectrack/internal/store"
	"github.com/gofrs/flock"
)

// App holds the application state and dependencies
type App struct {
	Config   *config.Config
	DB       *db.DB
	Cache    cache.Cache
	Fetcher  *source.Fetcher
	Store    *store.Store
	Notifier *notify.Notifier
	Logger   *log.Logger

	lockFile *flock.Flock
	logFile  *os.File
	unsub    []func()
}

// New creates a new application instance
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	// Ensure data directory exists
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	app := &App{
		Config:   cfg,
		Notifier: notify.NewNotifier(cfg.Notify),
	}

	if err := app.openLog(); err != nil {
		return nil, err
	}

	// Acquire lock to ensure single instance
	if err := app.acquireLock(); err != nil {
		app.closeLog()
		return nil, err
	}

	database, err := db.Open(cfg.DBPath())
	if err != nil {
		app.releaseLock()
		app.closeLog()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	app.DB = database

	c, err := cache.OpenBadger(cfg.CacheDir(), cfg.CacheName)
	if err != nil {
		database.Close()
		app.releaseLock()
		app.closeLog()
		return nil, err
	}
	app.Cache = c

	app.Fetcher = source.NewFetcher(c, cfg.FetchTimeout(), app.Logger)
	app.Store = store.New(database)
	app.unsub = append(app.unsub,
		app.Store.Subscribe(app.logEvent),
		app.Store.Subscribe(app.announceCompletions),
	)

	app.Logger.Printf("started: source=%s data_dir=%s cache=%s", cfg.Source, cfg.DataDir, cfg.CacheName)
	return app, nil
}

func (a *App) openLog() error {
	if !a.Config.Debug {
		a.Logger = log.New(io.Discard, "", 0)
		return nil
	}
	f, err := os.OpenFile(a.Config.LogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	a.logFile = f
	a.Logger = log.New(f, "ectrack: ", log.LstdFlags|log.Lmicroseconds)
	return nil
}

func (a *App) closeLog() {
	if a.logFile != nil {
		a.logFile.Close()
		a.logFile = nil
	}
}

// acquireLock acquires an exclusive file lock to prevent multiple instances
func (a *App) acquireLock() error {
	a.lockFile = flock.New(a.Config.LockPath())

	locked, err := a.lockFile.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}

	if !locked {
		return fmt.Errorf("another instance of ectrack is already running")
	}

	return nil
}

// releaseLock releases the file lock
func (a *App) releaseLock() {
	if a.lockFile != nil {
		a.lockFile.Unlock()
	}
}

// Load fetches the source and initializes the store from persisted state
func (a *App) Load(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, a.Config.FetchTimeout())
	defer cancel()

	defaults, err := a.Fetcher.Load(ctx, a.Config.Source)
	if err != nil {
		a.Logger.Printf("load failed: %v", err)
		return err
	}
	if err := a.Store.Load(defaults); err != nil {
		a.Logger.Printf("state load failed: %v", err)
		return err
	}
	return nil
}

// WatchSource returns a watcher for a local source, or nil when the source
// is remote or watching is disabled.
func (a *App) WatchSource(ctx context.Context) (*source.Watcher, error) {
	if !a.Config.WatchSource || source.IsRemote(a.Config.Source) {
		return nil, nil
	}
	return source.NewWatcher(ctx, source.LocalPath(a.Config.Source), source.DefaultDebounce)
}

// ClearState deletes the persisted checklist, settings and hint flag so the
// next load starts from the source
func (a *App) ClearState() error {
	if err := a.DB.DeleteValues(store.KeyItems, store.KeySettings, store.KeyHintDismissed); err != nil {
		return fmt.Errorf("failed to clear stored state: %w", err)
	}
	a.Logger.Printf("persisted state cleared")
	return nil
}

// Status summarizes where the tracker reads and keeps its data
type Status struct {
	Source      string
	DataDir     string
	CacheName   string
	CachedKeys  []string
	StoredKeys  []string
	SourceItems int
	Items       int
	Modified    bool
}

// Status reports the cache and stored keys along with the loaded list sizes
func (a *App) Status(ctx context.Context) (Status, error) {
	cached, err := a.Cache.Keys(ctx)
	if err != nil {
		return Status{}, fmt.Errorf("failed to list cache: %w", err)
	}
	stored, err := a.DB.Keys()
	if err != nil {
		return Status{}, fmt.Errorf("failed to list stored keys: %w", err)
	}
	return Status{
		Source:      a.Config.Source,
		DataDir:     a.Config.DataDir,
		CacheName:   a.Cache.Name(),
		CachedKeys:  cached,
		StoredKeys:  stored,
		SourceItems: len(a.Store.Defaults()),
		Items:       a.Store.Len(),
		Modified:    a.Store.IsModified(),
	}, nil
}

func (a *App) logEvent(ev store.Event) {
	a.Logger.Printf("store %s ids=%v done=%t", ev.Kind, ev.IDs, ev.Done)
}

// announceCompletions notifies when a toggle completes an EC group or the list
func (a *App) announceCompletions(ev store.Event) {
	if ev.Kind != store.EventToggled || !ev.Done || !a.Notifier.IsEnabled() {
		return
	}

	items := a.Store.Items()
	for _, group := range CompletedGroups(items, ev.IDs) {
		if err := a.Notifier.SendGroupComplete(group.Group, group.Total); err != nil {
			a.Logger.Printf("notify: %v", err)
		}
	}

	done, total := a.Store.Progress()
	if total > 0 && done == total {
		if err := a.Notifier.SendAllComplete(total); err != nil {
			a.Logger.Printf("notify: %v", err)
		}
	}
}

// CompletedGroups returns the groups touched by ids that are now fully done
func CompletedGroups(items []model.Item, ids []string) []model.GroupProgress {
	touched := make(map[string]bool, len(ids))
	for _, id := range ids {
		touched[id] = true
	}

	groups := make(map[int]bool)
	for _, it := range items {
		if !touched[it.ID] {
			continue
		}
		if tag, ok := it.Tag(); ok {
			groups[tag.Group] = true
		}
	}

	var out []model.GroupProgress
	for _, gp := range model.Groups(items) {
		if groups[gp.Group] && gp.Done == gp.Total {
			out = append(out, gp)
		}
	}
	return out
}

// Close cleans up application resources
func (a *App) Close() error {
	var errs []error

	for _, fn := range a.unsub {
		fn()
	}

	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close cache: %w", err))
		}
	}

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	a.releaseLock()
	a.closeLog()

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
