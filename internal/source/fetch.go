package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/dori/ectrack/internal/cache"
	"github.com/dori/ectrack/internal/model"
)

// DefaultTimeout bounds a single fetch of the source
const DefaultTimeout = 15 * time.Second

// MaxSourceSize bounds the body read from a source
const MaxSourceSize = 16 << 20

// Common errors
var (
	ErrStatus   = errors.New("unexpected response status")
	ErrTooLarge = errors.New("source exceeds size limit")
)

// Fetcher retrieves source documents, network first, falling back to the
// offline cache when the source cannot be reached.
type Fetcher struct {
	Client  *http.Client
	Cache   cache.Cache
	Logger  *log.Logger
	MaxSize int64
}

// NewFetcher creates a fetcher backed by the given cache (which may be nil)
func NewFetcher(c cache.Cache, timeout time.Duration, logger *log.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Fetcher{
		Client:  &http.Client{Timeout: timeout},
		Cache:   c,
		Logger:  logger,
		MaxSize: MaxSourceSize,
	}
}

// IsRemote returns true if the location is fetched over HTTP
func IsRemote(location string) bool {
	lower := strings.ToLower(location)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// LocalPath returns the filesystem path for a local location
func LocalPath(location string) string {
	if strings.HasPrefix(location, "file://") {
		if u, err := url.Parse(location); err == nil {
			return u.Path
		}
	}
	return location
}

// Fetch returns the raw text of the source at location.
// Local reads and 200 responses are stored in the cache; failures are
// answered from the cache when a copy exists, otherwise the fetch error is
// returned.
func (f *Fetcher) Fetch(ctx context.Context, location string) (string, error) {
	body, cacheable, err := f.fetch(ctx, location)
	if err == nil {
		if f.Cache != nil && cacheable {
			if perr := f.Cache.Put(ctx, location, body); perr != nil {
				f.Logger.Printf("cache put %s: %v", location, perr)
			}
		}
		return string(body), nil
	}

	if f.Cache != nil {
		cached, cerr := f.Cache.Match(ctx, location)
		if cerr == nil {
			f.Logger.Printf("fetch %s failed (%v), serving cached copy", location, err)
			return string(cached), nil
		}
		if !errors.Is(cerr, cache.ErrNotFound) {
			f.Logger.Printf("cache match %s: %v", location, cerr)
		}
	}

	return "", err
}

// fetch returns the body and whether it may be written to the cache
func (f *Fetcher) fetch(ctx context.Context, location string) ([]byte, bool, error) {
	if location == "" {
		return nil, false, fmt.Errorf("no source configured")
	}

	if !IsRemote(location) {
		file, err := os.Open(LocalPath(location))
		if err != nil {
			return nil, false, fmt.Errorf("failed to fetch %s: %w", location, err)
		}
		defer file.Close()

		data, err := f.readLimited(file, location)
		if err != nil {
			return nil, false, err
		}
		return data, true, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to build request for %s: %w", location, err)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("failed to fetch %s: %w", location, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, false, fmt.Errorf("failed to fetch %s: %w: %s", location, ErrStatus, resp.Status)
	}

	data, err := f.readLimited(resp.Body, location)
	if err != nil {
		return nil, false, err
	}
	return data, resp.StatusCode == http.StatusOK, nil
}

func (f *Fetcher) readLimited(r io.Reader, location string) ([]byte, error) {
	limit := f.MaxSize
	if limit <= 0 {
		limit = MaxSourceSize
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", location, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("failed to read %s: %w", location, ErrTooLarge)
	}
	return data, nil
}

// Load fetches and parses the source into the default checklist
func (f *Fetcher) Load(ctx context.Context, location string) ([]model.Item, error) {
	text, err := f.Fetch(ctx, location)
	if err != nil {
		return nil, err
	}
	return ItemsFromRows(Parse(text)), nil
}
