package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/dori/ectrack/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = "Tracker\nid,task,tree\n1,EC1x1 First,oak\n2,EC1x2 Second,\n"

func TestFetchLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0644))

	f := NewFetcher(cache.NewMemory(), 0, nil)
	items, err := f.Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "row-2", items[0].ID)
	assert.Equal(t, "oak", items[0].Tree)

	items, err = f.Load(context.Background(), "file://"+path)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestFetchRemoteCachesAndFallsBack(t *testing.T) {
	up := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !up {
			http.Error(w, "gone", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	c := cache.NewMemory()
	f := NewFetcher(c, 0, nil)
	ctx := context.Background()

	text, err := f.Fetch(ctx, srv.URL)
	require.NoError(t, err)
	assert.Equal(t, sampleCSV, text)

	cached, err := c.Match(ctx, srv.URL)
	require.NoError(t, err)
	assert.Equal(t, sampleCSV, string(cached))

	up = false
	text, err = f.Fetch(ctx, srv.URL)
	require.NoError(t, err, "offline fetch should be served from cache")
	assert.Equal(t, sampleCSV, text)
}

func TestFetchRemoteErrorWithoutCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := NewFetcher(cache.NewMemory(), 0, nil)
	_, err := f.Fetch(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrStatus)

	f = NewFetcher(nil, 0, nil)
	_, err = f.Load(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrStatus)
}

func TestFetchCachesOnlyStatusOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNonAuthoritativeInfo)
		w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	c := cache.NewMemory()
	f := NewFetcher(c, 0, nil)
	ctx := context.Background()

	text, err := f.Fetch(ctx, srv.URL)
	require.NoError(t, err)
	assert.Equal(t, sampleCSV, text)

	_, err = c.Match(ctx, srv.URL)
	assert.ErrorIs(t, err, cache.ErrNotFound)
}

func TestFetchRejectsOversizedSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0644))

	c := cache.NewMemory()
	f := NewFetcher(c, 0, nil)
	f.MaxSize = 8
	ctx := context.Background()

	_, err := f.Fetch(ctx, srv.URL)
	assert.ErrorIs(t, err, ErrTooLarge)
	_, err = f.Fetch(ctx, path)
	assert.ErrorIs(t, err, ErrTooLarge)

	keys, err := c.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)

	f.MaxSize = int64(len(sampleCSV))
	text, err := f.Fetch(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, sampleCSV, text)
}

func TestFetchMissingFile(t *testing.T) {
	f := NewFetcher(cache.NewMemory(), 0, nil)
	_, err := f.Fetch(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = f.Fetch(context.Background(), "")
	assert.Error(t, err)
}

func TestIsRemote(t *testing.T) {
	assert.True(t, IsRemote("https://docs.example.com/export?format=csv"))
	assert.True(t, IsRemote("HTTP://example.com/a.csv"))
	assert.False(t, IsRemote("data.csv"))
	assert.False(t, IsRemote("file:///tmp/data.csv"))
	assert.Equal(t, "/tmp/data.csv", LocalPath("file:///tmp/data.csv"))
}
