package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTable(t *testing.T, fileName, body string) {
	t.Helper()
	require.Nil(t, os.WriteFile(fileName, []byte(body), 0o644))
}

func TestLoadCaches(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "merged.csv")
	writeTable(t, fileName, "county_fips,value\n06001,1200000\n")

	s := New(fileName, nil)

	t1, e := s.Load()
	require.Nil(t, e)
	assert.Equal(t, 1, t1.RowCount())

	t2, e := s.Load()
	require.Nil(t, e)
	assert.Same(t, t1, t2)
}

func TestLoadSeesRewrite(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "merged.csv")
	writeTable(t, fileName, "county_fips,value\n06001,1200000\n")

	s := New(fileName, nil)
	t1, e := s.Load()
	require.Nil(t, e)

	writeTable(t, fileName, "county_fips,value\n06001,1200000\n36061,1500000\n")

	t2, e := s.Load()
	require.Nil(t, e)
	assert.NotSame(t, t1, t2)
	assert.Equal(t, 2, t2.RowCount())
}

func TestLoadTouchedButIdentical(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "merged.csv")
	body := "county_fips,value\n06001,1200000\n"
	writeTable(t, fileName, body)

	s := New(fileName, nil)
	t1, e := s.Load()
	require.Nil(t, e)

	// bump mtime without changing content
	future := time.Now().Add(2 * time.Second)
	require.Nil(t, os.Chtimes(fileName, future, future))

	t2, e := s.Load()
	require.Nil(t, e)
	assert.Same(t, t1, t2)
}

func TestInvalidate(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "merged.csv")
	writeTable(t, fileName, "county_fips,value\n06001,1200000\n")

	s := New(fileName, nil)
	t1, e := s.Load()
	require.Nil(t, e)

	s.Invalidate()

	t2, e := s.Load()
	require.Nil(t, e)
	assert.NotSame(t, t1, t2)
}

func TestLoadMissingFile(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "nope.csv"), nil)
	_, e := s.Load()
	assert.NotNil(t, e)
}

func TestWatchInvalidates(t *testing.T) {
	dir := t.TempDir()
	fileName := filepath.Join(dir, "merged.csv")
	writeTable(t, fileName, "county_fips,value\n06001,1200000\n")

	s := New(fileName, nil)
	t1, e := s.Load()
	require.Nil(t, e)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.Nil(t, s.Watch(ctx))

	writeTable(t, fileName, "county_fips,value\n06001,1200000\n36061,1500000\n")

	// the watcher delivers asynchronously
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		t2, ex := s.Load()
		require.Nil(t, ex)

		if t2 != t1 && t2.RowCount() == 2 {
			return
		}

		time.Sleep(20 * time.Millisecond)
	}

	t.Fatal("cache was not invalidated by the watcher")
}

func TestWatchBadDir(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "sub", "nope.csv"), nil)
	e := s.Watch(context.Background())
	assert.NotNil(t, e)
}
