package driverium_test

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d3kxrma/driverium"
)

// driverZip builds an archive with the given entries, mirroring the
// Chrome-for-Testing layout (binary nested under chromedriver-<platform>/).
func driverZip(t *testing.T, entries map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range entries {
		f, err := zw.Create(name)
		require.NoError(t, err)
		_, err = f.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// archiveServer serves body for every request and counts hits.
func archiveServer(t *testing.T, body []byte, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func readCacheEntry(t *testing.T, dir string) (version, path string) {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join(dir, "chromedriver-linux64", "data.json"))
	require.NoError(t, err)
	var entry struct {
		Version string `json:"version"`
		Path    string `json:"path"`
	}
	require.NoError(t, json.Unmarshal(raw, &entry))
	return entry.Version, entry.Path
}

func TestDownload_InstallsExecutable(t *testing.T) {
	binary := []byte("#!/bin/sh\necho chromedriver\n")
	archive := driverZip(t, map[string][]byte{
		"chromedriver-linux64/chromedriver": binary,
		"chromedriver-linux64/LICENSE":      []byte("license text"),
	})
	srv := archiveServer(t, archive, nil)

	dir := t.TempDir()
	d := newTestDriver(t,
		driverium.WithBrowserVersion("120.0.6099.109"),
		driverium.WithCacheDir(dir),
	)

	path, err := d.Download(context.Background(), srv.URL+"/chromedriver-linux64.zip")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "chromedriver-linux64", "chromedriver"), path)
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, binary, content)

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.NotZero(t, info.Mode()&0o111, "driver must be executable")
	}

	version, recorded := readCacheEntry(t, dir)
	assert.Equal(t, "120.0.6099.109", version)
	assert.Equal(t, path, recorded)
}

func TestGet_DownloadsOnceThenHitsCache(t *testing.T) {
	binary := []byte("driver binary")
	archive := driverZip(t, map[string][]byte{
		"chromedriver-linux64/chromedriver": binary,
	})

	var archiveHits, manifestHits atomic.Int32
	asrv := archiveServer(t, archive, &archiveHits)
	msrv := manifestServer(t, []release{{
		version:   "120.0.6099.109",
		platforms: map[string]string{"linux64": asrv.URL + "/chromedriver-linux64.zip"},
	}}, &manifestHits)

	dir := t.TempDir()
	d := newTestDriver(t,
		driverium.WithBrowserVersion("120.0.6099.109"),
		driverium.WithCacheDir(dir),
		driverium.WithManifestURL(msrv.URL),
	)

	first, err := d.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), manifestHits.Load(), "exactly one resolve")
	assert.Equal(t, int32(1), archiveHits.Load(), "exactly one download")

	second, err := d.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), manifestHits.Load(), "cache hit must not touch the network")
	assert.Equal(t, int32(1), archiveHits.Load(), "cache hit must not touch the network")
}

func TestGet_StaleVersionReplaced(t *testing.T) {
	oldBinary := []byte("old driver")
	newBinary := []byte("new driver")
	oldArchive := driverZip(t, map[string][]byte{"chromedriver-linux64/chromedriver": oldBinary})
	newArchive := driverZip(t, map[string][]byte{"chromedriver-linux64/chromedriver": newBinary})

	asrvOld := archiveServer(t, oldArchive, nil)
	asrvNew := archiveServer(t, newArchive, nil)
	msrv := manifestServer(t, []release{
		{version: "120.0.6099.109", platforms: map[string]string{"linux64": asrvOld.URL + "/old.zip"}},
		{version: "121.0.6167.85", platforms: map[string]string{"linux64": asrvNew.URL + "/new.zip"}},
	}, nil)

	dir := t.TempDir()

	d1 := newTestDriver(t,
		driverium.WithBrowserVersion("120.0.6099.109"),
		driverium.WithCacheDir(dir),
		driverium.WithManifestURL(msrv.URL),
	)
	_, err := d1.Get(context.Background())
	require.NoError(t, err)

	// The browser was upgraded: the cached 120 driver is stale.
	d2 := newTestDriver(t,
		driverium.WithBrowserVersion("121.0.6167.85"),
		driverium.WithCacheDir(dir),
		driverium.WithManifestURL(msrv.URL),
	)
	path, err := d2.Get(context.Background())
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, newBinary, content)

	version, _ := readCacheEntry(t, dir)
	assert.Equal(t, "121.0.6167.85", version)
}

func TestDownload_NotFoundLeavesNoCacheEntry(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	d := newTestDriver(t,
		driverium.WithBrowserVersion("120.0.6099.109"),
		driverium.WithCacheDir(dir),
	)

	_, err := d.Download(context.Background(), srv.URL+"/gone.zip")
	assert.ErrorIs(t, err, driverium.ErrNetwork)

	_, statErr := os.Stat(filepath.Join(dir, "chromedriver-linux64"))
	assert.True(t, os.IsNotExist(statErr), "failed download must not create cache entries")
}

func TestDownload_MissingExecutableEntry(t *testing.T) {
	archive := driverZip(t, map[string][]byte{
		"chromedriver-linux64/LICENSE": []byte("license only"),
	})
	srv := archiveServer(t, archive, nil)

	dir := t.TempDir()
	d := newTestDriver(t,
		driverium.WithBrowserVersion("120.0.6099.109"),
		driverium.WithCacheDir(dir),
	)

	_, err := d.Download(context.Background(), srv.URL+"/broken.zip")
	assert.ErrorIs(t, err, driverium.ErrExtraction)

	_, statErr := os.Stat(filepath.Join(dir, "chromedriver-linux64", "chromedriver"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestDownload_CorruptArchive(t *testing.T) {
	srv := archiveServer(t, []byte("this is not a zip file"), nil)

	d := newTestDriver(t, driverium.WithBrowserVersion("120.0.6099.109"))
	_, err := d.Download(context.Background(), srv.URL+"/corrupt.zip")
	assert.ErrorIs(t, err, driverium.ErrExtraction)
}

func TestGet_ProgressObserved(t *testing.T) {
	binary := testPayload(64 * 1024)
	archive := driverZip(t, map[string][]byte{"chromedriver-linux64/chromedriver": binary})
	asrv := archiveServer(t, archive, nil)
	msrv := manifestServer(t, []release{{
		version:   "120.0.6099.109",
		platforms: map[string]string{"linux64": asrv.URL + "/chromedriver-linux64.zip"},
	}}, nil)

	var calls int
	var final int64
	d := newTestDriver(t,
		driverium.WithBrowserVersion("120.0.6099.109"),
		driverium.WithManifestURL(msrv.URL),
		driverium.WithProgress(func(received, total int64) {
			calls++
			final = received
		}),
	)

	_, err := d.Get(context.Background())
	require.NoError(t, err)
	assert.Greater(t, calls, 0)
	assert.Positive(t, final)
}
