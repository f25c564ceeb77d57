package driverium

import (
	"archive/zip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"go.uber.org/zap"
)

// cacheEntry is the sidecar record written next to an installed driver,
// keying the binary to the browser version it was resolved for.
type cacheEntry struct {
	Version string `json:"version"`
	Path    string `json:"path"`
}

const cacheEntryFile = "data.json"

// driverDir returns the per-platform cache directory.
func (d *Driver) driverDir() string {
	return filepath.Join(d.cfg.cacheDir, "chromedriver-"+string(d.cfg.platform))
}

// cachedPath returns the installed driver path for version v, if present.
// A sidecar recorded for a different browser version is stale: the binary
// and sidecar are removed so the next install starts clean.
func (d *Driver) cachedPath(v Version) (string, bool) {
	dir := d.driverDir()
	raw, err := os.ReadFile(filepath.Join(dir, cacheEntryFile))
	if err != nil {
		return "", false
	}
	var entry cacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return "", false
	}
	if entry.Version != v.String() {
		os.Remove(filepath.Join(dir, cacheEntryFile))
		os.Remove(entry.Path)
		return "", false
	}
	if _, err := os.Stat(entry.Path); err != nil {
		return "", false
	}
	return entry.Path, true
}

// install downloads the archive at url and extracts the driver executable
// into the cache directory, recording the version sidecar.
func (d *Driver) install(ctx context.Context, url string, v Version) (string, error) {
	var (
		archive *Archive
		err     error
	)
	if d.cfg.onProgress != nil {
		archive, err = d.ProgressDownload(ctx, url)
	} else {
		archive, err = d.QuietDownload(ctx, url)
	}
	if err != nil {
		return "", err
	}

	p, err := d.extract(archive, v)
	if err != nil {
		return "", err
	}
	d.log.Info("driver installed",
		zap.String("version", v.String()),
		zap.String("path", p))
	return p, nil
}

// extract writes the chromedriver executable from the archive into the
// cache directory and records the sidecar entry. The binary is staged in a
// temp file and renamed into place so a failed install leaves no partial
// cache entry behind.
func (d *Driver) extract(archive *Archive, v Version) (string, error) {
	zr, err := zip.NewReader(archive.Reader(), int64(archive.Len()))
	if err != nil {
		return "", fmt.Errorf("%w: opening archive: %v", ErrExtraction, err)
	}

	want := d.cfg.platform.ExecutableName()
	var file *zip.File
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		// Archives nest the binary under chromedriver-<platform>/ since
		// Chrome 115; older ones keep it at the root.
		if path.Base(f.Name) == want {
			file = f
			break
		}
	}
	if file == nil {
		return "", fmt.Errorf("%w: archive has no %s entry", ErrExtraction, want)
	}

	dir := d.driverDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("driverium: creating cache dir: %w", err)
	}

	rc, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("%w: reading %s: %v", ErrExtraction, file.Name, err)
	}
	defer rc.Close()

	tmp, err := os.CreateTemp(dir, want+".*")
	if err != nil {
		return "", fmt.Errorf("driverium: staging driver: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := io.Copy(tmp, rc); err != nil {
		tmp.Close()
		return "", fmt.Errorf("%w: extracting %s: %v", ErrExtraction, file.Name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("driverium: staging driver: %w", err)
	}
	if !d.cfg.platform.isWindows() {
		if err := os.Chmod(tmpName, 0o755); err != nil {
			return "", fmt.Errorf("driverium: marking driver executable: %w", err)
		}
	}

	dst := filepath.Join(dir, want)
	if err := os.Rename(tmpName, dst); err != nil {
		return "", fmt.Errorf("driverium: installing driver: %w", err)
	}

	abs, err := filepath.Abs(dst)
	if err != nil {
		return "", fmt.Errorf("driverium: resolving path: %w", err)
	}
	if err := d.writeCacheEntry(dir, cacheEntry{Version: v.String(), Path: abs}); err != nil {
		return "", err
	}
	return abs, nil
}

// writeCacheEntry records the sidecar with the same temp-and-rename staging
// as the binary itself.
func (d *Driver) writeCacheEntry(dir string, entry cacheEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("driverium: encoding cache entry: %w", err)
	}
	tmp, err := os.CreateTemp(dir, cacheEntryFile+".*")
	if err != nil {
		return fmt.Errorf("driverium: staging cache entry: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("driverium: writing cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("driverium: writing cache entry: %w", err)
	}
	if err := os.Rename(tmpName, filepath.Join(dir, cacheEntryFile)); err != nil {
		return fmt.Errorf("driverium: writing cache entry: %w", err)
	}
	return nil
}
