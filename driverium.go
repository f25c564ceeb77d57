package driverium

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Endpoints queried by the version resolver.
const (
	// DefaultManifestURL lists every known-good Chrome release together
	// with its per-platform download URLs.
	DefaultManifestURL = "https://googlechromelabs.github.io/chrome-for-testing/known-good-versions-with-downloads.json"

	// DefaultLegacyBaseURL hosts driver archives for Chrome versions
	// below 113.
	DefaultLegacyBaseURL = "https://chromedriver.storage.googleapis.com"
)

// Driver resolves, downloads, and caches the ChromeDriver binary matching a
// Chrome browser version.
//
// A Driver does not lock the cache directory; concurrent processes
// installing the same version may race on the final rename, which is
// harmless but unsynchronized.
type Driver struct {
	cfg config
	log *zap.Logger
}

// New creates a Driver with the given options.
func New(opts ...Option) (*Driver, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}

	if cfg.platform == "" {
		p, err := HostPlatform()
		if err != nil {
			return nil, err
		}
		cfg.platform = p
	}
	if cfg.cacheDir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			if base, err = os.Getwd(); err != nil {
				return nil, fmt.Errorf("driverium: resolving cache dir: %w", err)
			}
		}
		cfg.cacheDir = filepath.Join(base, "driverium")
	}
	if cfg.browserVersion != "" {
		if _, err := ParseVersion(cfg.browserVersion); err != nil {
			return nil, err
		}
	}

	return &Driver{cfg: cfg, log: cfg.logger}, nil
}

// Get returns the path to a ChromeDriver binary matching the resolved
// browser version, downloading and installing it on first use. When a
// matching binary is already cached, the path is returned without any
// network access.
func (d *Driver) Get(ctx context.Context) (string, error) {
	v, err := d.ResolveVersion(ctx)
	if err != nil {
		return "", err
	}

	if path, ok := d.cachedPath(v); ok {
		d.log.Debug("driver cache hit",
			zap.String("version", v.String()),
			zap.String("path", path))
		return path, nil
	}

	url, err := d.urlFor(ctx, v)
	if err != nil {
		return "", err
	}
	return d.install(ctx, url, v)
}

// Download fetches the driver archive at url, extracts the executable into
// the cache directory, and returns its absolute path. Most callers want
// [Driver.Get], which also resolves the URL and consults the cache.
func (d *Driver) Download(ctx context.Context, url string) (string, error) {
	v, err := d.ResolveVersion(ctx)
	if err != nil {
		return "", err
	}
	return d.install(ctx, url, v)
}

// ResolveVersion determines the browser version a driver should match,
// according to the configured [Selection].
func (d *Driver) ResolveVersion(ctx context.Context) (Version, error) {
	if d.cfg.browserVersion != "" {
		return ParseVersion(d.cfg.browserVersion)
	}
	if d.cfg.selection == SelectLatest {
		return d.latestManifestVersion(ctx)
	}
	return d.installedBrowserVersion(ctx)
}

// URL resolves the download URL for the current browser version. Chrome 113
// and later resolve through the Chrome-for-Testing manifest; older versions
// use the legacy storage layout.
func (d *Driver) URL(ctx context.Context) (string, error) {
	v, err := d.ResolveVersion(ctx)
	if err != nil {
		return "", err
	}
	return d.urlFor(ctx, v)
}

// NewDriverURL resolves the current browser version through the
// Chrome-for-Testing manifest regardless of its major version.
func (d *Driver) NewDriverURL(ctx context.Context) (string, error) {
	v, err := d.ResolveVersion(ctx)
	if err != nil {
		return "", err
	}
	return d.newDriverURL(ctx, v)
}

// OldDriverURL resolves the current browser version through the legacy
// storage endpoint regardless of its major version.
func (d *Driver) OldDriverURL(ctx context.Context) (string, error) {
	v, err := d.ResolveVersion(ctx)
	if err != nil {
		return "", err
	}
	return d.oldDriverURL(ctx, v)
}

// urlFor routes version v to the matching resolution scheme.
func (d *Driver) urlFor(ctx context.Context, v Version) (string, error) {
	if d.cfg.selection == SelectPreviousStable || v.Major() < 113 {
		return d.oldDriverURL(ctx, v)
	}
	return d.newDriverURL(ctx, v)
}
