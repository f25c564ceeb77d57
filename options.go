package driverium

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Selection chooses how the driver release is picked.
type Selection int

const (
	// SelectInstalled matches the locally installed Chrome version.
	// This is the default.
	SelectInstalled Selection = iota

	// SelectLatest picks the newest release in the manifest that publishes
	// a ChromeDriver archive, ignoring the installed browser.
	SelectLatest

	// SelectPreviousStable resolves through the legacy latest-release
	// endpoint, yielding the last driver published for the browser's
	// major.minor.build line. Intended for Chrome versions below 113.
	SelectPreviousStable
)

// ProgressFunc observes download progress. received grows monotonically up
// to total; total is -1 when the server does not announce a content length.
type ProgressFunc func(received, total int64)

// config holds internal configuration for a Driver.
type config struct {
	browserVersion  string
	browserPath     string
	browserDownload bool
	cacheDir        string
	platform        Platform
	selection       Selection
	httpClient      *http.Client
	logger          *zap.Logger
	onProgress      ProgressFunc
	manifestURL     string
	legacyBaseURL   string
}

func defaultConfig() config {
	return config{
		httpClient:    &http.Client{Timeout: 3 * time.Minute},
		logger:        zap.NewNop(),
		manifestURL:   DefaultManifestURL,
		legacyBaseURL: DefaultLegacyBaseURL,
	}
}

// Option configures a [Driver].
type Option func(*config)

// WithBrowserVersion pins the Chrome version to resolve a driver for,
// instead of detecting the installed browser.
func WithBrowserVersion(v string) Option {
	return func(c *config) {
		c.browserVersion = v
	}
}

// WithBrowserPath sets the Chrome or Chromium executable used for version
// detection. By default standard install locations and PATH are searched.
func WithBrowserPath(path string) Option {
	return func(c *config) {
		c.browserPath = path
	}
}

// WithBrowserDownload downloads a compatible Chromium build when no local
// browser is found, instead of failing with [ErrBrowserNotFound].
func WithBrowserDownload() Option {
	return func(c *config) {
		c.browserDownload = true
	}
}

// WithCacheDir sets the directory extracted drivers are stored in.
// Defaults to a "driverium" directory under the user cache directory.
func WithCacheDir(dir string) Option {
	return func(c *config) {
		c.cacheDir = dir
	}
}

// WithPlatform overrides the detected host platform.
func WithPlatform(p Platform) Option {
	return func(c *config) {
		c.platform = p
	}
}

// WithSelection sets the release selection mode. Defaults to
// [SelectInstalled].
func WithSelection(s Selection) Option {
	return func(c *config) {
		c.selection = s
	}
}

// WithHTTPClient sets the client used for manifest and archive requests.
// The default client has a 3 minute timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *config) {
		c.httpClient = hc
	}
}

// WithLogger enables structured logging of resolution and install steps.
// Logging is disabled by default.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithProgress installs a progress observer used while fetching the driver
// archive during [Driver.Get] and [Driver.Download].
func WithProgress(fn ProgressFunc) Option {
	return func(c *config) {
		c.onProgress = fn
	}
}

// WithManifestURL overrides the Chrome-for-Testing manifest endpoint.
// Useful for mirrors and tests.
func WithManifestURL(u string) Option {
	return func(c *config) {
		c.manifestURL = u
	}
}

// WithLegacyBaseURL overrides the legacy driver storage endpoint used for
// Chrome versions below 113.
func WithLegacyBaseURL(u string) Option {
	return func(c *config) {
		c.legacyBaseURL = u
	}
}
