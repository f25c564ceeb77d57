// Package driverium resolves, downloads, and caches the ChromeDriver binary
// matching an installed Chrome browser.
//
// The common case is a single call:
//
//	d, err := driverium.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	path, err := d.Get(ctx)
//
// [Driver.Get] consults the local cache first: when a driver matching the
// resolved browser version is already installed, the path is returned with
// no network access. Otherwise the installed Chrome version is detected, the
// matching driver release is resolved against the Chrome-for-Testing
// manifest (or the legacy storage layout for Chrome versions below 113),
// and the archive is downloaded and extracted into the cache directory.
//
// Use [Option] values to pin a browser version, redirect the cache, or
// observe download progress:
//
//	d, err := driverium.New(
//	    driverium.WithBrowserVersion("120.0.6099.109"),
//	    driverium.WithCacheDir("/opt/drivers"),
//	    driverium.WithProgress(func(received, total int64) {
//	        fmt.Printf("\r%d / %d bytes", received, total)
//	    }),
//	)
//
// Lower-level steps are exposed for callers that need them: [Driver.URL]
// resolves the download URL without fetching it, [Driver.QuietDownload] and
// [Driver.ProgressDownload] return the raw archive, and [Driver.Download]
// installs from an explicit URL.
//
// Failures map to the sentinel errors [ErrNetwork], [ErrParse],
// [ErrUnsupportedPlatform], [ErrExtraction], [ErrVersionNotFound], and
// [ErrBrowserNotFound]; match them with [errors.Is].
package driverium
