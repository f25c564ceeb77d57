package driverium

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	cdpbrowser "github.com/chromedp/cdproto/browser"
	"github.com/chromedp/chromedp"
	"github.com/go-rod/rod/lib/launcher"
	"go.uber.org/zap"
)

var versionPattern = regexp.MustCompile(`\d+(?:\.\d+){2,3}`)

// installedBrowserVersion detects the version of the locally installed
// Chrome or Chromium. It first asks the binary directly via --version and
// falls back to a headless DevTools Browser.getVersion query, which also
// covers builds that do not print a version banner (notably Windows).
func (d *Driver) installedBrowserVersion(ctx context.Context) (Version, error) {
	path, err := d.browserPath()
	if err != nil {
		return Version{}, err
	}

	if out, err := exec.CommandContext(ctx, path, "--version").Output(); err == nil {
		if m := versionPattern.FindString(string(out)); m != "" {
			d.log.Debug("detected browser version",
				zap.String("path", path),
				zap.String("version", m))
			return ParseVersion(m)
		}
	}
	return d.cdpBrowserVersion(ctx, path)
}

// browserPath locates the browser executable, downloading a Chromium build
// if configured to do so. Downloaded binaries land in rod's launcher cache
// (~/.cache/rod/browser on Unix, %APPDATA%\rod\browser on Windows).
func (d *Driver) browserPath() (string, error) {
	if d.cfg.browserPath != "" {
		return d.cfg.browserPath, nil
	}
	if path, has := launcher.LookPath(); has {
		return path, nil
	}
	if d.cfg.browserDownload {
		path, err := launcher.NewBrowser().Get()
		if err != nil {
			return "", fmt.Errorf("driverium: downloading browser: %w", err)
		}
		d.log.Info("downloaded browser", zap.String("path", path))
		return path, nil
	}
	return "", fmt.Errorf("%w: no Chrome/Chromium executable on this system", ErrBrowserNotFound)
}

// cdpBrowserVersion launches the browser headless and reads its version
// over the DevTools protocol.
func (d *Driver) cdpBrowserVersion(ctx context.Context, execPath string) (Version, error) {
	allocOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(execPath),
		chromedp.Flag("headless", "new"),
		chromedp.Flag("no-first-run", true),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer allocCancel()
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	var product string
	err := chromedp.Run(browserCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		_, p, _, _, _, err := cdpbrowser.GetVersion().Do(ctx)
		product = p
		return err
	}))
	if err != nil {
		return Version{}, fmt.Errorf("%w: querying browser version: %v", ErrBrowserNotFound, err)
	}

	// Product looks like "HeadlessChrome/120.0.6099.109".
	if i := strings.IndexByte(product, '/'); i >= 0 {
		product = product[i+1:]
	}
	return ParseVersion(product)
}
