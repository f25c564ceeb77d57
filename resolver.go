package driverium

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// manifest mirrors the Chrome-for-Testing
// known-good-versions-with-downloads document.
type manifest struct {
	Versions []manifestEntry `json:"versions"`
}

type manifestEntry struct {
	Version   string `json:"version"`
	Downloads struct {
		ChromeDriver []archiveRef `json:"chromedriver"`
	} `json:"downloads"`
}

type archiveRef struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

// newDriverURL resolves v against the Chrome-for-Testing manifest.
//
// An installed browser rarely has an exact driver release, so candidates are
// narrowed part by part: entries matching the major number, then the minor,
// and so on, keeping the deepest non-empty set. Newer entries win ties.
func (d *Driver) newDriverURL(ctx context.Context, v Version) (string, error) {
	m, err := d.fetchManifest(ctx)
	if err != nil {
		return "", err
	}

	// Newest first; only entries that publish a chromedriver archive.
	candidates := make([]manifestEntry, 0, len(m.Versions))
	for i := len(m.Versions) - 1; i >= 0; i-- {
		if len(m.Versions[i].Downloads.ChromeDriver) > 0 {
			candidates = append(candidates, m.Versions[i])
		}
	}

	var best []manifestEntry
	for depth := 0; depth < v.numParts(); depth++ {
		var next []manifestEntry
		for _, e := range candidates {
			ev, err := ParseVersion(e.Version)
			if err != nil {
				continue
			}
			if depth < ev.numParts() && ev.part(depth) == v.part(depth) {
				next = append(next, e)
			}
		}
		if len(next) == 0 {
			break
		}
		best = next
		candidates = next
	}
	if len(best) == 0 {
		return "", fmt.Errorf("%w %s", ErrVersionNotFound, v)
	}

	for _, e := range best {
		for _, ref := range e.Downloads.ChromeDriver {
			if ref.Platform == string(d.cfg.platform) {
				d.log.Debug("resolved driver release",
					zap.String("browser", v.String()),
					zap.String("driver", e.Version))
				return ref.URL, nil
			}
		}
	}
	return "", fmt.Errorf("%w: no %s archive for version %s",
		ErrUnsupportedPlatform, d.cfg.platform, v)
}

// oldDriverURL resolves v through the legacy storage layout used before
// Chrome 113: LATEST_RELEASE_<maj.min.build> yields the matching driver
// version, and the archive URL is formatted from it.
func (d *Driver) oldDriverURL(ctx context.Context, v Version) (string, error) {
	body, err := d.getBody(ctx, fmt.Sprintf("%s/LATEST_RELEASE_%s", d.cfg.legacyBaseURL, v.buildLine()))
	if err != nil {
		return "", err
	}
	dv, err := ParseVersion(strings.TrimSpace(string(body)))
	if err != nil {
		return "", err
	}
	d.log.Debug("resolved legacy driver release",
		zap.String("browser", v.String()),
		zap.String("driver", dv.String()))
	return fmt.Sprintf("%s/%s/chromedriver_%s.zip", d.cfg.legacyBaseURL, dv, d.cfg.platform.legacyName()), nil
}

// latestManifestVersion returns the newest manifest entry that publishes a
// chromedriver archive.
func (d *Driver) latestManifestVersion(ctx context.Context) (Version, error) {
	m, err := d.fetchManifest(ctx)
	if err != nil {
		return Version{}, err
	}
	for i := len(m.Versions) - 1; i >= 0; i-- {
		if len(m.Versions[i].Downloads.ChromeDriver) > 0 {
			return ParseVersion(m.Versions[i].Version)
		}
	}
	return Version{}, fmt.Errorf("%w: manifest has no chromedriver releases", ErrVersionNotFound)
}

// fetchManifest downloads and decodes the version manifest.
func (d *Driver) fetchManifest(ctx context.Context) (*manifest, error) {
	body, err := d.getBody(ctx, d.cfg.manifestURL)
	if err != nil {
		return nil, err
	}
	var m manifest
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, fmt.Errorf("%w: decoding manifest: %v", ErrParse, err)
	}
	if len(m.Versions) == 0 {
		return nil, fmt.Errorf("%w: manifest lists no versions", ErrParse)
	}
	return &m, nil
}

// getBody performs a GET and returns the body, mapping transport and status
// failures to ErrNetwork.
func (d *Driver) getBody(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("driverium: building request: %w", err)
	}
	resp, err := d.cfg.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: GET %s: %s", ErrNetwork, url, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrNetwork, url, err)
	}
	return body, nil
}
