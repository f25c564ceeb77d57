package driverium

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
)

// Archive holds a downloaded driver archive and provides flexible access to
// its content.
//
// It is safe to call its methods multiple times — the underlying data is
// never modified.
type Archive struct {
	data []byte
}

// Bytes returns the raw archive content.
func (a *Archive) Bytes() []byte {
	return a.data
}

// Reader returns a [*bytes.Reader] over the archive content. This is
// suitable for [archive/zip.NewReader] or any API that accepts an
// [io.Reader].
func (a *Archive) Reader() *bytes.Reader {
	return bytes.NewReader(a.data)
}

// Len returns the archive size in bytes.
func (a *Archive) Len() int {
	return len(a.data)
}

// WriteToFile writes the archive to the file at path, creating it if needed.
func (a *Archive) WriteToFile(path string, perm os.FileMode) error {
	return os.WriteFile(path, a.data, perm)
}

// QuietDownload performs a blocking GET of url and returns the full response
// body. It fails with [ErrNetwork] on transport failure or a non-success
// status.
func (d *Driver) QuietDownload(ctx context.Context, url string) (*Archive, error) {
	return d.fetch(ctx, url, nil)
}

// ProgressDownload behaves like [Driver.QuietDownload] but reports progress
// through the observer installed with [WithProgress]. The returned content
// is byte-identical to the quiet variant.
func (d *Driver) ProgressDownload(ctx context.Context, url string) (*Archive, error) {
	fn := d.cfg.onProgress
	if fn == nil {
		fn = func(received, total int64) {}
	}
	return d.fetch(ctx, url, fn)
}

// fetch downloads url into memory, invoking onProgress after every chunk
// when non-nil. The total is taken from Content-Length, or -1 when the
// server does not announce one.
func (d *Driver) fetch(ctx context.Context, url string, onProgress ProgressFunc) (*Archive, error) {
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

	if onProgress == nil {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: reading %s: %v", ErrNetwork, url, err)
		}
		return &Archive{data: data}, nil
	}

	total := resp.ContentLength
	var buf bytes.Buffer
	if total > 0 {
		buf.Grow(int(total))
	}
	chunk := make([]byte, 32*1024)
	var received int64
	for {
		n, err := resp.Body.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
			received += int64(n)
			onProgress(received, total)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: reading %s: %v", ErrNetwork, url, err)
		}
	}
	return &Archive{data: buf.Bytes()}, nil
}
