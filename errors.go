package driverium

import "errors"

// Sentinel errors returned by the library. Errors are wrapped with call-site
// context; match them with [errors.Is].
var (
	// ErrNetwork is returned for an unreachable host, a transport failure,
	// or a non-success HTTP status from the manifest or archive endpoints.
	ErrNetwork = errors.New("driverium: network failure")

	// ErrParse is returned when the version manifest does not have the
	// expected shape.
	ErrParse = errors.New("driverium: unexpected manifest format")

	// ErrUnsupportedPlatform is returned when no ChromeDriver archive is
	// published for the host OS and architecture.
	ErrUnsupportedPlatform = errors.New("driverium: unsupported platform")

	// ErrExtraction is returned when the downloaded archive is malformed or
	// lacks the chromedriver executable entry.
	ErrExtraction = errors.New("driverium: archive extraction failed")

	// ErrVersionNotFound is returned when the manifest lists no driver
	// release matching the requested browser version.
	ErrVersionNotFound = errors.New("driverium: no driver found for version")

	// ErrBrowserNotFound is returned when no local Chrome or Chromium
	// installation could be located.
	ErrBrowserNotFound = errors.New("driverium: browser not found")
)
