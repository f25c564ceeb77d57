package driverium

import (
	"fmt"
	"runtime"
)

// Platform identifies an OS/architecture pair using the Chrome-for-Testing
// naming scheme.
type Platform string

// Platforms with published ChromeDriver archives.
const (
	Linux64  Platform = "linux64"
	MacX64   Platform = "mac-x64"
	MacArm64 Platform = "mac-arm64"
	Win32    Platform = "win32"
	Win64    Platform = "win64"
)

// HostPlatform maps the running OS and architecture to a [Platform]. It
// fails with [ErrUnsupportedPlatform] when no ChromeDriver archive is
// published for the host.
func HostPlatform() (Platform, error) {
	switch runtime.GOOS {
	case "linux":
		if runtime.GOARCH == "amd64" {
			return Linux64, nil
		}
	case "darwin":
		switch runtime.GOARCH {
		case "arm64":
			return MacArm64, nil
		case "amd64":
			return MacX64, nil
		}
	case "windows":
		switch runtime.GOARCH {
		case "386":
			return Win32, nil
		case "amd64", "arm64":
			return Win64, nil
		}
	}
	return "", fmt.Errorf("%w: %s/%s", ErrUnsupportedPlatform, runtime.GOOS, runtime.GOARCH)
}

// ExecutableName returns the driver binary name inside the archive.
func (p Platform) ExecutableName() string {
	if p.isWindows() {
		return "chromedriver.exe"
	}
	return "chromedriver"
}

// legacyName returns the archive suffix used by the pre-113
// chromedriver.storage.googleapis.com layout. The legacy bucket only ever
// shipped 32-bit Windows builds.
func (p Platform) legacyName() string {
	switch p {
	case MacX64:
		return "mac64"
	case MacArm64:
		return "mac64_m1"
	case Win32, Win64:
		return "win32"
	default:
		return string(p)
	}
}

func (p Platform) isWindows() bool { return p == Win32 || p == Win64 }
