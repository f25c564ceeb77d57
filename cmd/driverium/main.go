// driverium resolves and downloads the ChromeDriver binary matching the
// installed Chrome browser.
//
// Usage:
//
//	driverium get [--browser-version V] [--dir D] [--quiet]
//	driverium url [--browser-version V]
//	driverium version
package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/d3kxrma/driverium"
)

var (
	browserVersion string
	cacheDir       string
	quiet          bool
	verbose        bool
)

var rootCmd = &cobra.Command{
	Use:   "driverium",
	Short: "driverium resolves, downloads, and caches ChromeDriver binaries",
}

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Download (or reuse) the matching driver and print its path",
	Args:  cobra.NoArgs,
	RunE:  runGet,
}

var urlCmd = &cobra.Command{
	Use:   "url",
	Short: "Print the resolved driver download URL without downloading",
	Args:  cobra.NoArgs,
	RunE:  runURL,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the driverium version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("driverium version %s\n", buildVersion())
	},
}

func init() {
	for _, c := range []*cobra.Command{getCmd, urlCmd} {
		c.Flags().StringVar(&browserVersion, "browser-version", "",
			"resolve for this Chrome version instead of the installed one")
	}
	getCmd.Flags().StringVar(&cacheDir, "dir", "", "cache directory for extracted drivers")
	getCmd.Flags().BoolVar(&quiet, "quiet", false, "suppress the progress line")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(getCmd, urlCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newDriver(withProgress bool) (*driverium.Driver, error) {
	var opts []driverium.Option
	if browserVersion != "" {
		opts = append(opts, driverium.WithBrowserVersion(browserVersion))
	}
	if cacheDir != "" {
		opts = append(opts, driverium.WithCacheDir(cacheDir))
	}
	if verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return nil, err
		}
		opts = append(opts, driverium.WithLogger(logger))
	}
	if withProgress && !quiet {
		opts = append(opts, driverium.WithProgress(printProgress))
	}
	return driverium.New(opts...)
}

// printProgress writes a single self-overwriting progress line to stderr.
func printProgress(received, total int64) {
	if total > 0 {
		fmt.Fprintf(os.Stderr, "\rdriver download: %s / %s",
			humanize.Bytes(uint64(received)), humanize.Bytes(uint64(total)))
		if received >= total {
			fmt.Fprintln(os.Stderr)
		}
		return
	}
	fmt.Fprintf(os.Stderr, "\rdriver download: %s", humanize.Bytes(uint64(received)))
}

func runGet(cmd *cobra.Command, args []string) error {
	d, err := newDriver(true)
	if err != nil {
		return err
	}
	path, err := d.Get(context.Background())
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

func runURL(cmd *cobra.Command, args []string) error {
	d, err := newDriver(false)
	if err != nil {
		return err
	}
	u, err := d.URL(context.Background())
	if err != nil {
		return err
	}
	fmt.Println(u)
	return nil
}

func buildVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "devel"
}
