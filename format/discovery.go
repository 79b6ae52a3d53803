// FILE: lixenwraith/cfgtree/format/discovery.go
package format

import (
	"os"
	"path/filepath"
	"strings"
)

// DiscoveryOptions configures the search for a configuration file.
type DiscoveryOptions struct {
	// Base name of the config file, without extension
	Name string

	// Extensions to try, in order
	Extensions []string

	// Custom search paths, searched before the defaults
	Paths []string

	// Environment variable holding an explicit path
	EnvVar string

	// CLI flag holding an explicit path (e.g. "--config"), looked up in Args
	CLIFlag string
	Args    []string

	// Whether to search XDG config directories
	UseXDG bool

	// Whether to search the current directory
	UseCurrentDir bool
}

// DefaultDiscoveryOptions returns options for appName: every known extension
// plus .conf, an APPNAME_CONFIG variable, a --config flag, the current
// directory and XDG directories.
func DefaultDiscoveryOptions(appName string) DiscoveryOptions {
	return DiscoveryOptions{
		Name:          appName,
		Extensions:    append(Extensions(), ".conf"),
		EnvVar:        strings.ToUpper(strings.ReplaceAll(appName, "-", "_")) + "_CONFIG",
		CLIFlag:       "--config",
		UseXDG:        true,
		UseCurrentDir: true,
	}
}

// Discover returns the path of the configuration file to use. An explicit
// CLI flag wins over the environment variable, which wins over searching.
// Explicit paths are returned without checking that they exist.
func Discover(opts DiscoveryOptions) (string, bool) {
	if opts.CLIFlag != "" {
		for i, arg := range opts.Args {
			if arg == opts.CLIFlag && i+1 < len(opts.Args) {
				return opts.Args[i+1], true
			}
			if strings.HasPrefix(arg, opts.CLIFlag+"=") {
				return strings.TrimPrefix(arg, opts.CLIFlag+"="), true
			}
		}
	}

	if opts.EnvVar != "" {
		if path := os.Getenv(opts.EnvVar); path != "" {
			return path, true
		}
	}

	for _, dir := range SearchPaths(opts) {
		for _, ext := range opts.Extensions {
			path := filepath.Join(dir, opts.Name+ext)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, true
			}
		}
	}

	// No file is not an error; defaults and overrides may suffice
	return "", false
}

// SearchPaths lists the directories Discover searches, in order.
func SearchPaths(opts DiscoveryOptions) []string {
	var paths []string
	paths = append(paths, opts.Paths...)

	if opts.UseCurrentDir {
		if cwd, err := os.Getwd(); err == nil {
			paths = append(paths, cwd)
		}
	}

	if opts.UseXDG {
		paths = append(paths, xdgConfigPaths(opts.Name)...)
	}
	return paths
}

// xdgConfigPaths returns XDG-compliant config search paths
func xdgConfigPaths(appName string) []string {
	var paths []string

	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		paths = append(paths, filepath.Join(xdgHome, appName))
	} else if home := os.Getenv("HOME"); home != "" {
		paths = append(paths, filepath.Join(home, ".config", appName))
	}

	if xdgDirs := os.Getenv("XDG_CONFIG_DIRS"); xdgDirs != "" {
		for _, dir := range filepath.SplitList(xdgDirs) {
			paths = append(paths, filepath.Join(dir, appName))
		}
	} else {
		paths = append(paths,
			filepath.Join("/etc/xdg", appName),
			filepath.Join("/etc", appName),
		)
	}
	return paths
}
