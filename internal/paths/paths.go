package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

const appName = "srake-eutils"

type Paths struct {
	ConfigDir string
	DataDir   string
	CacheDir  string
}

// GetPaths returns all base paths respecting environment variables
func GetPaths() Paths {
	return Paths{
		ConfigDir: getDir("SRAKE_EUTILS_CONFIG_HOME", "XDG_CONFIG_HOME", ".config"),
		DataDir:   getDir("SRAKE_EUTILS_DATA_HOME", "XDG_DATA_HOME", ".local/share"),
		CacheDir:  getDir("SRAKE_EUTILS_CACHE_HOME", "XDG_CACHE_HOME", ".cache"),
	}
}

func getDir(appEnv, xdgEnv, defaultBase string) string {
	// 1. Check app-specific env
	if dir := os.Getenv(appEnv); dir != "" {
		return dir
	}

	// 2. Check XDG env
	if xdgBase := os.Getenv(xdgEnv); xdgBase != "" {
		return filepath.Join(xdgBase, appName)
	}

	// 3. Use default
	home, _ := os.UserHomeDir()
	return filepath.Join(home, defaultBase, appName)
}

// GetStorePath returns the path to the run cache database
func GetStorePath() string {
	if path := os.Getenv("SRAKE_EUTILS_DB_PATH"); path != "" {
		return path
	}
	return filepath.Join(GetPaths().DataDir, "runs.db")
}

// EnsureDirectories creates all necessary directories
func EnsureDirectories() error {
	paths := GetPaths()
	for _, dir := range []string{paths.ConfigDir, paths.DataDir, paths.CacheDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
