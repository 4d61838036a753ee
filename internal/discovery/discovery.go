// Package discovery locates Minecraft installation paths on disk. Pure
// filesystem glue, the tracking core never calls it directly.
package discovery

import (
	"os"
	"path/filepath"

	"k8s.io/client-go/util/homedir"

	"github.com/mcsr-tools/splitwatch/internal/conventions"
)

// MinecraftDir returns the first existing well-known .minecraft (or
// launcher instances root) location for the current user.
func MinecraftDir() (string, bool) {
	home := homedir.HomeDir()
	candidates := []string{
		// Windows.
		filepath.Join(home, "AppData", "Roaming", ".minecraft"),
		// macOS.
		filepath.Join(home, "Library", "Application Support", "minecraft"),
		// Linux.
		filepath.Join(home, ".minecraft"),
		// MultiMC / Prism instance roots.
		filepath.Join(home, "MultiMC", "instances"),
		filepath.Join(home, ".local", "share", "PrismLauncher", "instances"),
	}

	for _, c := range candidates {
		if dirExists(c) {
			return c, true
		}
	}
	return "", false
}

// SpeedrunIGTDir locates the SpeedRunIGT data directory under a
// .minecraft directory or a launcher instances root.
func SpeedrunIGTDir(mcDir string) (string, bool) {
	standard := filepath.Join(mcDir, conventions.SpeedrunIGTDirName)
	if dirExists(standard) {
		return standard, true
	}
	return scanInstances(mcDir, conventions.SpeedrunIGTDirName, true)
}

// GameLog locates the live game log under a .minecraft directory or a
// launcher instances root.
func GameLog(mcDir string) (string, bool) {
	standard := filepath.Join(mcDir, filepath.FromSlash(conventions.GameLogRelPath))
	if fileExists(standard) {
		return standard, true
	}
	return scanInstances(mcDir, filepath.FromSlash(conventions.GameLogRelPath), false)
}

// scanInstances looks for rel inside every <instance>/.minecraft under
// the given root (MultiMC and Prism layout).
func scanInstances(root, rel string, wantDir bool) (string, bool) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return "", false
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		candidate := filepath.Join(root, e.Name(), ".minecraft", rel)
		if wantDir && dirExists(candidate) {
			return candidate, true
		}
		if !wantDir && fileExists(candidate) {
			return candidate, true
		}
	}
	return "", false
}

func dirExists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

func fileExists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && !fi.IsDir()
}
