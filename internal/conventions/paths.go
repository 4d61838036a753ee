package conventions

import "path/filepath"

const (
	// DefaultDataDir is the default splitwatch data directory name
	// (relative to home).
	DefaultDataDir = ".splitwatch"
	// ConfigFile is the user configuration filename.
	ConfigFile = "config.yaml"
	// JournalFile is the transition journal database filename.
	JournalFile = "journal.db"

	// Minecraft-side files.

	// SpeedrunIGTDirName is the SpeedRunIGT data directory inside .minecraft.
	SpeedrunIGTDirName = "speedrunigt"
	// LatestWorldFile is the SpeedRunIGT live run snapshot filename.
	LatestWorldFile = "latest_world"
	// GameLogRelPath is the game log path relative to .minecraft.
	GameLogRelPath = "logs/latest.log"
)

// ConfigPath returns the user configuration path inside a data directory.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, ConfigFile)
}

// JournalPath returns the journal database path inside a data directory.
func JournalPath(dataDir string) string {
	return filepath.Join(dataDir, JournalFile)
}
