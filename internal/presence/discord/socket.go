package discord

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"
)

const dialTimeout = time.Second

// dialSocket tries the well-known Discord IPC socket locations.
func dialSocket() (net.Conn, error) {
	var lastErr error
	for _, dir := range socketDirs() {
		for i := 0; i < 10; i++ {
			path := filepath.Join(dir, fmt.Sprintf("discord-ipc-%d", i))
			conn, err := net.DialTimeout("unix", path, dialTimeout)
			if err == nil {
				return conn, nil
			}
			lastErr = err
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no candidate socket directories")
	}
	return nil, fmt.Errorf("no discord IPC socket found (is Discord running?): %w", lastErr)
}

func socketDirs() []string {
	var dirs []string
	for _, env := range []string{"XDG_RUNTIME_DIR", "TMPDIR", "TMP", "TEMP"} {
		if dir := os.Getenv(env); dir != "" {
			dirs = append(dirs, dir)
			// Flatpak and snap sandboxes nest the socket deeper.
			dirs = append(dirs,
				filepath.Join(dir, "app", "com.discordapp.Discord"),
				filepath.Join(dir, "snap.discord"),
			)
		}
	}
	return append(dirs, "/tmp")
}
