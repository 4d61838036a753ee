package diagnose_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcsr-tools/splitwatch/internal/app/diagnose"
)

// syncBuffer guards the output buffer against the tail goroutine.
type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

func TestNewService(t *testing.T) {
	var b bytes.Buffer

	tests := map[string]struct {
		config diagnose.ServiceConfig
		expErr bool
	}{
		"Missing log file should fail.": {
			config: diagnose.ServiceConfig{Out: &b},
			expErr: true,
		},

		"Missing output writer should fail.": {
			config: diagnose.ServiceConfig{LogFile: "/tmp/x/latest.log"},
			expErr: true,
		},

		"Valid config should work.": {
			config: diagnose.ServiceConfig{LogFile: "/tmp/x/latest.log", Out: &b},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := diagnose.NewService(test.config)
			if test.expErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestServiceRun(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "latest.log")
	require.NoError(t, os.WriteFile(logFile, nil, 0o644))

	out := &syncBuffer{}
	svc, err := diagnose.NewService(diagnose.ServiceConfig{
		LogFile:  logFile,
		Interval: 10 * time.Millisecond,
		Out:      out,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	// The tailer skips anything written before its first poll, keep
	// appending until the lines show up.
	require.Eventually(t, func() bool {
		f, err := os.OpenFile(logFile, os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return false
		}
		defer f.Close()
		_, err = f.WriteString("[10:00:00] [Server thread/INFO]: plain chatter\n[10:00:01] [Server thread/INFO]: runner has made the advancement [Eye Spy]\n")
		if err != nil {
			return false
		}
		return strings.Contains(out.String(), "Eye Spy")
	}, 3*time.Second, 25*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("service did not stop")
	}

	assert.Contains(t, out.String(), "plain chatter")
	assert.Contains(t, out.String(), "[advance stronghold]")
}
