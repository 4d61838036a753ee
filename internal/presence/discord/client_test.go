package discord

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcsr-tools/splitwatch/internal/model"
)

// fakeIPC answers the handshake with READY and every command frame with
// an empty ack, recording what it saw.
type fakeIPC struct {
	conn     net.Conn
	commands chan []byte
}

func newFakeIPC(t *testing.T) (*fakeIPC, func() (net.Conn, error)) {
	t.Helper()

	client, server := net.Pipe()
	f := &fakeIPC{conn: server, commands: make(chan []byte, 16)}
	go f.serve()
	t.Cleanup(func() { server.Close() })

	return f, func() (net.Conn, error) { return client, nil }
}

func (f *fakeIPC) serve() {
	for {
		op, payload, err := readFrame(f.conn)
		if err != nil {
			return
		}
		switch op {
		case opHandshake:
			resp, _ := json.Marshal(map[string]string{"cmd": "DISPATCH", "evt": "READY"})
			if err := writeFrame(f.conn, opFrame, resp); err != nil {
				return
			}
		case opFrame:
			f.commands <- payload
			if err := writeFrame(f.conn, opFrame, []byte(`{}`)); err != nil {
				return
			}
		case opClose:
			return
		}
	}
}

func (f *fakeIPC) nextCommand(t *testing.T) map[string]any {
	t.Helper()

	select {
	case payload := <-f.commands:
		var cmd map[string]any
		require.NoError(t, json.Unmarshal(payload, &cmd))
		return cmd
	case <-time.After(time.Second):
		t.Fatal("no command received")
		return nil
	}
}

func TestClient_Publish(t *testing.T) {
	ipc, dial := newFakeIPC(t)

	client, err := NewClient(ClientConfig{ClientID: "123456789", Dial: dial})
	require.NoError(t, err)

	status := model.Status{
		Milestone: model.MilestoneNether,
		Elapsed:   145 * time.Second,
	}
	require.NoError(t, client.Publish(context.Background(), status))

	cmd := ipc.nextCommand(t)
	assert.Equal(t, "SET_ACTIVITY", cmd["cmd"])
	args := cmd["args"].(map[string]any)
	act := args["activity"].(map[string]any)
	assert.Equal(t, "Entered the Nether", act["state"])
	assert.Contains(t, act["details"], "IGT: 2:25.000")
}

func TestClient_PublishDeduplicatesIdenticalRenders(t *testing.T) {
	ipc, dial := newFakeIPC(t)

	client, err := NewClient(ClientConfig{ClientID: "123456789", Dial: dial})
	require.NoError(t, err)

	status := model.Status{Milestone: model.MilestoneBastion}
	require.NoError(t, client.Publish(context.Background(), status))
	require.NoError(t, client.Publish(context.Background(), status))

	ipc.nextCommand(t)
	select {
	case <-ipc.commands:
		t.Fatal("identical render was not deduplicated")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestClient_ClearWithoutConnectionIsNoop(t *testing.T) {
	client, err := NewClient(ClientConfig{
		ClientID: "123456789",
		Dial:     func() (net.Conn, error) { panic("should not dial") },
	})
	require.NoError(t, err)

	assert.NoError(t, client.Clear(context.Background()))
}

func TestClient_ClearSendsEmptyActivity(t *testing.T) {
	ipc, dial := newFakeIPC(t)

	client, err := NewClient(ClientConfig{ClientID: "123456789", Dial: dial})
	require.NoError(t, err)

	require.NoError(t, client.Publish(context.Background(), model.Status{Milestone: model.MilestoneEnd}))
	ipc.nextCommand(t)

	require.NoError(t, client.Clear(context.Background()))
	cmd := ipc.nextCommand(t)
	args := cmd["args"].(map[string]any)
	_, hasActivity := args["activity"]
	assert.False(t, hasActivity)
}

func TestNewClient(t *testing.T) {
	_, err := NewClient(ClientConfig{})
	assert.Error(t, err)
}
