// Package discord implements the rich presence publisher over Discord's
// local IPC socket.
package discord

import (
	"encoding/binary"
	"fmt"
	"io"
)

// IPC opcodes.
const (
	opHandshake uint32 = 0
	opFrame     uint32 = 1
	opClose     uint32 = 2
)

// Frames bigger than this are assumed to be garbage on the socket.
const maxFramePayload = 64 * 1024

// writeFrame writes one IPC frame: little-endian opcode and payload
// length followed by the JSON payload.
func writeFrame(w io.Writer, op uint32, payload []byte) error {
	header := make([]byte, 8)
	binary.LittleEndian.PutUint32(header[0:4], op)
	binary.LittleEndian.PutUint32(header[4:8], uint32(len(payload)))

	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("could not write frame header: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("could not write frame payload: %w", err)
	}
	return nil
}

// readFrame reads one IPC frame.
func readFrame(r io.Reader) (op uint32, payload []byte, err error) {
	header := make([]byte, 8)
	if _, err := io.ReadFull(r, header); err != nil {
		return 0, nil, fmt.Errorf("could not read frame header: %w", err)
	}

	op = binary.LittleEndian.Uint32(header[0:4])
	size := binary.LittleEndian.Uint32(header[4:8])
	if size > maxFramePayload {
		return 0, nil, fmt.Errorf("frame payload too large (%d bytes)", size)
	}

	payload = make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		return 0, nil, fmt.Errorf("could not read frame payload: %w", err)
	}
	return op, payload, nil
}
