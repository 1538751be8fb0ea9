package events

import (
	"errors"
	"sync"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

var (
	// ErrChannelFull is returned when the client is not draining its queue.
	ErrChannelFull = errors.New("channel buffer full")

	// ErrChannelClosed is returned once the connection has gone away.
	ErrChannelClosed = errors.New("channel closed")
)

// DefaultBuffer is the per-channel queue length.
const DefaultBuffer = 64

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// Channel is one open live-update connection. Frames are fully encoded
// SSE data payloads. The frame queue is never closed; Done signals shutdown.
type Channel struct {
	ID string

	frames chan []byte
	done   chan struct{}
	once   sync.Once
}

// NewChannel allocates a channel with the given queue length.
func NewChannel(buffer int) *Channel {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	id, err := gonanoid.Generate(idAlphabet, 10)
	if err != nil {
		id = "unknown"
	}
	return &Channel{
		ID:     id,
		frames: make(chan []byte, buffer),
		done:   make(chan struct{}),
	}
}

// Send enqueues a frame without blocking.
func (c *Channel) Send(frame []byte) error {
	select {
	case <-c.done:
		return ErrChannelClosed
	default:
	}

	select {
	case c.frames <- frame:
		return nil
	case <-c.done:
		return ErrChannelClosed
	default:
		return ErrChannelFull
	}
}

// Frames is the outbound queue read by the stream writer.
func (c *Channel) Frames() <-chan []byte {
	return c.frames
}

// Done is closed when the channel is closed.
func (c *Channel) Done() <-chan struct{} {
	return c.done
}

// Close marks the channel closed. Safe to call more than once.
func (c *Channel) Close() {
	c.once.Do(func() { close(c.done) })
}
