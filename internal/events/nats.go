package events

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/MrSnakeDoc/linkvault/internal/domain"
)

// NATSExporter publishes every event frame on <prefix>.<type>.
type NATSExporter struct {
	conn   *nats.Conn
	prefix string
}

// NewNATSExporter connects to url and publishes under prefix.
func NewNATSExporter(url, prefix string, opts ...nats.Option) (*NATSExporter, error) {
	defaults := []nats.Option{
		nats.Name("linkvault"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	}
	nc, err := nats.Connect(url, append(defaults, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}
	if prefix == "" {
		prefix = "linkvault"
	}
	return &NATSExporter{conn: nc, prefix: prefix}, nil
}

// Subject returns the subject used for kind.
func (e *NATSExporter) Subject(kind domain.EventKind) string {
	return e.prefix + "." + string(kind)
}

// Export publishes frame on the subject for kind.
func (e *NATSExporter) Export(kind domain.EventKind, frame []byte) error {
	return e.conn.Publish(e.Subject(kind), frame)
}

// Connected reports the client connection state.
func (e *NATSExporter) Connected() bool {
	return e.conn.IsConnected()
}

// Close flushes pending messages and closes the connection.
func (e *NATSExporter) Close() error {
	return e.conn.Drain()
}
