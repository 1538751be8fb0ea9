// Package events fans domain events out to every open live-update channel.
package events

import (
	"errors"
	"sync"

	"github.com/MrSnakeDoc/linkvault/internal/domain"
	"github.com/MrSnakeDoc/linkvault/internal/logger"
)

// Exporter mirrors published events outside the process.
type Exporter interface {
	Export(kind domain.EventKind, frame []byte) error
	Close() error
}

// NoopExporter is used when no external sink is configured.
type NoopExporter struct{}

func (NoopExporter) Export(domain.EventKind, []byte) error { return nil }
func (NoopExporter) Close() error                          { return nil }

// Broadcaster publishes domain events to every registered channel.
type Broadcaster struct {
	registry *Registry
	exporter Exporter
	log      logger.Logger

	// mu serializes publishers so every channel sees events in publish order.
	mu sync.Mutex
}

// NewBroadcaster creates a Broadcaster over registry. A nil exporter
// disables forwarding.
func NewBroadcaster(registry *Registry, exporter Exporter, log logger.Logger) *Broadcaster {
	if exporter == nil {
		exporter = NoopExporter{}
	}
	return &Broadcaster{registry: registry, exporter: exporter, log: log}
}

// Publish delivers one event to all channels. It never fails: closed
// channels are unregistered, full ones miss this event.
func (b *Broadcaster) Publish(kind domain.EventKind, payload any) {
	frame, err := domain.Encode(kind, payload)
	if err != nil {
		b.log.Error("failed to encode event", logger.String("type", string(kind)), logger.Error(err))
		return
	}

	b.mu.Lock()
	delivered := 0
	for _, c := range b.registry.Snapshot() {
		switch err := c.Send(frame); {
		case err == nil:
			delivered++
		case errors.Is(err, ErrChannelClosed):
			b.registry.Unregister(c)
		case errors.Is(err, ErrChannelFull):
			b.log.Debug("dropping event for slow client",
				logger.String("client", c.ID),
				logger.String("type", string(kind)))
		}
	}
	b.mu.Unlock()

	b.log.Debug("event published",
		logger.String("type", string(kind)),
		logger.Int("delivered", delivered))

	if err := b.exporter.Export(kind, frame); err != nil {
		b.log.Warn("failed to export event", logger.String("type", string(kind)), logger.Error(err))
	}
}
