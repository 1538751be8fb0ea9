// Package subscriber consumes the live-update stream: a reconnecting
// transport state machine feeding a pure event dispatcher.
package subscriber

import (
	"errors"

	"github.com/MrSnakeDoc/linkvault/internal/domain"
	"github.com/MrSnakeDoc/linkvault/internal/logger"
)

// Handlers are the caller's callbacks, one per event kind. Nil callbacks
// are skipped.
type Handlers struct {
	OnConnected       func(domain.Connected)
	OnBookmarkCreated func(domain.Bookmark)
	OnBookmarkUpdated func(domain.Bookmark)
	OnBookmarkDeleted func(domain.Deleted)
	OnCategoryCreated func(domain.Category)
	OnCategoryUpdated func(domain.Category)
	OnCategoryDeleted func(domain.Deleted)
}

// Dispatcher decodes frames and routes them to Handlers. Bookmark events
// are admitted through the same visibility rule the server applies, so a
// local view built from a filtered listing stays consistent with it.
type Dispatcher struct {
	handlers   Handlers
	filter     domain.Filter
	capability domain.Capability
	log        logger.Logger
}

// NewDispatcher creates a Dispatcher that admits bookmark events matching
// f for a caller with capability c. A nil log discards output.
func NewDispatcher(h Handlers, f domain.Filter, c domain.Capability, log logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.NewNop()
	}
	return &Dispatcher{handlers: h, filter: f.Normalize(), capability: c, log: log}
}

// Dispatch handles one frame. It never panics on bad input: malformed
// frames and unknown kinds are logged and dropped.
func (d *Dispatcher) Dispatch(raw []byte) {
	ev, err := domain.DecodeEvent(raw)
	switch {
	case errors.Is(err, domain.ErrUnknownEvent):
		d.log.Debug("dropping unknown event", logger.Error(err))
		return
	case err != nil:
		d.log.Warn("dropping malformed event", logger.Error(err))
		return
	}

	h := d.handlers
	switch ev.Type {
	case domain.EventConnected:
		if h.OnConnected != nil {
			h.OnConnected(ev.Data.(domain.Connected))
		}

	case domain.EventBookmarkCreated:
		b := *ev.Data.(*domain.Bookmark)
		if !d.admit(b) {
			d.log.Debug("discarding bookmark outside view", logger.Int64("id", b.ID))
			return
		}
		if h.OnBookmarkCreated != nil {
			h.OnBookmarkCreated(b)
		}

	case domain.EventBookmarkUpdated:
		b := *ev.Data.(*domain.Bookmark)
		if !d.admit(b) {
			// It may have been visible before the update.
			if h.OnBookmarkDeleted != nil {
				h.OnBookmarkDeleted(domain.Deleted{ID: b.ID})
			}
			return
		}
		if h.OnBookmarkUpdated != nil {
			h.OnBookmarkUpdated(b)
		}

	case domain.EventBookmarkDeleted:
		if h.OnBookmarkDeleted != nil {
			h.OnBookmarkDeleted(ev.Data.(domain.Deleted))
		}

	case domain.EventCategoryCreated:
		if h.OnCategoryCreated != nil {
			h.OnCategoryCreated(*ev.Data.(*domain.Category))
		}

	case domain.EventCategoryUpdated:
		if h.OnCategoryUpdated != nil {
			h.OnCategoryUpdated(*ev.Data.(*domain.Category))
		}

	case domain.EventCategoryDeleted:
		if h.OnCategoryDeleted != nil {
			h.OnCategoryDeleted(ev.Data.(domain.Deleted))
		}
	}
}

func (d *Dispatcher) admit(b domain.Bookmark) bool {
	return domain.Matches(b, d.filter, d.capability)
}
