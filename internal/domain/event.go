package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// EventKind tags a domain event on the wire.
type EventKind string

const (
	EventBookmarkCreated EventKind = "bookmark_created"
	EventBookmarkUpdated EventKind = "bookmark_updated"
	EventBookmarkDeleted EventKind = "bookmark_deleted"
	EventCategoryCreated EventKind = "category_created"
	EventCategoryUpdated EventKind = "category_updated"
	EventCategoryDeleted EventKind = "category_deleted"
	EventConnected       EventKind = "connected"
)

// ConnectedMessage is sent as the first frame on every stream.
const ConnectedMessage = "SSE connection established"

// Deleted is the payload of every *_deleted event.
type Deleted struct {
	ID int64 `json:"id"`
}

// Connected is the payload of the connected event.
type Connected struct {
	Message string `json:"message"`
}

// Event is the {type, data} envelope written to streams.
type Event struct {
	Type EventKind `json:"type"`
	Data any       `json:"data"`
}

// ErrMalformedEvent is returned by DecodeEvent for frames that do not
// match the envelope or the payload shape of their kind.
var ErrMalformedEvent = errors.New("malformed event")

// ErrUnknownEvent is returned for a well-formed envelope with an unknown type.
var ErrUnknownEvent = errors.New("unknown event type")

// Known reports whether k is one of the published kinds.
func (k EventKind) Known() bool {
	switch k {
	case EventBookmarkCreated, EventBookmarkUpdated, EventBookmarkDeleted,
		EventCategoryCreated, EventCategoryUpdated, EventCategoryDeleted, EventConnected:
		return true
	}
	return false
}

// Encode marshals the envelope.
func Encode(kind EventKind, payload any) ([]byte, error) {
	return json.Marshal(Event{Type: kind, Data: payload})
}

// DecodeEvent parses a frame into an Event whose Data is one of
// *Bookmark, *Category, Deleted or Connected.
func DecodeEvent(raw []byte) (Event, error) {
	var env struct {
		Type EventKind       `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if env.Type == "" || len(env.Data) == 0 {
		return Event{}, fmt.Errorf("%w: missing type or data", ErrMalformedEvent)
	}
	if !env.Type.Known() {
		return Event{}, fmt.Errorf("%w: %q", ErrUnknownEvent, env.Type)
	}

	ev := Event{Type: env.Type}
	switch env.Type {
	case EventBookmarkCreated, EventBookmarkUpdated:
		var b Bookmark
		if err := json.Unmarshal(env.Data, &b); err != nil || b.ID == 0 {
			return Event{}, fmt.Errorf("%w: bad bookmark payload", ErrMalformedEvent)
		}
		ev.Data = &b
	case EventCategoryCreated, EventCategoryUpdated:
		var c Category
		if err := json.Unmarshal(env.Data, &c); err != nil || c.ID == 0 {
			return Event{}, fmt.Errorf("%w: bad category payload", ErrMalformedEvent)
		}
		ev.Data = &c
	case EventBookmarkDeleted, EventCategoryDeleted:
		var d Deleted
		if err := json.Unmarshal(env.Data, &d); err != nil || d.ID == 0 {
			return Event{}, fmt.Errorf("%w: bad delete payload", ErrMalformedEvent)
		}
		ev.Data = d
	case EventConnected:
		var c Connected
		if err := json.Unmarshal(env.Data, &c); err != nil {
			return Event{}, fmt.Errorf("%w: bad connected payload", ErrMalformedEvent)
		}
		ev.Data = c
	}
	return ev, nil
}
