package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestEncodeDecodeEvent(t *testing.T) {
	raw, err := Encode(EventConnected, Connected{Message: ConnectedMessage})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := `{"type":"connected","data":{"message":"SSE connection established"}}`
	if string(raw) != want {
		t.Fatalf("Encode = %s, want %s", raw, want)
	}

	ev, err := DecodeEvent(raw)
	if err != nil {
		t.Fatalf("DecodeEvent: %v", err)
	}
	c, ok := ev.Data.(Connected)
	if !ok || c.Message != ConnectedMessage {
		t.Errorf("unexpected payload %#v", ev.Data)
	}
}

func TestDecodeEventPayloads(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
		check   func(t *testing.T, ev Event)
	}{
		{
			name: "bookmark created",
			raw:  `{"type":"bookmark_created","data":{"id":7,"title":"Go","url":"https://go.dev","category_id":null,"is_private":false}}`,
			check: func(t *testing.T, ev Event) {
				b, ok := ev.Data.(*Bookmark)
				if !ok || b.ID != 7 || b.CategoryID != nil {
					t.Errorf("unexpected bookmark payload %#v", ev.Data)
				}
			},
		},
		{
			name: "category updated",
			raw:  `{"type":"category_updated","data":{"id":2,"name":"Work","color":"#10B981"}}`,
			check: func(t *testing.T, ev Event) {
				c, ok := ev.Data.(*Category)
				if !ok || c.Name != "Work" {
					t.Errorf("unexpected category payload %#v", ev.Data)
				}
			},
		},
		{
			name: "bookmark deleted",
			raw:  `{"type":"bookmark_deleted","data":{"id":3}}`,
			check: func(t *testing.T, ev Event) {
				if d, ok := ev.Data.(Deleted); !ok || d.ID != 3 {
					t.Errorf("unexpected delete payload %#v", ev.Data)
				}
			},
		},
		{name: "not json", raw: `data: nope`, wantErr: ErrMalformedEvent},
		{name: "missing data", raw: `{"type":"bookmark_created"}`, wantErr: ErrMalformedEvent},
		{name: "delete without id", raw: `{"type":"category_deleted","data":{}}`, wantErr: ErrMalformedEvent},
		{name: "bookmark wrong shape", raw: `{"type":"bookmark_updated","data":[1,2]}`, wantErr: ErrMalformedEvent},
		{name: "unknown type", raw: `{"type":"bookmark_archived","data":{"id":1}}`, wantErr: ErrUnknownEvent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := DecodeEvent([]byte(tt.raw))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("DecodeEvent() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeEvent() unexpected error: %v", err)
			}
			tt.check(t, ev)
		})
	}
}

func TestEventKindKnown(t *testing.T) {
	if !EventBookmarkDeleted.Known() {
		t.Error("bookmark_deleted should be known")
	}
	if EventKind("ping").Known() {
		t.Error("ping should not be known")
	}
	if _, err := DecodeEvent([]byte(`{"type":"ping","data":{}}`)); !errors.Is(err, ErrUnknownEvent) {
		t.Errorf("DecodeEvent(ping) error = %v, want ErrUnknownEvent", err)
	}
}

func TestRedactedOmitsCredentials(t *testing.T) {
	b := Bookmark{ID: 1, Title: "NAS", URL: "https://nas.lan", Username: strPtr("root"), Password: strPtr("hunter2")}
	raw, err := Encode(EventBookmarkCreated, b.Redacted())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if strings.Contains(string(raw), "hunter2") || strings.Contains(string(raw), "username") {
		t.Errorf("redacted payload leaks credentials: %s", raw)
	}
	if b.Password == nil {
		t.Error("Redacted must not modify the receiver")
	}
}
