package events

import (
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"

	"github.com/MrSnakeDoc/linkvault/internal/domain"
	"github.com/MrSnakeDoc/linkvault/internal/logger"
)

// startTestNATS starts an embedded NATS server and returns its client URL.
func startTestNATS(t *testing.T) string {
	t.Helper()
	opts := &natsserver.Options{Host: "127.0.0.1", Port: -1}
	srv, err := natsserver.NewServer(opts)
	if err != nil {
		t.Fatalf("starting embedded NATS: %v", err)
	}
	srv.Start()
	t.Cleanup(srv.Shutdown)
	if !srv.ReadyForConnections(5 * time.Second) {
		t.Fatal("embedded NATS not ready")
	}
	return srv.ClientURL()
}

func TestNATSExporterPublishesFrames(t *testing.T) {
	url := startTestNATS(t)

	exp, err := NewNATSExporter(url, "vault")
	if err != nil {
		t.Fatalf("creating exporter: %v", err)
	}
	defer exp.Close()

	if !exp.Connected() {
		t.Fatal("exporter should be connected")
	}
	if got := exp.Subject(domain.EventBookmarkCreated); got != "vault.bookmark_created" {
		t.Errorf("Subject() = %q", got)
	}

	nc, err := nats.Connect(url)
	if err != nil {
		t.Fatalf("connecting: %v", err)
	}
	defer nc.Close()

	ch := make(chan *nats.Msg, 4)
	sub, err := nc.ChanSubscribe("vault.>", ch)
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}
	defer sub.Unsubscribe()
	if err := nc.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	b := NewBroadcaster(NewRegistry(), exp, logger.NewNop())
	b.Publish(domain.EventBookmarkDeleted, domain.Deleted{ID: 5})

	select {
	case msg := <-ch:
		if msg.Subject != "vault.bookmark_deleted" {
			t.Errorf("subject = %q", msg.Subject)
		}
		if string(msg.Data) != `{"type":"bookmark_deleted","data":{"id":5}}` {
			t.Errorf("data = %s", msg.Data)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for exported event")
	}
}

func TestNATSExporterDefaultPrefix(t *testing.T) {
	url := startTestNATS(t)

	exp, err := NewNATSExporter(url, "")
	if err != nil {
		t.Fatalf("creating exporter: %v", err)
	}
	defer exp.Close()

	if got := exp.Subject(domain.EventConnected); got != "linkvault.connected" {
		t.Errorf("Subject() = %q", got)
	}
}
