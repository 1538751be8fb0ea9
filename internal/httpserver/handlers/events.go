package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/linkvault/internal/domain"
	"github.com/MrSnakeDoc/linkvault/internal/events"
	"github.com/MrSnakeDoc/linkvault/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkvault/internal/logger"
)

var keepAliveFrame = []byte(": ping\n\n")

// Events serves the live-update stream. The first frame is always the
// connected event; domain events follow in publish order.
func Events(d deps.Deps) http.HandlerFunc {
	keepAlive := d.StreamKeepAlive
	if keepAlive <= 0 {
		keepAlive = 30 * time.Second
	}
	maxDuration := d.StreamMaxDuration
	if maxDuration <= 0 {
		maxDuration = time.Hour
	}

	return func(w http.ResponseWriter, r *http.Request) {
		rc := http.NewResponseController(w)

		// Streams outlive the server write timeout.
		if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
			d.Logger.Debug("failed to clear write deadline", logger.Error(err))
		}

		h := w.Header()
		h.Set("Content-Type", "text/event-stream")
		h.Set("Cache-Control", "no-cache")
		h.Set("Connection", "keep-alive")
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)

		ch := events.NewChannel(d.StreamBuffer)
		d.Registry.Register(ch)
		defer func() {
			d.Registry.Unregister(ch)
			ch.Close()
		}()

		log := d.Logger.With(logger.String("client", ch.ID))
		log.Debug("stream opened", logger.Int("clients", d.Registry.Len()))

		connected, err := domain.Encode(domain.EventConnected, domain.Connected{Message: domain.ConnectedMessage})
		if err != nil {
			log.Error("failed to encode connected event", logger.Error(err))
			return
		}
		if err := writeEvent(w, rc, connected); err != nil {
			return
		}

		ticker := time.NewTicker(keepAlive)
		defer ticker.Stop()
		deadline := time.NewTimer(maxDuration)
		defer deadline.Stop()

		reason := "client closed"
		defer func() {
			log.Debug("stream closed", logger.String("reason", reason))
		}()

		for {
			select {
			case <-r.Context().Done():
				return
			case <-ch.Done():
				reason = "server shutdown"
				return
			case <-deadline.C:
				reason = "max duration reached"
				return
			case frame := <-ch.Frames():
				if err := writeEvent(w, rc, frame); err != nil {
					reason = "write failed"
					return
				}
			case <-ticker.C:
				if err := writeRaw(w, rc, keepAliveFrame); err != nil {
					reason = "write failed"
					return
				}
			}
		}
	}
}

func writeEvent(w http.ResponseWriter, rc *http.ResponseController, payload []byte) error {
	buf := make([]byte, 0, len(payload)+8)
	buf = append(buf, "data: "...)
	buf = append(buf, payload...)
	buf = append(buf, '\n', '\n')
	return writeRaw(w, rc, buf)
}

func writeRaw(w http.ResponseWriter, rc *http.ResponseController, b []byte) error {
	if _, err := w.Write(b); err != nil {
		return err
	}
	return rc.Flush()
}
