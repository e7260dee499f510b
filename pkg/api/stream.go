package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/dmitrymomot/dispatchkit/pkg/auth"
	"github.com/dmitrymomot/dispatchkit/pkg/event"
	"github.com/dmitrymomot/dispatchkit/pkg/ledger"
	"github.com/dmitrymomot/dispatchkit/pkg/logger"
)

// Notification is the signal pushed to live clients for each event.
type Notification struct {
	Event event.Event    `json:"event"`
	Via   ledger.Channel `json:"via"`
}

// stream holds a live handle open for the session recipient until the
// request ends, the handle is closed, or a write fails.
func (a *API) stream(w http.ResponseWriter, r *http.Request) {
	recipientID, _ := auth.RecipientID(r.Context())
	if _, ok := w.(http.Flusher); !ok {
		writeError(w, http.StatusInternalServerError, ErrStreamUnsupported)
		return
	}

	conn, err := a.registry.Connect(r.Context(), recipientID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	defer a.registry.Disconnect(conn)

	sse := datastar.NewSSE(w, r)
	log := a.logger.With(logger.RecipientID(recipientID), slog.String("conn_id", conn.ID()))
	log.DebugContext(r.Context(), "live stream opened")

	heartbeat := time.NewTicker(a.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-conn.Done():
			return
		case evt, ok := <-conn.Outbound():
			if !ok {
				return
			}
			if err := sendSignals(sse, map[string]any{
				"notification": Notification{Event: evt, Via: ledger.ChannelLive},
			}); err != nil {
				log.WarnContext(r.Context(), "live stream write failed", logger.EventID(evt.ID), logger.Error(err))
				return
			}
		case now := <-heartbeat.C:
			if err := sendSignals(sse, map[string]any{"heartbeat": now.UnixMilli()}); err != nil {
				return
			}
		}
	}
}

func sendSignals(sse *datastar.ServerSentEventGenerator, signals map[string]any) error {
	data, err := json.Marshal(signals)
	if err != nil {
		return err
	}
	return sse.PatchSignals(data)
}
