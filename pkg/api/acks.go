package api

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/dispatchkit/pkg/auth"
	"github.com/dmitrymomot/dispatchkit/pkg/ledger"
	"github.com/dmitrymomot/dispatchkit/pkg/logger"
)

type ackRequest struct {
	EventID string `json:"event_id"`
}

// ackResponse tells the client whether the read was recorded. Retry is set
// when the entry is not marked sent yet, which happens when a live ack
// overtakes the sent transition.
type ackResponse struct {
	Recorded bool `json:"recorded"`
	Retry    bool `json:"retry,omitempty"`
}

// acknowledge records a read for the session recipient. Rejected and
// duplicate acks are answered with 202 like accepted ones; the body says
// whether the read was recorded. Only a storage failure is an error status.
func (a *API) acknowledge(w http.ResponseWriter, r *http.Request) {
	recipientID, _ := auth.RecipientID(r.Context())

	var req ackRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, bindStatus(err), err)
		return
	}
	if req.EventID == "" {
		writeError(w, http.StatusBadRequest, errors.New("event_id is required"))
		return
	}

	_, err := a.ledger.RecordRead(r.Context(), req.EventID, recipientID)
	resp := ackResponse{Recorded: err == nil}
	switch {
	case err == nil:
	case ledger.IsRejectedAck(err):
		resp.Retry = errors.Is(err, ledger.ErrNotSent)
		a.logger.DebugContext(r.Context(), "ack ignored",
			logger.EventID(req.EventID),
			logger.RecipientID(recipientID),
			logger.Error(err),
		)
	default:
		a.logger.ErrorContext(r.Context(), "record read failed",
			logger.EventID(req.EventID),
			logger.RecipientID(recipientID),
			logger.Error(err),
		)
		writeError(w, http.StatusServiceUnavailable, errors.New("ledger unavailable"))
		return
	}
	writeJSON(w, http.StatusAccepted, resp)
}
