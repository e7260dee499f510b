package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/dispatchkit/pkg/dispatch"
	"github.com/dmitrymomot/dispatchkit/pkg/event"
	"github.com/dmitrymomot/dispatchkit/pkg/logger"
)

// dispatchRequest is the body of POST /internal/events. Upstream retries
// must reuse ID; a generated ID makes every call a new event.
type dispatchRequest struct {
	ID         string        `json:"id"`
	Kind       event.Kind    `json:"kind"`
	Payload    event.Payload `json:"payload"`
	CreatedAt  *time.Time    `json:"created_at"`
	Supersedes string        `json:"supersedes"`
	Recipients []string      `json:"recipients"`
}

func (req dispatchRequest) event() event.Event {
	evt := event.Event{
		ID:         req.ID,
		Kind:       req.Kind,
		Payload:    req.Payload,
		CreatedAt:  time.Now().UTC(),
		Supersedes: req.Supersedes,
	}
	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}
	if req.CreatedAt != nil {
		evt.CreatedAt = req.CreatedAt.UTC()
	}
	return evt
}

func (a *API) dispatchEvent(w http.ResponseWriter, r *http.Request) {
	var req dispatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, bindStatus(err), err)
		return
	}

	evt := req.event()
	// A client hanging up must not abort deliveries already in flight.
	report, err := a.dispatcher.Dispatch(context.WithoutCancel(r.Context()), evt, req.Recipients)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, report)
	case isMalformed(err):
		writeError(w, http.StatusBadRequest, err)
	default:
		a.logger.ErrorContext(r.Context(), "dispatch failed", logger.EventID(evt.ID), logger.Error(err))
		writeError(w, http.StatusInternalServerError, errors.New("dispatch failed"))
	}
}

func isMalformed(err error) bool {
	return errors.Is(err, event.ErrInvalidEvent) ||
		errors.Is(err, dispatch.ErrNoRecipients) ||
		errors.Is(err, dispatch.ErrInvalidRecipient)
}
