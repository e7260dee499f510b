package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/dispatchkit/pkg/auth"
	"github.com/dmitrymomot/dispatchkit/pkg/logger"
	"github.com/dmitrymomot/dispatchkit/pkg/push"
	"github.com/dmitrymomot/dispatchkit/pkg/registry"
)

type pushTargetRequest struct {
	Token string `json:"token"`
}

func (a *API) registerPushTarget(w http.ResponseWriter, r *http.Request) {
	recipientID, _ := auth.RecipientID(r.Context())

	var req pushTargetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, bindStatus(err), err)
		return
	}

	if err := a.registry.RegisterPushTarget(r.Context(), recipientID, req.Token); err != nil {
		a.targetError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) invalidatePushTarget(w http.ResponseWriter, r *http.Request) {
	recipientID, _ := auth.RecipientID(r.Context())

	if err := a.registry.InvalidatePushTarget(r.Context(), recipientID, chi.URLParam(r, "token")); err != nil {
		a.targetError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) targetError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, push.ErrInvalidTarget) || errors.Is(err, registry.ErrInvalidRecipient) {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	recipientID, _ := auth.RecipientID(r.Context())
	a.logger.ErrorContext(r.Context(), "push target update failed",
		logger.RecipientID(recipientID),
		logger.Error(err),
	)
	writeError(w, http.StatusServiceUnavailable, errors.New("push target storage unavailable"))
}
