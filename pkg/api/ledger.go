package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrymomot/dispatchkit/pkg/ledger"
	"github.com/dmitrymomot/dispatchkit/pkg/logger"
)

type ledgerResponse struct {
	Entries []ledger.Entry `json:"entries"`
}

func (a *API) queryLedger(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	entries, err := a.ledger.Query(r.Context(), filter)
	if err != nil {
		a.logger.ErrorContext(r.Context(), "ledger query failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, fmt.Errorf("ledger query failed"))
		return
	}
	if entries == nil {
		entries = []ledger.Entry{}
	}
	writeJSON(w, http.StatusOK, ledgerResponse{Entries: entries})
}

func (a *API) queryStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter, err := parseFilter(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var prefs []string
	if lang := q.Get("lang"); lang != "" {
		prefs = append(prefs, lang)
	}
	if accept := r.Header.Get("Accept-Language"); accept != "" {
		prefs = append(prefs, accept)
	}

	report, err := a.stats.Report(r.Context(), filter, prefs...)
	if err != nil {
		a.logger.ErrorContext(r.Context(), "stats query failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, fmt.Errorf("stats query failed"))
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// parseFilter reads recipient_id, event_id, status (repeated or comma
// separated), since (RFC 3339), limit and offset.
func parseFilter(q url.Values) (ledger.Filter, error) {
	f := ledger.Filter{
		RecipientID: q.Get("recipient_id"),
		EventID:     q.Get("event_id"),
		Limit:       DefaultQueryLimit,
	}

	for _, raw := range q["status"] {
		for v := range strings.SplitSeq(raw, ",") {
			if v = strings.TrimSpace(v); v == "" {
				continue
			}
			s, err := ledger.ParseStatus(v)
			if err != nil {
				return ledger.Filter{}, fmt.Errorf("%w: %w", ErrInvalidQuery, err)
			}
			f.Statuses = append(f.Statuses, s)
		}
	}

	if v := q.Get("since"); v != "" {
		since, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return ledger.Filter{}, fmt.Errorf("%w: since must be RFC 3339", ErrInvalidQuery)
		}
		f.Since = &since
	}

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > MaxQueryLimit {
			return ledger.Filter{}, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidQuery, MaxQueryLimit)
		}
		f.Limit = n
	}

	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return ledger.Filter{}, fmt.Errorf("%w: offset must be a non-negative integer", ErrInvalidQuery)
		}
		f.Offset = n
	}

	return f, nil
}
