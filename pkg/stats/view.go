package stats

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrymomot/dispatchkit/pkg/ledger"
)

// Row is one ledger entry as shown in the statistics view.
type Row struct {
	EventID       string           `json:"event_id"`
	RecipientID   string           `json:"recipient_id"`
	RecipientName string           `json:"recipient_name"`
	Status        ledger.Status    `json:"status"`
	StatusLabel   string           `json:"status_label"`
	Channels      []ledger.Channel `json:"channels"`
	CreatedAt     time.Time        `json:"created_at"`
	SentAt        *time.Time       `json:"sent_at,omitempty"`
	ReadAt        *time.Time       `json:"read_at,omitempty"`
}

// Summary counts rows per status.
type Summary struct {
	Total   int `json:"total"`
	NotSent int `json:"not_sent"`
	Sent    int `json:"sent"`
	Read    int `json:"read"`
}

// Report is a page of rows with its summary.
type Report struct {
	Language string  `json:"language"`
	Rows     []Row   `json:"rows"`
	Summary  Summary `json:"summary"`
}

// View builds statistics rows from a ledger.
type View struct {
	ledger    ledger.Ledger
	catalog   *Catalog
	directory Directory
}

// Option configures a View.
type Option func(*View)

// WithDirectory sets the recipient name source.
func WithDirectory(d Directory) Option {
	return func(v *View) {
		if d != nil {
			v.directory = d
		}
	}
}

// WithCatalog replaces the embedded label catalog.
func WithCatalog(c *Catalog) Option {
	return func(v *View) {
		if c != nil {
			v.catalog = c
		}
	}
}

// NewView creates a view over l using the embedded label catalog unless one
// is supplied.
func NewView(l ledger.Ledger, opts ...Option) (*View, error) {
	v := &View{
		ledger:    l,
		directory: NewMemoryDirectory(nil),
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.catalog == nil {
		c, err := DefaultCatalog()
		if err != nil {
			return nil, err
		}
		v.catalog = c
	}
	return v, nil
}

// Catalog returns the label catalog in use.
func (v *View) Catalog() *Catalog {
	return v.catalog
}

// Report queries the ledger and renders rows in the best language for
// prefs (tags or Accept-Language values). Recipients without a known name
// are shown by id.
func (v *View) Report(ctx context.Context, filter ledger.Filter, prefs ...string) (Report, error) {
	entries, err := v.ledger.Query(ctx, filter)
	if err != nil {
		return Report{}, errors.Join(ErrQueryFailed, err)
	}

	lang := v.catalog.Match(prefs...)
	rep := Report{Language: lang, Rows: make([]Row, 0, len(entries))}
	for _, e := range entries {
		name, ok := v.directory.Name(ctx, e.RecipientID)
		if !ok {
			name = e.RecipientID
		}
		rep.Rows = append(rep.Rows, Row{
			EventID:       e.EventID,
			RecipientID:   e.RecipientID,
			RecipientName: name,
			Status:        e.Status,
			StatusLabel:   v.catalog.Label(lang, e.Status),
			Channels:      e.Channels,
			CreatedAt:     e.CreatedAt,
			SentAt:        e.SentAt,
			ReadAt:        e.ReadAt,
		})
		rep.Summary.add(e.Status)
	}
	return rep, nil
}

func (s *Summary) add(status ledger.Status) {
	s.Total++
	switch status {
	case ledger.StatusNotSent:
		s.NotSent++
	case ledger.StatusSent:
		s.Sent++
	case ledger.StatusRead:
		s.Read++
	}
}
