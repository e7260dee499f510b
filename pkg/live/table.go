package live

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/dmitrymomot/dispatchkit/pkg/logger"
)

// Table holds the open connections per recipient. Safe for concurrent use.
type Table struct {
	conns      map[string][]*Conn
	total      int
	bufferSize int
	logger     *slog.Logger
	observe    func(open int)
	mu         sync.RWMutex
}

// NewTable creates an empty connection table.
func NewTable(opts ...Option) *Table {
	t := &Table{
		conns:      make(map[string][]*Conn),
		bufferSize: DefaultBufferSize,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Connect opens a connection for recipientID. The connection is removed from
// the table when ctx is cancelled or the connection is closed.
func (t *Table) Connect(ctx context.Context, recipientID string) *Conn {
	conn := newConn(recipientID, t.bufferSize)

	t.mu.Lock()
	t.conns[recipientID] = append(t.conns[recipientID], conn)
	t.total++
	open := t.total
	t.mu.Unlock()

	t.logger.DebugContext(ctx, "live connection opened",
		logger.RecipientID(recipientID),
		slog.String("conn_id", conn.id),
	)
	t.notify(open)

	go func() {
		select {
		case <-ctx.Done():
		case <-conn.Done():
		}
		t.Disconnect(conn)
	}()

	return conn
}

// Disconnect removes conn from the table and closes it. Safe to call more
// than once and concurrently with Send.
func (t *Table) Disconnect(conn *Conn) {
	t.mu.Lock()
	list := t.conns[conn.recipientID]
	idx := slices.Index(list, conn)
	if idx >= 0 {
		list = slices.Delete(list, idx, idx+1)
		if len(list) == 0 {
			delete(t.conns, conn.recipientID)
		} else {
			t.conns[conn.recipientID] = list
		}
		t.total--
	}
	open := t.total
	t.mu.Unlock()

	conn.Close()

	if idx >= 0 {
		t.logger.Debug("live connection closed",
			logger.RecipientID(conn.recipientID),
			slog.String("conn_id", conn.id),
		)
		t.notify(open)
	}
}

// Lookup returns the open connections of recipientID at call time. A
// connection may still close before it is used; Send then returns ErrClosed.
func (t *Table) Lookup(recipientID string) []*Conn {
	t.mu.RLock()
	defer t.mu.RUnlock()

	list := t.conns[recipientID]
	out := make([]*Conn, 0, len(list))
	for _, c := range list {
		if !c.Closed() {
			out = append(out, c)
		}
	}
	return out
}

// Len returns the total number of open connections.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.total
}

// Close disconnects every connection.
func (t *Table) Close() {
	t.mu.Lock()
	var all []*Conn
	for _, list := range t.conns {
		all = append(all, list...)
	}
	t.conns = make(map[string][]*Conn)
	t.total = 0
	t.mu.Unlock()

	for _, c := range all {
		c.Close()
	}
	t.notify(0)
}

func (t *Table) notify(open int) {
	if t.observe != nil {
		t.observe(open)
	}
}
