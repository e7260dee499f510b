package live

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/dispatchkit/pkg/event"
)

// Conn is one open live connection of a recipient.
type Conn struct {
	id          string
	recipientID string
	openedAt    time.Time

	out       chan event.Event
	done      chan struct{}
	closeOnce sync.Once

	closed bool
	mu     sync.RWMutex
}

func newConn(recipientID string, bufferSize int) *Conn {
	return &Conn{
		id:          uuid.NewString(),
		recipientID: recipientID,
		openedAt:    time.Now().UTC(),
		out:         make(chan event.Event, bufferSize),
		done:        make(chan struct{}),
	}
}

func (c *Conn) ID() string          { return c.id }
func (c *Conn) RecipientID() string { return c.recipientID }
func (c *Conn) OpenedAt() time.Time { return c.openedAt }

// Send queues evt for the transport without blocking.
func (c *Conn) Send(evt event.Event) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return ErrClosed
	}

	select {
	case c.out <- evt:
		return nil
	default:
		return ErrBackpressure
	}
}

// Outbound returns the queue the transport drains. It is closed by Close.
func (c *Conn) Outbound() <-chan event.Event {
	return c.out
}

// Done is closed once the connection is closed.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

// Closed reports whether Close was called.
func (c *Conn) Closed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// Close is idempotent.
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.out)
		c.mu.Unlock()
		close(c.done)
	})
}
