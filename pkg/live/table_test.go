package live_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dispatchkit/pkg/live"
)

func TestTable_ConnectLookup(t *testing.T) {
	t.Parallel()

	table := live.NewTable()
	phone := table.Connect(t.Context(), "courier_7")
	tablet := table.Connect(t.Context(), "courier_7")
	other := table.Connect(t.Context(), "courier_9")

	conns := table.Lookup("courier_7")
	require.Len(t, conns, 2)
	assert.Contains(t, conns, phone)
	assert.Contains(t, conns, tablet)
	assert.Equal(t, 3, table.Len())

	table.Disconnect(phone)
	assert.Equal(t, []*live.Conn{tablet}, table.Lookup("courier_7"))
	assert.Equal(t, []*live.Conn{other}, table.Lookup("courier_9"))
	assert.Empty(t, table.Lookup("courier_1"))
	assert.Equal(t, 2, table.Len())
}

func TestTable_ContextCancelDisconnects(t *testing.T) {
	t.Parallel()

	var open atomic.Int64
	table := live.NewTable(live.WithObserver(func(n int) { open.Store(int64(n)) }))

	ctx, cancel := context.WithCancel(context.Background())
	conn := table.Connect(ctx, "courier_7")
	assert.Equal(t, int64(1), open.Load())

	cancel()

	select {
	case <-conn.Done():
	case <-time.After(time.Second):
		t.Fatal("connection was not closed after context cancel")
	}
	assert.Eventually(t, func() bool { return table.Len() == 0 }, time.Second, 5*time.Millisecond)
	assert.Empty(t, table.Lookup("courier_7"))
	assert.Eventually(t, func() bool { return open.Load() == 0 }, time.Second, 5*time.Millisecond)
}

func TestTable_DisconnectTwice(t *testing.T) {
	t.Parallel()

	table := live.NewTable()
	conn := table.Connect(t.Context(), "courier_7")
	table.Disconnect(conn)
	table.Disconnect(conn)

	assert.Equal(t, 0, table.Len())
}

func TestTable_ConnCloseRemovesFromTable(t *testing.T) {
	t.Parallel()

	table := live.NewTable()
	conn := table.Connect(t.Context(), "courier_7")
	conn.Close()

	assert.Empty(t, table.Lookup("courier_7"))
	assert.Eventually(t, func() bool { return table.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestTable_Close(t *testing.T) {
	t.Parallel()

	table := live.NewTable()
	a := table.Connect(t.Context(), "courier_7")
	b := table.Connect(t.Context(), "courier_9")

	table.Close()

	assert.True(t, a.Closed())
	assert.True(t, b.Closed())
	assert.Equal(t, 0, table.Len())
}
