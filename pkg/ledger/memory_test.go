package ledger

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLedger_Ensure(t *testing.T) {
	ctx := context.Background()

	t.Run("creates not_sent entry", func(t *testing.T) {
		l := NewMemoryLedger()

		e, err := l.Ensure(ctx, "42", "7")
		require.NoError(t, err)
		assert.Equal(t, StatusNotSent, e.Status)
		assert.Empty(t, e.Channels)
		assert.Nil(t, e.SentAt)
		assert.Nil(t, e.ReadAt)
	})

	t.Run("is idempotent", func(t *testing.T) {
		l := NewMemoryLedger()

		_, err := l.Ensure(ctx, "42", "7")
		require.NoError(t, err)
		_, err = l.RecordSent(ctx, "42", "7", ChannelLive)
		require.NoError(t, err)

		e, err := l.Ensure(ctx, "42", "7")
		require.NoError(t, err)
		assert.Equal(t, StatusSent, e.Status, "ensure must not reset an existing entry")

		all, err := l.Query(ctx, Filter{})
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("rejects empty key", func(t *testing.T) {
		l := NewMemoryLedger()
		_, err := l.Ensure(ctx, "", "7")
		assert.ErrorIs(t, err, ErrInvalidKey)
	})

	t.Run("concurrent duplicate ensures create one entry", func(t *testing.T) {
		l := NewMemoryLedger()

		var wg sync.WaitGroup
		for range 50 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = l.Ensure(ctx, "42", "7")
			}()
		}
		wg.Wait()

		all, err := l.Query(ctx, Filter{})
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})
}

func TestMemoryLedger_RecordSent(t *testing.T) {
	ctx := context.Background()

	t.Run("first send advances status", func(t *testing.T) {
		l := NewMemoryLedger()
		_, _ = l.Ensure(ctx, "42", "7")

		e, err := l.RecordSent(ctx, "42", "7", ChannelLive)
		require.NoError(t, err)
		assert.Equal(t, StatusSent, e.Status)
		assert.Equal(t, []Channel{ChannelLive}, e.Channels)
		require.NotNil(t, e.SentAt)
	})

	t.Run("second channel merges without touching sent_at", func(t *testing.T) {
		clock := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
		l := NewMemoryLedger(WithMemoryClock(func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		}))
		_, _ = l.Ensure(ctx, "42", "7")

		first, err := l.RecordSent(ctx, "42", "7", ChannelPush)
		require.NoError(t, err)
		second, err := l.RecordSent(ctx, "42", "7", ChannelLive)
		require.NoError(t, err)

		assert.Equal(t, StatusSent, second.Status)
		assert.Equal(t, []Channel{ChannelLive, ChannelPush}, second.Channels)
		assert.Equal(t, *first.SentAt, *second.SentAt)
	})

	t.Run("same channel twice stays a set", func(t *testing.T) {
		l := NewMemoryLedger()
		_, _ = l.Ensure(ctx, "42", "7")
		_, _ = l.RecordSent(ctx, "42", "7", ChannelPush)

		e, err := l.RecordSent(ctx, "42", "7", ChannelPush)
		require.NoError(t, err)
		assert.Equal(t, []Channel{ChannelPush}, e.Channels)
	})

	t.Run("send after read keeps read", func(t *testing.T) {
		l := NewMemoryLedger()
		_, _ = l.Ensure(ctx, "42", "7")
		_, _ = l.RecordSent(ctx, "42", "7", ChannelLive)
		_, _ = l.RecordRead(ctx, "42", "7")

		e, err := l.RecordSent(ctx, "42", "7", ChannelPush)
		require.NoError(t, err)
		assert.Equal(t, StatusRead, e.Status)
		assert.True(t, e.HasChannel(ChannelPush))
	})

	t.Run("unknown pair", func(t *testing.T) {
		l := NewMemoryLedger()
		_, err := l.RecordSent(ctx, "42", "7", ChannelLive)
		assert.ErrorIs(t, err, ErrEntryNotFound)
	})

	t.Run("unknown channel", func(t *testing.T) {
		l := NewMemoryLedger()
		_, _ = l.Ensure(ctx, "42", "7")
		_, err := l.RecordSent(ctx, "42", "7", Channel("sms"))
		assert.ErrorIs(t, err, ErrInvalidChannel)
	})
}

func TestMemoryLedger_RecordRead(t *testing.T) {
	ctx := context.Background()

	t.Run("read before sent is rejected", func(t *testing.T) {
		l := NewMemoryLedger()
		_, _ = l.Ensure(ctx, "43", "9")

		e, err := l.RecordRead(ctx, "43", "9")
		assert.ErrorIs(t, err, ErrNotSent)
		assert.True(t, IsRejectedAck(err))
		assert.Equal(t, StatusNotSent, e.Status)

		stored, err := l.Get(ctx, "43", "9")
		require.NoError(t, err)
		assert.Equal(t, StatusNotSent, stored.Status)
		assert.Nil(t, stored.ReadAt)
	})

	t.Run("read without entry is rejected", func(t *testing.T) {
		l := NewMemoryLedger()
		_, err := l.RecordRead(ctx, "43", "9")
		assert.ErrorIs(t, err, ErrEntryNotFound)
		assert.True(t, IsRejectedAck(err))
	})

	t.Run("read after sent", func(t *testing.T) {
		l := NewMemoryLedger()
		_, _ = l.Ensure(ctx, "42", "7")
		_, _ = l.RecordSent(ctx, "42", "7", ChannelLive)

		e, err := l.RecordRead(ctx, "42", "7")
		require.NoError(t, err)
		assert.Equal(t, StatusRead, e.Status)
		require.NotNil(t, e.ReadAt)
	})

	t.Run("duplicate read is a no-op", func(t *testing.T) {
		l := NewMemoryLedger()
		_, _ = l.Ensure(ctx, "42", "7")
		_, _ = l.RecordSent(ctx, "42", "7", ChannelLive)

		first, err := l.RecordRead(ctx, "42", "7")
		require.NoError(t, err)
		second, err := l.RecordRead(ctx, "42", "7")
		require.NoError(t, err)
		assert.Equal(t, *first.ReadAt, *second.ReadAt)
	})
}

// Random interleavings of sends and reads must never regress the status or
// produce read without sent.
func TestMemoryLedger_MonotonicUnderInterleavings(t *testing.T) {
	ctx := context.Background()

	for seed := range uint64(20) {
		t.Run(fmt.Sprintf("seed_%d", seed), func(t *testing.T) {
			rng := rand.New(rand.NewPCG(seed, seed*31+7))
			l := NewMemoryLedger()
			_, err := l.Ensure(ctx, "e", "r")
			require.NoError(t, err)

			ops := make([]func() (Entry, error), 0, 40)
			for range 40 {
				switch rng.IntN(3) {
				case 0:
					ops = append(ops, func() (Entry, error) { return l.RecordSent(ctx, "e", "r", ChannelPush) })
				case 1:
					ops = append(ops, func() (Entry, error) { return l.RecordSent(ctx, "e", "r", ChannelLive) })
				default:
					ops = append(ops, func() (Entry, error) { return l.RecordRead(ctx, "e", "r") })
				}
			}

			var (
				mu       sync.Mutex
				observed []Entry
				wg       sync.WaitGroup
			)
			for _, op := range ops {
				wg.Add(1)
				go func() {
					defer wg.Done()
					e, _ := op()
					mu.Lock()
					observed = append(observed, e)
					mu.Unlock()
				}()
			}
			wg.Wait()

			for _, e := range observed {
				if e.Status == StatusRead {
					assert.NotNil(t, e.SentAt, "read without sent_at")
				}
				if e.Status == StatusNotSent {
					assert.Empty(t, e.Channels)
				}
			}

			final, err := l.Get(ctx, "e", "r")
			require.NoError(t, err)
			for _, e := range observed {
				assert.True(t, final.Status.AtLeast(e.Status), "final status regressed below an observed one")
			}
		})
	}
}

func TestMemoryLedger_Query(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	tick := 0
	l := NewMemoryLedger(WithMemoryClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}))

	_, _ = l.Ensure(ctx, "e1", "alice")
	_, _ = l.Ensure(ctx, "e1", "bob")
	_, _ = l.Ensure(ctx, "e2", "alice")
	_, _ = l.RecordSent(ctx, "e1", "alice", ChannelLive)

	t.Run("newest first", func(t *testing.T) {
		all, err := l.Query(ctx, Filter{})
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "e2", all[0].EventID)
		assert.Equal(t, "bob", all[1].RecipientID)
		assert.Equal(t, "alice", all[2].RecipientID)
	})

	t.Run("by recipient and status", func(t *testing.T) {
		got, err := l.Query(ctx, Filter{RecipientID: "alice", Statuses: []Status{StatusSent}})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "e1", got[0].EventID)
	})

	t.Run("since", func(t *testing.T) {
		since := base.Add(2 * time.Minute)
		got, err := l.Query(ctx, Filter{Since: &since})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("pagination", func(t *testing.T) {
		got, err := l.Query(ctx, Filter{Limit: 1, Offset: 1})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "bob", got[0].RecipientID)

		got, err = l.Query(ctx, Filter{Offset: 10})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("negative paging is ignored", func(t *testing.T) {
		got, err := l.Query(ctx, Filter{Limit: -1, Offset: -5})
		require.NoError(t, err)
		assert.Len(t, got, 3)

		got, err = l.Query(ctx, Filter{Limit: 1, Offset: -1})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "e2", got[0].EventID)
	})

	t.Run("returned entries are copies", func(t *testing.T) {
		got, err := l.Query(ctx, Filter{EventID: "e1", RecipientID: "alice"})
		require.NoError(t, err)
		got[0].Channels[0] = ChannelPush

		stored, err := l.Get(ctx, "e1", "alice")
		require.NoError(t, err)
		assert.Equal(t, []Channel{ChannelLive}, stored.Channels)
	})
}
