// Package ledger keeps the durable per-(event, recipient) delivery record used
// for auditing and the statistics view.
//
// Each entry is identified by the composite key (event_id, recipient_id) and
// moves strictly forward through not_sent → sent → read. Channel usage is a
// set: recording a send twice (both channels succeeded) merges the channel
// into the entry without touching its status.
//
// Three backends share the same semantics:
//
//   - MemoryLedger: in-process, for development and tests
//   - PostgresLedger: pgx pool, row-level atomic updates
//   - MongoLedger: single-document atomic updates with a unique index
//
// Basic usage:
//
//	l := ledger.NewMemoryLedger()
//	_, _ = l.Ensure(ctx, "evt-42", "courier-7")
//	_, _ = l.RecordSent(ctx, "evt-42", "courier-7", ledger.ChannelLive)
//	entry, err := l.RecordRead(ctx, "evt-42", "courier-7")
//
// RecordRead before any send is rejected with ErrNotSent and leaves the entry
// untouched. Repeated RecordRead on a read entry is a no-op.
package ledger
