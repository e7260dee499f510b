// Package dispatch fans an event out to its recipients.
//
// For every recipient the Dispatcher ensures a ledger entry, resolves the
// recipient's endpoints and attempts delivery on all of them concurrently.
// Every successful attempt records its channel in the ledger; the first one
// moves the entry to sent. Failures are reported per recipient in the
// returned Report and never fail the call as a whole. Only malformed input
// (an invalid event or no recipients) is rejected with an error.
//
// Recipients are processed by a bounded worker pool. Re-dispatching the same
// event is safe: the ledger key (event id, recipient id) keeps one entry per
// pair.
//
//	d := dispatch.New(ledger, registry,
//		dispatch.WithDeliverer(ledger.ChannelPush, dispatch.NewPushDeliverer(provider, registry)),
//		dispatch.WithDeliverer(ledger.ChannelLive, dispatch.LiveDeliverer{}),
//		dispatch.WithWorkers(32),
//	)
//	report, err := d.Dispatch(ctx, evt, []string{"courier_7", "courier_9"})
package dispatch
