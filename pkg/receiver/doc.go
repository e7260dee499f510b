// Package receiver is the recipient-side half of the pipeline.
//
// A Receiver accepts events from either channel, presents each event id at
// most once within a bounded window, and acknowledges every presented
// event. Acknowledgement is at-least-once: a failed ack stays pending and is
// retried by FlushAcks (for example after a reconnect). Repeated acks are
// harmless because the ledger treats a duplicate read as a no-op.
//
//	r := receiver.New(receiver.NewHTTPAcknowledger(baseURL, sessionToken),
//		receiver.WithPresenter(showNotification),
//	)
//	presented, err := r.Receive(ctx, evt, ledger.ChannelPush)
package receiver
