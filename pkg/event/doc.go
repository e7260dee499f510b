// Package event defines the immutable business facts that enter the
// notification pipeline.
//
// An Event is produced upstream (order assignment, status change) and handed
// to the dispatcher. It is never mutated after creation; ledger entries only
// reference it by ID.
//
//	evt, err := event.New(event.KindOrderAssigned, event.Payload{
//		Title: "New order",
//		Body:  "Order #1042 is assigned to you",
//		Data:  map[string]any{"order_number": "1042", "price": 350},
//	})
package event
