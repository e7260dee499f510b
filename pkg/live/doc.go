// Package live tracks open live connections for recipients.
//
// A Conn is a bounded outbound queue of events owned by one transport
// session (an SSE stream, for example). Writes never block: a full buffer
// fails with ErrBackpressure and a closed connection fails with ErrClosed,
// so a disconnect racing a write surfaces as an error instead of a panic.
//
// Table maps recipient ids to their open connections. A recipient may hold
// several connections at once (one per device or tab).
//
//	table := live.NewTable(live.WithBufferSize(16))
//	conn := table.Connect(r.Context(), "courier_7")
//	for evt := range conn.Outbound() {
//		// write evt to the stream
//	}
package live
