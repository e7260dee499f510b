// Package api exposes the notification pipeline over HTTP with a chi router.
//
// Internal routes are called by upstream services:
//
//	POST /internal/events   dispatch an event to a list of recipients
//	GET  /internal/ledger   query delivery ledger entries
//	GET  /internal/stats    ledger rows with recipient names and localized labels
//
// Recipient routes require a session token issued by auth.Service:
//
//	PUT    /v1/push-targets          register or refresh a device token
//	DELETE /v1/push-targets/{token}  drop a device token
//	GET    /v1/stream                live handle over server-sent events
//	POST   /v1/acks                  acknowledge a presented event
//
// The stream route also accepts the token in the "token" query parameter
// because browser EventSource clients cannot set headers. Each event is sent
// as a datastar patch-signals message carrying a "notification" signal.
//
// Health probes live under /health and Prometheus metrics under /metrics.
package api
