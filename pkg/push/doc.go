// Package push delivers events to devices through an external push provider.
//
// A Target is a provider-issued device token registered by a recipient.
// Provider sends one Message per target and classifies failures: a nil
// error means the provider accepted the message, ErrInvalidToken means the
// token must be dropped, and any other error is transient.
//
// HTTPProvider talks to a JSON push gateway and guards it with a circuit
// breaker so an outage fails fast instead of holding dispatch workers.
// TokenStore keeps the registered targets; MemoryTokenStore and
// RedisTokenStore are provided.
package push
