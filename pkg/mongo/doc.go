// Package mongo connects the MongoDB v2 driver with retries and exposes a
// readiness probe. The ledger's Mongo backend uses the returned database.
package mongo
