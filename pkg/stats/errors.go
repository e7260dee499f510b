package stats

import "errors"

var (
	ErrInvalidCatalog = errors.New("stats: invalid label catalog")
	ErrQueryFailed    = errors.New("stats: ledger query failed")
)
