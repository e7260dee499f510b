package push

import "errors"

var (
	ErrInvalidToken     = errors.New("push: token rejected by provider")
	ErrCircuitOpen      = errors.New("push: provider circuit is open")
	ErrProviderDisabled = errors.New("push: provider is not configured")
	ErrTransient        = errors.New("push: provider temporarily unavailable")
	ErrTimeout          = errors.New("push: provider request timed out")
	ErrInvalidTarget    = errors.New("push: recipient id and token are required")
	ErrStorage          = errors.New("push: token storage failure")
)

// IsInvalidToken reports whether err means the target must be invalidated.
func IsInvalidToken(err error) bool {
	return errors.Is(err, ErrInvalidToken)
}
