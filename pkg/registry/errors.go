package registry

import "errors"

var ErrInvalidRecipient = errors.New("registry: recipient id is required")
