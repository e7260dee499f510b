package api

import "errors"

var (
	ErrInvalidJSON          = errors.New("invalid json body")
	ErrUnsupportedMediaType = errors.New("content type must be application/json")
	ErrInvalidQuery         = errors.New("invalid query parameter")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrStreamUnsupported    = errors.New("streaming unsupported")
)
