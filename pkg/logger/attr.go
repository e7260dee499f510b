package logger

import (
	"log/slog"
	"strconv"
	"time"
)

// Group creates a slog group attribute.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Error records err under "error". A nil error yields an empty Attr, which
// slog drops.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Errors groups the non-nil errors under "errors".
func Errors(errs ...error) slog.Attr {
	as := make([]slog.Attr, 0, len(errs))
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	if len(as) == 0 {
		return slog.Attr{}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

func EventID(id string) slog.Attr {
	return slog.String("event_id", id)
}

func RecipientID(id string) slog.Attr {
	return slog.String("recipient_id", id)
}

// Channel records the delivery channel ("push" or "live").
func Channel(name string) slog.Attr {
	return slog.String("channel", name)
}

func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Duration records d in milliseconds under "duration_ms".
func Duration(d time.Duration) slog.Attr {
	return slog.Float64("duration_ms", float64(d.Microseconds())/1000)
}

func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}
