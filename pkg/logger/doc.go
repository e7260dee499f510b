// Package logger builds the service *slog.Logger and keeps attribute names
// consistent across packages.
//
// New applies functional options (format, level, output, static attributes)
// and wraps the handler with a decorator that pulls request-scoped values,
// such as the request id, out of context.Context on every record.
//
//	log := logger.New(logger.WithEnvironment("production", "notifyd"))
//	log.InfoContext(ctx, "event dispatched",
//		logger.EventID(evt.ID),
//		logger.RecipientID("courier_7"),
//		logger.Channel("live"),
//	)
//
// Use the attribute helpers instead of ad-hoc keys so log queries stay
// stable: event_id, recipient_id, channel, component, duration, error.
package logger
