// Package httpserver runs the notification service HTTP surface with
// graceful shutdown.
//
// Run blocks until the context is cancelled, SIGINT/SIGTERM arrives or the
// listener fails. On shutdown the base context of every request is
// cancelled first, so long-lived streams (the live SSE endpoint) return and
// http.Server.Shutdown can drain the remaining requests within the
// configured deadline.
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
//
// Check and HealthHandler build liveness and readiness probes from named
// dependency checks.
package httpserver
