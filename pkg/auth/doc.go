// Package auth issues and verifies recipient session tokens.
//
// Tokens are HS256 JWTs whose subject is the recipient id. The HTTP
// middleware verifies the token and stores the recipient id in the request
// context, so handlers such as the acknowledgement endpoint act only on
// behalf of the authenticated recipient.
//
//	svc, _ := auth.NewService(secret, auth.WithTTL(24*time.Hour))
//	token, _ := svc.Issue("courier_7")
//	r.With(auth.Middleware(svc)).Post("/v1/acks", handler)
package auth
