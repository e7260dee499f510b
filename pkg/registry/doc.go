// Package registry answers "how can this recipient be reached right now".
//
// Resolve returns the current endpoints of a recipient: one PushTarget per
// fresh device token and one LiveHandle per open live connection. An empty
// result means the recipient is unreachable; it is not an error.
//
// The registry owns the lifecycle of both endpoint kinds. Push targets are
// registered and invalidated through the TokenStore; live handles come and
// go with the connections in the live Table.
package registry
