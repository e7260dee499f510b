package registry

import (
	"github.com/dmitrymomot/dispatchkit/pkg/ledger"
	"github.com/dmitrymomot/dispatchkit/pkg/live"
	"github.com/dmitrymomot/dispatchkit/pkg/push"
)

// Endpoint is one way to reach a recipient. The set of implementations is
// closed: PushTarget and LiveHandle.
type Endpoint interface {
	Channel() ledger.Channel
	RecipientID() string
	endpoint()
}

// PushTarget reaches a device through the push provider.
type PushTarget struct {
	Target push.Target
}

func (PushTarget) Channel() ledger.Channel { return ledger.ChannelPush }
func (p PushTarget) RecipientID() string   { return p.Target.RecipientID }
func (p PushTarget) Token() string         { return p.Target.Token }
func (PushTarget) endpoint()               {}

// LiveHandle reaches a recipient through an open live connection.
type LiveHandle struct {
	Conn *live.Conn
}

func (LiveHandle) Channel() ledger.Channel { return ledger.ChannelLive }
func (l LiveHandle) RecipientID() string   { return l.Conn.RecipientID() }
func (LiveHandle) endpoint()               {}
