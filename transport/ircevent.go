package transport

import (
	"github.com/ergochat/irc-go/ircevent"
	"github.com/ergochat/irc-go/ircmsg"

	"github.com/aarondl/ircstate/dispatch"
	"github.com/aarondl/ircstate/irc"
	"github.com/aarondl/ircstate/parse"
)

// IrceventWriter sends queries through an ircevent connection.
type IrceventWriter struct {
	Conn *ircevent.Connection
}

// Send implements irc.Writer.
func (w IrceventWriter) Send(command string, args ...string) error {
	if _, err := ircLine(command, args...); err != nil {
		return err
	}
	return w.Conn.Send(command, args...)
}

// Registered reports whether the connection is past registration.
func (w IrceventWriter) Registered() bool {
	return w.Conn.Connected()
}

// AttachIrcevent feeds every message of conn into d. It must be called
// before the connection is made so that the welcome is seen.
func AttachIrcevent(conn *ircevent.Connection, d *dispatch.Dispatcher) {
	conn.AddCallback("*", func(m ircmsg.Message) {
		d.Dispatch(parse.FromMessage(d.Network(), m))
	})
	conn.AddDisconnectCallback(func(m ircmsg.Message) {
		d.Dispatch(irc.NewEvent(d.Network(), irc.DISCONNECT, ""))
	})
}
