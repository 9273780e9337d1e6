package transport

import (
	"strings"

	"github.com/lrstanley/girc"

	"github.com/aarondl/ircstate/dispatch"
	"github.com/aarondl/ircstate/irc"
)

// GircWriter sends queries through a girc client.
type GircWriter struct {
	Client *girc.Client
}

// Send implements irc.Writer.
func (g GircWriter) Send(command string, args ...string) error {
	line, err := ircLine(command, args...)
	if err != nil {
		return err
	}
	return g.Client.Cmd.SendRaw(line)
}

// Registered reports whether the client is past registration.
func (g GircWriter) Registered() bool {
	return g.Client.IsConnected()
}

// FromGirc converts a girc event. Events girc makes up for itself are nil,
// except for the disconnect which becomes irc.DISCONNECT.
func FromGirc(netID string, e girc.Event) *irc.Event {
	if e.Command == girc.DISCONNECTED {
		return irc.NewEvent(netID, irc.DISCONNECT, "")
	}
	if strings.HasPrefix(e.Command, "CLIENT_") {
		return nil
	}

	var sender string
	if e.Source != nil {
		sender = e.Source.String()
	}

	ev := irc.NewEvent(netID, strings.ToUpper(e.Command), sender, e.Params...)
	if len(e.Tags) > 0 {
		ev.Tags = make(map[string]string, len(e.Tags))
		for k, v := range e.Tags {
			ev.Tags[k] = v
		}
	}
	if !e.Timestamp.IsZero() {
		ev.Time = e.Timestamp.UTC()
	}
	return ev
}

// AttachGirc feeds every event of client into d, the disconnect included,
// through a single ALL_EVENTS handler. It must be called before the client
// connects so that the welcome is seen.
func AttachGirc(client *girc.Client, d *dispatch.Dispatcher) {
	handle := func(c *girc.Client, e girc.Event) {
		if ev := FromGirc(d.Network(), e); ev != nil {
			d.Dispatch(ev)
		}
	}

	client.Handlers.Add(girc.ALL_EVENTS, handle)
}
