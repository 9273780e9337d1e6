/*
Package parse turns raw irc protocol lines into irc events.
*/
package parse

import (
	"strings"
	"time"

	"github.com/ergochat/irc-go/ircmsg"

	"github.com/aarondl/ircstate/irc"
)

const (
	// errMsgParseFailure is given when a line is not valid irc protocol.
	errMsgParseFailure = "parse: Unable to parse received irc protocol"
)

// ParseError is returned for lines that are not irc protocol, it contains
// the line along with the reason it was rejected.
type ParseError struct {
	// The message
	Msg string
	// The invalid irc encountered.
	Irc string
	// Err is the underlying parser error.
	Err error
}

// Error satisfies the Error interface for ParseError.
func (p ParseError) Error() string {
	return p.Msg
}

// Cause returns the underlying parser error.
func (p ParseError) Cause() error {
	return p.Err
}

// Parse produces an Event from a single line of irc protocol, the trailing
// crlf is optional. The event is stamped with the server-time tag when there
// is one.
func Parse(netID, line string) (*irc.Event, error) {
	line = strings.TrimRight(line, "\r\n")

	msg, err := ircmsg.ParseLine(line)
	if err != nil {
		return nil, ParseError{Msg: errMsgParseFailure, Irc: line, Err: err}
	}

	return FromMessage(netID, msg), nil
}

// FromMessage converts an already parsed message.
func FromMessage(netID string, msg ircmsg.Message) *irc.Event {
	ev := irc.NewEvent(netID, strings.ToUpper(msg.Command), msg.Source,
		msg.Params...)

	if tags := msg.AllTags(); len(tags) > 0 {
		ev.Tags = tags
		if t, ok := tags["time"]; ok {
			if stamp, err := time.Parse(time.RFC3339Nano, t); err == nil {
				ev.Time = stamp.UTC()
			}
		}
	}
	return ev
}
