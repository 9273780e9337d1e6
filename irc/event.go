/*
Package irc defines types to be used by most other packages in
the ircstate system. It is small and comprised mostly of helper like types
and constants.
*/
package irc

import (
	"bytes"
	"sort"
	"strings"
	"time"
)

// Event contains all the information about an irc event.
type Event struct {
	// Name of the event. Uppercase constant name or numeric.
	Name string
	// Sender is the server or user that sent the event, normally a fullhost.
	Sender string
	// Tags are the IRCv3 message tags. Valueless tags are stored as "".
	Tags map[string]string
	// Args split by space delimiting.
	Args []string
	// Times is the time this event was received.
	Time time.Time
	// NetworkID is the ID of the network that sent this event.
	NetworkID string
}

// NewEvent constructs a event object that has a timestamp.
func NewEvent(netID, name, sender string, args ...string) *Event {
	var setArgs []string
	if len(args) > 0 {
		setArgs = make([]string, len(args))
		copy(setArgs, args)
	}
	return &Event{
		Name:      name,
		Sender:    sender,
		Args:      setArgs,
		Time:      time.Now().UTC(),
		NetworkID: netID,
	}
}

// Nick returns the nick of the sender. Will be empty string if it was
// not able to parse the sender.
func (e *Event) Nick() string {
	return Nick(e.Sender)
}

// Hostmask splits the sender into its nick, user and host parts.
func (e *Event) Hostmask() Hostmask {
	return ParseHostmask(e.Sender)
}

// Arg returns the argument at index i or the empty string if there are not
// enough arguments.
func (e *Event) Arg(i int) string {
	if i < 0 || i >= len(e.Args) {
		return ""
	}
	return e.Args[i]
}

// Target retrieves the channel or user this event was sent to. Before using
// this method it would be prudent to check that the Event.Name is a message
// that supports a Target argument.
func (e *Event) Target() string {
	return e.Arg(0)
}

// Tag returns the value of a message tag and whether it was present.
func (e *Event) Tag(key string) (string, bool) {
	v, ok := e.Tags[key]
	return v, ok
}

// String turns this back into an IRC style message.
func (e *Event) String() string {
	b := &bytes.Buffer{}
	if len(e.Tags) > 0 {
		keys := make([]string, 0, len(e.Tags))
		for k := range e.Tags {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		b.WriteByte('@')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(';')
			}
			b.WriteString(k)
			if v := e.Tags[k]; len(v) > 0 {
				b.WriteByte('=')
				b.WriteString(v)
			}
		}
		b.WriteByte(' ')
	}
	if len(e.Sender) > 0 {
		b.WriteByte(':')
		b.WriteString(e.Sender)
		b.WriteByte(' ')
	}
	b.WriteString(e.Name)
	writeArgs(b, e.Args)

	return b.String()
}

// writeArgs appends space separated arguments, prefixing the last with a
// colon when it could not otherwise be parsed back as a single argument.
func writeArgs(b *bytes.Buffer, args []string) {
	lastArg := len(args) - 1
	for i, arg := range args {
		b.WriteByte(' ')
		if lastArg == i && (len(arg) == 0 ||
			strings.ContainsRune(arg, ' ') || arg[0] == ':') {
			b.WriteByte(':')
		}
		b.WriteString(arg)
	}
}
