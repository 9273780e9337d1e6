package irc

import (
	"bytes"
	"io"
	"sync"

	"github.com/pkg/errors"
)

// ErrBadArgument is returned when an argument would break the line apart on
// the wire.
var ErrBadArgument = errors.New("irc: argument contains a line break or a " +
	"space in a non-final position")

// Writer is the outbound half of a connection. Queries are fire and forget,
// replies come back as ordinary events.
type Writer interface {
	Send(command string, args ...string) error
}

// Helper renders commands as protocol lines onto an io.Writer.
type Helper struct {
	io.Writer

	mut sync.Mutex
}

// Send writes a single command terminated by crlf.
func (h *Helper) Send(command string, args ...string) error {
	line, err := Line(command, args...)
	if err != nil {
		return err
	}

	h.mut.Lock()
	defer h.mut.Unlock()
	_, err = h.Write(append(line, '\r', '\n'))
	return errors.Wrap(err, "irc: write")
}

// Line renders command and args as a protocol line without the crlf.
func Line(command string, args ...string) ([]byte, error) {
	for i, arg := range args {
		if bytes.ContainsAny([]byte(arg), "\r\n\x00") {
			return nil, ErrBadArgument
		}
		if i != len(args)-1 && (len(arg) == 0 ||
			bytes.ContainsAny([]byte(arg), " ") || arg[0] == ':') {
			return nil, ErrBadArgument
		}
	}

	b := &bytes.Buffer{}
	b.WriteString(command)
	writeArgs(b, args)
	return b.Bytes(), nil
}
