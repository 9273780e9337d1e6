/*
Package transport connects a Dispatcher to the outside world. It has adapters
for the girc and ircevent client libraries and a Recorder for replaying
captured traffic.
*/
package transport

import (
	"bufio"
	"io"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/aarondl/ircstate/dispatch"
	"github.com/aarondl/ircstate/irc"
	"github.com/aarondl/ircstate/parse"
)

// Recorder is an irc.Writer that keeps every line sent through it. Lines are
// also passed on to Echo when it is set.
type Recorder struct {
	Echo irc.Writer

	mut   sync.Mutex
	lines []string
}

// Send records the rendered line.
func (r *Recorder) Send(command string, args ...string) error {
	line, err := ircLine(command, args...)
	if err != nil {
		return err
	}

	r.mut.Lock()
	r.lines = append(r.lines, line)
	r.mut.Unlock()

	if r.Echo != nil {
		return r.Echo.Send(command, args...)
	}
	return nil
}

// Lines returns a copy of the lines sent so far.
func (r *Recorder) Lines() []string {
	r.mut.Lock()
	defer r.mut.Unlock()

	lines := make([]string, len(r.lines))
	copy(lines, r.lines)
	return lines
}

// Reset forgets the recorded lines.
func (r *Recorder) Reset() {
	r.mut.Lock()
	r.lines = nil
	r.mut.Unlock()
}

// ReplayResult counts what a replay did.
type ReplayResult struct {
	Lines   int
	Skipped int
	Errors  []error
}

// Replay reads protocol lines from rd and dispatches them in order. Lines
// that fail to parse are skipped and collected in the result, only read
// errors stop the replay.
func Replay(rd io.Reader, d *dispatch.Dispatcher) (ReplayResult, error) {
	var res ReplayResult

	scanner := bufio.NewScanner(rd)
	scanner.Buffer(make([]byte, 0, 4096), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 {
			continue
		}

		res.Lines++
		ev, err := parse.Parse(d.Network(), line)
		if err != nil {
			res.Skipped++
			res.Errors = append(res.Errors, errors.Wrapf(err, "line %d", res.Lines))
			continue
		}
		d.Dispatch(ev)
	}

	if err := scanner.Err(); err != nil {
		return res, errors.Wrap(err, "transport: replay")
	}
	return res, nil
}

// ircLine renders and validates a line, shared by the writers.
func ircLine(command string, args ...string) (string, error) {
	line, err := irc.Line(command, args...)
	if err != nil {
		return "", err
	}
	return string(line), nil
}
