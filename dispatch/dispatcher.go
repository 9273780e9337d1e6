/*
Package dispatch feeds irc events into the data package. A Dispatcher owns the
state of one connection, routes every event through a static table of
handlers, sends the follow up queries that keep the state complete and exposes
a read only view for everyone else.
*/
package dispatch

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"gopkg.in/inconshreveable/log15.v2"

	"github.com/aarondl/ircstate/data"
	"github.com/aarondl/ircstate/irc"
)

var (
	// ErrAlreadyRegistered is returned from New when the writer belongs to a
	// connection that has already passed registration. The welcome numeric
	// has gone by and the state could never be built correctly.
	ErrAlreadyRegistered = errors.New("dispatch: connection already registered")
	// ErrNoWriter is returned from New when no writer is given.
	ErrNoWriter = errors.New("dispatch: writer is required")
)

// ConnState is the tracking state of a connection.
type ConnState int

// Connection states.
const (
	Disconnected ConnState = iota
	Tracking
)

func (c ConnState) String() string {
	if c == Tracking {
		return "tracking"
	}
	return "disconnected"
}

// Registerer is implemented by writers that know whether their connection
// has completed registration.
type Registerer interface {
	Registered() bool
}

// Handler is the interface for listeners that want to see events after the
// state has been updated.
type Handler interface {
	Handle(w irc.Writer, ev *irc.Event)
}

// HandlerFunc implements the Handler interface
type HandlerFunc func(w irc.Writer, ev *irc.Event)

// Handle implements Handler interface
func (h HandlerFunc) Handle(w irc.Writer, ev *irc.Event) {
	h(w, ev)
}

// StateHook is called whenever a connection changes ConnState.
type StateHook func(network string, state ConnState)

// Option configures a Dispatcher.
type Option func(d *Dispatcher)

// WithNetwork names the network, it is used in logs, metrics and snapshots.
func WithNetwork(network string) Option {
	return func(d *Dispatcher) { d.network = network }
}

// WithLogger sets the logger, the default discards everything.
func WithLogger(logger log15.Logger) Option {
	return func(d *Dispatcher) { d.logger = logger }
}

// WithMetrics reports events and table sizes to m.
func WithMetrics(m *Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// WithCaps marks capabilities as already negotiated, for connections where
// the CAP exchange happens before the dispatcher is attached.
func WithCaps(caps ...string) Option {
	return func(d *Dispatcher) {
		for _, c := range caps {
			d.caps[strings.ToLower(c)] = struct{}{}
		}
	}
}

// WithStateHook adds a hook that is called on every ConnState change.
func WithStateHook(hook StateHook) Option {
	return func(d *Dispatcher) { d.hooks = append(d.hooks, hook) }
}

// WithoutWhoOnJoin stops the WHO query sent after joining a channel.
func WithoutWhoOnJoin() Option {
	return func(d *Dispatcher) { d.whoOnJoin = false }
}

// WithoutModeOnJoin stops the MODE query sent after joining a channel.
func WithoutModeOnJoin() Option {
	return func(d *Dispatcher) { d.modeOnJoin = false }
}

// WithoutWhoisSelf stops the WHOIS query for ourselves after the welcome.
func WithoutWhoisSelf() Option {
	return func(d *Dispatcher) { d.whoisSelf = false }
}

// Dispatcher tracks the state of a single connection. Every event of the
// connection must go through Dispatch, the read methods can be called from
// anywhere.
type Dispatcher struct {
	writer  irc.Writer
	info    *irc.NetworkInfo
	network string
	logger  log15.Logger
	metrics *Metrics
	hooks   []StateHook

	whoOnJoin  bool
	modeOnJoin bool
	whoisSelf  bool

	mut     sync.RWMutex
	state   *data.State
	conn    ConnState
	session string
	caps    map[string]struct{}

	handlerMut sync.RWMutex
	handlerID  uint64
	listeners  map[string]map[uint64]Handler
}

// New creates a dispatcher that sends its queries through w. ni receives the
// ISUPPORT tokens of the connection, a nil ni gets a fresh one.
func New(w irc.Writer, ni *irc.NetworkInfo, opts ...Option) (*Dispatcher, error) {
	if w == nil {
		return nil, ErrNoWriter
	}
	if r, ok := w.(Registerer); ok && r.Registered() {
		return nil, ErrAlreadyRegistered
	}

	if ni == nil {
		ni = irc.NewNetworkInfo()
	}

	logger := log15.New()
	logger.SetHandler(log15.DiscardHandler())

	d := &Dispatcher{
		writer:     w,
		info:       ni,
		logger:     logger,
		whoOnJoin:  true,
		modeOnJoin: true,
		whoisSelf:  true,
		state:      data.NewState(),
		caps:       make(map[string]struct{}),
		listeners:  make(map[string]map[uint64]Handler),
	}

	for _, opt := range opts {
		opt(d)
	}

	if len(d.network) == 0 {
		d.network = ni.Network()
	}
	d.logger = d.logger.New("network", d.network)

	if err := d.state.ApplyISupport(ni.Map()); err != nil {
		d.logger.Debug("bad isupport", "err", err)
	}

	return d, nil
}

// Network returns the name of the network.
func (d *Dispatcher) Network() string {
	return d.network
}

// Dispatch updates the state with an event and then hands it to every
// listener registered for it. Events are processed one at a time.
func (d *Dispatcher) Dispatch(ev *irc.Event) {
	if ev == nil {
		return
	}

	name := strings.ToUpper(ev.Name)
	d.mut.Lock()
	handled := d.dispatch(name, ev)
	users, channels := d.state.Users.Len(), d.state.Channels.Len()
	d.mut.Unlock()

	if handled && d.metrics != nil {
		d.metrics.event(d.network, name)
		d.metrics.size(d.network, users, channels)
	}

	d.handlerMut.RLock()
	var listeners []Handler
	for _, key := range []string{name, irc.RAW} {
		for _, id := range sortedIDs(d.listeners[key]) {
			listeners = append(listeners, d.listeners[key][id])
		}
	}
	d.handlerMut.RUnlock()

	for _, h := range listeners {
		h.Handle(d.writer, ev)
	}
}

// dispatch runs the handlers for one event, d.mut must be held.
func (d *Dispatcher) dispatch(name string, ev *irc.Event) bool {
	fns, ok := handlers[name]
	if !ok {
		return false
	}

	if d.conn == Disconnected && !allowedDisconnected[name] {
		d.logger.Debug("event while disconnected", "event", name)
		return false
	}

	for _, fn := range fns {
		fn(d, ev)
	}
	return true
}

// setConn changes the connection state, hooks are only called on a change.
func (d *Dispatcher) setConn(state ConnState) {
	if d.conn == state {
		return
	}

	d.conn = state
	d.logger.Info("connection state", "state", state, "session", d.session)
	for _, hook := range d.hooks {
		hook(d.network, state)
	}
}

// send is fire and forget, failures are only logged.
func (d *Dispatcher) send(command string, args ...string) {
	if err := d.writer.Send(command, args...); err != nil {
		d.logger.Warn("send failed", "command", command, "err", err)
		return
	}
	if d.metrics != nil {
		d.metrics.query(d.network, command)
	}
}

// hasCap checks if a capability was acknowledged. d.mut must be held.
func (d *Dispatcher) hasCap(name string) bool {
	_, ok := d.caps[name]
	return ok
}

// Register adds a listener for an event, irc.RAW listens to everything. The
// returned id can be given to Unregister.
func (d *Dispatcher) Register(event string, handler Handler) uint64 {
	d.handlerMut.Lock()
	defer d.handlerMut.Unlock()

	event = strings.ToUpper(event)
	d.handlerID++
	if d.listeners[event] == nil {
		d.listeners[event] = make(map[uint64]Handler)
	}
	d.listeners[event][d.handlerID] = handler
	return d.handlerID
}

// Unregister removes a listener, it returns false when the id is unknown.
func (d *Dispatcher) Unregister(id uint64) bool {
	d.handlerMut.Lock()
	defer d.handlerMut.Unlock()

	for event, set := range d.listeners {
		if _, ok := set[id]; ok {
			delete(set, id)
			if len(set) == 0 {
				delete(d.listeners, event)
			}
			return true
		}
	}
	return false
}

func sortedIDs(set map[uint64]Handler) []uint64 {
	ids := make([]uint64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ConnState returns the tracking state of the connection.
func (d *Dispatcher) ConnState() ConnState {
	d.mut.RLock()
	defer d.mut.RUnlock()
	return d.conn
}

// Session is the id of the current tracking session, a new one is made on
// every welcome. Empty before the first one.
func (d *Dispatcher) Session() string {
	d.mut.RLock()
	defer d.mut.RUnlock()
	return d.session
}

// Caps returns the acknowledged capabilities in sorted order.
func (d *Dispatcher) Caps() []string {
	d.mut.RLock()
	defer d.mut.RUnlock()

	caps := make([]string, 0, len(d.caps))
	for c := range d.caps {
		caps = append(caps, c)
	}
	sort.Strings(caps)
	return caps
}

// User returns a copy of the user by nick or hostmask.
func (d *Dispatcher) User(nickorhost string) (*data.User, bool) {
	d.mut.RLock()
	defer d.mut.RUnlock()

	if u := d.state.Users.Get(nickorhost); u != nil {
		return u.Clone(), true
	}
	return nil, false
}

// Channel returns a copy of the channel.
func (d *Dispatcher) Channel(name string) (*data.Channel, bool) {
	d.mut.RLock()
	defer d.mut.RUnlock()

	if c := d.state.Channels.Get(name); c != nil {
		return c.Clone(), true
	}
	return nil, false
}

// Members lists the users of a channel with their status modes.
func (d *Dispatcher) Members(channel string) []data.Member {
	d.mut.RLock()
	defer d.mut.RUnlock()
	return d.state.Channels.Members(channel)
}

// IsBanned checks a full nick!user@host against the bans and ban exceptions
// of a channel. found is false when the channel is not tracked.
func (d *Dispatcher) IsBanned(channel string, host irc.Host) (banned, found bool) {
	d.mut.RLock()
	defer d.mut.RUnlock()

	c := d.state.Channels.Get(channel)
	if c == nil {
		return false, false
	}
	return c.IsBanned(host), true
}

// UserChannels returns the names of the channels a user is in.
func (d *Dispatcher) UserChannels(nickorhost string) []string {
	d.mut.RLock()
	defer d.mut.RUnlock()

	u := d.state.Users.Get(nickorhost)
	if u == nil {
		return nil
	}

	ids := u.Channels()
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if c := d.state.Channels.Get(id); c != nil {
			names = append(names, c.Name)
		}
	}
	return names
}

// IsCurrent checks if the nick or hostmask is us.
func (d *Dispatcher) IsCurrent(nickorhost string) bool {
	d.mut.RLock()
	defer d.mut.RUnlock()
	return d.state.IsCurrent(nickorhost)
}

// Self returns a copy of the current user, nil before the welcome.
func (d *Dispatcher) Self() *data.User {
	d.mut.RLock()
	defer d.mut.RUnlock()

	if u := d.state.Self(); u != nil {
		return u.Clone()
	}
	return nil
}

// Channels returns the names of every known channel ordered by id.
func (d *Dispatcher) Channels() []string {
	d.mut.RLock()
	defer d.mut.RUnlock()

	names := make([]string, 0, d.state.Channels.Len())
	d.state.Channels.Each(func(c *data.Channel) bool {
		names = append(names, c.Name)
		return true
	})
	return names
}

// Counts returns the number of users and channels.
func (d *Dispatcher) Counts() (users, channels int) {
	d.mut.RLock()
	defer d.mut.RUnlock()
	return d.state.Users.Len(), d.state.Channels.Len()
}

// ChannelSnapshot copies a channel along with its members.
func (d *Dispatcher) ChannelSnapshot(name string) (data.ChannelSnapshot, bool) {
	d.mut.RLock()
	defer d.mut.RUnlock()

	c := d.state.Channels.Get(name)
	if c == nil {
		return data.ChannelSnapshot{}, false
	}
	return d.state.ChannelSnapshot(c), true
}

// UserSnapshot copies a user by nick or hostmask.
func (d *Dispatcher) UserSnapshot(nickorhost string) (data.UserSnapshot, bool) {
	d.mut.RLock()
	defer d.mut.RUnlock()

	u := d.state.Users.Get(nickorhost)
	if u == nil {
		return data.UserSnapshot{}, false
	}
	return data.NewUserSnapshot(u), true
}

// Snapshot copies the whole state.
func (d *Dispatcher) Snapshot() *data.Snapshot {
	d.mut.RLock()
	defer d.mut.RUnlock()
	return d.state.Snapshot(d.network, d.session)
}

// UsingState calls fn with the live state under the write lock. fn must not
// keep any reference to the state or call back into the dispatcher.
func (d *Dispatcher) UsingState(fn func(*data.State)) {
	d.mut.Lock()
	defer d.mut.Unlock()
	fn(d.state)
}

// Restore replaces the state with a snapshot. It is meant for replaying a
// stored session, the connection stays in its current ConnState.
func (d *Dispatcher) Restore(snap *data.Snapshot) error {
	state, err := snap.Restore()
	if err != nil {
		return err
	}

	d.mut.Lock()
	defer d.mut.Unlock()
	d.state = state
	d.session = snap.Session
	return nil
}

// newSession starts a fresh tracking session id.
func newSession() string {
	return uuid.New().String()
}
