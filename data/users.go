package data

import (
	"sort"
	"strings"

	"github.com/aarondl/ircstate/irc"
)

// ExtendedJoin carries the extra JOIN parameters sent when the extended-join
// capability is active.
type ExtendedJoin struct {
	Account  string
	Realname string
}

// UserTable owns the User records of a State keyed by casefolded nick.
type UserTable struct {
	state *State
	users map[string]*User
}

// Get returns the user if it exists. The argument can be a nick or fullhost.
func (t *UserTable) Get(nickorhost string) *User {
	return t.users[t.state.Fold(irc.Nick(nickorhost))]
}

// LookupOrCreate returns the user for the hostmask's nick, creating it with
// placeholders for anything the hostmask lacks. Known parts of the hostmask
// are merged into an existing user. Creating a user never implies any channel
// membership.
func (t *UserTable) LookupOrCreate(h irc.Hostmask) *User {
	id := t.state.Fold(h.Nick)
	if u, ok := t.users[id]; ok {
		u.merge(h)
		return u
	}

	u := newUser(id, h)
	t.users[id] = u
	return u
}

// Join records a JOIN. The full hostmask refreshes ident and host, ext is nil
// unless extended-join is active. The channel is created if needed.
func (t *UserTable) Join(h irc.Hostmask, channel string,
	ext *ExtendedJoin) (*User, *Channel) {

	if len(h.Nick) == 0 || len(channel) == 0 {
		return nil, nil
	}

	u := t.LookupOrCreate(h)
	if ext != nil {
		u.setAccount(ext.Account)
		u.setRealname(ext.Realname)
	}

	c := t.state.Channels.GetOrCreate(channel, "")
	t.state.link(u, c)
	return u, c
}

// Part records a PART. Only the named membership is removed, the user record
// stays even when it is no longer in any channel, ours included. Unknown users
// or channels are ignored.
func (t *UserTable) Part(nick, channel string) bool {
	u := t.Get(nick)
	c := t.state.Channels.Get(channel)
	if u == nil || c == nil || !u.InChannel(c.ID) {
		return false
	}

	t.state.unlink(u, c)
	return true
}

// Kick records a KICK of nick from channel, the user record is left alone.
func (t *UserTable) Kick(channel, nick string) bool {
	return t.Part(nick, channel)
}

// Quit removes a user from every channel and then from the table. It also
// handles the no such nick numeric.
func (t *UserTable) Quit(nick string) bool {
	u := t.Get(nick)
	if u == nil {
		return false
	}

	for id := range u.channels {
		if c, ok := t.state.Channels.channels[id]; ok {
			t.state.unlink(u, c)
		}
	}
	delete(t.users, u.ID)
	if u.IsCurrent {
		t.state.self = ""
	}
	return true
}

// Nick re-keys a user under a new nick, channel memberships are kept and any
// status modes held under the old nick follow the user.
func (t *UserTable) Nick(oldnick, newnick string) *User {
	u := t.Get(oldnick)
	if u == nil || len(newnick) == 0 {
		return nil
	}

	old := u.Nick
	oldID, newID := u.ID, t.state.Fold(newnick)

	if newID != oldID {
		// Someone we thought had the nick is gone without us seeing it.
		if stale, ok := t.users[newID]; ok {
			t.Quit(stale.Nick)
		}
	}

	channels := u.Channels()
	for _, cid := range channels {
		if c, ok := t.state.Channels.channels[cid]; ok {
			delete(c.users, oldID)
		}
	}

	delete(t.users, oldID)
	u.ID = newID
	u.Nick = newnick
	t.users[newID] = u

	for _, cid := range channels {
		if c, ok := t.state.Channels.channels[cid]; ok {
			c.users[newID] = struct{}{}
		}
	}
	if u.IsCurrent {
		t.state.self = newID
	}

	t.state.Channels.RenameStatus(channels, old, newnick)
	return u
}

// WhoReply merges a WHO reply. flags are the status flags (H@ or G+ and so
// on), realname is the trailing argument with the hopcount already removed.
func (t *UserTable) WhoReply(channel string, h irc.Hostmask, server,
	flags, realname string) *User {

	if len(h.Nick) == 0 {
		return nil
	}

	u := t.LookupOrCreate(h)
	u.setRealname(realname)
	if len(server) > 0 {
		u.Server = server
	}

	c := t.state.Channels.Get(channel)
	if c == nil {
		return u
	}

	t.state.link(u, c)
	for _, mode := range t.state.kinds.StatusFromSymbols(flags) {
		c.Modes.addListEntry(mode, u.Nick)
	}
	return u
}

// NamesReply merges one NAMES token such as @+nick or, with the
// userhost-in-names capability, @nick!user@host.
func (t *UserTable) NamesReply(channel, token string) *User {
	modes, rest := t.state.kinds.ParsePrefixedNick(token)
	h := irc.ParseHostmask(rest)
	if len(h.Nick) == 0 || len(channel) == 0 {
		return nil
	}

	u := t.LookupOrCreate(h)
	c := t.state.Channels.GetOrCreate(channel, "")
	t.state.link(u, c)
	for _, mode := range modes {
		c.Modes.addListEntry(mode, u.Nick)
	}
	return u
}

// SetAccount records the services account, * means logged out.
func (t *UserTable) SetAccount(nick, account string) bool {
	u := t.Get(nick)
	if u == nil {
		return false
	}
	u.setAccount(account)
	return true
}

// SetHost records a new ident and host.
func (t *UserTable) SetHost(nick, ident, host string) bool {
	u := t.Get(nick)
	if u == nil {
		return false
	}
	u.merge(irc.Hostmask{User: ident, Host: host})
	return true
}

// SetRealname records a new realname.
func (t *UserTable) SetRealname(nick, realname string) bool {
	u := t.Get(nick)
	if u == nil {
		return false
	}
	u.setRealname(realname)
	return true
}

// WhoisUser merges the user line of a WHOIS reply. Only users that are
// already known are updated.
func (t *UserTable) WhoisUser(h irc.Hostmask, realname string) bool {
	u := t.Get(h.Nick)
	if u == nil {
		return false
	}
	u.merge(h)
	u.setRealname(realname)
	return true
}

// WhoisServer records the server line of a WHOIS reply.
func (t *UserTable) WhoisServer(nick, server string) bool {
	u := t.Get(nick)
	if u == nil || len(server) == 0 {
		return false
	}
	u.Server = server
	return true
}

// Message records the sender of a PRIVMSG or NOTICE. Speaking in a channel we
// are in proves membership so the sender is linked to it. A private message
// only refreshes a user that is already known.
func (t *UserTable) Message(h irc.Hostmask, target string) *User {
	if !h.IsFull() {
		return nil
	}

	c := t.state.Channels.Get(target)
	if c == nil {
		u := t.Get(h.Nick)
		if u != nil {
			u.merge(h)
		}
		return u
	}

	if len(t.state.self) == 0 || !c.HasUser(t.state.self) {
		return nil
	}
	u := t.LookupOrCreate(h)
	t.state.link(u, c)
	return u
}

// Len returns the number of users.
func (t *UserTable) Len() int {
	return len(t.users)
}

// Each calls fn for every user ordered by id until fn returns false.
func (t *UserTable) Each(fn func(*User) bool) {
	ids := make([]string, 0, len(t.users))
	for id := range t.users {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if !fn(t.users[id]) {
			return
		}
	}
}

// SplitRealname removes the hopcount from the trailing argument of a WHO
// reply.
func SplitRealname(trailing string) string {
	if i := strings.IndexByte(trailing, ' '); i >= 0 {
		return trailing[i+1:]
	}
	return ""
}
