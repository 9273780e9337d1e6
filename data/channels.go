package data

import (
	"sort"
	"strings"
)

// Member is a user in a channel together with the status modes they hold
// there, highest rank first.
type Member struct {
	Nick   string `json:"nick" msgpack:"nick"`
	Modes  string `json:"modes,omitempty" msgpack:"modes,omitempty"`
	Prefix string `json:"prefix,omitempty" msgpack:"prefix,omitempty"`
}

// ChannelTable owns the Channel records of a State keyed by casefolded name.
type ChannelTable struct {
	state    *State
	channels map[string]*Channel
}

// Get returns the channel if it exists.
func (t *ChannelTable) Get(name string) *Channel {
	return t.channels[t.state.Fold(name)]
}

// GetOrCreate returns the channel, creating it if needed. A non-empty topic
// replaces the stored one. Membership is never touched.
func (t *ChannelTable) GetOrCreate(name, topic string) *Channel {
	id := t.state.Fold(name)
	c, ok := t.channels[id]
	if !ok {
		c = newChannel(id, name, NewChannelModes(t.state.kinds, t.state.Fold))
		t.channels[id] = c
	}
	if len(topic) > 0 {
		c.Topic = topic
	}
	return c
}

// Topic sets the topic of a known channel.
func (t *ChannelTable) Topic(name, topic string) bool {
	c := t.Get(name)
	if c == nil {
		return false
	}
	c.Topic = topic
	return true
}

// Mode applies a mode delta to a known channel. found reports whether the
// channel is known and complete whether every letter could be applied.
func (t *ChannelTable) Mode(name, modestring string,
	params []string) (found, complete bool) {

	c := t.Get(name)
	if c == nil {
		return false, true
	}
	return true, c.Modes.AddModes(modestring, params)
}

// ModeList applies a single ban, exception or invite list entry.
func (t *ChannelTable) ModeList(name string, mode rune, entry string) bool {
	c := t.Get(name)
	if c == nil || len(entry) == 0 {
		return false
	}
	c.Modes.addListEntry(mode, entry)
	return true
}

// RenameStatus rewrites status mode entries for a nick change in the given
// channels.
func (t *ChannelTable) RenameStatus(ids []string, oldnick, newnick string) {
	statuses := t.state.kinds.StatusModes()
	for _, id := range ids {
		if c, ok := t.channels[id]; ok {
			c.Modes.RenameListEntry(statuses, oldnick, newnick)
		}
	}
}

// Members lists the users of a channel with their status modes, ordered by
// highest status and then by nick.
func (t *ChannelTable) Members(name string) []Member {
	c := t.Get(name)
	if c == nil {
		return nil
	}

	kinds := t.state.kinds
	statuses := kinds.StatusModes()

	members := make([]Member, 0, len(c.users))
	ranks := make(map[string]int, len(c.users))
	for id := range c.users {
		u := t.state.Users.users[id]
		if u == nil {
			continue
		}

		var modes, prefix strings.Builder
		for _, mode := range statuses {
			if c.Modes.HasListEntry(mode, u.Nick) {
				modes.WriteRune(mode)
				if sym, ok := kinds.Symbol(mode); ok {
					prefix.WriteRune(sym)
				}
			}
		}

		m := Member{Nick: u.Nick, Modes: modes.String(), Prefix: prefix.String()}
		rank := len(statuses)
		if len(m.Modes) > 0 {
			rank = kinds.Rank([]rune(m.Modes)[0])
		}
		ranks[m.Nick] = rank
		members = append(members, m)
	}

	sort.Slice(members, func(i, j int) bool {
		ri, rj := ranks[members[i].Nick], ranks[members[j].Nick]
		if ri != rj {
			return ri < rj
		}
		return t.state.Fold(members[i].Nick) < t.state.Fold(members[j].Nick)
	})
	return members
}

// Len returns the number of channels.
func (t *ChannelTable) Len() int {
	return len(t.channels)
}

// Each calls fn for every channel ordered by id until fn returns false.
func (t *ChannelTable) Each(fn func(*Channel) bool) {
	ids := make([]string, 0, len(t.channels))
	for id := range t.channels {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if !fn(t.channels[id]) {
			return
		}
	}
}
