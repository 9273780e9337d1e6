package data

import (
	"github.com/aarondl/ircstate/irc"
)

// Channel encapsulates all the data associated with a channel.
type Channel struct {
	// ID is the casefolded name and the key in the ChannelTable.
	ID    string
	Name  string
	Topic string
	Modes *ChannelModes

	// Data is free form storage for other collaborators.
	Data JSONStorer

	users map[string]struct{}
}

// newChannel instantiates a channel object.
func newChannel(id, name string, modes *ChannelModes) *Channel {
	return &Channel{
		ID:    id,
		Name:  name,
		Modes: modes,
		Data:  make(JSONStorer),
		users: make(map[string]struct{}),
	}
}

// Users returns the ids of the users in the channel, sorted.
func (c *Channel) Users() []string {
	return sortedKeys(c.users)
}

// HasUser checks if the user with the given id is in the channel.
func (c *Channel) HasUser(id string) bool {
	_, ok := c.users[id]
	return ok
}

// Len is the number of users in the channel.
func (c *Channel) Len() int {
	return len(c.users)
}

// IsBanned checks a host against the ban list, honoring ban exceptions
// under e. Both sides are compared under the network casefold. Entries that
// are not nick!user@host masks, such as extended bans, never match.
func (c *Channel) IsBanned(host irc.Host) bool {
	return c.matchList('b', host) && !c.matchList('e', host)
}

func (c *Channel) matchList(mode rune, host irc.Host) bool {
	fold := c.Modes.fold
	if fold == nil {
		fold = func(s string) string { return s }
	}

	host = irc.Host(fold(string(host)))
	for _, entry := range c.Modes.List(mode) {
		mask := irc.Mask(entry)
		if mask.IsValid() && irc.Mask(fold(entry)).Match(host) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy that is safe to hand out of the state lock.
func (c *Channel) Clone() *Channel {
	clone := *c
	clone.Modes = c.Modes.Clone()
	clone.Data = c.Data.Clone()
	clone.users = make(map[string]struct{}, len(c.users))
	for id := range c.users {
		clone.users[id] = struct{}{}
	}
	return &clone
}

// String returns the name of the channel.
func (c *Channel) String() string {
	return c.Name
}
