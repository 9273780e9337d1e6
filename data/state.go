/*
Package data turns a stream of irc events into a stateful database of the
users and channels on a network.
*/
package data

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/aarondl/ircstate/irc"
)

// isupportCasemapping is read by ApplyISupport alongside the mode tokens.
const isupportCasemapping = "CASEMAPPING"

// State is the main data container. It represents the state on a server
// including all channels, users, and self. Users and channels refer to each
// other only by id, every membership change goes through link and unlink so
// both sides stay consistent.
//
// State is not safe for concurrent use, callers serialize access per
// connection.
type State struct {
	Users    *UserTable
	Channels *ChannelTable

	kinds       *ModeKinds
	casemapping string
	self        string
}

// NewState creates an empty state with the default mode schema and ascii
// casemapping.
func NewState() *State {
	s := &State{
		kinds:       NewModeKinds(),
		casemapping: irc.CasemappingASCII,
	}
	s.Users = &UserTable{state: s, users: make(map[string]*User)}
	s.Channels = &ChannelTable{state: s, channels: make(map[string]*Channel)}
	return s
}

// Fold casefolds a nick or channel name into its canonical id.
func (s *State) Fold(name string) string {
	return irc.Casefold(s.casemapping, name)
}

// Kinds returns the mode schema shared by every channel.
func (s *State) Kinds() *ModeKinds {
	return s.kinds
}

// Casemapping returns the casemapping used for ids.
func (s *State) Casemapping() string {
	return s.casemapping
}

// ApplyISupport updates the mode schema and casemapping. Malformed tokens are
// skipped and reported, the rest of the map still applies.
func (s *State) ApplyISupport(isupport map[string]string) error {
	err := s.kinds.ApplyISupport(isupport)
	for _, c := range s.Channels.channels {
		c.Modes.reconcile()
	}

	if cm, ok := isupport[isupportCasemapping]; ok && len(cm) > 0 {
		cm = strings.ToLower(cm)
		if cm != s.casemapping {
			s.evictCollisions(cm)
			s.casemapping = cm
			s.rekey()
		}
	}

	return err
}

// evictCollisions removes the records that would share an id once the
// casemapping is cm. Among users the current user wins, otherwise the lowest
// old id does; a losing user is dropped as if it had quit. A losing channel
// is emptied and dropped.
func (s *State) evictCollisions(cm string) {
	taken := make(map[string]bool)
	if self := s.Self(); self != nil {
		taken[irc.Casefold(cm, self.Nick)] = true
	}

	var staleUsers []string
	s.Users.Each(func(u *User) bool {
		if u.IsCurrent {
			return true
		}
		id := irc.Casefold(cm, u.Nick)
		if taken[id] {
			staleUsers = append(staleUsers, u.Nick)
		}
		taken[id] = true
		return true
	})
	for _, nick := range staleUsers {
		s.Users.Quit(nick)
	}

	taken = make(map[string]bool)
	var staleChannels []*Channel
	s.Channels.Each(func(c *Channel) bool {
		id := irc.Casefold(cm, c.Name)
		if taken[id] {
			staleChannels = append(staleChannels, c)
		}
		taken[id] = true
		return true
	})
	for _, c := range staleChannels {
		for id := range c.users {
			s.unlink(s.Users.users[id], c)
		}
		delete(s.Channels.channels, c.ID)
	}
}

// rekey rebuilds every id after a casemapping change.
func (s *State) rekey() {
	chanIDs := make(map[string]string, len(s.Channels.channels))
	channels := make(map[string]*Channel, len(s.Channels.channels))
	for old, c := range s.Channels.channels {
		c.ID = s.Fold(c.Name)
		chanIDs[old] = c.ID
		channels[c.ID] = c
	}

	userIDs := make(map[string]string, len(s.Users.users))
	users := make(map[string]*User, len(s.Users.users))
	for old, u := range s.Users.users {
		u.ID = s.Fold(u.Nick)
		userIDs[old] = u.ID
		users[u.ID] = u

		set := make(map[string]struct{}, len(u.channels))
		for id := range u.channels {
			set[chanIDs[id]] = struct{}{}
		}
		u.channels = set
	}

	for _, c := range channels {
		set := make(map[string]struct{}, len(c.users))
		for id := range c.users {
			set[userIDs[id]] = struct{}{}
		}
		c.users = set
	}

	if len(s.self) > 0 {
		s.self = userIDs[s.self]
	}
	s.Channels.channels = channels
	s.Users.users = users
}

// Reset clears every user and channel and creates the current user. It is the
// full restart done on every welcome numeric.
func (s *State) Reset(self irc.Hostmask) *User {
	s.Users.users = make(map[string]*User)
	s.Channels.channels = make(map[string]*Channel)
	s.self = ""

	if len(self.Nick) == 0 {
		return nil
	}

	u := s.Users.LookupOrCreate(self)
	u.IsCurrent = true
	s.self = u.ID
	return u
}

// Self returns the current user, nil before the welcome numeric.
func (s *State) Self() *User {
	if len(s.self) == 0 {
		return nil
	}
	return s.Users.users[s.self]
}

// IsCurrent checks if the nick or hostmask belongs to the current user.
func (s *State) IsCurrent(nickorhost string) bool {
	return len(s.self) > 0 && s.Fold(irc.Nick(nickorhost)) == s.self
}

// link adds the user to the channel on both sides.
func (s *State) link(u *User, c *Channel) {
	u.channels[c.ID] = struct{}{}
	c.users[u.ID] = struct{}{}
}

// unlink removes the user from the channel on both sides and drops any status
// modes the channel held for them.
func (s *State) unlink(u *User, c *Channel) {
	delete(u.channels, c.ID)
	delete(c.users, u.ID)
	c.Modes.RemoveListEntry(s.kinds.StatusModes(), u.Nick)
}

// Verify checks that every membership is recorded on both sides and that ids
// match their keys. It returns the first inconsistency found.
func (s *State) Verify() error {
	for id, u := range s.Users.users {
		if id != u.ID {
			return errors.Errorf("data: user %q stored under %q", u.ID, id)
		}
		for cid := range u.channels {
			c, ok := s.Channels.channels[cid]
			if !ok {
				return errors.Errorf("data: user %q in unknown channel %q",
					id, cid)
			}
			if !c.HasUser(id) {
				return errors.Errorf("data: user %q in %q but not listed",
					id, cid)
			}
		}
	}

	for id, c := range s.Channels.channels {
		if id != c.ID {
			return errors.Errorf("data: channel %q stored under %q", c.ID, id)
		}
		for uid := range c.users {
			u, ok := s.Users.users[uid]
			if !ok {
				return errors.Errorf("data: channel %q lists unknown user %q",
					id, uid)
			}
			if !u.InChannel(id) {
				return errors.Errorf("data: channel %q lists %q one way only",
					id, uid)
			}
		}
	}

	return nil
}
