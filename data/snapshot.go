package data

import (
	"time"

	"github.com/aarondl/ircstate/irc"
)

// Snapshot is a serializable copy of a State.
type Snapshot struct {
	Network     string            `json:"network" msgpack:"network"`
	Session     string            `json:"session" msgpack:"session"`
	Time        time.Time         `json:"time" msgpack:"time"`
	Self        string            `json:"self,omitempty" msgpack:"self,omitempty"`
	Casemapping string            `json:"casemapping" msgpack:"casemapping"`
	Chanmodes   string            `json:"chanmodes" msgpack:"chanmodes"`
	Prefix      string            `json:"prefix" msgpack:"prefix"`
	Users       []UserSnapshot    `json:"users" msgpack:"users"`
	Channels    []ChannelSnapshot `json:"channels" msgpack:"channels"`
}

// UserSnapshot is the serializable form of a User.
type UserSnapshot struct {
	ID       string            `json:"id" msgpack:"id"`
	Nick     string            `json:"nick" msgpack:"nick"`
	Ident    string            `json:"ident" msgpack:"ident"`
	Host     string            `json:"host" msgpack:"host"`
	Realname string            `json:"realname" msgpack:"realname"`
	Account  *string           `json:"account,omitempty" msgpack:"account,omitempty"`
	Server   string            `json:"server,omitempty" msgpack:"server,omitempty"`
	Current  bool              `json:"current,omitempty" msgpack:"current,omitempty"`
	Avatar   string            `json:"avatar,omitempty" msgpack:"avatar,omitempty"`
	Channels []string          `json:"channels" msgpack:"channels"`
	Data     map[string]string `json:"data,omitempty" msgpack:"data,omitempty"`
}

// ChannelSnapshot is the serializable form of a Channel.
type ChannelSnapshot struct {
	ID      string            `json:"id" msgpack:"id"`
	Name    string            `json:"name" msgpack:"name"`
	Topic   string            `json:"topic" msgpack:"topic"`
	Modes   string            `json:"modes" msgpack:"modes"`
	Members []Member          `json:"members" msgpack:"members"`
	Data    map[string]string `json:"data,omitempty" msgpack:"data,omitempty"`
}

// NewUserSnapshot copies a user.
func NewUserSnapshot(u *User) UserSnapshot {
	snap := UserSnapshot{
		ID:       u.ID,
		Nick:     u.Nick,
		Ident:    u.Ident,
		Host:     u.Host,
		Realname: u.Realname,
		Server:   u.Server,
		Current:  u.IsCurrent,
		Channels: u.Channels(),
		Data:     u.Data.Clone(),
	}
	if account, ok := u.Account(); ok {
		snap.Account = &account
	}
	if avatar, ok := u.AvatarURL(); ok {
		snap.Avatar = avatar
	}
	return snap
}

// Snapshot copies the whole state.
func (s *State) Snapshot(network, session string) *Snapshot {
	snap := &Snapshot{
		Network:     network,
		Session:     session,
		Time:        time.Now().UTC(),
		Self:        s.self,
		Casemapping: s.casemapping,
		Chanmodes:   s.kinds.Chanmodes(),
		Prefix:      s.kinds.Prefix(),
		Users:       make([]UserSnapshot, 0, s.Users.Len()),
		Channels:    make([]ChannelSnapshot, 0, s.Channels.Len()),
	}

	s.Users.Each(func(u *User) bool {
		snap.Users = append(snap.Users, NewUserSnapshot(u))
		return true
	})
	s.Channels.Each(func(c *Channel) bool {
		snap.Channels = append(snap.Channels, s.ChannelSnapshot(c))
		return true
	})

	return snap
}

// ChannelSnapshot copies a channel along with its members.
func (s *State) ChannelSnapshot(c *Channel) ChannelSnapshot {
	return ChannelSnapshot{
		ID:      c.ID,
		Name:    c.Name,
		Topic:   c.Topic,
		Modes:   c.Modes.String(),
		Members: s.Channels.Members(c.Name),
		Data:    c.Data.Clone(),
	}
}

// Restore rebuilds a State from a snapshot. Memberships are taken from the
// user side and channel modes are re-parsed from their canonical form.
func (snap *Snapshot) Restore() (*State, error) {
	isupport := map[string]string{
		isupportCasemapping: snap.Casemapping,
		isupportPrefix:      snap.Prefix,
	}
	if len(snap.Chanmodes) > 0 {
		isupport[isupportChanmodes] = snap.Chanmodes
	}

	s := NewState()
	if err := s.ApplyISupport(isupport); err != nil {
		return nil, err
	}

	for _, cs := range snap.Channels {
		c := s.Channels.GetOrCreate(cs.Name, cs.Topic)
		c.Modes = ParseChannelModes(s.kinds, s.Fold, cs.Modes)
		for k, v := range cs.Data {
			c.Data.Put(k, v)
		}
	}

	for _, us := range snap.Users {
		u := s.Users.LookupOrCreate(irc.Hostmask{
			Nick: us.Nick, User: us.Ident, Host: us.Host,
		})
		u.setRealname(us.Realname)
		u.Server = us.Server
		if us.Account != nil {
			u.setAccount(*us.Account)
		}
		for k, v := range us.Data {
			u.Data.Put(k, v)
		}
		if us.Current {
			u.IsCurrent = true
			s.self = u.ID
		}
		for _, id := range us.Channels {
			if c, ok := s.Channels.channels[id]; ok {
				s.link(u, c)
			}
		}
	}

	if err := s.Verify(); err != nil {
		return nil, err
	}
	return s, nil
}
