package dispatch

import (
	. "gopkg.in/check.v1"

	"github.com/aarondl/ircstate/data"
	"github.com/aarondl/ircstate/irc"
)

func (s *s) TestRegistry(c *C) {
	store, err := data.NewStore(data.MemStoreProvider)
	c.Assert(err, IsNil)
	defer store.Close()

	r := NewRegistry(store, nil)
	d, _ := newTracking(c)
	d.Dispatch(ev(irc.JOIN, self, "#chan"))

	c.Assert(r.Add(d), IsNil)
	c.Check(r.Add(d), Equals, ErrAlreadyExist)
	c.Check(r.Networks(), DeepEquals, []string{netID})

	got, ok := r.Get(netID)
	c.Check(ok, Equals, true)
	c.Check(got, Equals, d)

	var users int
	c.Check(r.UsingState(netID, func(st *data.State) {
		users = st.Users.Len()
	}), Equals, true)
	c.Check(users, Equals, 1)
	c.Check(r.UsingState("nowhere", func(*data.State) {}), Equals, false)

	c.Assert(r.Save(), IsNil)
	var saved []string
	c.Check(r.UsingStore(func(st *data.Store) {
		saved, err = st.Networks()
	}), Equals, true)
	c.Assert(err, IsNil)
	c.Check(saved, DeepEquals, []string{netID})

	removed, err := r.Remove(netID)
	c.Check(err, IsNil)
	c.Check(removed, Equals, d)
	c.Check(r.Networks(), HasLen, 0)

	removed, err = r.Remove(netID)
	c.Check(err, IsNil)
	c.Check(removed, IsNil)
}

func (s *s) TestRegistry_NoStore(c *C) {
	r := NewRegistry(nil, nil)
	c.Check(r.UsingStore(func(*data.Store) {}), Equals, false)
	c.Check(r.Save(), IsNil)

	var l data.Locker = r
	c.Check(l.UsingState(netID, func(*data.State) {}), Equals, false)
}
