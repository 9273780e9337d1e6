package data

import (
	. "gopkg.in/check.v1"

	"github.com/aarondl/ircstate/irc"
)

func (s *s) TestSnapshot(c *C) {
	st := newTestState(c)
	st.Users.Join(self, channel, nil)
	st.Users.Join(irc.ParseHostmask("uid42!uid42@irccloud.com"), channel,
		&ExtendedJoin{Account: "acct", Realname: "Cloud"})
	st.Channels.Mode(channel, "+ovtl", []string{"me", "uid42", "30"})
	st.Channels.Topic(channel, "welcome")
	st.Channels.Get(channel).Data.Put("seen", "yes")

	snap := st.Snapshot("net", "abc")
	c.Check(snap.Network, Equals, "net")
	c.Check(snap.Session, Equals, "abc")
	c.Check(snap.Self, Equals, "me")
	c.Check(snap.Prefix, Equals, "(ov)@+")
	c.Check(snap.Chanmodes, Equals, "eIb,k,l,imnpst")
	c.Assert(snap.Users, HasLen, 2)
	c.Assert(snap.Channels, HasLen, 1)

	cloud := snap.Users[1]
	c.Check(cloud.Nick, Equals, "uid42")
	c.Assert(cloud.Account, NotNil)
	c.Check(*cloud.Account, Equals, "acct")
	c.Check(cloud.Avatar, Equals, irccloudAvatar+"42")

	ch := snap.Channels[0]
	c.Check(ch.Topic, Equals, "welcome")
	c.Check(ch.Modes, Equals, "+lotv 30 me uid42")
	c.Check(ch.Members, DeepEquals, []Member{
		{Nick: "me", Modes: "o", Prefix: "@"},
		{Nick: "uid42", Modes: "v", Prefix: "+"},
	})
}

func (s *s) TestSnapshot_Restore(c *C) {
	st := newTestState(c)
	st.Users.Join(self, channel, nil)
	st.Users.Join(irc.ParseHostmask(users[0]), channel, nil)
	st.Users.Join(irc.ParseHostmask(users[1]), channels[1], nil)
	st.Users.SetAccount(nicks[0], "acct")
	st.Channels.Mode(channel, "+bo", []string{"*!*@bad", nicks[0]})

	snap := st.Snapshot("net", "abc")
	restored, err := snap.Restore()
	c.Assert(err, IsNil)
	c.Check(restored.Verify(), IsNil)

	again := restored.Snapshot("net", "abc")
	again.Time = snap.Time
	c.Check(again, DeepEquals, snap)
	c.Check(restored.Self().Nick, Equals, "me")
}
