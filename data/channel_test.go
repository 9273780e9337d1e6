package data

import (
	. "gopkg.in/check.v1"

	"github.com/aarondl/ircstate/irc"
)

func (s *s) TestChannel_Create(c *C) {
	ch := newChannel("#chan", "#CHAN", NewChannelModes(testKinds(), nil))
	c.Assert(ch, NotNil)
	c.Check(ch.ID, Equals, "#chan")
	c.Check(ch.Name, Equals, "#CHAN")
	c.Check(ch.String(), Equals, "#CHAN")
	c.Check(ch.Topic, Equals, "")
	c.Check(ch.Modes, NotNil)
	c.Check(ch.Data, NotNil)
	c.Check(ch.Len(), Equals, 0)
}

func (s *s) TestChannel_Clone(c *C) {
	ch := newChannel("#chan", "#chan", NewChannelModes(testKinds(), nil))
	ch.users["nick"] = struct{}{}
	ch.Modes.AddModes("+b", []string{"*!*@*"})

	clone := ch.Clone()
	delete(ch.users, "nick")
	ch.Modes.Reset()

	c.Check(clone.Users(), DeepEquals, []string{"nick"})
	c.Check(clone.Modes.List('b'), DeepEquals, []string{"*!*@*"})
}

func (s *s) TestChannel_IsBanned(c *C) {
	ch := newChannel("#chan", "#chan", NewChannelModes(testKinds(), nil))
	c.Check(ch.IsBanned("nick!user@host"), Equals, false)

	ch.Modes.AddModes("+bb", []string{"*!*@host", "other!*@*"})
	c.Check(ch.IsBanned("nick!user@host"), Equals, true)
	c.Check(ch.IsBanned("nick!user@elsewhere"), Equals, false)
	c.Check(ch.IsBanned("other!user@elsewhere"), Equals, true)

	ch.Modes.AddModes("+e", []string{"nick!user@*"})
	c.Check(ch.IsBanned("nick!user@host"), Equals, false)

	ch.Modes.AddModes("+b", []string{"$a:*"})
	c.Check(ch.IsBanned("third!user@elsewhere"), Equals, false)
}

func (s *s) TestChannel_IsBannedFolds(c *C) {
	fold := func(s string) string { return irc.Casefold(irc.CasemappingRFC1459, s) }
	ch := newChannel("#chan", "#chan", NewChannelModes(testKinds(), fold))

	ch.Modes.AddModes("+b", []string{"Nick[a]!*@*.EXAMPLE.com"})
	c.Check(ch.IsBanned("nick{A}!user@irc.example.COM"), Equals, true)
	c.Check(ch.IsBanned("nick!user@irc.example.com"), Equals, false)
}
