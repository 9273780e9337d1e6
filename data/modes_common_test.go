package data

import (
	. "gopkg.in/check.v1"
)

var testISupport = map[string]string{
	"CHANMODES": "eIb,k,l,imnpst",
	"PREFIX":    "(ov)@+",
}

func (s *s) TestModeKinds_Default(c *C) {
	m := NewModeKinds()
	c.Check(m.Kind('o'), Equals, ARGS_LIST)
	c.Check(m.Kind('v'), Equals, ARGS_LIST)
	c.Check(m.Kind('b'), Equals, ARGS_NONE)
	c.Check(m.Kind('k'), Equals, ARGS_NONE)
	c.Check(m.Prefix(), Equals, "(ov)@+")
	c.Check(m.Chanmodes(), Equals, "")
}

func (s *s) TestModeKinds_ApplyISupport(c *C) {
	m := NewModeKinds()
	c.Check(m.ApplyISupport(testISupport), IsNil)

	c.Check(m.Kind('b'), Equals, ARGS_LIST)
	c.Check(m.Kind('e'), Equals, ARGS_LIST)
	c.Check(m.Kind('I'), Equals, ARGS_LIST)
	c.Check(m.Kind('k'), Equals, ARGS_ALWAYS)
	c.Check(m.Kind('l'), Equals, ARGS_ONSET)
	c.Check(m.Kind('i'), Equals, ARGS_NONE)
	c.Check(m.Kind('z'), Equals, ARGS_NONE)
	c.Check(m.Kind('o'), Equals, ARGS_LIST)
	c.Check(m.Chanmodes(), Equals, "eIb,k,l,imnpst")

	// Idempotent.
	c.Check(m.ApplyISupport(testISupport), IsNil)
	c.Check(m.Kind('k'), Equals, ARGS_ALWAYS)
	c.Check(m.Prefix(), Equals, "(ov)@+")
}

func (s *s) TestModeKinds_ApplyISupportPadding(c *C) {
	m := NewModeKinds()
	c.Check(m.ApplyISupport(map[string]string{"CHANMODES": "b,k"}), IsNil)
	c.Check(m.Kind('b'), Equals, ARGS_LIST)
	c.Check(m.Kind('k'), Equals, ARGS_ALWAYS)

	c.Check(m.ApplyISupport(map[string]string{
		"CHANMODES": "b,k,l,imnt,XYZ",
	}), IsNil)
	c.Check(m.Kind('l'), Equals, ARGS_ONSET)
	c.Check(m.Kind('X'), Equals, ARGS_NONE)
}

func (s *s) TestModeKinds_ApplyISupportMalformed(c *C) {
	m := NewModeKinds()
	c.Check(m.ApplyISupport(testISupport), IsNil)

	err := m.ApplyISupport(map[string]string{
		"CHANMODES": "",
		"PREFIX":    "(qov)~@",
	})
	c.Check(err, NotNil)
	c.Check(m.Kind('k'), Equals, ARGS_ALWAYS)
	c.Check(m.Prefix(), Equals, "(ov)@+")

	// A good key still applies next to a bad one.
	err = m.ApplyISupport(map[string]string{
		"CHANMODES": "b,k,l,imnt",
		"PREFIX":    "ov@+",
	})
	c.Check(err, NotNil)
	c.Check(m.Kind('e'), Equals, ARGS_NONE)
	c.Check(m.Prefix(), Equals, "(ov)@+")

	c.Check(m.ApplyISupport(map[string]string{"NICKLEN": "30"}), IsNil)
	c.Check(m.Kind('b'), Equals, ARGS_LIST)
}

func (s *s) TestModeKinds_Status(c *C) {
	m := NewModeKinds()
	c.Check(m.ApplyISupport(map[string]string{
		"PREFIX": "(qaohv)~&@%+",
	}), IsNil)

	c.Check(m.IsStatus('h'), Equals, true)
	c.Check(m.IsStatus('b'), Equals, false)
	c.Check(m.Rank('q'), Equals, 0)
	c.Check(m.Rank('v'), Equals, 4)

	sym, ok := m.Symbol('h')
	c.Check(ok, Equals, true)
	c.Check(sym, Equals, '%')

	mode, ok := m.Mode('&')
	c.Check(ok, Equals, true)
	c.Check(mode, Equals, 'a')

	_, ok = m.Mode('!')
	c.Check(ok, Equals, false)
	c.Check(m.StatusModes(), Equals, "qaohv")
}

func (s *s) TestModeKinds_ParsePrefixedNick(c *C) {
	m := NewModeKinds()
	c.Check(m.ApplyISupport(testISupport), IsNil)

	modes, nick := m.ParsePrefixedNick("@alice")
	c.Check(string(modes), Equals, "o")
	c.Check(nick, Equals, "alice")

	modes, nick = m.ParsePrefixedNick("@+bob!b@host")
	c.Check(string(modes), Equals, "ov")
	c.Check(nick, Equals, "bob!b@host")

	modes, nick = m.ParsePrefixedNick("charlie")
	c.Check(modes, HasLen, 0)
	c.Check(nick, Equals, "charlie")

	modes, nick = m.ParsePrefixedNick("@+")
	c.Check(string(modes), Equals, "ov")
	c.Check(nick, Equals, "")
}

func (s *s) TestModeKinds_StatusFromSymbols(c *C) {
	m := NewModeKinds()
	c.Check(string(m.StatusFromSymbols("H@+")), Equals, "ov")
	c.Check(string(m.StatusFromSymbols("G*")), Equals, "")
}

func (s *s) TestModeKinds_Clone(c *C) {
	m := NewModeKinds()
	clone := m.Clone()
	c.Check(m.ApplyISupport(testISupport), IsNil)

	c.Check(m.Kind('k'), Equals, ARGS_ALWAYS)
	c.Check(clone.Kind('k'), Equals, ARGS_NONE)
	c.Check(clone.Kind('o'), Equals, ARGS_LIST)
}

func (s *s) TestModeKind_String(c *C) {
	c.Check(ARGS_LIST.String(), Equals, "A")
	c.Check(ARGS_ALWAYS.String(), Equals, "B")
	c.Check(ARGS_ONSET.String(), Equals, "C")
	c.Check(ARGS_NONE.String(), Equals, "D")
}
