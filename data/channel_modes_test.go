package data

import (
	"math/rand"
	"strings"

	. "gopkg.in/check.v1"
)

func testKinds() *ModeKinds {
	m := NewModeKinds()
	if err := m.ApplyISupport(testISupport); err != nil {
		panic(err)
	}
	return m
}

func (s *s) TestChannelModes_ListAddRemove(c *C) {
	m := NewChannelModes(testKinds(), nil)

	c.Check(m.AddModes("+b", []string{"*!*@host.example"}), Equals, true)
	c.Check(m.List('b'), DeepEquals, []string{"*!*@host.example"})

	c.Check(m.AddModes("-b", []string{"*!*@host.example"}), Equals, true)
	c.Check(m.IsSet('b'), Equals, false)
	c.Check(m.Len(), Equals, 0)
}

func (s *s) TestChannelModes_ListNoDuplicates(c *C) {
	m := NewChannelModes(testKinds(), nil)
	m.AddModes("+bb", []string{"a!*@*", "a!*@*"})
	c.Check(m.List('b'), HasLen, 1)

	m.AddModes("-b", []string{"unknown!*@*"})
	c.Check(m.List('b'), HasLen, 1)
}

func (s *s) TestChannelModes_Categories(c *C) {
	m := NewChannelModes(testKinds(), nil)

	c.Check(m.AddModes("+kltn", []string{"secret", "10"}), Equals, true)
	arg, ok := m.Arg('k')
	c.Check(ok, Equals, true)
	c.Check(arg, Equals, "secret")
	arg, ok = m.Arg('l')
	c.Check(ok, Equals, true)
	c.Check(arg, Equals, "10")
	c.Check(m.IsSet('t'), Equals, true)
	c.Check(m.IsSet('n'), Equals, true)

	// B consumes on removal, C does not.
	c.Check(m.AddModes("-lk+i", []string{"whatever"}), Equals, true)
	c.Check(m.IsSet('k'), Equals, false)
	c.Check(m.IsSet('l'), Equals, false)
	c.Check(m.IsSet('i'), Equals, true)

	mode, ok := m.Get('i')
	c.Check(ok, Equals, true)
	c.Check(mode.Kind, Equals, ARGS_NONE)

	// Unknown letters are flags.
	c.Check(m.AddModes("+Z-t", nil), Equals, true)
	c.Check(m.IsSet('Z'), Equals, true)
	c.Check(m.IsSet('t'), Equals, false)
}

func (s *s) TestChannelModes_SignsToggle(c *C) {
	m := NewChannelModes(testKinds(), nil)
	m.AddModes("+ov", []string{"alice", "bob"})

	c.Check(m.AddModes("+b-o+v", []string{"x!*@*", "alice", "carol"}),
		Equals, true)
	c.Check(m.List('b'), DeepEquals, []string{"x!*@*"})
	c.Check(m.IsSet('o'), Equals, false)
	c.Check(m.List('v'), DeepEquals, []string{"bob", "carol"})

	// Unsigned start means adding.
	m.AddModes("m", nil)
	c.Check(m.IsSet('m'), Equals, true)
}

func (s *s) TestChannelModes_Truncated(c *C) {
	m := NewChannelModes(testKinds(), nil)

	c.Check(m.AddModes("+tbkl", []string{"a!*@*"}), Equals, false)
	c.Check(m.IsSet('t'), Equals, true)
	c.Check(m.List('b'), DeepEquals, []string{"a!*@*"})
	c.Check(m.IsSet('k'), Equals, false)
	c.Check(m.IsSet('l'), Equals, false)

	c.Check(m.AddModes("+o", nil), Equals, false)
	c.Check(m.IsSet('o'), Equals, false)
}

func (s *s) TestChannelModes_Fold(c *C) {
	m := NewChannelModes(testKinds(), strings.ToLower)
	m.AddModes("+o", []string{"Alice"})
	c.Check(m.HasListEntry('o', "alice"), Equals, true)

	m.AddModes("-o", []string{"ALICE"})
	c.Check(m.IsSet('o'), Equals, false)
}

func (s *s) TestChannelModes_RenameListEntry(c *C) {
	m := NewChannelModes(testKinds(), nil)
	m.AddModes("+ovb", []string{"alice", "alice", "alice!*@*"})

	m.RenameListEntry("ov", "alice", "bob")
	c.Check(m.List('o'), DeepEquals, []string{"bob"})
	c.Check(m.List('v'), DeepEquals, []string{"bob"})
	c.Check(m.List('b'), DeepEquals, []string{"alice!*@*"})

	m.RemoveListEntry("ov", "bob")
	c.Check(m.IsSet('o'), Equals, false)
	c.Check(m.IsSet('v'), Equals, false)
}

func (s *s) TestChannelModes_String(c *C) {
	m := NewChannelModes(testKinds(), nil)
	c.Check(m.String(), Equals, "")

	m.AddModes("+tnlbkb", []string{"20", "z!*@*", "key", "a!*@*"})
	c.Check(m.String(), Equals, "+bbklnt a!*@* z!*@* key 20")

	m.Reset()
	m.AddModes("+nt", nil)
	c.Check(m.String(), Equals, "+nt")
}

func (s *s) TestChannelModes_Clone(c *C) {
	m := NewChannelModes(testKinds(), nil)
	m.AddModes("+bk", []string{"a!*@*", "key"})

	clone := m.Clone()
	m.AddModes("-b+b", []string{"a!*@*", "c!*@*"})

	c.Check(clone.List('b'), DeepEquals, []string{"a!*@*"})
	c.Check(clone.String(), Equals, "+bk a!*@* key")
}

func (s *s) TestChannelModes_EmptyParam(c *C) {
	m := NewChannelModes(testKinds(), nil)

	c.Check(m.AddModes("+kb", []string{"", "x!*@*"}), Equals, false)
	c.Check(m.Len(), Equals, 0)
	c.Check(m.String(), Equals, "")

	c.Check(m.AddModes("+bk", []string{"x!*@*", ""}), Equals, false)
	c.Check(m.List('b'), DeepEquals, []string{"x!*@*"})
	c.Check(m.IsSet('k'), Equals, false)

	parsed := ParseChannelModes(testKinds(), nil, m.String())
	c.Check(parsed.Map(), DeepEquals, m.Map())
}

func (s *s) TestChannelModes_RoundTrip(c *C) {
	kinds := testKinds()
	letters := []rune("beIovklimnpstZ")
	params := []string{"a!*@*", "b!*@*", "alice", "bob", "key", "5", ""}
	rng := rand.New(rand.NewSource(42))

	m := NewChannelModes(kinds, nil)
	for i := 0; i < 500; i++ {
		var delta strings.Builder
		var args []string
		for j := rng.Intn(4) + 1; j > 0; j-- {
			if rng.Intn(2) == 0 {
				delta.WriteByte('+')
			} else {
				delta.WriteByte('-')
			}
			delta.WriteRune(letters[rng.Intn(len(letters))])
			args = append(args, params[rng.Intn(len(params))])
		}
		m.AddModes(delta.String(), args[:rng.Intn(len(args)+1)])

		parsed := ParseChannelModes(kinds, nil, m.String())
		c.Assert(parsed.Map(), DeepEquals, m.Map(),
			Commentf("after %q", delta.String()))
		c.Assert(parsed.String(), Equals, m.String())
	}
}
