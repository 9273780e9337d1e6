package data

import (
	"sort"
	"strings"
)

// Mode is the value stored for a single mode letter, tagged by the kind it
// had when it was set. Flags carry nothing, ARGS_ALWAYS and ARGS_ONSET carry
// Arg and ARGS_LIST carries List.
type Mode struct {
	Kind ModeKind `json:"kind" msgpack:"kind"`
	Arg  string   `json:"arg,omitempty" msgpack:"arg,omitempty"`
	List []string `json:"list,omitempty" msgpack:"list,omitempty"`
}

// ChannelModes encapsulates a channel's modes, setting and getting any modes
// and potentially using arguments as well. The kind of every letter comes
// from the shared ModeKinds so it follows the network's ISUPPORT.
type ChannelModes struct {
	modes map[rune]*Mode

	*ModeKinds
	fold func(string) string
}

// NewChannelModes creates an empty ChannelModes. fold is used to compare list
// entries, nil compares them exactly.
func NewChannelModes(kinds *ModeKinds, fold func(string) string) *ChannelModes {
	if kinds == nil {
		kinds = NewModeKinds()
	}
	return &ChannelModes{
		modes:     make(map[rune]*Mode),
		ModeKinds: kinds,
		fold:      fold,
	}
}

// ParseChannelModes rebuilds a ChannelModes from the output of String.
func ParseChannelModes(kinds *ModeKinds, fold func(string) string,
	modestring string) *ChannelModes {

	m := NewChannelModes(kinds, fold)
	fields := strings.Fields(modestring)
	if len(fields) == 0 {
		return m
	}
	m.AddModes(fields[0], fields[1:])
	return m
}

// AddModes applies a mode delta such as +b-o+v with its ordered parameters.
// Signs toggle left to right and an unsigned start means adding. When the
// parameters run out the remaining letters are dropped and false is returned,
// an empty parameter counts as running out.
func (m *ChannelModes) AddModes(modestring string, params []string) bool {
	adding := true
	used := 0

	next := func() (string, bool) {
		if used >= len(params) || len(params[used]) == 0 {
			return "", false
		}
		used++
		return params[used-1], true
	}

	for _, mode := range modestring {
		if add, sub := mode == '+', mode == '-'; add || sub {
			adding = add
			continue
		}

		switch kind := m.Kind(mode); kind {
		case ARGS_LIST:
			arg, ok := next()
			if !ok {
				return false
			}
			if adding {
				m.addListEntry(mode, arg)
			} else {
				m.removeListEntry(mode, arg)
			}
		case ARGS_ALWAYS:
			arg, ok := next()
			if !ok {
				return false
			}
			if adding {
				m.modes[mode] = &Mode{Kind: kind, Arg: arg}
			} else {
				delete(m.modes, mode)
			}
		case ARGS_ONSET:
			if !adding {
				delete(m.modes, mode)
				break
			}
			arg, ok := next()
			if !ok {
				return false
			}
			m.modes[mode] = &Mode{Kind: kind, Arg: arg}
		default:
			if adding {
				m.modes[mode] = &Mode{Kind: ARGS_NONE}
			} else {
				delete(m.modes, mode)
			}
		}
	}

	return true
}

func (m *ChannelModes) equal(a, b string) bool {
	if m.fold == nil {
		return a == b
	}
	return m.fold(a) == m.fold(b)
}

func (m *ChannelModes) addListEntry(mode rune, entry string) {
	cur, ok := m.modes[mode]
	if !ok || cur.Kind != ARGS_LIST {
		cur = &Mode{Kind: ARGS_LIST}
		m.modes[mode] = cur
	}

	for _, e := range cur.List {
		if m.equal(e, entry) {
			return
		}
	}
	cur.List = append(cur.List, entry)
	sort.Strings(cur.List)
}

// removeListEntry deletes a matching entry and prunes the letter once its
// list is empty.
func (m *ChannelModes) removeListEntry(mode rune, entry string) bool {
	cur, ok := m.modes[mode]
	if !ok || cur.Kind != ARGS_LIST {
		return false
	}

	removed := false
	for i, e := range cur.List {
		if m.equal(e, entry) {
			cur.List = append(cur.List[:i], cur.List[i+1:]...)
			removed = true
			break
		}
	}

	if len(cur.List) == 0 {
		delete(m.modes, mode)
	}
	return removed
}

// RenameListEntry rewrites entries equal to from in the given list letters to
// to. It is used to move status modes along with a nick change.
func (m *ChannelModes) RenameListEntry(modes string, from, to string) {
	for _, mode := range modes {
		if m.removeListEntry(mode, from) {
			m.addListEntry(mode, to)
		}
	}
}

// RemoveListEntry deletes entry from every given list letter.
func (m *ChannelModes) RemoveListEntry(modes string, entry string) {
	for _, mode := range modes {
		m.removeListEntry(mode, entry)
	}
}

// HasListEntry checks if entry is in the list for mode.
func (m *ChannelModes) HasListEntry(mode rune, entry string) bool {
	cur, ok := m.modes[mode]
	if !ok {
		return false
	}
	for _, e := range cur.List {
		if m.equal(e, entry) {
			return true
		}
	}
	return false
}

// IsSet checks if the mode letter has any value.
func (m *ChannelModes) IsSet(mode rune) bool {
	_, ok := m.modes[mode]
	return ok
}

// Arg returns the parameter of an ARGS_ALWAYS or ARGS_ONSET mode.
func (m *ChannelModes) Arg(mode rune) (string, bool) {
	cur, ok := m.modes[mode]
	if !ok || (cur.Kind != ARGS_ALWAYS && cur.Kind != ARGS_ONSET) {
		return "", false
	}
	return cur.Arg, true
}

// List returns a copy of the entries of an ARGS_LIST mode.
func (m *ChannelModes) List(mode rune) []string {
	cur, ok := m.modes[mode]
	if !ok || cur.Kind != ARGS_LIST {
		return nil
	}
	return append([]string(nil), cur.List...)
}

// Get returns a copy of the stored value for a mode.
func (m *ChannelModes) Get(mode rune) (Mode, bool) {
	cur, ok := m.modes[mode]
	if !ok {
		return Mode{}, false
	}
	return cur.clone(), true
}

// Modes returns every set letter in sorted order.
func (m *ChannelModes) Modes() []rune {
	modes := make([]rune, 0, len(m.modes))
	for mode := range m.modes {
		modes = append(modes, mode)
	}
	sort.Slice(modes, func(i, j int) bool { return modes[i] < modes[j] })
	return modes
}

// Map returns a copy of every stored value keyed by letter.
func (m *ChannelModes) Map() map[string]Mode {
	ret := make(map[string]Mode, len(m.modes))
	for mode, cur := range m.modes {
		ret[string(mode)] = cur.clone()
	}
	return ret
}

// reconcile brings stored values in line with the current kinds after the
// schema changed. A parameter moving between ARGS_ALWAYS and ARGS_ONSET is
// kept, anything else stored under a different kind can not be read back and
// is dropped.
func (m *ChannelModes) reconcile() {
	for mode, cur := range m.modes {
		kind := m.Kind(mode)
		if kind == cur.Kind {
			continue
		}
		if hasArg(kind) && hasArg(cur.Kind) {
			cur.Kind = kind
			continue
		}
		delete(m.modes, mode)
	}
}

func hasArg(kind ModeKind) bool {
	return kind == ARGS_ALWAYS || kind == ARGS_ONSET
}

// Len is the number of letters set.
func (m *ChannelModes) Len() int {
	return len(m.modes)
}

// Reset unsets everything.
func (m *ChannelModes) Reset() {
	m.modes = make(map[rune]*Mode)
}

// Clone deep copies the modes along with the ModeKinds.
func (m *ChannelModes) Clone() *ChannelModes {
	clone := NewChannelModes(m.ModeKinds.Clone(), m.fold)
	for mode, cur := range m.modes {
		c := cur.clone()
		clone.modes[mode] = &c
	}
	return clone
}

// String renders the modes in a canonical form: a single + block of sorted
// letters, list letters repeated once per sorted entry, followed by the
// parameters in the same order. It is meant for diagnostics and round trips,
// not for sending to a server.
func (m *ChannelModes) String() string {
	if len(m.modes) == 0 {
		return ""
	}

	letters := &strings.Builder{}
	var args []string

	letters.WriteByte('+')
	for _, mode := range m.Modes() {
		cur := m.modes[mode]
		switch cur.Kind {
		case ARGS_LIST:
			for _, entry := range cur.List {
				letters.WriteRune(mode)
				args = append(args, entry)
			}
		case ARGS_ALWAYS, ARGS_ONSET:
			letters.WriteRune(mode)
			args = append(args, cur.Arg)
		default:
			letters.WriteRune(mode)
		}
	}

	if len(args) == 0 {
		return letters.String()
	}
	return letters.String() + " " + strings.Join(args, " ")
}

func (mode *Mode) clone() Mode {
	c := *mode
	if mode.List != nil {
		c.List = append([]string(nil), mode.List...)
	}
	return c
}
