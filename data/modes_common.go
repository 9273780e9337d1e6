package data

import (
	"strings"

	"github.com/pkg/errors"
)

// ModeKind is the ISUPPORT category of a channel mode letter, it decides how
// many parameters the letter consumes and how its value is stored.
type ModeKind int

// The various kinds of mode-argument behavior during parsing.
const (
	// ARGS_NONE is category D, a flag. Unknown letters are treated as flags.
	ARGS_NONE ModeKind = 0x0
	// ARGS_ALWAYS is category B, a parameter on both set and unset.
	ARGS_ALWAYS ModeKind = 0x1
	// ARGS_ONSET is category C, a parameter only when being set.
	ARGS_ONSET ModeKind = 0x2
	// ARGS_LIST is category A, a set of parameters. Status modes from PREFIX
	// are folded in here.
	ARGS_LIST ModeKind = 0x3
)

// ISUPPORT keys read by ModeKinds.
const (
	isupportChanmodes = "CHANMODES"
	isupportPrefix    = "PREFIX"
)

// defaultPrefix is assumed until the server sends PREFIX.
const defaultPrefix = "(ov)@+"

var (
	errChanmodesEmpty = errors.New("data: CHANMODES is empty")
	errPrefixFormat   = errors.New("data: PREFIX is not in (modes)symbols form")
)

// String returns the category letter.
func (k ModeKind) String() string {
	switch k {
	case ARGS_LIST:
		return "A"
	case ARGS_ALWAYS:
		return "B"
	case ARGS_ONSET:
		return "C"
	default:
		return "D"
	}
}

// ModeKinds contains mode type information, ChannelModes requires this
// information to parse correctly. It is the per network mode schema built from
// the CHANMODES and PREFIX ISUPPORT tokens.
type ModeKinds struct {
	kinds map[rune]ModeKind

	chanmodes [4]string
	modes     []rune
	symbols   []rune
}

// NewModeKinds creates the default schema: an empty category A plus the
// conventional (ov)@+ status modes.
func NewModeKinds() *ModeKinds {
	m := &ModeKinds{}
	m.modes, m.symbols, _ = parsePrefixString(defaultPrefix)
	m.rebuild()
	return m
}

// ApplyISupport updates the schema from an ISUPPORT key/value map. Each of
// CHANMODES and PREFIX is applied independently; a malformed value keeps the
// previous one and is reported in the returned error. Missing keys are left
// alone so applying the same map twice is a no-op.
func (m *ModeKinds) ApplyISupport(isupport map[string]string) error {
	var errs []string

	if chanmodes, ok := isupport[isupportChanmodes]; ok {
		if parsed, err := parseModeKindsCSV(chanmodes); err != nil {
			errs = append(errs, err.Error())
		} else {
			m.chanmodes = parsed
		}
	}

	if prefix, ok := isupport[isupportPrefix]; ok {
		if modes, symbols, err := parsePrefixString(prefix); err != nil {
			errs = append(errs, err.Error())
		} else {
			m.modes, m.symbols = modes, symbols
		}
	}

	m.rebuild()

	if len(errs) > 0 {
		return errors.Errorf("data: isupport ignored: %s",
			strings.Join(errs, "; "))
	}
	return nil
}

// rebuild recomputes the lookup table, status letters win over CHANMODES.
func (m *ModeKinds) rebuild() {
	kinds := make(map[rune]ModeKind)
	for _, mode := range m.chanmodes[0] {
		kinds[mode] = ARGS_LIST
	}
	for _, mode := range m.chanmodes[1] {
		kinds[mode] = ARGS_ALWAYS
	}
	for _, mode := range m.chanmodes[2] {
		kinds[mode] = ARGS_ONSET
	}
	for _, mode := range m.modes {
		kinds[mode] = ARGS_LIST
	}
	m.kinds = kinds
}

// parseModeKindsCSV splits an IRC CHANMODES csv string. The format of which is
// ARGS_LIST,ARGS_ALWAYS,ARGS_ONSET,ARGS_NONE. Missing fields are empty and
// fields past the fourth are ignored.
func parseModeKindsCSV(kindstr string) (fields [4]string, err error) {
	if len(kindstr) == 0 {
		return fields, errChanmodesEmpty
	}

	for i, split := range strings.SplitN(kindstr, ",", 5) {
		if i >= len(fields) {
			break
		}
		fields[i] = split
	}
	return fields, nil
}

// parsePrefixString parses a prefix string of the form (modes)symbols into
// the mode letters and their symbols, both in rank order.
func parsePrefixString(prefix string) (modes, symbols []rune, err error) {
	if len(prefix) == 0 {
		return nil, nil, nil
	}

	if prefix[0] != '(' {
		return nil, nil, errPrefixFormat
	}
	end := strings.IndexByte(prefix, ')')
	if end < 0 {
		return nil, nil, errPrefixFormat
	}

	modes = []rune(prefix[1:end])
	symbols = []rune(prefix[end+1:])
	if len(modes) != len(symbols) {
		return nil, nil, errPrefixFormat
	}
	return modes, symbols, nil
}

// Kind gets the kind of mode and returns it.
func (m *ModeKinds) Kind(mode rune) ModeKind {
	return m.kinds[mode]
}

// IsStatus checks if the mode is a channel status mode such as o or v.
func (m *ModeKinds) IsStatus(mode rune) bool {
	return m.Rank(mode) >= 0
}

// Rank is the position of a status mode in PREFIX, 0 being the highest. It is
// -1 for letters that are not status modes.
func (m *ModeKinds) Rank(mode rune) int {
	for i, r := range m.modes {
		if r == mode {
			return i
		}
	}
	return -1
}

// Symbol returns the status symbol for a status mode.
func (m *ModeKinds) Symbol(mode rune) (rune, bool) {
	if i := m.Rank(mode); i >= 0 {
		return m.symbols[i], true
	}
	return 0, false
}

// Mode returns the status mode for a status symbol.
func (m *ModeKinds) Mode(symbol rune) (rune, bool) {
	for i, r := range m.symbols {
		if r == symbol {
			return m.modes[i], true
		}
	}
	return 0, false
}

// StatusModes returns the status mode letters in rank order.
func (m *ModeKinds) StatusModes() string {
	return string(m.modes)
}

// Prefix renders the current status modes as a PREFIX value.
func (m *ModeKinds) Prefix() string {
	return "(" + string(m.modes) + ")" + string(m.symbols)
}

// Chanmodes renders the current CHANMODES value, empty if none was applied.
func (m *ModeKinds) Chanmodes() string {
	joined := strings.Join(m.chanmodes[:], ",")
	if joined == ",,," {
		return ""
	}
	return joined
}

// ParsePrefixedNick strips any number of leading status symbols from a NAMES
// token and returns the status modes they stand for and what is left.
func (m *ModeKinds) ParsePrefixedNick(token string) (modes []rune, nick string) {
	for i, r := range token {
		mode, ok := m.Mode(r)
		if !ok {
			return modes, token[i:]
		}
		modes = append(modes, mode)
	}
	return modes, ""
}

// StatusFromSymbols picks the status modes out of WHO reply flags such as H@+
// or G*%.
func (m *ModeKinds) StatusFromSymbols(flags string) (modes []rune) {
	for _, r := range flags {
		if mode, ok := m.Mode(r); ok {
			modes = append(modes, mode)
		}
	}
	return modes
}

// Clone returns a deep copy.
func (m *ModeKinds) Clone() *ModeKinds {
	clone := &ModeKinds{
		chanmodes: m.chanmodes,
		modes:     append([]rune(nil), m.modes...),
		symbols:   append([]rune(nil), m.symbols...),
	}
	clone.rebuild()
	return clone
}
