package data

import (
	"sort"
	"strings"

	"github.com/aarondl/ircstate/irc"
)

// Placeholder stands in for ident, host and realname until a source that
// knows them is seen.
const Placeholder = "???"

const irccloudAvatar = "https://static.irccloud-cdn.com/avatar-redirect/"

// User encapsulates all the data associated with a user.
type User struct {
	// ID is the casefolded nick and the key in the UserTable.
	ID       string
	Nick     string
	Ident    string
	Host     string
	Realname string
	// Server is only known from WHO and WHOIS replies.
	Server string
	// IsCurrent is set for the connection's own identity.
	IsCurrent bool

	// Data is free form storage for other collaborators.
	Data JSONStorer

	account      string
	accountKnown bool
	channels     map[string]struct{}
}

// newUser creates a user from a hostmask, missing parts are placeholders.
func newUser(id string, h irc.Hostmask) *User {
	u := &User{
		ID:       id,
		Nick:     h.Nick,
		Ident:    Placeholder,
		Host:     Placeholder,
		Realname: Placeholder,
		Data:     make(JSONStorer),
		channels: make(map[string]struct{}),
	}
	u.merge(h)
	return u
}

// merge fills in the parts of h that are known, a placeholder or empty part
// never overwrites a known value.
func (u *User) merge(h irc.Hostmask) {
	if known(h.Nick) {
		u.Nick = h.Nick
	}
	if known(h.User) {
		u.Ident = h.User
	}
	if known(h.Host) {
		u.Host = h.Host
	}
}

func (u *User) setRealname(realname string) {
	if known(realname) {
		u.Realname = realname
	}
}

func known(s string) bool {
	return len(s) > 0 && s != Placeholder
}

// Account returns the services account. ok is false when it is not known,
// an empty account means the user is known to be logged out.
func (u *User) Account() (account string, ok bool) {
	return u.account, u.accountKnown
}

// setAccount records the account, * means logged out.
func (u *User) setAccount(account string) {
	if account == "*" {
		account = ""
	}
	u.account = account
	u.accountKnown = true
}

// Hostmask returns the nick, ident and host as a Hostmask.
func (u *User) Hostmask() irc.Hostmask {
	return irc.Hostmask{Nick: u.Nick, User: u.Ident, Host: u.Host}
}

// Fullhost returns the user's nick!ident@host.
func (u *User) Fullhost() irc.Host {
	return irc.Host(u.Hostmask().String())
}

// Channels returns the ids of the channels the user is in, sorted.
func (u *User) Channels() []string {
	return sortedKeys(u.channels)
}

// InChannel checks if the user is in the channel with the given id.
func (u *User) InChannel(id string) bool {
	_, ok := u.channels[id]
	return ok
}

// AvatarURL returns the IRCCloud avatar for users connected through IRCCloud,
// whose idents are uid or sid followed by their account number.
func (u *User) AvatarURL() (string, bool) {
	ident := strings.TrimPrefix(u.Ident, "~")
	if !strings.HasPrefix(ident, "uid") && !strings.HasPrefix(ident, "sid") {
		return "", false
	}

	number := ident[3:]
	if len(number) == 0 {
		return "", false
	}
	for _, r := range number {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return irccloudAvatar + number, true
}

// Clone returns a deep copy that is safe to hand out of the state lock.
func (u *User) Clone() *User {
	clone := *u
	clone.Data = u.Data.Clone()
	clone.channels = make(map[string]struct{}, len(u.channels))
	for id := range u.channels {
		clone.channels[id] = struct{}{}
	}
	return &clone
}

// String returns a one-line representation of this user.
func (u *User) String() string {
	str := u.Nick
	if fh := u.Fullhost().String(); str != fh {
		str = fh
	}
	if known(u.Realname) {
		str += " " + u.Realname
	}
	return str
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
