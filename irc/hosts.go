package irc

import (
	"regexp"
	"strings"
)

var (
	// rgxHost validates hosts.
	rgxHost = regexp.MustCompile(
		`(?i)^` +
			`([\w\x5B-\x60][\w\d\x5B-\x60-]*)` + // nickname
			`!([^\0@\s]+)` + // username
			`@([^\0\s]+)` + // host
			`$`,
	)

	// rgxMask validates masks.
	rgxMask = regexp.MustCompile(
		`(?i)^` +
			`([\w\x5B-\x60\?\*][\w\d\x5B-\x60\?\*-]*)` + // nickname
			`!([^\0@\s]+)` + // username
			`@([^\0\s]+)` + // host
			`$`,
	)
)

// Host is a type that represents an irc hostname. nickname!username@hostname
type Host string

// Hostmask breaks the host into a Hostmask triple.
func (h Host) Hostmask() Hostmask {
	return ParseHostmask(string(h))
}

// String returns the fullhost of this host.
func (h Host) String() string {
	return string(h)
}

// IsValid checks to ensure the host is in valid format.
func (h Host) IsValid() bool {
	return rgxHost.MatchString(string(h))
}

// Mask is an irc hostmask that contains wildcard characters ? and *
type Mask string

// Match checks if the mask satisfies the given host.
func (m Mask) Match(h Host) bool {
	return isMatch(string(h), string(m))
}

// IsValid checks to ensure the mask is in valid format.
func (m Mask) IsValid() bool {
	return rgxMask.MatchString(string(m))
}

// Hostmask is the nick, user, host triple that identifies the source of an
// event. Servers and partially known users leave User and Host empty.
type Hostmask struct {
	Nick string
	User string
	Host string
}

// ParseHostmask splits nick!user@host into its parts. It is tolerant of
// partial forms such as "nick", "nick@host" and "server.name".
func ParseHostmask(s string) Hostmask {
	nick, user, host := Split(s)
	return Hostmask{Nick: nick, User: user, Host: host}
}

// String joins the hostmask back into nick!user@host, omitting missing parts.
func (h Hostmask) String() string {
	s := h.Nick
	if len(h.User) > 0 {
		s += "!" + h.User
	}
	if len(h.Host) > 0 {
		s += "@" + h.Host
	}
	return s
}

// IsFull is true when all three parts are known.
func (h Hostmask) IsFull() bool {
	return len(h.Nick) > 0 && len(h.User) > 0 && len(h.Host) > 0
}

// isMatch reports whether hs satisfies the glob ms, where * matches any run
// of bytes and ? matches exactly one.
func isMatch(hs, ms string) bool {
	h, m := 0, 0
	star, resume := -1, 0
	for h < len(hs) {
		switch {
		case m < len(ms) && ms[m] == '*':
			star, resume = m, h
			m++
		case m < len(ms) && (ms[m] == '?' || ms[m] == hs[h]):
			h++
			m++
		case star >= 0:
			// Let the last star swallow one more byte and retry.
			resume++
			h, m = resume, star+1
		default:
			return false
		}
	}

	for m < len(ms) && ms[m] == '*' {
		m++
	}
	return m == len(ms)
}

// Nick returns the nick of the host.
func Nick(host string) string {
	index := strings.IndexAny(host, "!@")
	if index >= 0 {
		return host[:index]
	}
	return host
}

// Split splits a host into it's fragments: nick, user, and hostname.
// Missing fragments come back empty, a bare "nick" yields only the nick.
func Split(host string) (nick, user, hostname string) {
	nick = host
	if at := strings.IndexByte(nick, '@'); at >= 0 {
		hostname = nick[at+1:]
		nick = nick[:at]
	}
	if excl := strings.IndexByte(nick, '!'); excl >= 0 {
		user = nick[excl+1:]
		nick = nick[:excl]
	}
	return
}
