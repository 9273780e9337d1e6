package irc

import "strings"

// Casemappings understood by Casefold.
const (
	CasemappingASCII         = "ascii"
	CasemappingRFC1459       = "rfc1459"
	CasemappingStrictRFC1459 = "strict-rfc1459"
)

// Casefold lowers s according to the named ISUPPORT casemapping. Unknown
// mappings fold as ascii.
func Casefold(casemapping, s string) string {
	switch strings.ToLower(casemapping) {
	case CasemappingRFC1459:
		return strings.Map(rfc1459Lower, s)
	case CasemappingStrictRFC1459:
		return strings.Map(strictRFC1459Lower, s)
	default:
		return strings.Map(asciiLower, s)
	}
}

func asciiLower(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}

// rfc1459Lower treats []\^ as the uppercase forms of {}|~
func rfc1459Lower(r rune) rune {
	if r == '^' {
		return '~'
	}
	return strictRFC1459Lower(r)
}

func strictRFC1459Lower(r rune) rune {
	switch r {
	case '[':
		return '{'
	case ']':
		return '}'
	case '\\':
		return '|'
	}
	return asciiLower(r)
}
