package data

import (
	"testing"

	"github.com/aarondl/ircstate/irc"
)

func TestUser_Create(t *testing.T) {
	t.Parallel()

	u := newUser("nick", irc.Hostmask{Nick: "Nick"})
	if exp, got := "Nick", u.Nick; exp != got {
		t.Errorf("Expected: %v, got: %v", exp, got)
	}
	if exp, got := Placeholder, u.Ident; exp != got {
		t.Errorf("Expected: %v, got: %v", exp, got)
	}
	if exp, got := Placeholder, u.Host; exp != got {
		t.Errorf("Expected: %v, got: %v", exp, got)
	}
	if exp, got := Placeholder, u.Realname; exp != got {
		t.Errorf("Expected: %v, got: %v", exp, got)
	}
	if len(u.Channels()) != 0 {
		t.Error("Expected a new user to be in no channels.")
	}

	u = newUser("nick", irc.ParseHostmask("nick!user@host"))
	if exp, got := irc.Host("nick!user@host"), u.Fullhost(); exp != got {
		t.Errorf("Expected: %v, got: %v", exp, got)
	}
}

func TestUser_Merge(t *testing.T) {
	t.Parallel()

	u := newUser("nick", irc.ParseHostmask("nick!user@host"))
	u.merge(irc.Hostmask{Nick: "nick", User: Placeholder, Host: ""})
	if exp, got := "nick!user@host", u.Hostmask().String(); exp != got {
		t.Errorf("Expected: %v, got: %v", exp, got)
	}

	u.setRealname(Placeholder)
	u.setRealname("")
	if exp, got := Placeholder, u.Realname; exp != got {
		t.Errorf("Expected: %v, got: %v", exp, got)
	}
	u.setRealname("Real Name")
	if exp, got := "nick!user@host Real Name", u.String(); exp != got {
		t.Errorf("Expected: %v, got: %v", exp, got)
	}
}

func TestUser_Account(t *testing.T) {
	t.Parallel()

	u := newUser("nick", irc.Hostmask{Nick: "nick"})
	if _, ok := u.Account(); ok {
		t.Error("Expected the account to be unknown.")
	}

	u.setAccount("*")
	if acct, ok := u.Account(); !ok || acct != "" {
		t.Errorf("Expected a known empty account, got: %q %v", acct, ok)
	}

	u.setAccount("services")
	if acct, ok := u.Account(); !ok || acct != "services" {
		t.Errorf("Expected services, got: %q %v", acct, ok)
	}
}

func TestUser_AvatarURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		Ident string
		URL   string
		OK    bool
	}{
		{"uid12345", irccloudAvatar + "12345", true},
		{"~sid99", irccloudAvatar + "99", true},
		{"uid", "", false},
		{"uidabc", "", false},
		{"user", "", false},
	}

	for _, test := range tests {
		u := newUser("n", irc.Hostmask{Nick: "n", User: test.Ident})
		url, ok := u.AvatarURL()
		if url != test.URL || ok != test.OK {
			t.Errorf("%s: expected %q %v, got %q %v",
				test.Ident, test.URL, test.OK, url, ok)
		}
	}
}

func TestUser_Clone(t *testing.T) {
	t.Parallel()

	u := newUser("nick", irc.Hostmask{Nick: "nick"})
	u.channels["#chan"] = struct{}{}
	u.Data.Put("key", "value")

	clone := u.Clone()
	delete(u.channels, "#chan")
	u.Data.Put("key", "changed")

	if !clone.InChannel("#chan") {
		t.Error("Expected the clone's channels to be independent.")
	}
	if got, _ := clone.Data.Get("key"); got != "value" {
		t.Error("Expected the clone's data to be independent, got:", got)
	}
}
