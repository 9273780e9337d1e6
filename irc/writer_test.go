package irc

import (
	"bytes"
	"testing"
)

func TestHelper_ImplementsWriter(t *testing.T) {
	var _ Writer = &Helper{}
}

func TestHelper_Send(t *testing.T) {
	b := &bytes.Buffer{}
	h := &Helper{Writer: b}

	if err := h.Send(WHO, "#chan"); err != nil {
		t.Error("Unexpected error:", err)
	}
	if err := h.Send(PRIVMSG, "#chan", "hello world"); err != nil {
		t.Error("Unexpected error:", err)
	}

	exp := "WHO #chan\r\nPRIVMSG #chan :hello world\r\n"
	if val := b.String(); val != exp {
		t.Errorf("Expected: %q, got: %q", exp, val)
	}
}

func TestLine(t *testing.T) {
	tests := []struct {
		Command string
		Args    []string
		Out     string
		Err     bool
	}{
		{MODE, []string{"#chan"}, "MODE #chan", false},
		{TOPIC, []string{"#chan", ""}, "TOPIC #chan :", false},
		{PRIVMSG, []string{"#chan", ":)"}, "PRIVMSG #chan ::)", false},
		{PRIVMSG, []string{"#a b", "x"}, "", true},
		{PRIVMSG, []string{"#chan", "a\r\nQUIT"}, "", true},
	}

	for _, test := range tests {
		line, err := Line(test.Command, test.Args...)
		if test.Err {
			if err != ErrBadArgument {
				t.Errorf("%v %v: expected ErrBadArgument, got %v",
					test.Command, test.Args, err)
			}
			continue
		}
		if err != nil {
			t.Error("Unexpected error:", err)
		}
		if string(line) != test.Out {
			t.Errorf("Expected: %q, got: %q", test.Out, line)
		}
	}
}
