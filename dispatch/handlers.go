package dispatch

import (
	"strings"

	"github.com/aarondl/ircstate/data"
	"github.com/aarondl/ircstate/irc"
)

// handler updates the state from one event, d.mut is held.
type handler func(d *Dispatcher, ev *irc.Event)

// handlers is the routing table. When one event has several handlers they run
// in order, user table handlers first since the channel side depends on them.
var handlers = map[string][]handler{
	irc.RPL_WELCOME:  {welcome},
	irc.RPL_ISUPPORT: {isupport},
	irc.CAP:          {capability},
	irc.DISCONNECT:   {disconnect},
	irc.ERROR:        {disconnect},

	irc.JOIN:           {userJoin, channelJoin},
	irc.PART:           {userPart},
	irc.KICK:           {userKick},
	irc.QUIT:           {userQuit},
	irc.ERR_NOSUCHNICK: {noSuchNick},
	irc.NICK:           {userNick},
	irc.RPL_WHOREPLY:   {whoReply},
	irc.RPL_NAMREPLY:   {namesReply},
	irc.PRIVMSG:        {message},
	irc.NOTICE:         {message},

	irc.ACCOUNT:          {account},
	irc.CHGHOST:          {chghost},
	irc.SETNAME:          {setname},
	irc.RPL_WHOISUSER:    {whoisUser},
	irc.RPL_WHOISSERVER:  {whoisServer},
	irc.RPL_WHOISACCOUNT: {whoisAccount},

	irc.MODE:              {channelMode},
	irc.RPL_CHANNELMODEIS: {channelModeIs},
	irc.TOPIC:             {topic},
	irc.RPL_TOPIC:         {topicReply},
	irc.RPL_BANLIST:       {modeList('b')},
	irc.RPL_EXCEPTLIST:    {modeList('e')},
	irc.RPL_INVITELIST:    {modeList('I')},
}

// allowedDisconnected is what gets through before the welcome.
var allowedDisconnected = map[string]bool{
	irc.RPL_WELCOME:  true,
	irc.RPL_ISUPPORT: true,
	irc.CAP:          true,
	irc.DISCONNECT:   true,
}

func welcome(d *Dispatcher, ev *irc.Event) {
	nick := ev.Arg(0)
	if len(nick) == 0 {
		d.logger.Debug("welcome without nick")
		return
	}

	d.state.Reset(irc.Hostmask{Nick: nick})
	d.session = newSession()
	d.setConn(Tracking)

	if d.whoisSelf {
		d.send(irc.WHOIS, nick)
	}
}

func isupport(d *Dispatcher, ev *irc.Event) {
	d.info.ParseISupport(ev)
	if err := d.state.ApplyISupport(d.info.Map()); err != nil {
		d.logger.Debug("bad isupport", "err", err)
	}
}

// capability tracks the outcome of CAP negotiation, the request side belongs
// to whoever owns the connection.
func capability(d *Dispatcher, ev *irc.Event) {
	if len(ev.Args) < 3 {
		return
	}

	sub := strings.ToUpper(ev.Args[1])
	if sub != "ACK" && sub != "DEL" {
		return
	}

	for _, c := range strings.Fields(ev.Args[len(ev.Args)-1]) {
		c = strings.ToLower(c)
		if i := strings.IndexByte(c, '='); i >= 0 {
			c = c[:i]
		}

		switch {
		case sub == "DEL":
			delete(d.caps, c)
		case strings.HasPrefix(c, "-"):
			delete(d.caps, c[1:])
		default:
			d.caps[c] = struct{}{}
		}
	}
	d.logger.Debug("capabilities", "sub", sub, "caps", ev.Args[len(ev.Args)-1])
}

func disconnect(d *Dispatcher, ev *irc.Event) {
	d.setConn(Disconnected)
}

func userJoin(d *Dispatcher, ev *irc.Event) {
	channel := ev.Arg(0)
	h := ev.Hostmask()

	var ext *data.ExtendedJoin
	if d.hasCap(irc.CapExtendedJoin) && len(ev.Args) >= 3 {
		ext = &data.ExtendedJoin{Account: ev.Args[1], Realname: ev.Args[2]}
	}

	if u, _ := d.state.Users.Join(h, channel, ext); u == nil {
		d.logger.Debug("bad join", "sender", ev.Sender, "args", ev.Args)
	}
}

// channelJoin asks for what a JOIN does not tell us about a channel we just
// entered.
func channelJoin(d *Dispatcher, ev *irc.Event) {
	if !d.state.IsCurrent(ev.Sender) {
		return
	}

	channel := ev.Arg(0)
	if d.whoOnJoin && !d.hasCap(irc.CapUserhostInNames) {
		d.send(irc.WHO, channel)
	}
	if d.modeOnJoin {
		d.send(irc.MODE, channel)
	}
}

func userPart(d *Dispatcher, ev *irc.Event) {
	nick := ev.Nick()
	for _, channel := range strings.Split(ev.Arg(0), ",") {
		d.state.Users.Part(nick, channel)
	}
}

func userKick(d *Dispatcher, ev *irc.Event) {
	d.state.Users.Kick(ev.Arg(0), ev.Arg(1))
}

func userQuit(d *Dispatcher, ev *irc.Event) {
	nick := ev.Nick()
	if d.state.IsCurrent(nick) {
		d.setConn(Disconnected)
		return
	}
	d.state.Users.Quit(nick)
}

// noSuchNick means we have been holding on to someone that is long gone.
func noSuchNick(d *Dispatcher, ev *irc.Event) {
	nick := ev.Arg(1)
	if len(nick) == 0 || d.state.IsCurrent(nick) {
		return
	}
	d.state.Users.Quit(nick)
}

func userNick(d *Dispatcher, ev *irc.Event) {
	if u := d.state.Users.Nick(ev.Nick(), ev.Arg(0)); u != nil && u.IsCurrent {
		d.logger.Info("nick changed", "nick", u.Nick)
	}
}

func whoReply(d *Dispatcher, ev *irc.Event) {
	if len(ev.Args) < 7 {
		d.logger.Debug("short who reply", "args", ev.Args)
		return
	}

	h := irc.Hostmask{Nick: ev.Args[5], User: ev.Args[2], Host: ev.Args[3]}
	var realname string
	if len(ev.Args) >= 8 {
		realname = data.SplitRealname(ev.Args[7])
	}
	d.state.Users.WhoReply(ev.Args[1], h, ev.Args[4], ev.Args[6], realname)
}

func namesReply(d *Dispatcher, ev *irc.Event) {
	if len(ev.Args) < 3 {
		d.logger.Debug("short names reply", "args", ev.Args)
		return
	}

	channel := ev.Args[len(ev.Args)-2]
	for _, token := range strings.Fields(ev.Args[len(ev.Args)-1]) {
		d.state.Users.NamesReply(channel, token)
	}
}

func message(d *Dispatcher, ev *irc.Event) {
	d.state.Users.Message(ev.Hostmask(), ev.Target())
}

func account(d *Dispatcher, ev *irc.Event) {
	d.state.Users.SetAccount(ev.Nick(), ev.Arg(0))
}

func chghost(d *Dispatcher, ev *irc.Event) {
	d.state.Users.SetHost(ev.Nick(), ev.Arg(0), ev.Arg(1))
}

func setname(d *Dispatcher, ev *irc.Event) {
	d.state.Users.SetRealname(ev.Nick(), ev.Arg(0))
}

func whoisUser(d *Dispatcher, ev *irc.Event) {
	if len(ev.Args) < 6 {
		return
	}
	h := irc.Hostmask{Nick: ev.Args[1], User: ev.Args[2], Host: ev.Args[3]}
	d.state.Users.WhoisUser(h, ev.Args[5])
}

func whoisServer(d *Dispatcher, ev *irc.Event) {
	d.state.Users.WhoisServer(ev.Arg(1), ev.Arg(2))
}

func whoisAccount(d *Dispatcher, ev *irc.Event) {
	if len(ev.Args) < 3 {
		return
	}
	d.state.Users.SetAccount(ev.Args[1], ev.Args[2])
}

// channelMode handles MODE, user modes are not tracked.
func channelMode(d *Dispatcher, ev *irc.Event) {
	target := ev.Arg(0)
	if len(ev.Args) < 2 || !d.info.IsChannel(target) {
		return
	}
	d.applyModes(target, ev.Args[1], ev.Args[2:])
}

func channelModeIs(d *Dispatcher, ev *irc.Event) {
	if len(ev.Args) < 3 {
		return
	}
	d.applyModes(ev.Args[1], ev.Args[2], ev.Args[3:])
}

func (d *Dispatcher) applyModes(channel, modestring string, params []string) {
	found, complete := d.state.Channels.Mode(channel, modestring, params)
	if !found {
		d.logger.Debug("mode for unknown channel", "channel", channel)
		return
	}
	if !complete {
		d.logger.Debug("mode missing parameters", "channel", channel,
			"modes", modestring, "params", params)
		if d.metrics != nil {
			d.metrics.truncated(d.network)
		}
	}
}

func topic(d *Dispatcher, ev *irc.Event) {
	d.state.Channels.Topic(ev.Arg(0), ev.Arg(1))
}

func topicReply(d *Dispatcher, ev *irc.Event) {
	d.state.Channels.Topic(ev.Arg(1), ev.Arg(2))
}

// modeList builds the handler for a list numeric, these carry the channel and
// one entry of the list for mode.
func modeList(mode rune) handler {
	return func(d *Dispatcher, ev *irc.Event) {
		if len(ev.Args) < 3 {
			return
		}
		d.state.Channels.ModeList(ev.Args[1], mode, ev.Args[2])
	}
}
