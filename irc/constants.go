package irc

// IRC Messages, these messages are 1-1 constant to string lookups for ease of
// use when registering handlers etc.
const (
	PRIVMSG = "PRIVMSG"
	NOTICE  = "NOTICE"
	QUIT    = "QUIT"
	PING    = "PING"
	PONG    = "PONG"
	JOIN    = "JOIN"
	PART    = "PART"
	KICK    = "KICK"
	NICK    = "NICK"
	MODE    = "MODE"
	TOPIC   = "TOPIC"
	WHO     = "WHO"
	WHOIS   = "WHOIS"
	CAP     = "CAP"
	ERROR   = "ERROR"

	// IRCv3 extensions that carry identity changes.
	ACCOUNT = "ACCOUNT"
	CHGHOST = "CHGHOST"
	SETNAME = "SETNAME"
)

// Pseudo Messages, these messages are not real messages defined by the irc
// protocol but the bot provides them to allow for additional messages to be
// handled such as connect or disconnects which the irc protocol has no protocol
// defined for.
const (
	RAW        = "RAW"
	CONNECT    = "CONNECT"
	DISCONNECT = "DISCONNECT"
)

// Numerics that carry state the tracker cares about.
const (
	RPL_WELCOME       = "001"
	RPL_ISUPPORT      = "005"
	RPL_WHOISUSER     = "311"
	RPL_WHOISSERVER   = "312"
	RPL_CHANNELMODEIS = "324"
	RPL_WHOISACCOUNT  = "330"
	RPL_TOPIC         = "332"
	RPL_INVITELIST    = "346"
	RPL_EXCEPTLIST    = "348"
	RPL_WHOREPLY      = "352"
	RPL_NAMREPLY      = "353"
	RPL_BANLIST       = "367"
	ERR_NOSUCHNICK    = "401"
)

// Capabilities the tracker changes its behavior for.
const (
	CapExtendedJoin    = "extended-join"
	CapUserhostInNames = "userhost-in-names"
	CapAccountNotify   = "account-notify"
	CapChghost         = "chghost"
	CapSetname         = "setname"
	CapMultiPrefix     = "multi-prefix"
)
