/*
Package config loads the configuration using toml or yaml.

An example configuration looks like this:
	# Anything defined here provides fallback defaults for all networks.
	# except the immediately following fields which are global-only.
	storefile = "/path/to/store/file.db"
	loglevel = "info"
	http = "localhost:8080"
	grpc = "localhost:8081"

	nick = "Nick"
	username = "Username"
	realname = "Realname"
	caps = ["multi-prefix", "extended-join", "account-notify"]

	[networks.ircnet]
		# girc (the default) or ircevent.
		client = "girc"
		servers = ["irc.ircnet.com:6697"]
		ssl = true
		noverifycert = false

		# Password is best given in the environment as
		# IRCSTATE_IRCNET_PASSWORD.
		password = "Password"

		nowhoonjoin = false
		nomodeonjoin = false
		nowhoisself = false

		channels = ["#channel1", "#channel2"]

Once again note the fallback mechanism between network and the "global scope".
This can save you lots of repetitive typing.
*/
package config

import (
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

const (
	// defaultStoreFile is where snapshots are kept if not overridden.
	defaultStoreFile = "./ircstate.db"
	// defaultLogLevel is the level of logging if not overridden.
	defaultLogLevel = "info"
	// defaultNick is the nick for networks that have none.
	defaultNick = "ircstate"
	// envPrefix starts every environment override.
	envPrefix = "IRCSTATE_"
)

// The irc client libraries a network can be connected with.
const (
	ClientGirc     = "girc"
	ClientIrcevent = "ircevent"
)

// The following format strings are for formatting various config errors.
const (
	fmtErrNetwork         = "config(%v)"
	fmtErrNetworkNotFound = "config: Network not found, given: %v"
)

// Network holds the settings of one network. Empty fields fall back to the
// global values.
type Network struct {
	Name string `toml:"-" yaml:"-"`

	Client       string   `toml:"client" yaml:"client" validate:"omitempty,oneof=girc ircevent"`
	Servers      []string `toml:"servers" yaml:"servers" validate:"required,min=1,dive,hostname_port"`
	Nick         string   `toml:"nick" yaml:"nick" validate:"required,excludesall=!@ "`
	Username     string   `toml:"username" yaml:"username" validate:"required,excludesall=@ "`
	Realname     string   `toml:"realname" yaml:"realname" validate:"required"`
	Password     string   `toml:"password" yaml:"password"`
	SSL          *bool    `toml:"ssl" yaml:"ssl"`
	NoVerifyCert *bool    `toml:"noverifycert" yaml:"noverifycert"`
	Caps         []string `toml:"caps" yaml:"caps"`
	NoWhoOnJoin  *bool    `toml:"nowhoonjoin" yaml:"nowhoonjoin"`
	NoModeOnJoin *bool    `toml:"nomodeonjoin" yaml:"nomodeonjoin"`
	NoWhoisSelf  *bool    `toml:"nowhoisself" yaml:"nowhoisself"`
	Channels     []string `toml:"channels" yaml:"channels" validate:"dive,required,excludesall= 0x2C"`
}

// Config holds the global settings and the settings of every network.
type Config struct {
	StoreFile string `toml:"storefile" yaml:"storefile"`
	LogLevel  string `toml:"loglevel" yaml:"loglevel" validate:"omitempty,oneof=debug info warn error crit"`
	HTTP      string `toml:"http" yaml:"http" validate:"omitempty,hostname_port"`
	GRPC      string `toml:"grpc" yaml:"grpc" validate:"omitempty,hostname_port"`

	Network `yaml:",inline" validate:"-"`

	Networks map[string]*Network `toml:"networks" yaml:"networks" validate:"required,min=1"`

	filename string
}

// NewConfig initializes a Config object.
func NewConfig() *Config {
	return &Config{Networks: make(map[string]*Network)}
}

// Filename returns the file the configuration was loaded from.
func (c *Config) Filename() string {
	return c.filename
}

// Store gets the global storefile or defaultStoreFile.
func (c *Config) Store() string {
	if len(c.StoreFile) > 0 {
		return c.StoreFile
	}
	return defaultStoreFile
}

// Level gets the log level or defaultLogLevel.
func (c *Config) Level() string {
	if len(c.LogLevel) > 0 {
		return c.LogLevel
	}
	return defaultLogLevel
}

// NetworkNames returns the configured networks in sorted order.
func (c *Config) NetworkNames() []string {
	names := make([]string, 0, len(c.Networks))
	for name := range c.Networks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetNetwork returns the settings of a network with every empty field filled
// in from the global scope.
func (c *Config) GetNetwork(name string) (*Network, error) {
	net, ok := c.Networks[name]
	if !ok || net == nil {
		return nil, errors.Errorf(fmtErrNetworkNotFound, name)
	}

	global := c.Network
	resolved := *net
	resolved.Name = name

	pickStr := func(v *string, def string) {
		if len(*v) == 0 {
			*v = def
		}
	}
	pickBool := func(v **bool, def *bool) {
		if *v == nil {
			*v = def
		}
	}
	pickSlice := func(v *[]string, def []string) {
		if len(*v) == 0 {
			*v = append([]string(nil), def...)
		}
	}

	pickStr(&resolved.Client, global.Client)
	pickStr(&resolved.Client, ClientGirc)
	pickSlice(&resolved.Servers, global.Servers)
	pickStr(&resolved.Nick, global.Nick)
	pickStr(&resolved.Nick, defaultNick)
	pickStr(&resolved.Username, global.Username)
	pickStr(&resolved.Username, resolved.Nick)
	pickStr(&resolved.Realname, global.Realname)
	pickStr(&resolved.Realname, resolved.Nick)
	pickStr(&resolved.Password, global.Password)
	pickBool(&resolved.SSL, global.SSL)
	pickBool(&resolved.NoVerifyCert, global.NoVerifyCert)
	pickSlice(&resolved.Caps, global.Caps)
	pickBool(&resolved.NoWhoOnJoin, global.NoWhoOnJoin)
	pickBool(&resolved.NoModeOnJoin, global.NoModeOnJoin)
	pickBool(&resolved.NoWhoisSelf, global.NoWhoisSelf)
	pickSlice(&resolved.Channels, global.Channels)

	return &resolved, nil
}

// Validate checks the global settings and every network once the global
// fallbacks are applied.
func (c *Config) Validate() error {
	v := validator.New()

	if err := v.Struct(c); err != nil {
		return errors.Wrap(err, "config")
	}

	for _, name := range c.NetworkNames() {
		net, err := c.GetNetwork(name)
		if err != nil {
			return err
		}
		if err := v.Struct(net); err != nil {
			return errors.Wrapf(err, fmtErrNetwork, name)
		}
	}
	return nil
}

// ApplyEnv overrides settings from the environment. IRCSTATE_LOGLEVEL,
// IRCSTATE_HTTP, IRCSTATE_GRPC and IRCSTATE_STOREFILE are global,
// IRCSTATE_<NETWORK>_PASSWORD and IRCSTATE_<NETWORK>_NICK are per network.
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := getenv(envPrefix + key); len(v) > 0 {
			*dst = v
		}
	}

	set(&c.LogLevel, "LOGLEVEL")
	set(&c.HTTP, "HTTP")
	set(&c.GRPC, "GRPC")
	set(&c.StoreFile, "STOREFILE")

	for name, net := range c.Networks {
		if net == nil {
			continue
		}
		key := strings.ToUpper(strings.Map(envSafe, name))
		set(&net.Password, key+"_PASSWORD")
		set(&net.Nick, key+"_NICK")
	}
}

func envSafe(r rune) rune {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return r
	}
	return '_'
}

// IsSet is a helper for the optional booleans.
func IsSet(b *bool) bool {
	return b != nil && *b
}
