package irc

import (
	"regexp"
	"strings"
	"sync"
)

// These constants are the ISUPPORT keys the tracker reads from the 005 event.
const (
	INFO_CASEMAPPING = "CASEMAPPING"
	INFO_PREFIX      = "PREFIX"
	INFO_CHANTYPES   = "CHANTYPES"
	INFO_CHANMODES   = "CHANMODES"
	INFO_NETWORK     = "NETWORK"
)

// These constants are healthy defaults for a NetworkInfo type, used until the
// server says otherwise.
const (
	INFO_DEFAULT_CASEMAPPING = CasemappingASCII
	INFO_DEFAULT_PREFIX      = "(ov)@+"
	INFO_DEFAULT_CHANTYPES   = "#&"
)

var (
	capsRegexp = regexp.MustCompile(`^(?i)(-)?([A-Z0-9]+)(?:=([^\s]*))?$`)
)

// NetworkInfo is used to record the server capabilities, this later aids in
// parsing irc protocol. It is safe for concurrent use.
type NetworkInfo struct {
	// Every token seen so far, valueless tokens map to "".
	values map[string]string

	protect sync.RWMutex
}

// NewNetworkInfo initializes a networkinfo struct.
func NewNetworkInfo() *NetworkInfo {
	return &NetworkInfo{
		values: make(map[string]string),
	}
}

// Clone safely clones this networkinfo instance.
func (p *NetworkInfo) Clone() *NetworkInfo {
	return &NetworkInfo{values: p.Map()}
}

// Reset forgets everything the server advertised.
func (p *NetworkInfo) Reset() {
	p.protect.Lock()
	p.values = make(map[string]string)
	p.protect.Unlock()
}

// ParseISupport adds all values in a 005 to the current networkinfo object.
// The first argument (our nick) and the trailing human readable text are
// skipped. A token of the form -KEY removes KEY.
func (p *NetworkInfo) ParseISupport(e *Event) {
	if len(e.Args) < 2 {
		return
	}

	p.protect.Lock()
	defer p.protect.Unlock()

	for _, arg := range e.Args[1:] {
		if strings.ContainsRune(arg, ' ') {
			continue
		}

		regexResult := capsRegexp.FindStringSubmatch(arg)
		if regexResult == nil {
			continue
		}
		negate, name, value := regexResult[1], regexResult[2], regexResult[3]
		name = strings.ToUpper(name)

		if len(negate) > 0 {
			delete(p.values, name)
			continue
		}
		p.values[name] = value
	}
}

// Map returns a copy of every token recorded.
func (p *NetworkInfo) Map() map[string]string {
	p.protect.RLock()
	defer p.protect.RUnlock()

	cloned := make(map[string]string, len(p.values))
	for k, v := range p.values {
		cloned[k] = v
	}
	return cloned
}

// Get returns a single token and whether the server sent it.
func (p *NetworkInfo) Get(key string) (string, bool) {
	p.protect.RLock()
	defer p.protect.RUnlock()
	v, ok := p.values[strings.ToUpper(key)]
	return v, ok
}

func (p *NetworkInfo) getDefault(key, def string) string {
	if v, ok := p.Get(key); ok && len(v) > 0 {
		return v
	}
	return def
}

// Casemapping gets the casemapping from the NetworkInfo.
func (p *NetworkInfo) Casemapping() string {
	return p.getDefault(INFO_CASEMAPPING, INFO_DEFAULT_CASEMAPPING)
}

// Prefix gets the prefix from the NetworkInfo.
func (p *NetworkInfo) Prefix() string {
	return p.getDefault(INFO_PREFIX, INFO_DEFAULT_PREFIX)
}

// Chantypes gets the chantypes from the NetworkInfo.
func (p *NetworkInfo) Chantypes() string {
	return p.getDefault(INFO_CHANTYPES, INFO_DEFAULT_CHANTYPES)
}

// Chanmodes gets the chanmodes from the NetworkInfo, empty if the server has
// not sent any.
func (p *NetworkInfo) Chanmodes() string {
	v, _ := p.Get(INFO_CHANMODES)
	return v
}

// Network returns the advertised network name if any.
func (p *NetworkInfo) Network() string {
	v, _ := p.Get(INFO_NETWORK)
	return v
}

// IsChannel checks to see if the target is a channel based on this instances
// chantypes.
func (p *NetworkInfo) IsChannel(target string) bool {
	if len(target) == 0 {
		return false
	}
	return strings.IndexByte(p.Chantypes(), target[0]) >= 0
}

// Casefold folds s with the network's casemapping.
func (p *NetworkInfo) Casefold(s string) string {
	return Casefold(p.Casemapping(), s)
}
