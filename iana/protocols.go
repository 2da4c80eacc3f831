// Package iana maps transport protocol numbers to registry names.
package iana

import (
	"strconv"
	"strings"
	"sync"
)

var (
	lock = &sync.RWMutex{}

	protocolNames = map[uint8]string{
		1:   "icmp",
		6:   "tcp",
		17:  "udp",
		58:  "icmpv6",
		132: "sctp",
	}
	protocolNumbers = make(map[string]uint8)
)

func init() {
	for num, name := range protocolNames {
		protocolNumbers[name] = num
	}
}

// Register adds or replaces a protocol number/name pair. Names are folded to
// lowercase. Meant to be called at startup (eg: mapping file extensions).
func Register(num uint8, name string) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return
	}
	lock.Lock()
	protocolNames[num] = name
	protocolNumbers[name] = num
	lock.Unlock()
}

// Name returns the lowercase name for a protocol number.
func Name(num uint8) (string, bool) {
	lock.RLock()
	name, ok := protocolNames[num]
	lock.RUnlock()
	return name, ok
}

// Number returns the protocol number for a name (any case).
func Number(name string) (uint8, bool) {
	lock.RLock()
	num, ok := protocolNumbers[strings.ToLower(name)]
	lock.RUnlock()
	return num, ok
}

// Normalize folds a protocol token to its canonical lowercase name. The token
// can be a registry number ("6") or a name in any case ("TCP"). Tokens that
// resolve through neither table report ok as false.
func Normalize(token string) (name string, num uint8, ok bool) {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return "", 0, false
	}
	if n, err := strconv.ParseUint(token, 10, 8); err == nil {
		name, ok = Name(uint8(n))
		return name, uint8(n), ok
	}
	num, ok = Number(token)
	if !ok {
		return "", 0, false
	}
	return token, num, true
}
