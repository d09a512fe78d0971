package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Keyer generates cache keys for the kinds of data cximage caches.
type Keyer interface {
	// NetworkKey names a CX document downloaded from an NDEx server.
	NetworkKey(host, networkID string) string
}

// DefaultKeyer generates keys of the form "[prefix]network:<sha256>".
type DefaultKeyer struct {
	prefix string
}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// NewPrefixedKeyer creates a keyer whose keys all start with prefix, so
// several tools can share one Redis database.
func NewPrefixedKeyer(prefix string) Keyer {
	return &DefaultKeyer{prefix: prefix}
}

// NetworkKey hashes the host and network UUID. Hosts are compared
// case-insensitively and without a trailing slash, UUIDs case-insensitively.
func (k *DefaultKeyer) NetworkKey(host, networkID string) string {
	host = strings.TrimSuffix(strings.ToLower(host), "/")
	return k.prefix + "network:" + digest(host, strings.ToLower(networkID))
}

// digest hashes parts separated by NUL bytes, which cannot occur in host
// names or UUIDs, so ("ab", "c") and ("a", "bc") differ.
func digest(parts ...string) string {
	h := sha256.New()
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte{0})
		}
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Hash returns the hex SHA-256 of data (64 characters).
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
