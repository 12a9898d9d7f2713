package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Key builds a cache key by hashing the JSON encoding of parts.
// The format is prefix-hash; the full SHA-256 digest is kept to rule out
// collisions between similar probe settings.
func Key(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s-%s", prefix, hex.EncodeToString(sum[:]))
}
