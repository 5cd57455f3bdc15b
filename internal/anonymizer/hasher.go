package anonymizer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Hasher produces stable anonymized tokens. The same (key, value) pair maps
// to the same token within and across runs, which keeps anonymized datasets
// joinable; the key is a per-deployment secret and never appears in output.
type Hasher struct {
	key string
}

func NewHasher(key string) *Hasher {
	return &Hasher{key: key}
}

// Hash returns the hex SHA-256 digest of "<key>:<value>".
func (h *Hasher) Hash(value interface{}) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%v", h.key, value)))
	return hex.EncodeToString(sum[:])
}
