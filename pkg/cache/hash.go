package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
)

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// HashFloats hashes the IEEE-754 bits of values without an intermediate copy
// of the whole slice.
func HashFloats(values []float64) string {
	h := sha256.New()
	var buf [8 * 512]byte
	for len(values) > 0 {
		n := min(len(values), 512)
		for i, v := range values[:n] {
			binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
		}
		h.Write(buf[:n*8])
		values = values[n:]
	}
	return hex.EncodeToString(h.Sum(nil))
}
