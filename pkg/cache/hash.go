package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// hashKey builds a cache key of the form "prefix:<sha256 hex>". Parts are
// separated by a NUL byte before hashing so that ("ab","c") and ("a","bc")
// produce distinct keys.
func hashKey(prefix string, parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return prefix + ":" + hex.EncodeToString(h.Sum(nil))
}

// Hash returns the SHA-256 digest of data as a 64-character hex string.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
