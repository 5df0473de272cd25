package rotation

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
)

// Seed derives s(c) = HMAC-SHA256(K, encode_u64_be(c)) for a
// 32-byte symmetric key.
func Seed(key [32]byte, counter uint64) [sha256.Size]byte {
	var counterBytes [8]byte
	binary.BigEndian.PutUint64(counterBytes[:], counter)

	mac := hmac.New(sha256.New, key[:])
	mac.Write(counterBytes[:])

	var out [sha256.Size]byte
	mac.Sum(out[:0])
	return out
}
