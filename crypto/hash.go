package crypto

import (
	"crypto/sha256"
	"golang.org/x/crypto/sha3"
	"hash"
	"sync"
)

var keccak256Pool = sync.Pool{New: func() interface{} {
	return sha3.NewLegacyKeccak256()
}}

// Hash is the keccak256 digest of data.
func Hash(data []byte) [32]byte {
	h, ok := keccak256Pool.Get().(hash.Hash)
	if !ok {
		h = sha3.NewLegacyKeccak256()
	}
	defer keccak256Pool.Put(h)
	h.Reset()

	var b [32]byte

	h.Write(data)
	h.Sum(b[:0])

	return b
}

// VoteHash is the commitment of a vote: sha256(value || secret).
// Miner clients build it with sha256 over the plain concatenation.
func VoteHash(value, secret string) [32]byte {
	data := make([]byte, 0, len(value)+len(secret))
	data = append(data, value...)
	data = append(data, secret...)
	return sha256.Sum256(data)
}
