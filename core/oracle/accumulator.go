package oracle

import (
	"encoding/binary"
	"github.com/truth-pool/truthpool-go/common"
	"github.com/truth-pool/truthpool-go/crypto"
)

// MixSecret XORs keccak256(secret) into the accumulator. The result doesn't
// depend on the order of reveals.
func MixSecret(acc common.Hash, secret string) common.Hash {
	contribution := crypto.Hash([]byte(secret))
	for i := range acc {
		acc[i] ^= contribution[i]
	}
	return acc
}

// Seed reads the first 8 bytes of the accumulator as a little endian integer.
func Seed(acc common.Hash) uint64 {
	return binary.LittleEndian.Uint64(acc[:8])
}

// DrawTicket picks a 1-based ticket among count reveals. Count must be positive.
func DrawTicket(acc common.Hash, count uint32) uint32 {
	return uint32(Seed(acc)%uint64(count)) + 1
}
