package common

import (
	"encoding/binary"
)

// LengthPrefixed returns data prefixed with its length so that variable sized
// key parts can be concatenated without ambiguity.
func LengthPrefixed(data []byte) []byte {
	res := make([]byte, 2, 2+len(data))
	binary.BigEndian.PutUint16(res, uint16(len(data)))
	return append(res, data...)
}
