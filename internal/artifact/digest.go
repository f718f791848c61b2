// Package artifact serializes emission results and caches them on
// disk, keyed by a content digest of the compilation inputs.
package artifact

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"

	"golang.org/x/text/unicode/norm"
)

// Digest identifies one compilation's inputs.
type Digest [sha256.Size]byte

// String returns the digest in hex.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// IsZero reports whether the digest is unset.
func (d Digest) IsZero() bool {
	var z Digest
	return d == z
}

// Key computes the cache digest for one target. Identifiers are
// NFC-normalized first so that visually identical entry or keep names
// from different hosts key the same artifact. The term dump is the
// canonical printed form of the input term.
func Key(entry string, keep []string, termDump string) Digest {
	h := sha256.New()
	var buf [8]byte
	binary.LittleEndian.PutUint16(buf[:2], payloadSchemaVersion)
	h.Write(buf[:2])

	writeString(h, norm.NFC.String(entry))
	binary.LittleEndian.PutUint64(buf[:], uint64(len(keep)))
	h.Write(buf[:])
	for _, k := range keep {
		writeString(h, norm.NFC.String(k))
	}
	writeString(h, termDump)

	var out Digest
	h.Sum(out[:0])
	return out
}

func writeString(h interface{ Write([]byte) (int, error) }, s string) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(len(s)))
	h.Write(buf[:])
	h.Write([]byte(s))
}
