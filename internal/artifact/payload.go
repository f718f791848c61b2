package artifact

import (
	"fmt"
	"io"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"chime/internal/ir"
)

// Current schema version - increment when Payload format changes.
const payloadSchemaVersion uint16 = 1

// Payload is one serialized emission result: the ordered declaration
// list plus enough metadata to validate and invalidate it.
type Payload struct {
	// Schema version for safe invalidation when the format changes.
	Schema uint16

	Entry  string
	Keep   []string
	Digest Digest

	// The emitted declarations, in backend order.
	Decls []ir.Decl

	// Warnings carried along for replay when serving from cache.
	Warnings []string

	CreatedAt time.Time
}

// NewPayload builds a payload for one emission.
func NewPayload(entry string, keep []string, digest Digest, decls []ir.Decl, warnings []string) *Payload {
	return &Payload{
		Schema:    payloadSchemaVersion,
		Entry:     entry,
		Keep:      keep,
		Digest:    digest,
		Decls:     decls,
		Warnings:  warnings,
		CreatedAt: time.Now().UTC(),
	}
}

// Encode writes the payload in msgpack framing.
func (p *Payload) Encode(w io.Writer) error {
	return msgpack.NewEncoder(w).Encode(p)
}

// Decode reads a payload and validates its schema version.
func Decode(r io.Reader) (*Payload, error) {
	var p Payload
	if err := msgpack.NewDecoder(r).Decode(&p); err != nil {
		return nil, err
	}
	if p.Schema != payloadSchemaVersion {
		return nil, fmt.Errorf("artifact: schema %d, want %d", p.Schema, payloadSchemaVersion)
	}
	return &p, nil
}
