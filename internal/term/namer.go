package term

import (
	"fmt"
	"sync/atomic"
)

// Namer mints fresh, unique names for one compilation run. Generated
// names contain a '$' separator, which keeps them disjoint from both
// surface identifiers and the reserved period name. A fresh Namer per
// compilation keeps output deterministic and runs independent, so
// separate compilations may proceed concurrently.
type Namer struct {
	next atomic.Uint64
}

// NewNamer returns a Namer with its counter at zero.
func NewNamer() *Namer {
	return &Namer{}
}

// Fresh returns a new unique name derived from base.
func (n *Namer) Fresh(base string) string {
	if base == "" {
		base = "tmp"
	}
	return fmt.Sprintf("%s$%d", base, n.next.Add(1))
}

// Count returns how many names have been minted so far.
func (n *Namer) Count() uint64 {
	return n.next.Load()
}
