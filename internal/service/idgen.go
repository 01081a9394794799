package service

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator produces opaque recipe identifiers.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator produces random UUIDv4 identifiers.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string { return uuid.NewString() }

// SequenceGenerator produces prefix-1, prefix-2, ... and is safe for
// concurrent use. Useful when ids must be predictable.
type SequenceGenerator struct {
	Prefix string
	n      atomic.Uint64
}

func (g *SequenceGenerator) NewID() string {
	next := g.n.Add(1)
	if g.Prefix == "" {
		return fmt.Sprintf("%d", next)
	}
	return fmt.Sprintf("%s-%d", g.Prefix, next)
}
