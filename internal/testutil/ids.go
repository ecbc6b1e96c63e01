// Package testutil provides deterministic stand-ins for the engine's
// production collaborators.
package testutil

import (
	"fmt"
	"sync"
)

// SequenceGenerator returns predictable event IDs ("ev-1", "ev-2", ...)
// so tests and golden files can assert on exact identifiers instead of
// random UUIDs.
//
// Thread-safety: safe for concurrent use via internal mutex; units on
// different goroutines may share one generator.
type SequenceGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequenceGenerator creates a generator with the given ID prefix.
func NewSequenceGenerator(prefix string) *SequenceGenerator {
	return &SequenceGenerator{prefix: prefix}
}

// Generate returns the next ID in the sequence.
func (g *SequenceGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}
