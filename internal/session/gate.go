package session

import (
	"golang.org/x/sync/semaphore"

	"github.com/zhubert/parley/internal/store"
)

// gate admits one send, create or load at a time and mirrors its state into
// the store's IsLoadingResponse flag.
type gate struct {
	sem   *semaphore.Weighted
	store *store.Store
}

func newGate(st *store.Store) *gate {
	return &gate{
		sem:   semaphore.NewWeighted(1),
		store: st,
	}
}

// tryEnter never blocks. It reports false when another operation holds the gate.
func (g *gate) tryEnter() bool {
	if !g.sem.TryAcquire(1) {
		return false
	}
	g.store.SetLoadingResponse(true)
	return true
}

// leave must be paired with a successful tryEnter.
func (g *gate) leave() {
	g.store.SetLoadingResponse(false)
	g.sem.Release(1)
}
