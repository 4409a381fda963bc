package concurrency

import (
	"errors"
	"sync"
)

var ErrBusy = errors.New("an OTA session is already running")

// ConcurrencyGuard lets at most one task run at a time. A second caller is
// turned away with ErrBusy instead of queueing.
type ConcurrencyGuard struct {
	running sync.Mutex
}

func NewConcurrencyGuard() *ConcurrencyGuard {
	return &ConcurrencyGuard{}
}

func (g *ConcurrencyGuard) Execute(task func() error) error {
	if !g.running.TryLock() {
		return ErrBusy
	}
	defer g.running.Unlock()
	return task()
}
