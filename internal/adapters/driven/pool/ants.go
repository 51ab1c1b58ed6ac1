// Package pool provides worker pools backed by panjf2000/ants.
package pool

import (
	"fmt"

	"github.com/panjf2000/ants/v2"

	"github.com/custodia-labs/tiffheif/internal/core/ports/driven"
)

// Ensure Factory implements the interface.
var _ driven.WorkerPoolFactory = (*Factory)(nil)

// Factory creates ants pools.
type Factory struct{}

// NewFactory creates a pool factory.
func NewFactory() *Factory {
	return &Factory{}
}

// NewPool creates a pool running at most size tasks at once.
// Submit blocks while every worker is busy.
func (f *Factory) NewPool(size int) (driven.WorkerPool, error) {
	if size < 1 {
		return nil, fmt.Errorf("pool size must be positive, got %d", size)
	}
	p, err := ants.NewPool(size, ants.WithPreAlloc(true))
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	return p, nil
}
