package hierarchy

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWorkerPoolExecutesAllSubmittedTasks(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	var counter atomic.Int64
	const n = 500
	for i := 0; i < n; i++ {
		pool.Submit(func() { counter.Add(1) })
	}
	pool.Wait()

	require.Equal(t, int64(n), counter.Load())
}

func TestWorkerPoolDefaultsToGOMAXPROCS(t *testing.T) {
	pool := NewWorkerPool(0)
	defer pool.Close()
	require.Greater(t, pool.Workers(), 0)
}
