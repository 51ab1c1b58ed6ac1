package driven

// WorkerPool runs submitted tasks on a bounded set of goroutines.
type WorkerPool interface {
	// Submit queues task for execution, blocking while the pool is full.
	Submit(task func()) error

	// Running returns the number of tasks currently executing.
	Running() int

	// Release stops the pool once running tasks finish.
	Release()
}

// WorkerPoolFactory creates worker pools.
type WorkerPoolFactory interface {
	// NewPool creates a pool running at most size tasks at once.
	NewPool(size int) (WorkerPool, error)
}
