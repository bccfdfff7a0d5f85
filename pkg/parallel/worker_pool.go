package parallel

import (
	"errors"
	"fmt"
	"math"
	"sync"
)

// WorkerPool runs submitted functions on a fixed set of goroutines. A pool
// lives for a whole simulation; ForEach batches can be issued repeatedly
// until Close.
type WorkerPool struct {
	workers   int
	taskQueue chan func()
	wg        sync.WaitGroup
	once      sync.Once
	mu        sync.RWMutex // Protects taskQueue from concurrent close during send
	closed    bool         // Protected by mu
}

var (
	// ErrTooManyWorkers is returned when the worker count exceeds the maximum allowed.
	ErrTooManyWorkers = errors.New("worker count exceeds maximum")
	// ErrPoolClosed is returned by ForEach after Close.
	ErrPoolClosed = errors.New("worker pool is closed")
)

// MaxWorkers is the maximum number of workers allowed in a pool.
const MaxWorkers = math.MaxInt / 2

// PanicError carries a panic recovered from a ForEach item.
type PanicError struct {
	Index int
	Value any
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("item %d panicked: %v", e.Index, e.Value)
}

// NewWorkerPool creates a new worker pool with specified number of workers.
// Non-positive counts get one worker.
func NewWorkerPool(workers int) (*WorkerPool, error) {
	if workers <= 0 {
		workers = 1
	}

	// Prevent overflow in buffer size calculation
	if workers > MaxWorkers {
		return nil, fmt.Errorf("%w: %d exceeds %d", ErrTooManyWorkers, workers, MaxWorkers)
	}

	pool := &WorkerPool{
		workers:   workers,
		taskQueue: make(chan func(), workers*2),
	}

	pool.start()
	return pool, nil
}

// Workers returns the number of worker goroutines
func (wp *WorkerPool) Workers() int { return wp.workers }

func (wp *WorkerPool) start() {
	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()

	for task := range wp.taskQueue {
		// A panicking task must not take the worker down with it.
		func() {
			defer func() { _ = recover() }()
			task()
		}()
	}
}

// Submit adds a task to the worker pool.
// Returns false if the pool is closed, true if task was submitted.
func (wp *WorkerPool) Submit(task func()) bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	if wp.closed {
		return false
	}
	wp.taskQueue <- task
	return true
}

// ForEach calls fn(i) for every i in [0, n) on the pool and waits for all of
// them. Results are written by index, so callers get the same outcome
// regardless of scheduling. The returned error is the one with the lowest
// index; panics come back as *PanicError.
func (wp *WorkerPool) ForEach(n int, fn func(i int) error) error {
	if n <= 0 {
		return nil
	}
	errs := make([]error, n)
	var batch sync.WaitGroup

	for i := 0; i < n; i++ {
		batch.Add(1)
		ok := wp.Submit(func() {
			defer batch.Done()
			defer func() {
				if r := recover(); r != nil {
					errs[i] = &PanicError{Index: i, Value: r}
				}
			}()
			errs[i] = fn(i)
		})
		if !ok {
			batch.Done()
			batch.Wait()
			return ErrPoolClosed
		}
	}
	batch.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Close stops accepting work and waits for queued tasks to finish.
// It is safe to call more than once.
func (wp *WorkerPool) Close() {
	wp.once.Do(func() {
		wp.mu.Lock()
		wp.closed = true
		close(wp.taskQueue)
		wp.mu.Unlock()
	})
	wp.wg.Wait()
}
