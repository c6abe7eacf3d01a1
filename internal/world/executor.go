package world

import (
	"sync"

	"github.com/villageworks/villagecraft/pkg/errors"
	"github.com/villageworks/villagecraft/pkg/logger"
)

// Executor is the single goroutine that owns live-world state. Background
// timers never touch entities or sessions directly; they post closures here
// and optionally wait. This replaces the "null if called from the wrong
// thread" pattern with an explicit message-passing model.
type Executor struct {
	tasks chan func()
	quit  chan struct{}
	wg    sync.WaitGroup

	mu      sync.Mutex
	stopped bool
}

func NewExecutor() *Executor {
	return &Executor{
		tasks: make(chan func(), 256),
		quit:  make(chan struct{}),
	}
}

func (e *Executor) Start() {
	e.wg.Add(1)
	go e.loop()
}

func (e *Executor) loop() {
	defer e.wg.Done()
	for {
		select {
		case fn := <-e.tasks:
			run(fn)
		case <-e.quit:
			// Drain what was already queued so submitted work is not lost.
			for {
				select {
				case fn := <-e.tasks:
					run(fn)
				default:
					return
				}
			}
		}
	}
}

func run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic in world task", "panic", r)
		}
	}()
	fn()
}

// Submit posts work to the world goroutine without waiting.
func (e *Executor) Submit(fn func()) error {
	e.mu.Lock()
	stopped := e.stopped
	e.mu.Unlock()
	if stopped {
		return errors.New(errors.ErrCodeInternalError, "executor stopped")
	}
	select {
	case e.tasks <- fn:
		return nil
	case <-e.quit:
		return errors.New(errors.ErrCodeInternalError, "executor stopped")
	}
}

// Do posts work and blocks until it has run.
func (e *Executor) Do(fn func()) error {
	done := make(chan struct{})
	if err := e.Submit(func() {
		defer close(done)
		fn()
	}); err != nil {
		return err
	}
	<-done
	return nil
}

func (e *Executor) Stop() {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	e.mu.Unlock()
	close(e.quit)
	e.wg.Wait()
}
