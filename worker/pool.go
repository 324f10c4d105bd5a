package worker

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/resample"
)

var (
	// ErrPoolClosed is returned by Do after Close.
	ErrPoolClosed = errors.New("worker: pool closed")

	// ErrReadyTimeout is returned by New when units do not report ready in
	// time.
	ErrReadyTimeout = errors.New("worker: units not ready before timeout")
)

// Pool distributes scale requests over a fixed set of units.
//
// A request has no timeout once it reaches a unit: cancelling the context
// passed to Do stops the caller from waiting, not the resize.
type Pool struct {
	mu     sync.RWMutex
	closed bool
	jobs   chan *ScaleRequest
	out    chan any
	units  sync.WaitGroup
	done   chan struct{}
	size   int
	nextID atomic.Uint64

	pendingMu sync.Mutex
	pending   map[string]chan any
}

// New starts the units and waits for each to send its init message.
func New(opts ...Option) (*Pool, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	p := &Pool{
		jobs:    make(chan *ScaleRequest, o.size),
		out:     make(chan any, o.size),
		done:    make(chan struct{}),
		size:    o.size,
		pending: make(map[string]chan any),
	}

	for i := 0; i < o.size; i++ {
		p.units.Add(1)
		go func(id int) {
			defer p.units.Done()
			newUnit(id, o).serve(p.jobs, p.out)
		}(i)
	}

	if err := p.awaitReady(o.readyTimeout); err != nil {
		close(p.jobs)
		go func() {
			p.units.Wait()
			close(p.out)
		}()
		return nil, err
	}

	go p.collect()
	resample.Logger().Debug("worker: pool ready", "units", o.size)
	return p, nil
}

// awaitReady consumes one init message per unit.
func (p *Pool) awaitReady(timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for ready := 0; ready < p.size; {
		select {
		case msg := <-p.out:
			if _, ok := msg.(*InitMessage); ok {
				ready++
			}
		case <-timer.C:
			return fmt.Errorf("%w: %d of %d ready after %v", ErrReadyTimeout, ready, p.size, timeout)
		}
	}
	return nil
}

// collect routes responses to waiting callers by ID.
func (p *Pool) collect() {
	defer close(p.done)
	for msg := range p.out {
		var id string
		switch m := msg.(type) {
		case *ScaleResponse:
			id = m.ID
		case *ErrorResponse:
			id = m.ID
		default:
			continue
		}

		p.pendingMu.Lock()
		reply, ok := p.pending[id]
		delete(p.pending, id)
		p.pendingMu.Unlock()

		if !ok {
			resample.Logger().Debug("worker: dropping response without caller", "id", id)
			continue
		}
		reply <- msg
	}

	p.pendingMu.Lock()
	for id, reply := range p.pending {
		reply <- newErrorResponse(id, ErrPoolClosed)
		delete(p.pending, id)
	}
	p.pendingMu.Unlock()
}

// Size returns the number of units.
func (p *Pool) Size() int { return p.size }

// Do sends req to the next free unit and waits for its response. The
// request's Src is moved into the message and is empty when Do returns.
// An ID is assigned when req.ID is empty.
//
// A failed resize is returned as an *ErrorResponse.
func (p *Pool) Do(ctx context.Context, req *ScaleRequest) (*ScaleResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return nil, ErrPoolClosed
	}

	if req.ID == "" {
		req.ID = strconv.FormatUint(p.nextID.Add(1), 10)
	}
	reply := make(chan any, 1)
	p.pendingMu.Lock()
	if _, dup := p.pending[req.ID]; dup {
		p.pendingMu.Unlock()
		p.mu.RUnlock()
		return nil, fmt.Errorf("worker: duplicate request id %q", req.ID)
	}
	p.pending[req.ID] = reply
	p.pendingMu.Unlock()

	msg := &ScaleRequest{
		Type:    TypeScale,
		ID:      req.ID,
		Src:     req.Src.Send(),
		Target:  req.Target,
		Options: req.Options,
	}
	select {
	case p.jobs <- msg:
	case <-ctx.Done():
		p.forget(req.ID)
		p.mu.RUnlock()
		return nil, ctx.Err()
	}
	p.mu.RUnlock()

	select {
	case m := <-reply:
		switch m := m.(type) {
		case *ScaleResponse:
			return m, nil
		case *ErrorResponse:
			return nil, m
		default:
			return nil, fmt.Errorf("worker: unexpected response %T", m)
		}
	case <-ctx.Done():
		p.forget(req.ID)
		return nil, ctx.Err()
	}
}

func (p *Pool) forget(id string) {
	p.pendingMu.Lock()
	delete(p.pending, id)
	p.pendingMu.Unlock()
}

// Close stops accepting requests, lets units finish queued work and waits
// for them to exit. It is safe to call more than once.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	p.units.Wait()
	close(p.out)
	<-p.done
}
