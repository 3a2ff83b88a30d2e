// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package parallel schedules per-scanline render work across a pool of
// worker goroutines. Render passes touch disjoint rows, so bands of rows
// are the natural work unit; the pool uses per-worker queues with work
// stealing so an expensive band (a row crossing the object) does not
// serialize the cheap background bands behind it.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool is a fixed set of worker goroutines with per-worker queues.
// Workers pull from their own queue first and steal from the others when
// it runs dry. Safe for concurrent use.
type Pool struct {
	workers int
	queues  []chan func()
	done    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool
}

// New starts a pool with the given number of workers; n <= 0 uses
// GOMAXPROCS. Workers idle until work arrives.
func New(n int) *Pool {
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	queueSize := n * 4
	if queueSize < 8 {
		queueSize = 8
	}
	p := &Pool{
		workers: n,
		queues:  make([]chan func(), n),
		done:    make(chan struct{}),
	}
	for i := range p.queues {
		p.queues[i] = make(chan func(), queueSize)
	}
	p.running.Store(true)
	p.wg.Add(n)
	for i := 0; i < n; i++ {
		go p.worker(i)
	}
	return p
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	own := p.queues[id]
	for {
		select {
		case <-p.done:
			p.drain(own)
			return
		case work := <-own:
			if work != nil {
				work()
			}
		default:
			if stolen := p.steal(id); stolen != nil {
				stolen()
				continue
			}
			select {
			case <-p.done:
				p.drain(own)
				return
			case work := <-own:
				if work != nil {
					work()
				}
			}
		}
	}
}

func (p *Pool) drain(queue chan func()) {
	for {
		select {
		case work := <-queue:
			if work != nil {
				work()
			}
		default:
			return
		}
	}
}

// steal takes one queued task from another worker, or returns nil when
// every queue is empty.
func (p *Pool) steal(myID int) func() {
	for i := 0; i < p.workers; i++ {
		if i == myID {
			continue
		}
		select {
		case work := <-p.queues[i]:
			return work
		default:
		}
	}
	return nil
}

// Run distributes tasks round-robin across the workers and blocks until
// all of them finish. A closed pool runs nothing.
func (p *Pool) Run(tasks []func()) {
	if len(tasks) == 0 || !p.running.Load() {
		return
	}
	var wg sync.WaitGroup
	wg.Add(len(tasks))
	for i, fn := range tasks {
		task := fn
		wrapped := func() {
			defer wg.Done()
			task()
		}
		select {
		case p.queues[i%p.workers] <- wrapped:
		case <-p.done:
			wg.Done()
		}
	}
	wg.Wait()
}

// ForRows splits rows [0, rows) into contiguous bands, calls fn(y0, y1)
// for each band in parallel, and waits. fn must only touch rows in
// [y0, y1). Oversubscribing bands four to one keeps workers busy when row
// costs are uneven.
func (p *Pool) ForRows(rows int, fn func(y0, y1 int)) {
	if rows <= 0 {
		return
	}
	bands := p.workers * 4
	if bands > rows {
		bands = rows
	}
	if bands <= 1 || !p.running.Load() {
		fn(0, rows)
		return
	}
	tasks := make([]func(), 0, bands)
	step := (rows + bands - 1) / bands
	for y0 := 0; y0 < rows; y0 += step {
		y1 := y0 + step
		if y1 > rows {
			y1 = rows
		}
		start, end := y0, y1
		tasks = append(tasks, func() { fn(start, end) })
	}
	p.Run(tasks)
}

// Close stops accepting work and waits for the workers to exit. Queued
// tasks are drained before shutdown.
func (p *Pool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}
