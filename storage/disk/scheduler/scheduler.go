// Package scheduler implements the disk scheduler of spec §4.1: a
// single-producer/multi-consumer request queue served by one background
// worker, grounded on original_source's
// src/storage/disk/disk_scheduler.cpp. The C++ original's
// Channel<optional<DiskRequest>> becomes a buffered Go channel; its
// std::promise<bool> per request becomes a per-request chan error.
package scheduler

import (
	"sync"

	"github.com/sirupsen/logrus"

	"coredb/dblog"
	"coredb/storage/disk/diskmanager"
	"coredb/storage/page"
)

// Request describes one scheduled page read or write. When the worker
// has finished it, it sends exactly one value (nil on success) on Done,
// if Done is non-nil; Done is never closed.
type Request struct {
	IsWrite bool
	PageID  page.ID
	Data    []byte
	Done    chan error
}

// Scheduler owns the background worker goroutine and the FIFO request
// queue feeding it. There are no cross-request ordering guarantees
// beyond submission order; callers serialize if they need to.
type Scheduler struct {
	queue  chan *Request
	dm     *diskmanager.DiskManager
	log    *logrus.Logger
	wg     sync.WaitGroup
	closed bool
	mu     sync.Mutex
}

// New starts a Scheduler's background worker. queueCapacity bounds the
// request queue (spec's config.SchedulerQueueCapacity).
func New(dm *diskmanager.DiskManager, queueCapacity int, logger *logrus.Logger) *Scheduler {
	s := &Scheduler{
		queue: make(chan *Request, queueCapacity),
		dm:    dm,
		log:   dblog.Or(logger),
	}
	s.wg.Add(1)
	go s.worker()
	return s
}

// Schedule enqueues req. The caller should receive from req.Done to
// learn the outcome; Schedule itself never blocks on I/O, only (briefly)
// on queue contention.
func (s *Scheduler) Schedule(req *Request) {
	s.queue <- req
}

// ScheduleAndWait is the common case: enqueue and block until the
// worker fulfills it, returning its error.
func (s *Scheduler) ScheduleAndWait(req *Request) error {
	req.Done = make(chan error, 1)
	s.Schedule(req)
	return <-req.Done
}

func (s *Scheduler) worker() {
	defer s.wg.Done()
	for req := range s.queue {
		if req == nil {
			// Sentinel: drain-then-exit, matching the C++ optional<DiskRequest>
			// nullopt shutdown signal.
			return
		}
		var err error
		if req.IsWrite {
			err = s.dm.WritePage(req.PageID, req.Data)
		} else {
			err = s.dm.ReadPage(req.PageID, req.Data)
		}
		if err != nil {
			s.log.WithFields(logrus.Fields{"page_id": req.PageID, "write": req.IsWrite}).
				WithError(err).Error("disk scheduler request failed")
		}
		if req.Done != nil {
			req.Done <- err
		}
	}
}

// Shutdown enqueues the sentinel and joins the worker. Safe to call more
// than once.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.queue <- nil
	close(s.queue)
	s.wg.Wait()
}
