package store

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"agwakwagan/domain"
	"agwakwagan/storage"
)

// SaveFailure reports a save that did not reach the adapter. The board it
// carries is the snapshot that failed to persist; the in-memory state has
// moved on regardless.
type SaveFailure struct {
	BoardID  string
	Revision uint64
	Err      error
}

type saveJob struct {
	board    domain.Board
	revision uint64
}

// saver is the single-writer persistence pipeline. One worker drains a FIFO
// queue, so saves reach the adapter in exactly the order mutations were
// applied and an older board can never overwrite a newer persisted one.
type saver struct {
	cfg       Config
	adapter   storage.Adapter
	logger    *log.Logger
	onFailure func(SaveFailure)

	jobs chan saveJob
	wg   sync.WaitGroup

	delivered atomic.Uint64
	failed    atomic.Uint64
	started   time.Time
}

func newSaver(cfg Config, adapter storage.Adapter, logger *log.Logger, onFailure func(SaveFailure)) *saver {
	s := &saver{
		cfg:       cfg,
		adapter:   adapter,
		logger:    logger,
		onFailure: onFailure,
		jobs:      make(chan saveJob, cfg.QueueSize),
		started:   time.Now().UTC(),
	}
	s.wg.Add(1)
	go s.worker()
	return s
}

// enqueue hands a snapshot to the pipeline. It blocks when the queue is
// full; dropping or reordering under pressure would let a stale board be
// persisted after a newer one.
func (s *saver) enqueue(job saveJob) {
	s.jobs <- job
}

func (s *saver) worker() {
	defer s.wg.Done()
	for job := range s.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.SaveTimeout)
		err := s.adapter.Save(ctx, job.board)
		cancel()
		if err != nil {
			s.failed.Add(1)
			s.logger.WithError(err).WithFields(log.Fields{
				"board":    job.board.ID,
				"revision": job.revision,
			}).Error("board save failed")
			if s.onFailure != nil {
				s.onFailure(SaveFailure{BoardID: job.board.ID, Revision: job.revision, Err: err})
			}
			continue
		}
		s.delivered.Add(1)
	}
}

// close drains the queue and stops the worker.
func (s *saver) close() {
	close(s.jobs)
	s.wg.Wait()
}

// Stats describes the persistence pipeline's progress.
type Stats struct {
	QueueDepth int       `json:"queueDepth"`
	Delivered  uint64    `json:"delivered"`
	Failed     uint64    `json:"failed"`
	StartedAt  time.Time `json:"startedAt"`
	DrainRate  float64   `json:"drainRatePerSecond"`
}

func (s *saver) stats() Stats {
	delivered := s.delivered.Load()
	elapsed := time.Since(s.started)
	rps := 0.0
	if elapsed > 0 {
		rps = float64(delivered) / elapsed.Seconds()
	}
	return Stats{
		QueueDepth: len(s.jobs),
		Delivered:  delivered,
		Failed:     s.failed.Load(),
		StartedAt:  s.started,
		DrainRate:  rps,
	}
}
