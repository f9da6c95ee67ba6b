package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/tallerhub/docpipe/internal/common"
	"github.com/tallerhub/docpipe/internal/document"
)

// BatchJob is one queued extraction plus its completion callback. Done is
// invoked from the worker goroutine with either a document or an error.
type BatchJob struct {
	ID      string
	Request Request
	Done    func(*document.ReconciledDocument, error)
}

// docExtractor is the slice of Extractor the queue needs.
type docExtractor interface {
	Extract(ctx context.Context, req Request) (*document.ReconciledDocument, error)
}

// BatchQueue runs extractions strictly one at a time with a fixed pause
// between items, which keeps a single pipeline within provider rate
// limits. Failures are isolated per item: one bad document never stops
// the queue.
type BatchQueue struct {
	extractor docExtractor
	logger    *slog.Logger
	pause     time.Duration
	timeout   time.Duration

	ch   chan BatchJob
	wg   sync.WaitGroup
	once sync.Once

	// producers counts enqueues still holding a send on ch; Shutdown waits
	// for it before closing the channel so a send never races the close.
	producers sync.WaitGroup

	mu      sync.Mutex
	closed  bool
	pending map[string]struct{}
	cleared map[string]struct{}
}

func NewBatchQueue(extractor docExtractor, cfg common.BatchConfig, logger *slog.Logger) *BatchQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &BatchQueue{
		extractor: extractor,
		logger:    logger,
		pause:     cfg.Pause,
		timeout:   cfg.ItemTimeout,
		ch:        make(chan BatchJob, 256),
		pending:   make(map[string]struct{}),
		cleared:   make(map[string]struct{}),
	}
	q.start()
	return q
}

func (q *BatchQueue) start() {
	q.once.Do(func() {
		q.wg.Add(1)
		go func() {
			defer q.wg.Done()
			q.logger.Info("batch.worker.started")

			for job := range q.ch {
				if q.skipCleared(job.ID) {
					q.logger.Info("batch.item.cleared", "job_id", job.ID)
					if job.Done != nil {
						job.Done(nil, context.Canceled)
					}
					continue
				}

				ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
				doc, err := q.extractor.Extract(ctx, job.Request)
				cancel()
				q.finish(job.ID)

				if err != nil {
					q.logger.Error("batch.item.failed", "job_id", job.ID, "error", err)
				} else {
					q.logger.Info("batch.item.done",
						"job_id", job.ID, "confidence", doc.Report.Confidence)
				}
				if job.Done != nil {
					job.Done(doc, err)
				}

				if q.pause > 0 {
					time.Sleep(q.pause)
				}
			}

			q.logger.Info("batch.worker.stopped")
		}()
	})
}

// Enqueue adds a job. It blocks once the buffer fills, which is the
// intended backpressure for oversized batches.
func (q *BatchQueue) Enqueue(_ context.Context, job BatchJob) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.logger.Warn("batch.enqueue.rejected", "job_id", job.ID)
		return common.NewAppError("QUEUE_CLOSED", "batch queue is shutting down", nil)
	}
	q.pending[job.ID] = struct{}{}
	q.producers.Add(1)
	q.mu.Unlock()

	q.ch <- job
	q.producers.Done()
	q.logger.Info("batch.item.queued", "job_id", job.ID, "type", string(job.Request.Type))
	return nil
}

// Clear marks every pending item as cancelled. The in-flight extraction
// is never aborted; it finishes and reports normally.
func (q *BatchQueue) Clear() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for id := range q.pending {
		q.cleared[id] = struct{}{}
		n++
	}
	q.logger.Info("batch.cleared", "pending", n)
	return n
}

// Pending reports how many items are waiting or running.
func (q *BatchQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

func (q *BatchQueue) skipCleared(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.cleared[id]; ok {
		delete(q.cleared, id)
		delete(q.pending, id)
		return true
	}
	return false
}

func (q *BatchQueue) finish(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.pending, id)
	delete(q.cleared, id)
}

// Shutdown stops intake and waits for the queue to drain or ctx to
// expire, whichever comes first.
func (q *BatchQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()

	// In-flight enqueues passed the closed check before it flipped; let
	// their sends land, then close the intake.
	q.producers.Wait()
	close(q.ch)

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("batch.shutdown.interrupted")
	case <-done:
		q.logger.Info("batch.shutdown.drained")
	}
}
