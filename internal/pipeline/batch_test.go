package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallerhub/docpipe/internal/common"
	"github.com/tallerhub/docpipe/internal/document"
)

type stubExtractor struct {
	mu      sync.Mutex
	running int
	maxSeen int
	order   []string
	failOn  map[string]bool
	delay   time.Duration
}

func (s *stubExtractor) Extract(ctx context.Context, req Request) (*document.ReconciledDocument, error) {
	s.mu.Lock()
	s.running++
	if s.running > s.maxSeen {
		s.maxSeen = s.running
	}
	s.order = append(s.order, req.Text)
	fail := s.failOn[req.Text]
	s.mu.Unlock()

	if s.delay > 0 {
		time.Sleep(s.delay)
	}

	s.mu.Lock()
	s.running--
	s.mu.Unlock()

	if fail {
		return nil, errors.New("extraction blew up")
	}
	return &document.ReconciledDocument{Report: document.Report{Confidence: 100, IsValid: true}}, nil
}

func newTestQueue(stub *stubExtractor, pause time.Duration) *BatchQueue {
	return NewBatchQueue(stub, common.BatchConfig{
		Pause:       pause,
		ItemTimeout: time.Second,
	}, nil)
}

func enqueueAll(t *testing.T, q *BatchQueue, stub *stubExtractor, ids []string) map[string]error {
	t.Helper()
	var mu sync.Mutex
	results := make(map[string]error, len(ids))
	var wg sync.WaitGroup

	for _, id := range ids {
		id := id
		wg.Add(1)
		err := q.Enqueue(context.Background(), BatchJob{
			ID:      id,
			Request: Request{Text: id},
			Done: func(doc *document.ReconciledDocument, err error) {
				mu.Lock()
				results[id] = err
				mu.Unlock()
				wg.Done()
			},
		})
		require.NoError(t, err)
	}
	wg.Wait()
	return results
}

func TestBatchQueueProcessesSequentially(t *testing.T) {
	stub := &stubExtractor{delay: 10 * time.Millisecond}
	q := newTestQueue(stub, 0)
	defer q.Shutdown(context.Background())

	enqueueAll(t, q, stub, []string{"a", "b", "c", "d"})

	assert.Equal(t, 1, stub.maxSeen, "exactly one extraction may run at a time")
	assert.Equal(t, []string{"a", "b", "c", "d"}, stub.order, "jobs run in enqueue order")
}

func TestBatchQueueIsolatesFailures(t *testing.T) {
	stub := &stubExtractor{failOn: map[string]bool{"b": true}}
	q := newTestQueue(stub, 0)
	defer q.Shutdown(context.Background())

	results := enqueueAll(t, q, stub, []string{"a", "b", "c"})

	assert.NoError(t, results["a"])
	assert.Error(t, results["b"])
	assert.NoError(t, results["c"], "a failed item must not stop the batch")
}

func TestBatchQueueClearSkipsPending(t *testing.T) {
	stub := &stubExtractor{delay: 30 * time.Millisecond}
	q := newTestQueue(stub, 0)
	defer q.Shutdown(context.Background())

	var mu sync.Mutex
	results := make(map[string]error)
	var wg sync.WaitGroup
	for _, id := range []string{"a", "b", "c"} {
		id := id
		wg.Add(1)
		require.NoError(t, q.Enqueue(context.Background(), BatchJob{
			ID:      id,
			Request: Request{Text: id},
			Done: func(doc *document.ReconciledDocument, err error) {
				mu.Lock()
				results[id] = err
				mu.Unlock()
				wg.Done()
			},
		}))
	}

	// Let "a" start, then clear the rest.
	time.Sleep(10 * time.Millisecond)
	cleared := q.Clear()
	assert.GreaterOrEqual(t, cleared, 2)
	wg.Wait()

	// The in-flight item finished normally.
	assert.NoError(t, results["a"])
	assert.ErrorIs(t, results["b"], context.Canceled)
	assert.ErrorIs(t, results["c"], context.Canceled)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"a"}, stub.order, "cleared jobs never reach the extractor")
}

func TestBatchQueueRejectsAfterShutdown(t *testing.T) {
	stub := &stubExtractor{}
	q := newTestQueue(stub, 0)
	q.Shutdown(context.Background())

	err := q.Enqueue(context.Background(), BatchJob{ID: "late", Request: Request{Text: "late"}})
	assert.Error(t, err)
}

func TestBatchQueueConcurrentEnqueueAndShutdown(t *testing.T) {
	// Enqueues racing Shutdown must either land or be rejected; a send on
	// the closed intake channel would panic the enqueueing goroutine.
	for i := 0; i < 20; i++ {
		stub := &stubExtractor{}
		q := newTestQueue(stub, 0)

		var wg sync.WaitGroup
		for j := 0; j < 8; j++ {
			j := j
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = q.Enqueue(context.Background(), BatchJob{
					ID:      string(rune('a' + j)),
					Request: Request{Text: "doc"},
				})
			}()
		}
		q.Shutdown(context.Background())
		wg.Wait()
	}
}

func TestBatchQueuePauseBetweenItems(t *testing.T) {
	stub := &stubExtractor{}
	q := newTestQueue(stub, 20*time.Millisecond)
	defer q.Shutdown(context.Background())

	start := time.Now()
	enqueueAll(t, q, stub, []string{"a", "b", "c"})
	elapsed := time.Since(start)

	// Two inter-item pauses minimum (the pause after the last item may or
	// may not have elapsed before the callbacks fired).
	assert.GreaterOrEqual(t, elapsed, 40*time.Millisecond)
}
