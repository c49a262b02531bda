package history

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/khanglvm/tool-hub-search/internal/storage"
)

const (
	// eventQueueSize is the buffer size for the event queue.
	// If full, events are dropped (non-blocking).
	eventQueueSize = 1000

	// batchFlushSize is the number of events that triggers an immediate flush.
	batchFlushSize = 10

	// flushInterval is how often pending events are flushed.
	flushInterval = 50 * time.Millisecond
)

// Recorder records searches in the background with non-blocking writes.
type Recorder struct {
	storage    storage.Storage
	logger     *zap.Logger
	eventQueue chan SearchEvent
	stopChan   chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup

	// enabled is fixed at construction.
	enabled bool
}

// NewRecorder initializes s and starts background processing. If s cannot
// be initialized the recorder starts disabled.
func NewRecorder(s storage.Storage, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Recorder{
		storage:    s,
		logger:     logger,
		eventQueue: make(chan SearchEvent, eventQueueSize),
		stopChan:   make(chan struct{}),
		enabled:    s != nil,
	}

	if s != nil {
		if err := s.Init(); err != nil {
			logger.Warn("search history initialization failed", zap.Error(err))
			r.enabled = false
		}
	}

	r.wg.Add(1)
	go r.processEvents()

	return r
}

// Record queues a search (non-blocking). If the queue is full the event is
// dropped.
func (r *Recorder) Record(event SearchEvent) {
	if !r.isEnabled() {
		return
	}

	select {
	case r.eventQueue <- event:
	default:
		r.logger.Warn("search history queue full, dropping event", zap.String("search_id", event.SearchID))
	}
}

// Stop gracefully shuts down the recorder, flushing remaining events.
func (r *Recorder) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopChan)
		r.wg.Wait()
	})
}

// IsEnabled reports whether events reach storage. It is false for a nil
// recorder and when storage failed to initialize.
func (r *Recorder) IsEnabled() bool {
	return r.isEnabled()
}

func (r *Recorder) isEnabled() bool {
	return r != nil && r.enabled
}

// processEvents runs in the background, batching and flushing events.
func (r *Recorder) processEvents() {
	defer r.wg.Done()

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	batch := make([]SearchEvent, 0, batchFlushSize)

	for {
		select {
		case event := <-r.eventQueue:
			batch = append(batch, event)
			if len(batch) >= batchFlushSize {
				r.flush(batch)
				batch = batch[:0]
			}

		case <-ticker.C:
			if len(batch) > 0 {
				r.flush(batch)
				batch = batch[:0]
			}

		case <-r.stopChan:
			// Drain whatever is still queued, then flush and exit
			for {
				select {
				case event := <-r.eventQueue:
					batch = append(batch, event)
					if len(batch) >= batchFlushSize {
						r.flush(batch)
						batch = batch[:0]
					}
				default:
					r.flush(batch)
					return
				}
			}
		}
	}
}

// flush writes a batch of events to storage in one call.
func (r *Recorder) flush(events []SearchEvent) {
	if len(events) == 0 || r.storage == nil {
		return
	}

	records := make([]storage.SearchRecord, len(events))
	for i, e := range events {
		records[i] = e.ToStorage()
	}
	if err := r.storage.RecordSearches(records); err != nil {
		r.logger.Warn("failed to record searches", zap.Int("count", len(records)), zap.Error(err))
	}
}
