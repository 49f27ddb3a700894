package worker

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/logx"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/resume"
)

const (
	dequeueTimeout    = 5 * time.Second
	delayedMovePeriod = 30 * time.Second

	// a dequeued batch runs to completion even after shutdown starts
	batchTimeout = 10 * time.Minute
)

// BatchProcessor is the service side of the worker
type BatchProcessor interface {
	ProcessBatch(ctx context.Context, batch *resume.Batch) (*resume.BatchOutcome, error)
}

// ResumeWorker drains the batch queue with a fixed pool of goroutines
type ResumeWorker struct {
	processor BatchProcessor
	queue     resume.Queue
	workers   int
	wg        sync.WaitGroup
}

func NewResumeWorker(processor BatchProcessor, queue resume.Queue, workers int) *ResumeWorker {
	if workers < 1 {
		workers = 1
	}
	return &ResumeWorker{
		processor: processor,
		queue:     queue,
		workers:   workers,
	}
}

// Start launches the pool and the delayed-batch mover. Cancelling ctx stops
// the dequeue loops; a batch already taken from the queue still finishes.
func (w *ResumeWorker) Start(ctx context.Context) {
	logx.Infof("Starting %d resume workers", w.workers)

	w.wg.Add(w.workers + 1)
	go func() {
		defer w.wg.Done()
		w.moveDelayedBatches(ctx)
	}()

	for i := 0; i < w.workers; i++ {
		go func(id int) {
			defer w.wg.Done()
			w.processBatches(ctx, id)
		}(i)
	}
}

// Wait blocks until every goroutine started by Start has returned
func (w *ResumeWorker) Wait() {
	w.wg.Wait()
}

func (w *ResumeWorker) processBatches(ctx context.Context, workerID int) {
	logx.Infof("Worker %d started", workerID)

	for {
		select {
		case <-ctx.Done():
			logx.Infof("Worker %d stopping", workerID)
			return
		default:
		}

		data, err := w.queue.Dequeue(ctx, dequeueTimeout)
		if err != nil {
			if ctx.Err() == nil {
				logx.Errorf("Worker %d dequeue error: %v", workerID, err)
				time.Sleep(time.Second)
			}
			continue
		}
		if len(data) == 0 {
			continue
		}

		w.handle(ctx, workerID, data)
	}
}

func (w *ResumeWorker) handle(ctx context.Context, workerID int, data []byte) {
	var batch resume.Batch
	if err := json.Unmarshal(data, &batch); err != nil {
		logx.Errorf("Worker %d unmarshal error: %v (data: %.200s)", workerID, err, string(data))
		return
	}

	batchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), batchTimeout)
	defer cancel()

	logx.Infof("Worker %d processing batch: %s", workerID, batch.ID)
	if _, err := w.processor.ProcessBatch(batchCtx, &batch); err != nil {
		logx.Errorf("Worker %d batch failed: %v", workerID, err)
	}
}

func (w *ResumeWorker) moveDelayedBatches(ctx context.Context) {
	ticker := time.NewTicker(delayedMovePeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			count, err := w.queue.MoveDelayedToReady(ctx)
			if err != nil {
				logx.Errorf("Failed to move delayed batches: %v", err)
			} else if count > 0 {
				logx.Infof("Moved %d delayed batches to ready queue", count)
			}
		}
	}
}
