package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/kernel"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/resume"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/resume/resumetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingProcessor struct {
	mu   sync.Mutex
	seen []kernel.BatchID
}

func (p *recordingProcessor) ProcessBatch(_ context.Context, b *resume.Batch) (*resume.BatchOutcome, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seen = append(p.seen, b.ID)
	return &resume.BatchOutcome{Processed: len(b.Items)}, nil
}

func (p *recordingProcessor) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.seen)
}

func TestWorkerDrainsQueue(t *testing.T) {
	queue := resumetest.NewMemQueue()
	items := []resume.BatchItem{{ResumeID: "r1"}, {ResumeID: "r2"}, {ResumeID: "r3"}}
	for _, b := range resume.SplitBatches("job-1", items, 1, 3) {
		require.NoError(t, queue.Enqueue(context.Background(), b))
	}

	processor := &recordingProcessor{}
	ctx, cancel := context.WithCancel(context.Background())
	w := NewResumeWorker(processor, queue, 2)
	w.Start(ctx)

	assert.Eventually(t, func() bool { return processor.count() == 3 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	w.Wait()
}

type blockingProcessor struct {
	started chan struct{}
	release chan struct{}
	ctxErr  chan error
}

func (p *blockingProcessor) ProcessBatch(ctx context.Context, _ *resume.Batch) (*resume.BatchOutcome, error) {
	close(p.started)
	<-p.release
	p.ctxErr <- ctx.Err()
	return &resume.BatchOutcome{}, nil
}

func TestWorkerFinishesBatchAfterStop(t *testing.T) {
	queue := resumetest.NewMemQueue()
	batch := resume.SplitBatches("job-1", []resume.BatchItem{{ResumeID: "r1"}}, 1, 3)[0]
	require.NoError(t, queue.Enqueue(context.Background(), batch))

	processor := &blockingProcessor{
		started: make(chan struct{}),
		release: make(chan struct{}),
		ctxErr:  make(chan error, 1),
	}
	ctx, cancel := context.WithCancel(context.Background())
	w := NewResumeWorker(processor, queue, 1)
	w.Start(ctx)

	select {
	case <-processor.started:
	case <-time.After(2 * time.Second):
		t.Fatal("batch was not picked up")
	}

	cancel()
	close(processor.release)
	w.Wait()

	assert.NoError(t, <-processor.ctxErr)
}
