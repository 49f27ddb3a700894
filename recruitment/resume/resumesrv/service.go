package resumesrv

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/internal/ai/embeddings"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/internal/export"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/internal/metrics"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/errx"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/fsx"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/kernel"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/logx"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/job"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/resume"
	"golang.org/x/sync/errgroup"
)

const failureWriteTimeout = 30 * time.Second

// Config tunes batching and per-batch concurrency
type Config struct {
	BatchSize   int
	MaxAttempts int
	Concurrency int
}

type Service struct {
	repo      resume.Repository
	jobRepo   job.Repository
	queue     resume.Queue
	files     fsx.FileSystem
	extractor resume.TextExtractor
	screener  resume.Screener
	embedder  embeddings.Embedder
	cfg       Config

	active atomic.Int64
}

func NewService(
	repo resume.Repository,
	jobRepo job.Repository,
	queue resume.Queue,
	files fsx.FileSystem,
	extractor resume.TextExtractor,
	screener resume.Screener,
	embedder embeddings.Embedder,
	cfg Config,
) *Service {
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 50
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 3
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &Service{
		repo:      repo,
		jobRepo:   jobRepo,
		queue:     queue,
		files:     files,
		extractor: extractor,
		screener:  screener,
		embedder:  embedder,
		cfg:       cfg,
	}
}

// ============================================================================
// Upload
// ============================================================================

// UploadResumes stores and parses the files, then queues them in batches
func (s *Service) UploadResumes(ctx context.Context, jobID kernel.JobID, files []resume.UploadedFile) (*resume.UploadResponse, error) {
	if len(files) == 0 {
		return nil, resume.ErrNoFiles()
	}

	j, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if err := j.CanAcceptResumes(); err != nil {
		return nil, err
	}

	items := make([]resume.BatchItem, 0, len(files))
	skipped := []string{}
	for _, f := range files {
		item, reason, err := s.prepareFile(ctx, jobID, f)
		if err != nil {
			s.removeFiles(ctx, items)
			return nil, err
		}
		if reason != "" {
			logx.Warnf("Skipping %s for job %s: %s", f.Name, jobID, reason)
			skipped = append(skipped, fmt.Sprintf("%s: %s", f.Name, reason))
			continue
		}
		items = append(items, *item)
	}

	if len(items) == 0 {
		return nil, resume.ErrNoReadableFiles().
			WithDetail("job_id", jobID).
			WithDetail("skipped", skipped)
	}

	if err := s.jobRepo.IncrementTotalResumes(ctx, jobID, len(items)); err != nil {
		s.removeFiles(ctx, items)
		return nil, errx.Wrap(err, "failed to update resume count", errx.TypeInternal)
	}

	batches := resume.SplitBatches(jobID, items, s.cfg.BatchSize, s.cfg.MaxAttempts)
	for i, batch := range batches {
		if err := s.queue.Enqueue(ctx, batch); err != nil {
			unqueued := 0
			for _, rest := range batches[i:] {
				unqueued += len(rest.Items)
				s.removeFiles(ctx, rest.Items)
			}
			if decErr := s.jobRepo.IncrementTotalResumes(ctx, jobID, -unqueued); decErr != nil {
				logx.Errorf("Failed to roll back resume count for job %s: %v", jobID, decErr)
			}
			return nil, resume.ErrQueueEnqueueFailed().
				WithCause(err).
				WithDetail("job_id", jobID).
				WithDetail("batches_queued", i)
		}
	}

	logx.Infof("Queued %d resume(s) in %d batch(es) for job %s", len(items), len(batches), jobID)

	return &resume.UploadResponse{
		Message:        fmt.Sprintf("%d resume(s) queued for processing", len(items)),
		JobID:          jobID,
		FilesProcessed: len(items),
		TotalFiles:     len(files),
		Batches:        len(batches),
		Skipped:        skipped,
	}, nil
}

// prepareFile returns a skip reason for unreadable files and an error only
// when storage fails
func (s *Service) prepareFile(ctx context.Context, jobID kernel.JobID, f resume.UploadedFile) (*resume.BatchItem, string, error) {
	if len(f.Data) == 0 {
		return nil, "empty file", nil
	}

	text, err := s.extractor.ExtractText(ctx, f.Name, f.Data)
	if err != nil {
		return nil, err.Error(), nil
	}

	resumeID := kernel.NewResumeID(kernel.NewID())
	ext := strings.ToLower(filepath.Ext(f.Name))
	path := s.files.Join("resumes", jobID.String(), resumeID.String()+ext)

	if err := s.files.WriteFile(ctx, path, f.Data); err != nil {
		return nil, "", resume.ErrStorageFailed().
			WithCause(err).
			WithDetail("filename", f.Name)
	}

	return &resume.BatchItem{
		ResumeID: resumeID,
		FileName: f.Name,
		FilePath: path,
		Text:     text,
	}, "", nil
}

func (s *Service) removeFiles(ctx context.Context, items []resume.BatchItem) {
	for _, item := range items {
		if err := s.files.DeleteFile(ctx, item.FilePath); err != nil {
			logx.Warnf("Failed to remove %s: %v", item.FilePath, err)
		}
	}
}

// ============================================================================
// Batch processing
// ============================================================================

// ProcessBatch screens every resume of a batch. Failures are rescheduled
// with backoff until the batch runs out of attempts.
func (s *Service) ProcessBatch(ctx context.Context, batch *resume.Batch) (*resume.BatchOutcome, error) {
	s.active.Add(1)
	metrics.ActiveJobs.Inc()
	defer func() {
		s.active.Add(-1)
		metrics.ActiveJobs.Dec()
	}()

	logx.Infof("Processing batch: BatchID=%s, JobID=%s, Resumes=%d, Attempt=%d/%d",
		batch.ID, batch.JobID, len(batch.Items), batch.AttemptCount+1, batch.MaxAttempts)

	j, err := s.jobRepo.GetByID(ctx, batch.JobID)
	if err != nil {
		if errx.IsType(err, errx.TypeNotFound) {
			logx.Warnf("Dropping batch %s: job %s no longer exists", batch.ID, batch.JobID)
			return &resume.BatchOutcome{Skipped: len(batch.Items)}, nil
		}
		return nil, s.handleBatchError(ctx, batch, "job_lookup_failed", err)
	}
	if !j.IsAnalyzed() {
		return nil, s.handleBatchError(ctx, batch, "job_not_analyzed", job.ErrAnalysisPending())
	}

	var (
		mu      sync.Mutex
		outcome resume.BatchOutcome
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)

	for _, item := range batch.Items {
		g.Go(func() error {
			fallback, err := s.processItem(gctx, j, item)
			if err != nil {
				return err
			}
			mu.Lock()
			outcome.Processed++
			if fallback {
				outcome.Fallbacks++
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, s.handleBatchError(ctx, batch, "save_failed", err)
	}

	logx.Infof("Batch completed: BatchID=%s, Processed=%d, Fallbacks=%d", batch.ID, outcome.Processed, outcome.Fallbacks)
	return &outcome, nil
}

// processItem stores a result for one resume. Model failures produce a
// fallback result; only storage failures are returned.
func (s *Service) processItem(ctx context.Context, j *job.Job, item resume.BatchItem) (bool, error) {
	start := time.Now()

	name := s.screener.ExtractName(ctx, item.Text, item.FileName)
	cls := s.screener.Classify(ctx, item.Text)

	var result *resume.Result
	analysis, detailed, err := s.screener.Analyze(ctx, item.Text, j.Analysis, string(j.Description), cls)
	if err != nil {
		logx.Errorf("Error processing resume %s: %v", item.FileName, err)
		result = resume.NewFallbackResult(item, j.ID, name, err)
	} else {
		result = resume.NewResult(item, j.ID, name, cls, analysis, detailed)
	}

	inserted, err := s.repo.Create(ctx, result, s.embed(ctx, item))
	if err != nil {
		return false, errx.Wrap(err, "failed to store resume result", errx.TypeInternal)
	}
	if inserted {
		if err := s.jobRepo.IncrementProcessedResumes(ctx, j.ID, 1); err != nil {
			logx.Errorf("Failed to update processed count for job %s: %v", j.ID, err)
		}
	}

	status := "success"
	if result.IsFallback() {
		status = "fallback"
	}
	metrics.ResumesProcessed.WithLabelValues(status).Inc()
	metrics.ProcessingDuration.Observe(time.Since(start).Seconds())

	return result.IsFallback(), nil
}

// embed is best effort; results without a vector are left out of semantic ranking
func (s *Service) embed(ctx context.Context, item resume.BatchItem) []float32 {
	if s.embedder == nil {
		return nil
	}
	vec, err := s.embedder.GenerateEmbedding(ctx, item.Text)
	if err != nil {
		logx.Warnf("Skipping embedding for resume %s: %v", item.FileName, err)
		return nil
	}
	return vec
}

// handleBatchError handles batch processing errors with retry logic
func (s *Service) handleBatchError(ctx context.Context, batch *resume.Batch, errorType string, err error) error {
	// the requeue and the fallback writes must land even when ctx is gone
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), failureWriteTimeout)
	defer cancel()

	batch.AttemptCount++
	batch.ErrorMessage = fmt.Sprintf("%s: %v", errorType, err)

	errorDetails := map[string]any{
		"batch_id":     batch.ID,
		"job_id":       batch.JobID,
		"error_type":   errorType,
		"attempt":      batch.AttemptCount,
		"max_attempts": batch.MaxAttempts,
	}

	if batch.CanRetry() {
		retryDelay := batch.RetryDelay()
		nextRetry := time.Now().Add(retryDelay)
		batch.NextRetryAt = &nextRetry

		if queueErr := s.queue.EnqueueDelayed(ctx, batch, retryDelay); queueErr != nil {
			logx.Errorf("Failed to enqueue batch %s for retry: %v", batch.ID, queueErr)
			s.storeFallbacks(ctx, batch, err)
			return resume.ErrBatchFailed().
				WithCause(queueErr).
				WithDetails(errorDetails).
				WithDetail("will_retry", false)
		}

		logx.Warnf("Batch failed, will retry: BatchID=%s, Attempt=%d/%d, NextRetry=%v, Error=%s",
			batch.ID, batch.AttemptCount, batch.MaxAttempts, nextRetry, errorType)

		return resume.ErrBatchFailed().
			WithCause(err).
			WithDetails(errorDetails).
			WithDetail("will_retry", true).
			WithDetail("next_retry_at", nextRetry)
	}

	logx.Errorf("Batch permanently failed: BatchID=%s, Error=%s, Attempts=%d/%d",
		batch.ID, errorType, batch.AttemptCount, batch.MaxAttempts)
	s.storeFallbacks(ctx, batch, err)

	return resume.ErrBatchMaxRetries().
		WithCause(err).
		WithDetails(errorDetails)
}

// storeFallbacks records a fallback result for every resume of a dead
// batch so the job's progress can still complete
func (s *Service) storeFallbacks(ctx context.Context, batch *resume.Batch, cause error) {
	stored := 0
	for _, item := range batch.Items {
		result := resume.NewFallbackResult(item, batch.JobID, nameFromFilename(item.FileName), cause)
		inserted, err := s.repo.Create(ctx, result, nil)
		if err != nil {
			logx.Errorf("Failed to store fallback result for %s: %v", item.FileName, err)
			continue
		}
		if inserted {
			stored++
			metrics.ResumesProcessed.WithLabelValues("fallback").Inc()
		}
	}
	if stored > 0 {
		if err := s.jobRepo.IncrementProcessedResumes(ctx, batch.JobID, stored); err != nil {
			logx.Errorf("Failed to update processed count for job %s: %v", batch.JobID, err)
		}
	}
}

// ActiveBatches is the number of batches being processed right now
func (s *Service) ActiveBatches() int64 {
	return s.active.Load()
}

// QueueStats reports how many batches wait in the queue
func (s *Service) QueueStats(ctx context.Context) (*resume.QueueStats, error) {
	ready, delayed, err := s.queue.Size(ctx)
	if err != nil {
		return nil, errx.Wrap(err, "failed to read queue size", errx.TypeInternal)
	}
	return &resume.QueueStats{Ready: ready, Delayed: delayed}, nil
}

// ============================================================================
// Results
// ============================================================================

// GetResults returns the job's results ranked by fit score
func (s *Service) GetResults(ctx context.Context, jobID kernel.JobID, filter resume.ResultFilter) (*resume.ResultsResponse, error) {
	filter, err := s.checkFilter(ctx, jobID, filter)
	if err != nil {
		return nil, err
	}

	results, total, err := s.repo.ListByJob(ctx, jobID, filter)
	if err != nil {
		return nil, errx.Wrap(err, "failed to list resume results", errx.TypeInternal)
	}
	summary, err := s.repo.Summary(ctx, jobID)
	if err != nil {
		return nil, errx.Wrap(err, "failed to summarise resume results", errx.TypeInternal)
	}

	return &resume.ResultsResponse{
		JobID:                 jobID,
		TotalResults:          total,
		Offset:                filter.Offset,
		Limit:                 filter.Limit,
		ClassificationSummary: summary,
		Results:               results,
	}, nil
}

// GetResult retrieves one result by resume id
func (s *Service) GetResult(ctx context.Context, id kernel.ResumeID) (*resume.Result, error) {
	return s.repo.GetByID(ctx, id)
}

// SemanticResults ranks results by embedding similarity to the job
func (s *Service) SemanticResults(ctx context.Context, jobID kernel.JobID, limit int) (*resume.SemanticResultsResponse, error) {
	if _, err := s.jobRepo.GetByID(ctx, jobID); err != nil {
		return nil, err
	}
	limit = resume.ResultFilter{Limit: limit}.Normalize().Limit

	ranked, err := s.repo.SemanticByJob(ctx, jobID, limit)
	if err != nil {
		return nil, err
	}
	return &resume.SemanticResultsResponse{JobID: jobID, Results: ranked}, nil
}

// ExportResults renders the filtered results as an .xlsx workbook
func (s *Service) ExportResults(ctx context.Context, jobID kernel.JobID, filter resume.ResultFilter) (*resume.ExportFile, error) {
	j, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if filter.Limit <= 0 {
		filter.Limit = resume.MaxResultLimit
	}
	filter, err = s.checkFilter(ctx, jobID, filter)
	if err != nil {
		return nil, err
	}

	results, _, err := s.repo.ListByJob(ctx, jobID, filter)
	if err != nil {
		return nil, errx.Wrap(err, "failed to list resume results", errx.TypeInternal)
	}
	summary, err := s.repo.Summary(ctx, jobID)
	if err != nil {
		return nil, errx.Wrap(err, "failed to summarise resume results", errx.TypeInternal)
	}

	report := export.Report{
		JobID:       jobID,
		JobRole:     string(j.Role),
		Experience:  j.RequiredExperience,
		GeneratedAt: time.Now(),
	}
	data, err := export.ResultsWorkbook(report, results, summary)
	if err != nil {
		return nil, resume.ErrExportFailed().WithCause(err).WithDetail("job_id", jobID)
	}

	return &resume.ExportFile{FileName: export.FileName(report), Data: data}, nil
}

func (s *Service) checkFilter(ctx context.Context, jobID kernel.JobID, filter resume.ResultFilter) (resume.ResultFilter, error) {
	if filter.MinScore != nil && (*filter.MinScore < 0 || *filter.MinScore > 100) {
		return filter, resume.ErrInvalidFilter().WithDetail("min_score", *filter.MinScore)
	}
	if filter.Category != nil && !filter.Category.IsValid() {
		return filter, resume.ErrInvalidFilter().WithDetail("category", *filter.Category)
	}
	if filter.Level != nil && !filter.Level.IsValid() {
		return filter, resume.ErrInvalidFilter().WithDetail("level", *filter.Level)
	}
	if _, err := s.jobRepo.GetByID(ctx, jobID); err != nil {
		return filter, err
	}
	return filter.Normalize(), nil
}
