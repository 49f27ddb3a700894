package jobinfra

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/errx"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/kernel"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/job"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

// PostgresJobRepository implements job.Repository using PostgreSQL
type PostgresJobRepository struct {
	db *sqlx.DB
}

// NewPostgresJobRepository creates a new PostgreSQL job repository
func NewPostgresJobRepository(db *sqlx.DB) *PostgresJobRepository {
	return &PostgresJobRepository{
		db: db,
	}
}

// ============================================================================
// Database Model
// ============================================================================

const jobColumns = `id, job_role, required_experience, description, status, analysis,
	analyzed_at, total_resumes, processed_resumes, created_at, updated_at`

type jobModel struct {
	ID                 string     `db:"id"`
	JobRole            string     `db:"job_role"`
	RequiredExperience string     `db:"required_experience"`
	Description        string     `db:"description"`
	Status             string     `db:"status"`
	Analysis           []byte     `db:"analysis"`
	AnalyzedAt         *time.Time `db:"analyzed_at"`
	TotalResumes       int        `db:"total_resumes"`
	ProcessedResumes   int        `db:"processed_resumes"`
	CreatedAt          time.Time  `db:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at"`
}

// toEntity converts database model to domain entity
func (m *jobModel) toEntity() (*job.Job, error) {
	var analysis *job.Analysis
	if len(m.Analysis) > 0 && string(m.Analysis) != "null" {
		analysis = &job.Analysis{}
		if err := json.Unmarshal(m.Analysis, analysis); err != nil {
			return nil, fmt.Errorf("failed to unmarshal analysis: %w", err)
		}
	}

	return &job.Job{
		ID:                 kernel.JobID(m.ID),
		Role:               kernel.JobRole(m.JobRole),
		RequiredExperience: m.RequiredExperience,
		Description:        kernel.JobDescription(m.Description),
		Status:             job.JobStatus(m.Status),
		Analysis:           analysis,
		AnalyzedAt:         m.AnalyzedAt,
		TotalResumes:       m.TotalResumes,
		ProcessedResumes:   m.ProcessedResumes,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}, nil
}

// analysisParam renders the analysis for a jsonb column; lib/pq would send
// a []byte as bytea, so the JSON travels as text
func analysisParam(a *job.Analysis) (*string, error) {
	if a == nil {
		return nil, nil
	}
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal analysis: %w", err)
	}
	s := string(data)
	return &s, nil
}

func vectorParam(embedding []float32) *pgvector.Vector {
	if len(embedding) == 0 {
		return nil
	}
	v := pgvector.NewVector(embedding)
	return &v
}

// ============================================================================
// Repository Implementation
// ============================================================================

// Create creates a new job
func (r *PostgresJobRepository) Create(ctx context.Context, j *job.Job) error {
	analysis, err := analysisParam(j.Analysis)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO job_posts (
			id, job_role, required_experience, description, status, analysis,
			analyzed_at, total_resumes, processed_resumes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err = r.db.ExecContext(ctx, query,
		j.ID.String(), string(j.Role), j.RequiredExperience, string(j.Description),
		string(j.Status), analysis, j.AnalyzedAt, j.TotalResumes, j.ProcessedResumes,
		j.CreatedAt, j.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation
			return job.ErrJobAlreadyExists().WithDetail("job_id", j.ID)
		}
		return errx.Wrap(err, "failed to create job", errx.TypeInternal)
	}

	return nil
}

// Update persists role, experience, description and status. The analysis
// columns are owned by SaveAnalysis and ResetAnalysis.
func (r *PostgresJobRepository) Update(ctx context.Context, j *job.Job) error {
	query := `
		UPDATE job_posts SET
			job_role = $2,
			required_experience = $3,
			description = $4,
			status = $5,
			updated_at = $6
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		j.ID.String(), string(j.Role), j.RequiredExperience, string(j.Description),
		string(j.Status), j.UpdatedAt,
	)
	if err != nil {
		return errx.Wrap(err, "failed to update job", errx.TypeInternal)
	}

	return expectOneRow(result, j.ID)
}

// GetByID retrieves a job by ID
func (r *PostgresJobRepository) GetByID(ctx context.Context, id kernel.JobID) (*job.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM job_posts WHERE id = $1`

	var model jobModel
	if err := r.db.GetContext(ctx, &model, query, id.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, job.ErrJobNotFound().WithDetail("job_id", id)
		}
		return nil, errx.Wrap(err, "failed to get job", errx.TypeInternal)
	}

	return model.toEntity()
}

// Delete removes a job; foreign keys cascade to its dependents
func (r *PostgresJobRepository) Delete(ctx context.Context, id kernel.JobID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM job_posts WHERE id = $1`, id.String())
	if err != nil {
		return errx.Wrap(err, "failed to delete job", errx.TypeInternal)
	}
	return expectOneRow(result, id)
}

// List retrieves jobs newest first
func (r *PostgresJobRepository) List(ctx context.Context, status *job.JobStatus, pagination kernel.PaginationOptions) (*kernel.Paginated[job.Job], error) {
	pagination = pagination.Normalize()

	where := ""
	args := []any{}
	if status != nil {
		where = " WHERE status = $1"
		args = append(args, string(*status))
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM job_posts`+where, args...); err != nil {
		return nil, errx.Wrap(err, "failed to count jobs", errx.TypeInternal)
	}

	query := fmt.Sprintf(`SELECT %s FROM job_posts%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		jobColumns, where, len(args)+1, len(args)+2)
	args = append(args, pagination.PageSize, pagination.Offset())

	var models []jobModel
	if err := r.db.SelectContext(ctx, &models, query, args...); err != nil {
		return nil, errx.Wrap(err, "failed to list jobs", errx.TypeInternal)
	}

	jobs := make([]job.Job, 0, len(models))
	for i := range models {
		j, err := models[i].toEntity()
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *j)
	}

	return kernel.NewPaginated(jobs, pagination, total), nil
}

// SaveAnalysis stores the analysis and, when present, the job embedding
func (r *PostgresJobRepository) SaveAnalysis(ctx context.Context, id kernel.JobID, analysis *job.Analysis, embedding []float32) error {
	payload, err := analysisParam(analysis)
	if err != nil {
		return err
	}

	query := `
		UPDATE job_posts SET
			analysis = $2,
			embedding = $3,
			analyzed_at = NOW(),
			updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id.String(), payload, vectorParam(embedding))
	if err != nil {
		return errx.Wrap(err, "failed to save job analysis", errx.TypeInternal)
	}
	return expectOneRow(result, id)
}

// ResetAnalysis clears the analysis, its timestamp and the job embedding
func (r *PostgresJobRepository) ResetAnalysis(ctx context.Context, id kernel.JobID) error {
	query := `
		UPDATE job_posts SET
			analysis = NULL,
			analyzed_at = NULL,
			embedding = NULL,
			updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id.String())
	if err != nil {
		return errx.Wrap(err, "failed to reset job analysis", errx.TypeInternal)
	}
	return expectOneRow(result, id)
}

func (r *PostgresJobRepository) IncrementTotalResumes(ctx context.Context, id kernel.JobID, n int) error {
	return r.increment(ctx, "total_resumes", id, n)
}

func (r *PostgresJobRepository) IncrementProcessedResumes(ctx context.Context, id kernel.JobID, n int) error {
	return r.increment(ctx, "processed_resumes", id, n)
}

// increment is only called with the two counter column names above
func (r *PostgresJobRepository) increment(ctx context.Context, column string, id kernel.JobID, n int) error {
	query := fmt.Sprintf(`UPDATE job_posts SET %[1]s = %[1]s + $2, updated_at = NOW() WHERE id = $1`, column)
	result, err := r.db.ExecContext(ctx, query, id.String(), n)
	if err != nil {
		return errx.Wrap(err, "failed to update "+column, errx.TypeInternal)
	}
	return expectOneRow(result, id)
}

// CountByStatus counts jobs in a status
func (r *PostgresJobRepository) CountByStatus(ctx context.Context, status job.JobStatus) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM job_posts WHERE status = $1`, string(status)); err != nil {
		return 0, errx.Wrap(err, "failed to count jobs", errx.TypeInternal)
	}
	return count, nil
}

func expectOneRow(result sql.Result, id kernel.JobID) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return errx.Wrap(err, "failed to get rows affected", errx.TypeInternal)
	}
	if rows == 0 {
		return job.ErrJobNotFound().WithDetail("job_id", id)
	}
	return nil
}
