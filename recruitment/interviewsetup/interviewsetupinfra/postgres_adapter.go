package interviewsetupinfra

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/errx"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/kernel"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/interviewsetup"
	"github.com/jmoiron/sqlx"
)

// PostgresSetupRepository implements interviewsetup.Repository using PostgreSQL
type PostgresSetupRepository struct {
	db *sqlx.DB
}

func NewPostgresSetupRepository(db *sqlx.DB) *PostgresSetupRepository {
	return &PostgresSetupRepository{db: db}
}

const setupColumns = `id, job_id, role_type, level, experience_range, screening_percentage,
	domain_percentage, behavioral_attitude_percentage, communication_percentage,
	number_of_questions, estimated_duration, interview_duration, question_template,
	is_active, created_at, updated_at`

const insertSetup = `
	INSERT INTO interview_setups (` + setupColumns + `)
	VALUES (
		:id, :job_id, :role_type, :level, :experience_range, :screening_percentage,
		:domain_percentage, :behavioral_attitude_percentage, :communication_percentage,
		:number_of_questions, :estimated_duration, :interview_duration, :question_template,
		:is_active, :created_at, :updated_at
	)`

// Create inserts a setup
func (r *PostgresSetupRepository) Create(ctx context.Context, s *interviewsetup.Setup) error {
	if _, err := r.db.NamedExecContext(ctx, insertSetup, s); err != nil {
		return errx.Wrap(err, "failed to insert interview setup", errx.TypeInternal)
	}
	return nil
}

// Update persists every mutable column
func (r *PostgresSetupRepository) Update(ctx context.Context, s *interviewsetup.Setup) error {
	query := `
		UPDATE interview_setups SET
			role_type = :role_type,
			level = :level,
			experience_range = :experience_range,
			screening_percentage = :screening_percentage,
			domain_percentage = :domain_percentage,
			behavioral_attitude_percentage = :behavioral_attitude_percentage,
			communication_percentage = :communication_percentage,
			number_of_questions = :number_of_questions,
			estimated_duration = :estimated_duration,
			interview_duration = :interview_duration,
			question_template = :question_template,
			is_active = :is_active,
			updated_at = :updated_at
		WHERE id = :id AND job_id = :job_id`

	res, err := r.db.NamedExecContext(ctx, query, s)
	if err != nil {
		return errx.Wrap(err, "failed to update interview setup", errx.TypeInternal)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return interviewsetup.ErrSetupNotFound().WithDetail("setup_id", s.ID)
	}
	return nil
}

// GetByID retrieves a setup scoped to its job
func (r *PostgresSetupRepository) GetByID(ctx context.Context, jobID kernel.JobID, id kernel.SetupID) (*interviewsetup.Setup, error) {
	var s interviewsetup.Setup
	query := `SELECT ` + setupColumns + ` FROM interview_setups WHERE id = $1 AND job_id = $2`
	if err := r.db.GetContext(ctx, &s, query, id, jobID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, interviewsetup.ErrSetupNotFound().WithDetail("setup_id", id)
		}
		return nil, errx.Wrap(err, "failed to get interview setup", errx.TypeInternal)
	}
	return &s, nil
}

// FindActive retrieves the newest active setup for a role type and level
func (r *PostgresSetupRepository) FindActive(ctx context.Context, jobID kernel.JobID, roleType kernel.CandidateCategory, level kernel.ExperienceLevel) (*interviewsetup.Setup, error) {
	var s interviewsetup.Setup
	query := `
		SELECT ` + setupColumns + `
		FROM interview_setups
		WHERE job_id = $1 AND role_type = $2 AND level = $3 AND is_active
		ORDER BY updated_at DESC
		LIMIT 1`
	if err := r.db.GetContext(ctx, &s, query, jobID, roleType, level); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, interviewsetup.ErrSetupNotFound().
				WithDetail("role_type", roleType).
				WithDetail("level", level)
		}
		return nil, errx.Wrap(err, "failed to find interview setup", errx.TypeInternal)
	}
	return &s, nil
}

// ListActive retrieves the active setups of a job in creation order
func (r *PostgresSetupRepository) ListActive(ctx context.Context, jobID kernel.JobID) ([]interviewsetup.Setup, error) {
	setups := []interviewsetup.Setup{}
	query := `SELECT ` + setupColumns + ` FROM interview_setups WHERE job_id = $1 AND is_active ORDER BY created_at`
	if err := r.db.SelectContext(ctx, &setups, query, jobID); err != nil {
		return nil, errx.Wrap(err, "failed to list interview setups", errx.TypeInternal)
	}
	return setups, nil
}

// ReplaceAll runs deactivate-then-insert in one transaction
func (r *PostgresSetupRepository) ReplaceAll(ctx context.Context, jobID kernel.JobID, setups []*interviewsetup.Setup) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errx.Wrap(err, "failed to begin transaction", errx.TypeInternal)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`UPDATE interview_setups SET is_active = FALSE, updated_at = $2 WHERE job_id = $1 AND is_active`,
		jobID, time.Now(),
	); err != nil {
		return errx.Wrap(err, "failed to deactivate interview setups", errx.TypeInternal)
	}

	for _, s := range setups {
		if _, err = tx.NamedExecContext(ctx, insertSetup, s); err != nil {
			return errx.Wrap(err, fmt.Sprintf("failed to insert interview setup %s-%s", s.RoleType, s.Level), errx.TypeInternal)
		}
	}

	if err = tx.Commit(); err != nil {
		return errx.Wrap(err, "failed to commit interview setups", errx.TypeInternal)
	}
	return nil
}
