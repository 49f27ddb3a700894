package resumeinfra

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/errx"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/kernel"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/job"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/resume"
	"github.com/jmoiron/sqlx"
	"github.com/pgvector/pgvector-go"
)

// PostgresResultRepository implements resume.Repository using PostgreSQL
type PostgresResultRepository struct {
	db *sqlx.DB
}

func NewPostgresResultRepository(db *sqlx.DB) *PostgresResultRepository {
	return &PostgresResultRepository{db: db}
}

// ============================================================================
// Database Model
// ============================================================================

const resultColumns = `r.id, r.job_id, r.filename, r.file_path, r.candidate_name, r.category, r.level,
	r.confidence, r.fit_score, r.matching_skills, r.missing_skills, r.experience_score,
	r.education_match, r.recommendation, r.detailed_feedback, r.detailed_analysis, r.status, r.created_at`

type resultModel struct {
	ID               string    `db:"id"`
	JobID            string    `db:"job_id"`
	FileName         string    `db:"filename"`
	FilePath         string    `db:"file_path"`
	CandidateName    string    `db:"candidate_name"`
	Category         string    `db:"category"`
	Level            string    `db:"level"`
	Confidence       float64   `db:"confidence"`
	FitScore         int       `db:"fit_score"`
	MatchingSkills   []byte    `db:"matching_skills"`
	MissingSkills    []byte    `db:"missing_skills"`
	ExperienceScore  int       `db:"experience_score"`
	EducationMatch   string    `db:"education_match"`
	Recommendation   string    `db:"recommendation"`
	DetailedFeedback string    `db:"detailed_feedback"`
	DetailedAnalysis []byte    `db:"detailed_analysis"`
	Status           string    `db:"status"`
	CreatedAt        time.Time `db:"created_at"`
}

type rankedModel struct {
	resultModel
	Similarity float64 `db:"similarity"`
}

func (m *resultModel) toEntity() (*resume.Result, error) {
	r := &resume.Result{
		ID:            kernel.ResumeID(m.ID),
		JobID:         kernel.JobID(m.JobID),
		FileName:      m.FileName,
		FilePath:      m.FilePath,
		CandidateName: kernel.CandidateName(m.CandidateName),
		Classification: resume.Classification{
			Category:   kernel.CandidateCategory(m.Category),
			Level:      kernel.ExperienceLevel(m.Level),
			Confidence: m.Confidence,
		},
		FitScore:         m.FitScore,
		MatchingSkills:   []string{},
		MissingSkills:    []string{},
		ExperienceScore:  m.ExperienceScore,
		EducationMatch:   m.EducationMatch,
		Recommendation:   resume.Recommendation(m.Recommendation),
		DetailedFeedback: m.DetailedFeedback,
		Status:           resume.ResultStatus(m.Status),
		CreatedAt:        m.CreatedAt,
	}

	if err := unmarshalJSONB(m.MatchingSkills, &r.MatchingSkills); err != nil {
		return nil, fmt.Errorf("failed to unmarshal matching_skills: %w", err)
	}
	if err := unmarshalJSONB(m.MissingSkills, &r.MissingSkills); err != nil {
		return nil, fmt.Errorf("failed to unmarshal missing_skills: %w", err)
	}
	if err := unmarshalJSONB(m.DetailedAnalysis, &r.DetailedAnalysis); err != nil {
		return nil, fmt.Errorf("failed to unmarshal detailed_analysis: %w", err)
	}
	return r, nil
}

func unmarshalJSONB(data []byte, v any) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	return json.Unmarshal(data, v)
}

// jsonbParam sends JSON as text; lib/pq would send a []byte as bytea
func jsonbParam(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
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

// Create inserts a result; an existing id is left untouched
func (r *PostgresResultRepository) Create(ctx context.Context, res *resume.Result, embedding []float32) (bool, error) {
	matching, err := jsonbParam(res.MatchingSkills)
	if err != nil {
		return false, fmt.Errorf("failed to marshal matching_skills: %w", err)
	}
	missing, err := jsonbParam(res.MissingSkills)
	if err != nil {
		return false, fmt.Errorf("failed to marshal missing_skills: %w", err)
	}
	detailed, err := jsonbParam(res.DetailedAnalysis)
	if err != nil {
		return false, fmt.Errorf("failed to marshal detailed_analysis: %w", err)
	}

	query := `
		INSERT INTO resume_results (
			id, job_id, filename, file_path, candidate_name, category, level, confidence,
			fit_score, matching_skills, missing_skills, experience_score, education_match,
			recommendation, detailed_feedback, detailed_analysis, status, embedding, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		ON CONFLICT (id) DO NOTHING`

	result, err := r.db.ExecContext(ctx, query,
		res.ID.String(), res.JobID.String(), res.FileName, res.FilePath, string(res.CandidateName),
		string(res.Classification.Category), string(res.Classification.Level), res.Classification.Confidence,
		res.FitScore, matching, missing, res.ExperienceScore, res.EducationMatch,
		string(res.Recommendation), res.DetailedFeedback, detailed, string(res.Status),
		vectorParam(embedding), res.CreatedAt,
	)
	if err != nil {
		return false, errx.Wrap(err, "failed to create resume result", errx.TypeInternal)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, errx.Wrap(err, "failed to get rows affected", errx.TypeInternal)
	}
	return rows > 0, nil
}

// GetByID retrieves a result by resume ID
func (r *PostgresResultRepository) GetByID(ctx context.Context, id kernel.ResumeID) (*resume.Result, error) {
	query := `SELECT ` + resultColumns + ` FROM resume_results r WHERE r.id = $1`

	var model resultModel
	if err := r.db.GetContext(ctx, &model, query, id.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, resume.ErrResultNotFound().WithDetail("resume_id", id)
		}
		return nil, errx.Wrap(err, "failed to get resume result", errx.TypeInternal)
	}
	return model.toEntity()
}

// ListByJob returns one page of filtered results, best fit first
func (r *PostgresResultRepository) ListByJob(ctx context.Context, jobID kernel.JobID, filter resume.ResultFilter) ([]resume.Result, int, error) {
	conds := []string{"r.job_id = $1"}
	args := []any{jobID.String()}

	if filter.MinScore != nil {
		args = append(args, *filter.MinScore)
		conds = append(conds, fmt.Sprintf("r.fit_score >= $%d", len(args)))
	}
	if filter.Category != nil {
		args = append(args, string(*filter.Category))
		conds = append(conds, fmt.Sprintf("r.category = $%d", len(args)))
	}
	if filter.Level != nil {
		args = append(args, string(*filter.Level))
		conds = append(conds, fmt.Sprintf("r.level = $%d", len(args)))
	}
	where := " WHERE " + strings.Join(conds, " AND ")

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM resume_results r`+where, args...); err != nil {
		return nil, 0, errx.Wrap(err, "failed to count resume results", errx.TypeInternal)
	}

	query := fmt.Sprintf(`SELECT %s FROM resume_results r%s ORDER BY r.fit_score DESC, r.created_at DESC LIMIT $%d OFFSET $%d`,
		resultColumns, where, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	var models []resultModel
	if err := r.db.SelectContext(ctx, &models, query, args...); err != nil {
		return nil, 0, errx.Wrap(err, "failed to list resume results", errx.TypeInternal)
	}

	results := make([]resume.Result, 0, len(models))
	for i := range models {
		res, err := models[i].toEntity()
		if err != nil {
			return nil, 0, err
		}
		results = append(results, *res)
	}
	return results, total, nil
}

// Summary counts the job's results per category and level
func (r *PostgresResultRepository) Summary(ctx context.Context, jobID kernel.JobID) (resume.ClassificationSummary, error) {
	var rows []struct {
		Category string `db:"category"`
		Level    string `db:"level"`
		Count    int    `db:"count"`
	}
	query := `
		SELECT category, level, COUNT(*) AS count
		FROM resume_results
		WHERE job_id = $1
		GROUP BY category, level`
	if err := r.db.SelectContext(ctx, &rows, query, jobID.String()); err != nil {
		return nil, errx.Wrap(err, "failed to summarise resume results", errx.TypeInternal)
	}

	summary := resume.ClassificationSummary{}
	for _, row := range rows {
		summary.Add(kernel.CandidateCategory(row.Category), kernel.ExperienceLevel(row.Level), row.Count)
	}
	return summary, nil
}

// SemanticByJob ranks results by cosine distance to the job embedding
func (r *PostgresResultRepository) SemanticByJob(ctx context.Context, jobID kernel.JobID, limit int) ([]resume.RankedResult, error) {
	var hasEmbedding bool
	err := r.db.GetContext(ctx, &hasEmbedding, `SELECT embedding IS NOT NULL FROM job_posts WHERE id = $1`, jobID.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, job.ErrJobNotFound().WithDetail("job_id", jobID)
		}
		return nil, errx.Wrap(err, "failed to read job embedding", errx.TypeInternal)
	}
	if !hasEmbedding {
		return nil, resume.ErrNoEmbedding().WithDetail("job_id", jobID)
	}

	query := `
		SELECT ` + resultColumns + `, 1 - (r.embedding <=> j.embedding) AS similarity
		FROM resume_results r
		JOIN job_posts j ON j.id = r.job_id
		WHERE r.job_id = $1 AND r.embedding IS NOT NULL
		ORDER BY r.embedding <=> j.embedding
		LIMIT $2`

	var models []rankedModel
	if err := r.db.SelectContext(ctx, &models, query, jobID.String(), limit); err != nil {
		return nil, errx.Wrap(err, "failed to rank resume results", errx.TypeInternal)
	}

	ranked := make([]resume.RankedResult, 0, len(models))
	for i := range models {
		res, err := models[i].toEntity()
		if err != nil {
			return nil, err
		}
		ranked = append(ranked, resume.RankedResult{Result: *res, Similarity: models[i].Similarity})
	}
	return ranked, nil
}
