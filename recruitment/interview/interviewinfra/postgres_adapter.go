package interviewinfra

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/errx"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/kernel"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/interview"
	"github.com/jmoiron/sqlx"
)

// ============================================================================
// Database Models
// ============================================================================

const sessionColumns = `id, job_id, resume_id, setup_id, candidate_name, status, session_url,
	questions, interview_prompt, duration_minutes, conversation_id, recording_url,
	expires_at, started_at, completed_at, created_at, updated_at`

type sessionModel struct {
	ID              string     `db:"id"`
	JobID           string     `db:"job_id"`
	ResumeID        string     `db:"resume_id"`
	SetupID         *string    `db:"setup_id"`
	CandidateName   string     `db:"candidate_name"`
	Status          string     `db:"status"`
	SessionURL      string     `db:"session_url"`
	Questions       []byte     `db:"questions"`
	InterviewPrompt string     `db:"interview_prompt"`
	DurationMinutes int        `db:"duration_minutes"`
	ConversationID  *string    `db:"conversation_id"`
	RecordingURL    *string    `db:"recording_url"`
	ExpiresAt       time.Time  `db:"expires_at"`
	StartedAt       *time.Time `db:"started_at"`
	CompletedAt     *time.Time `db:"completed_at"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
}

func (m *sessionModel) toEntity() (*interview.Session, error) {
	s := &interview.Session{
		ID:              kernel.SessionID(m.ID),
		JobID:           kernel.JobID(m.JobID),
		ResumeID:        kernel.ResumeID(m.ResumeID),
		CandidateName:   kernel.CandidateName(m.CandidateName),
		Status:          interview.SessionStatus(m.Status),
		SessionURL:      m.SessionURL,
		InterviewPrompt: m.InterviewPrompt,
		DurationMinutes: m.DurationMinutes,
		ConversationID:  m.ConversationID,
		RecordingURL:    m.RecordingURL,
		ExpiresAt:       m.ExpiresAt,
		StartedAt:       m.StartedAt,
		CompletedAt:     m.CompletedAt,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
	if m.SetupID != nil {
		id := kernel.SetupID(*m.SetupID)
		s.SetupID = &id
	}
	if err := unmarshalJSONB(m.Questions, &s.Questions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal questions: %w", err)
	}
	return s, nil
}

const resultColumns = `id, session_id, job_id, resume_id, candidate_name, transcript, transcript_entries,
	transcript_source, conversation_start, conversation_end, analysis, security_violations,
	recording_url, raw_analysis, created_at, updated_at`

type resultModel struct {
	ID                 string     `db:"id"`
	SessionID          string     `db:"session_id"`
	JobID              string     `db:"job_id"`
	ResumeID           string     `db:"resume_id"`
	CandidateName      string     `db:"candidate_name"`
	Transcript         string     `db:"transcript"`
	TranscriptEntries  []byte     `db:"transcript_entries"`
	TranscriptSource   string     `db:"transcript_source"`
	ConversationStart  *time.Time `db:"conversation_start"`
	ConversationEnd    *time.Time `db:"conversation_end"`
	Analysis           []byte     `db:"analysis"`
	SecurityViolations []byte     `db:"security_violations"`
	RecordingURL       *string    `db:"recording_url"`
	RawAnalysis        []byte     `db:"raw_analysis"`
	CreatedAt          time.Time  `db:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at"`
}

func (m *resultModel) toEntity() (*interview.Result, error) {
	r := &interview.Result{
		ID:                kernel.InterviewResultID(m.ID),
		SessionID:         kernel.SessionID(m.SessionID),
		JobID:             kernel.JobID(m.JobID),
		ResumeID:          kernel.ResumeID(m.ResumeID),
		CandidateName:     kernel.CandidateName(m.CandidateName),
		Transcript:        m.Transcript,
		TranscriptSource:  m.TranscriptSource,
		ConversationStart: m.ConversationStart,
		ConversationEnd:   m.ConversationEnd,
		RecordingURL:      m.RecordingURL,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
	if err := unmarshalJSONB(m.TranscriptEntries, &r.TranscriptEntries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transcript_entries: %w", err)
	}
	if err := unmarshalJSONB(m.Analysis, &r.Analysis); err != nil {
		return nil, fmt.Errorf("failed to unmarshal analysis: %w", err)
	}
	if len(m.SecurityViolations) > 0 && string(m.SecurityViolations) != "null" {
		r.SecurityViolations = &interview.SecurityViolations{}
		if err := json.Unmarshal(m.SecurityViolations, r.SecurityViolations); err != nil {
			return nil, fmt.Errorf("failed to unmarshal security_violations: %w", err)
		}
	}
	if err := unmarshalJSONB(m.RawAnalysis, &r.RawAnalysis); err != nil {
		return nil, fmt.Errorf("failed to unmarshal raw_analysis: %w", err)
	}
	return r, nil
}

func unmarshalJSONB(data []byte, v any) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	return json.Unmarshal(data, v)
}

// jsonbParam sends JSON as text; nil values stay SQL NULL
func jsonbParam(v any) (*string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(data) == "null" {
		return nil, nil
	}
	s := string(data)
	return &s, nil
}

// ============================================================================
// Session Repository
// ============================================================================

// PostgresSessionRepository implements interview.SessionRepository using PostgreSQL
type PostgresSessionRepository struct {
	db *sqlx.DB
}

var _ interview.SessionRepository = (*PostgresSessionRepository)(nil)

func NewPostgresSessionRepository(db *sqlx.DB) *PostgresSessionRepository {
	return &PostgresSessionRepository{db: db}
}

func (r *PostgresSessionRepository) Create(ctx context.Context, s *interview.Session) error {
	questions, err := jsonbParam(s.Questions)
	if err != nil {
		return fmt.Errorf("failed to marshal questions: %w", err)
	}

	query := `
		INSERT INTO interview_sessions (` + sessionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	_, err = r.db.ExecContext(ctx, query,
		s.ID.String(), s.JobID.String(), s.ResumeID.String(), s.SetupID, string(s.CandidateName),
		string(s.Status), s.SessionURL, questions, s.InterviewPrompt, s.DurationMinutes,
		s.ConversationID, s.RecordingURL, s.ExpiresAt, s.StartedAt, s.CompletedAt,
		s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return errx.Wrap(err, "failed to create interview session", errx.TypeInternal)
	}
	return nil
}

// Update persists the mutable lifecycle columns
func (r *PostgresSessionRepository) Update(ctx context.Context, s *interview.Session) error {
	query := `
		UPDATE interview_sessions SET
			status = $2,
			conversation_id = $3,
			recording_url = COALESCE($4, recording_url),
			started_at = $5,
			completed_at = $6,
			updated_at = $7
		WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query,
		s.ID.String(), string(s.Status), s.ConversationID, s.RecordingURL,
		s.StartedAt, s.CompletedAt, s.UpdatedAt,
	)
	if err != nil {
		return errx.Wrap(err, "failed to update interview session", errx.TypeInternal)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return interview.ErrSessionNotFound().WithDetail("session_id", s.ID)
	}
	return nil
}

func (r *PostgresSessionRepository) SetRecordingURL(ctx context.Context, id kernel.SessionID, url string) error {
	query := `UPDATE interview_sessions SET recording_url = $2, updated_at = NOW() WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id.String(), url)
	if err != nil {
		return errx.Wrap(err, "failed to set session recording", errx.TypeInternal)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return interview.ErrSessionNotFound().WithDetail("session_id", id)
	}
	return nil
}

func (r *PostgresSessionRepository) GetByID(ctx context.Context, id kernel.SessionID) (*interview.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM interview_sessions WHERE id = $1`

	var model sessionModel
	if err := r.db.GetContext(ctx, &model, query, id.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, interview.ErrSessionNotFound().WithDetail("session_id", id)
		}
		return nil, errx.Wrap(err, "failed to get interview session", errx.TypeInternal)
	}
	return model.toEntity()
}

// GetByConversationID resolves the newest session bound to a voice agent conversation
func (r *PostgresSessionRepository) GetByConversationID(ctx context.Context, conversationID string) (*interview.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM interview_sessions
		WHERE conversation_id = $1
		ORDER BY created_at DESC
		LIMIT 1`

	var model sessionModel
	if err := r.db.GetContext(ctx, &model, query, conversationID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, interview.ErrSessionNotFound().WithDetail("conversation_id", conversationID)
		}
		return nil, errx.Wrap(err, "failed to get interview session", errx.TypeInternal)
	}
	return model.toEntity()
}

// ============================================================================
// Result Repository
// ============================================================================

// PostgresResultRepository implements interview.ResultRepository using PostgreSQL
type PostgresResultRepository struct {
	db *sqlx.DB
}

var _ interview.ResultRepository = (*PostgresResultRepository)(nil)

func NewPostgresResultRepository(db *sqlx.DB) *PostgresResultRepository {
	return &PostgresResultRepository{db: db}
}

// Save upserts the result of a session. A nil recording or security
// block keeps whatever the stored row already has.
func (r *PostgresResultRepository) Save(ctx context.Context, res *interview.Result) error {
	entries, err := jsonbParam(res.TranscriptEntries)
	if err != nil {
		return fmt.Errorf("failed to marshal transcript_entries: %w", err)
	}
	analysis, err := jsonbParam(res.Analysis)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}
	security, err := jsonbParam(res.SecurityViolations)
	if err != nil {
		return fmt.Errorf("failed to marshal security_violations: %w", err)
	}
	raw, err := jsonbParam(res.RawAnalysis)
	if err != nil {
		return fmt.Errorf("failed to marshal raw_analysis: %w", err)
	}

	query := `
		INSERT INTO interview_results (
			id, session_id, job_id, resume_id, candidate_name, transcript, transcript_entries,
			transcript_source, conversation_start, conversation_end, domain_score,
			behavioral_score, communication_score, overall_score, system_recommendation,
			analysis, security_violations, recording_url, raw_analysis, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		ON CONFLICT (session_id) DO UPDATE SET
			transcript = EXCLUDED.transcript,
			transcript_entries = EXCLUDED.transcript_entries,
			transcript_source = EXCLUDED.transcript_source,
			conversation_start = EXCLUDED.conversation_start,
			conversation_end = EXCLUDED.conversation_end,
			domain_score = EXCLUDED.domain_score,
			behavioral_score = EXCLUDED.behavioral_score,
			communication_score = EXCLUDED.communication_score,
			overall_score = EXCLUDED.overall_score,
			system_recommendation = EXCLUDED.system_recommendation,
			analysis = EXCLUDED.analysis,
			security_violations = COALESCE(EXCLUDED.security_violations, interview_results.security_violations),
			recording_url = COALESCE(EXCLUDED.recording_url, interview_results.recording_url),
			raw_analysis = EXCLUDED.raw_analysis,
			updated_at = EXCLUDED.updated_at`

	a := res.Analysis
	_, err = r.db.ExecContext(ctx, query,
		res.ID.String(), res.SessionID.String(), res.JobID.String(), res.ResumeID.String(),
		string(res.CandidateName), res.Transcript, entries, res.TranscriptSource,
		res.ConversationStart, res.ConversationEnd, a.DomainScore, a.BehavioralScore,
		a.CommunicationScore, a.OverallScore, string(a.SystemRecommendation), analysis,
		security, res.RecordingURL, raw, res.CreatedAt, res.UpdatedAt,
	)
	if err != nil {
		return errx.Wrap(err, "failed to save interview result", errx.TypeInternal)
	}
	return nil
}

func (r *PostgresResultRepository) GetBySession(ctx context.Context, id kernel.SessionID) (*interview.Result, error) {
	query := `SELECT ` + resultColumns + ` FROM interview_results WHERE session_id = $1`

	var model resultModel
	if err := r.db.GetContext(ctx, &model, query, id.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, interview.ErrResultNotFound().WithDetail("session_id", id)
		}
		return nil, errx.Wrap(err, "failed to get interview result", errx.TypeInternal)
	}
	return model.toEntity()
}

// ListByJob returns a job's results, newest first
func (r *PostgresResultRepository) ListByJob(ctx context.Context, jobID kernel.JobID) ([]interview.Result, error) {
	query := `SELECT ` + resultColumns + ` FROM interview_results WHERE job_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, jobID.String())
}

// ListWithTranscript returns every result that has something to re-analyse
func (r *PostgresResultRepository) ListWithTranscript(ctx context.Context) ([]interview.Result, error) {
	query := `SELECT ` + resultColumns + ` FROM interview_results WHERE transcript <> '' ORDER BY created_at`
	return r.list(ctx, query)
}

func (r *PostgresResultRepository) list(ctx context.Context, query string, args ...any) ([]interview.Result, error) {
	var models []resultModel
	if err := r.db.SelectContext(ctx, &models, query, args...); err != nil {
		return nil, errx.Wrap(err, "failed to list interview results", errx.TypeInternal)
	}

	results := make([]interview.Result, 0, len(models))
	for i := range models {
		res, err := models[i].toEntity()
		if err != nil {
			return nil, errx.Wrap(err, "failed to decode interview result", errx.TypeInternal)
		}
		results = append(results, *res)
	}
	return results, nil
}

// SetRecordingURL reports whether a result row existed to update
func (r *PostgresResultRepository) SetRecordingURL(ctx context.Context, id kernel.SessionID, url string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE interview_results SET recording_url = $2, updated_at = $3 WHERE session_id = $1`,
		id.String(), url, time.Now(),
	)
	if err != nil {
		return false, errx.Wrap(err, "failed to set recording url", errx.TypeInternal)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errx.Wrap(err, "failed to get rows affected", errx.TypeInternal)
	}
	return n > 0, nil
}
