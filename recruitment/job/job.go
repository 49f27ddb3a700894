package job

import (
	"strings"
	"time"

	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/kernel"
)

// JobStatus represents the status of a job posting
type JobStatus string

const (
	JobStatusActive JobStatus = "active" // Accepting resumes
	JobStatusClosed JobStatus = "closed" // No longer accepting resumes
)

const (
	MaxRoleLength        = 255
	MaxExperienceLength  = 100
	MinDescriptionLength = 10
	MaxDescriptionLength = 10000
	MinDescriptionWords  = 10
)

// RequiredSkills groups the skills a job asks for
type RequiredSkills struct {
	Technical []string `json:"technical"`
	Soft      []string `json:"soft"`
	Domain    []string `json:"domain"`
}

type ExperienceRequirements struct {
	Years kernel.LooseString `json:"years"`
	Type  kernel.LooseString `json:"type"`
}

// Analysis is the structured reading of a job description
type Analysis struct {
	RequiredSkills         RequiredSkills         `json:"required_skills"`
	NiceToHaveSkills       []string               `json:"nice_to_have_skills"`
	KeyResponsibilities    []string               `json:"key_responsibilities"`
	RequiredQualifications []string               `json:"required_qualifications"`
	ExperienceRequirements ExperienceRequirements `json:"experience_requirements"`
	TechnologyStack        []string               `json:"technology_stack"`
	IndustryDomain         string                 `json:"industry_domain"`
	JobCategory            string                 `json:"job_category"`
	Fallback               bool                   `json:"fallback,omitempty"`
}

// FallbackAnalysis is stored when the model reply cannot be used
func FallbackAnalysis(requiredExperience string) *Analysis {
	return &Analysis{
		RequiredSkills:         RequiredSkills{Technical: []string{}, Soft: []string{}, Domain: []string{}},
		NiceToHaveSkills:       []string{},
		KeyResponsibilities:    []string{},
		RequiredQualifications: []string{},
		ExperienceRequirements: ExperienceRequirements{Years: kernel.LooseString(requiredExperience), Type: "general"},
		TechnologyStack:        []string{},
		IndustryDomain:         "general",
		JobCategory:            "tech",
		Fallback:               true,
	}
}

// AllRequiredSkills flattens technical, soft and domain skills
func (a *Analysis) AllRequiredSkills() []string {
	if a == nil {
		return nil
	}
	out := make([]string, 0, len(a.RequiredSkills.Technical)+len(a.RequiredSkills.Soft)+len(a.RequiredSkills.Domain))
	out = append(out, a.RequiredSkills.Technical...)
	out = append(out, a.RequiredSkills.Soft...)
	out = append(out, a.RequiredSkills.Domain...)
	return out
}

type Job struct {
	ID                 kernel.JobID          `db:"id" json:"id"`
	Role               kernel.JobRole        `db:"job_role" json:"job_role"`
	RequiredExperience string                `db:"required_experience" json:"required_experience"`
	Description        kernel.JobDescription `db:"description" json:"description"`
	Status             JobStatus             `db:"status" json:"status"`
	Analysis           *Analysis             `db:"analysis" json:"analysis"`
	AnalyzedAt         *time.Time            `db:"analyzed_at" json:"analyzed_at,omitempty"`
	TotalResumes       int                   `db:"total_resumes" json:"total_resumes"`
	ProcessedResumes   int                   `db:"processed_resumes" json:"processed_resumes"`
	CreatedAt          time.Time             `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time             `db:"updated_at" json:"updated_at"`
}

// ============================================================================
// Domain Methods
// ============================================================================

func (j *Job) IsActive() bool { return j.Status == JobStatusActive }

func (j *Job) IsClosed() bool { return j.Status == JobStatusClosed }

// IsAnalyzed reports whether resumes can be screened against this job
func (j *Job) IsAnalyzed() bool { return j.Analysis != nil }

// CanAcceptResumes checks the job is open and analysed
func (j *Job) CanAcceptResumes() error {
	if j.IsClosed() {
		return ErrJobClosed().WithDetail("job_id", j.ID)
	}
	if !j.IsAnalyzed() {
		return ErrAnalysisPending().WithDetail("job_id", j.ID)
	}
	return nil
}

func (j *Job) Close() error {
	if j.IsClosed() {
		return ErrJobAlreadyClosed().WithDetail("job_id", j.ID)
	}
	j.Status = JobStatusClosed
	j.UpdatedAt = time.Now()
	return nil
}

func (j *Job) Reopen() error {
	if !j.IsClosed() {
		return ErrJobNotClosed().WithDetail("job_id", j.ID)
	}
	j.Status = JobStatusActive
	j.UpdatedAt = time.Now()
	return nil
}

// SetAnalysis records the analysis outcome
func (j *Job) SetAnalysis(a *Analysis) {
	now := time.Now()
	j.Analysis = a
	j.AnalyzedAt = &now
	j.UpdatedAt = now
}

// ResetAnalysis clears the analysis after the description changed
func (j *Job) ResetAnalysis() {
	j.Analysis = nil
	j.AnalyzedAt = nil
	j.UpdatedAt = time.Now()
}

// Progress summarises resume processing for the job
func (j *Job) Progress() JobStatusResponse {
	pending := j.TotalResumes - j.ProcessedResumes
	if pending < 0 {
		pending = 0
	}
	completion := 0.0
	if j.TotalResumes > 0 {
		completion = float64(j.ProcessedResumes) / float64(j.TotalResumes) * 100
	}
	return JobStatusResponse{
		JobID:                j.ID,
		Status:               j.Status,
		Analyzed:             j.IsAnalyzed(),
		TotalResumes:         j.TotalResumes,
		ProcessedResumes:     j.ProcessedResumes,
		PendingResumes:       pending,
		CompletionPercentage: completion,
	}
}

// EmbeddingText is the text embedded for semantic ranking
func (j *Job) EmbeddingText() string {
	var b strings.Builder
	b.WriteString(string(j.Role))
	b.WriteString("\n")
	b.WriteString(j.RequiredExperience)
	b.WriteString("\n")
	b.WriteString(string(j.Description))
	if j.Analysis != nil {
		b.WriteString("\n")
		b.WriteString(strings.Join(j.Analysis.AllRequiredSkills(), ", "))
	}
	return b.String()
}
