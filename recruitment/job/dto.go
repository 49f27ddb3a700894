package job

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/kernel"
)

// CreateJobRequest - DTO for creating a new job
type CreateJobRequest struct {
	JobRole            string `json:"job_role"`
	RequiredExperience string `json:"required_experience"`
	Description        string `json:"description"`
}

// Validate checks lengths and the minimum word count of the description
func (r CreateJobRequest) Validate() error {
	if err := validateRole(r.JobRole); err != nil {
		return err
	}
	if err := validateExperience(r.RequiredExperience); err != nil {
		return err
	}
	return validateDescription(r.Description)
}

// UpdateJobRequest - DTO for updating an existing job
type UpdateJobRequest struct {
	JobRole            *string `json:"job_role,omitempty"`
	RequiredExperience *string `json:"required_experience,omitempty"`
	Description        *string `json:"description,omitempty"`
}

func (r UpdateJobRequest) Validate() error {
	if r.JobRole != nil {
		if err := validateRole(*r.JobRole); err != nil {
			return err
		}
	}
	if r.RequiredExperience != nil {
		if err := validateExperience(*r.RequiredExperience); err != nil {
			return err
		}
	}
	if r.Description != nil {
		return validateDescription(*r.Description)
	}
	return nil
}

func validateRole(role string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(role))
	if n < 1 || n > MaxRoleLength {
		return ErrInvalidJob().
			WithDetail("field", "job_role").
			WithDetail("reason", "must be between 1 and 255 characters")
	}
	return nil
}

func validateExperience(exp string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(exp))
	if n < 1 || n > MaxExperienceLength {
		return ErrInvalidJob().
			WithDetail("field", "required_experience").
			WithDetail("reason", "must be between 1 and 100 characters")
	}
	return nil
}

func validateDescription(desc string) error {
	n := utf8.RuneCountInString(desc)
	if n < MinDescriptionLength || n > MaxDescriptionLength {
		return ErrInvalidJob().
			WithDetail("field", "description").
			WithDetail("reason", "must be between 10 and 10000 characters")
	}
	if len(strings.Fields(desc)) < MinDescriptionWords {
		return ErrInvalidJob().
			WithDetail("field", "description").
			WithDetail("reason", "Job description must contain at least 10 words")
	}
	return nil
}

type CreateJobResponse struct {
	JobID   kernel.JobID `json:"job_id"`
	Status  string       `json:"status"`
	Message string       `json:"message"`
}

// JobResponse - DTO for job responses
type JobResponse struct {
	ID                 kernel.JobID          `json:"id"`
	JobRole            kernel.JobRole        `json:"job_role"`
	RequiredExperience string                `json:"required_experience"`
	Description        kernel.JobDescription `json:"description"`
	Status             JobStatus             `json:"status"`
	Analysis           *Analysis             `json:"analysis"`
	AnalyzedAt         *time.Time            `json:"analyzed_at,omitempty"`
	TotalResumes       int                   `json:"total_resumes"`
	ProcessedResumes   int                   `json:"processed_resumes"`
	CreatedAt          time.Time             `json:"created_at"`
	UpdatedAt          time.Time             `json:"updated_at"`
}

func ToJobResponse(j *Job) JobResponse {
	return JobResponse{
		ID:                 j.ID,
		JobRole:            j.Role,
		RequiredExperience: j.RequiredExperience,
		Description:        j.Description,
		Status:             j.Status,
		Analysis:           j.Analysis,
		AnalyzedAt:         j.AnalyzedAt,
		TotalResumes:       j.TotalResumes,
		ProcessedResumes:   j.ProcessedResumes,
		CreatedAt:          j.CreatedAt,
		UpdatedAt:          j.UpdatedAt,
	}
}

// JobStatusResponse reports resume processing progress
type JobStatusResponse struct {
	JobID                kernel.JobID `json:"job_id"`
	Status               JobStatus    `json:"status"`
	Analyzed             bool         `json:"analyzed"`
	TotalResumes         int          `json:"total_resumes"`
	ProcessedResumes     int          `json:"processed_resumes"`
	PendingResumes       int          `json:"pending_resumes"`
	CompletionPercentage float64      `json:"completion_percentage"`
}

// ListJobsRequest - DTO for listing all jobs
type ListJobsRequest struct {
	Status     *JobStatus               `json:"status,omitempty"`
	Pagination kernel.PaginationOptions `json:"pagination"`
}

// Response type alias for paginated jobs
type PaginatedJobsResponse = kernel.Paginated[JobResponse]
