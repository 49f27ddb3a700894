package interviewsetup

import (
	"fmt"

	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/kernel"
)

// ============================================================================
// Request DTOs
// ============================================================================

// SetupInput is a full or partial setup; nil fields are left untouched
type SetupInput struct {
	RoleType                     *string `json:"role_type,omitempty"`
	Level                        *string `json:"level,omitempty"`
	ExperienceRange              *string `json:"experience_range,omitempty"`
	ScreeningPercentage          *int    `json:"screening_percentage,omitempty"`
	DomainPercentage             *int    `json:"domain_percentage,omitempty"`
	BehavioralAttitudePercentage *int    `json:"behavioral_attitude_percentage,omitempty"`
	NumberOfQuestions            *int    `json:"number_of_questions,omitempty"`
	EstimatedDuration            *int    `json:"estimated_duration,omitempty"`
	InterviewDuration            *int    `json:"interview_duration,omitempty"`
	QuestionTemplate             *string `json:"question_template,omitempty"`
}

// TouchesPercentages reports whether the input changes a weight
func (in SetupInput) TouchesPercentages() bool {
	return in.ScreeningPercentage != nil || in.DomainPercentage != nil || in.BehavioralAttitudePercentage != nil
}

// Label identifies a configuration in error details
func (in SetupInput) Label() string {
	role, level := "unknown", "unknown"
	if in.RoleType != nil {
		role = *in.RoleType
	}
	if in.Level != nil {
		level = *in.Level
	}
	return fmt.Sprintf("%s-%s", role, level)
}

// RequireFields checks the fields a bulk configuration must carry
func (in SetupInput) RequireFields(index int) error {
	required := []struct {
		name    string
		present bool
	}{
		{"role_type", in.RoleType != nil},
		{"level", in.Level != nil},
		{"experience_range", in.ExperienceRange != nil},
		{"screening_percentage", in.ScreeningPercentage != nil},
		{"domain_percentage", in.DomainPercentage != nil},
		{"behavioral_attitude_percentage", in.BehavioralAttitudePercentage != nil},
	}
	for _, f := range required {
		if !f.present {
			return ErrMissingField().
				WithDetail("configuration", index+1).
				WithDetail("field", f.name)
		}
	}
	return nil
}

// CreateSetupRequest is either a single setup or, when Configurations is
// present, the full replacement set for the job
type CreateSetupRequest struct {
	SetupInput
	Configurations []SetupInput `json:"configurations,omitempty"`
}

type BulkSetupRequest struct {
	Configurations []SetupInput `json:"configurations"`
	ReplaceAll     bool         `json:"replace_all"`
}

// ============================================================================
// Response DTOs
// ============================================================================

type SetupListResponse struct {
	JobID   kernel.JobID `json:"job_id"`
	Setups  []Setup      `json:"setups"`
	Message string       `json:"message,omitempty"`
}

type BulkSetupResponse struct {
	JobID   kernel.JobID `json:"job_id"`
	Setups  []Setup      `json:"setups"`
	Created int          `json:"created"`
	Updated int          `json:"updated"`
	Total   int          `json:"total"`
	Message string       `json:"message"`
}

// Matrix maps role type then level to the active setup, nil when unset
type Matrix map[kernel.CandidateCategory]map[kernel.ExperienceLevel]*Setup

type MatrixResponse struct {
	JobID               kernel.JobID `json:"job_id"`
	Matrix              Matrix       `json:"matrix"`
	Configurations      []Setup      `json:"configurations"`
	TotalConfigurations int          `json:"total_configurations"`
}

// BuildMatrix lays active setups over every role type and level
func BuildMatrix(setups []Setup) Matrix {
	m := Matrix{}
	for _, c := range kernel.Categories {
		m[c] = map[kernel.ExperienceLevel]*Setup{}
		for _, l := range kernel.Levels {
			m[c][l] = nil
		}
	}
	for i := range setups {
		s := &setups[i]
		if row, ok := m[s.RoleType]; ok {
			if _, ok := row[s.Level]; ok {
				row[s.Level] = s
			}
		}
	}
	return m
}
