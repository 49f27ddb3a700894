package interviewsetup

import (
	"math"
	"sort"
	"time"

	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/kernel"
)

const (
	DefaultNumberOfQuestions = 7
	DefaultEstimatedDuration = 10
	DefaultInterviewDuration = 10
	MaxNumberOfQuestions     = 30
)

// Setup is the interview configuration for one role type and level of a job
type Setup struct {
	ID                           kernel.SetupID           `db:"id" json:"id"`
	JobID                        kernel.JobID             `db:"job_id" json:"job_id"`
	RoleType                     kernel.CandidateCategory `db:"role_type" json:"role_type"`
	Level                        kernel.ExperienceLevel   `db:"level" json:"level"`
	ExperienceRange              string                   `db:"experience_range" json:"experience_range"`
	ScreeningPercentage          int                      `db:"screening_percentage" json:"screening_percentage"`
	DomainPercentage             int                      `db:"domain_percentage" json:"domain_percentage"`
	BehavioralAttitudePercentage int                      `db:"behavioral_attitude_percentage" json:"behavioral_attitude_percentage"`
	CommunicationPercentage      int                      `db:"communication_percentage" json:"communication_percentage"`
	NumberOfQuestions            int                      `db:"number_of_questions" json:"number_of_questions"`
	EstimatedDuration            int                      `db:"estimated_duration" json:"estimated_duration"`
	InterviewDuration            int                      `db:"interview_duration" json:"interview_duration"`
	QuestionTemplate             string                   `db:"question_template" json:"question_template,omitempty"`
	IsActive                     bool                     `db:"is_active" json:"is_active"`
	CreatedAt                    time.Time                `db:"created_at" json:"created_at"`
	UpdatedAt                    time.Time                `db:"updated_at" json:"updated_at"`
}

// ============================================================================
// Domain Methods
// ============================================================================

// Validate checks the weighting invariants
func (s *Setup) Validate() error {
	if !s.RoleType.IsValid() {
		return ErrInvalidSetup().WithDetail("role_type", s.RoleType)
	}
	if !s.Level.IsValid() {
		return ErrInvalidSetup().WithDetail("level", s.Level)
	}
	for field, pct := range map[string]int{
		"screening_percentage":           s.ScreeningPercentage,
		"domain_percentage":              s.DomainPercentage,
		"behavioral_attitude_percentage": s.BehavioralAttitudePercentage,
	} {
		if pct < 0 || pct > 100 {
			return ErrInvalidPercentages().WithDetail(field, pct)
		}
	}
	if total := s.PercentageTotal(); total != 100 {
		return ErrInvalidPercentages().
			WithDetail("role_type", s.RoleType).
			WithDetail("level", s.Level).
			WithDetail("total", total)
	}
	if s.NumberOfQuestions < 1 || s.NumberOfQuestions > MaxNumberOfQuestions {
		return ErrInvalidSetup().WithDetail("number_of_questions", s.NumberOfQuestions)
	}
	if s.EstimatedDuration < 1 || s.InterviewDuration < 1 {
		return ErrInvalidSetup().WithDetail("duration", "must be positive")
	}
	return nil
}

// PercentageTotal sums the weighted categories; communication is scored
// from the answers and carries no questions of its own
func (s *Setup) PercentageTotal() int {
	return s.ScreeningPercentage + s.DomainPercentage + s.BehavioralAttitudePercentage
}

func (s *Setup) Criteria() Criteria {
	return Criteria{
		Screening:     s.ScreeningPercentage,
		Domain:        s.DomainPercentage,
		Behavioral:    s.BehavioralAttitudePercentage,
		Communication: s.CommunicationPercentage,
	}
}

func (s *Setup) Deactivate() {
	s.IsActive = false
	s.UpdatedAt = time.Now()
}

// Apply merges the non-nil fields of in
func (s *Setup) Apply(in SetupInput) {
	if in.RoleType != nil {
		s.RoleType, _ = kernel.ParseCategory(*in.RoleType)
	}
	if in.Level != nil {
		s.Level, _ = kernel.ParseLevel(*in.Level)
	}
	if in.ExperienceRange != nil {
		s.ExperienceRange = *in.ExperienceRange
	}
	if in.ScreeningPercentage != nil {
		s.ScreeningPercentage = *in.ScreeningPercentage
	}
	if in.DomainPercentage != nil {
		s.DomainPercentage = *in.DomainPercentage
	}
	if in.BehavioralAttitudePercentage != nil {
		s.BehavioralAttitudePercentage = *in.BehavioralAttitudePercentage
	}
	if in.NumberOfQuestions != nil {
		s.NumberOfQuestions = *in.NumberOfQuestions
	}
	if in.EstimatedDuration != nil {
		s.EstimatedDuration = *in.EstimatedDuration
	}
	if in.InterviewDuration != nil {
		s.InterviewDuration = *in.InterviewDuration
	}
	if in.QuestionTemplate != nil {
		s.QuestionTemplate = *in.QuestionTemplate
	}
	s.CommunicationPercentage = 0
	s.UpdatedAt = time.Now()
}

// NewSetup builds an active setup from an input, filling defaults
func NewSetup(jobID kernel.JobID, in SetupInput) *Setup {
	now := time.Now()
	s := &Setup{
		ID:                kernel.NewSetupID(kernel.NewID()),
		JobID:             jobID,
		NumberOfQuestions: DefaultNumberOfQuestions,
		EstimatedDuration: DefaultEstimatedDuration,
		InterviewDuration: DefaultInterviewDuration,
		IsActive:          true,
		CreatedAt:         now,
	}
	s.Apply(in)
	return s
}

// ============================================================================
// Question Distribution
// ============================================================================

// QuestionCategory names a block of interview questions
type QuestionCategory string

const (
	QuestionScreening     QuestionCategory = "screening"
	QuestionDomain        QuestionCategory = "domain"
	QuestionBehavioral    QuestionCategory = "behavioral"
	QuestionCommunication QuestionCategory = "communication"
)

// QuestionCategories is the canonical question order
var QuestionCategories = []QuestionCategory{QuestionScreening, QuestionDomain, QuestionBehavioral, QuestionCommunication}

// Criteria are the category weights in percent
type Criteria struct {
	Screening     int `json:"screening_percentage"`
	Domain        int `json:"domain_percentage"`
	Behavioral    int `json:"behavioral_attitude_percentage"`
	Communication int `json:"communication_percentage"`
}

func (c Criteria) Percentage(cat QuestionCategory) int {
	switch cat {
	case QuestionScreening:
		return c.Screening
	case QuestionDomain:
		return c.Domain
	case QuestionBehavioral:
		return c.Behavioral
	case QuestionCommunication:
		return c.Communication
	}
	return 0
}

// Distribution is the number of questions per category
type Distribution map[QuestionCategory]int

func (d Distribution) Total() int {
	n := 0
	for _, v := range d {
		n += v
	}
	return n
}

// DistributeQuestions splits total questions across the categories in
// proportion to their weights. The counts always sum to total.
func DistributeQuestions(c Criteria, total int) Distribution {
	d := Distribution{}
	for _, cat := range QuestionCategories {
		d[cat] = 0
		if pct := c.Percentage(cat); pct > 0 {
			d[cat] = int(math.RoundToEven(float64(pct) / 100 * float64(total)))
		}
	}

	allocated := d.Total()
	if allocated == 0 {
		target := QuestionScreening
		for _, cat := range []QuestionCategory{QuestionScreening, QuestionDomain, QuestionBehavioral} {
			if c.Percentage(cat) > 0 {
				target = cat
				break
			}
		}
		d[target] = total
		return d
	}

	switch {
	case allocated > total:
		var order []QuestionCategory
		for _, cat := range QuestionCategories {
			if d[cat] > 0 {
				order = append(order, cat)
			}
		}
		counts := map[QuestionCategory]int{}
		for _, cat := range order {
			counts[cat] = d[cat]
		}
		sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
		for i := 0; d.Total() > total; i++ {
			cat := order[i%len(order)]
			if d[cat] > 0 {
				d[cat]--
			}
		}
	case allocated < total:
		var order []QuestionCategory
		for _, cat := range QuestionCategories {
			if c.Percentage(cat) > 0 {
				order = append(order, cat)
			}
		}
		sort.SliceStable(order, func(i, j int) bool { return c.Percentage(order[i]) > c.Percentage(order[j]) })
		for i := 0; i < total-allocated; i++ {
			d[order[i%len(order)]]++
		}
	}
	return d
}
