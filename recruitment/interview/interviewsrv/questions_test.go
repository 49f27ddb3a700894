package interviewsrv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/internal/ai/llm"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/kernel"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/interview"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/interviewsetup"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/job"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/resume"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedCompleter struct {
	replies []string
	err     error
	calls   []llm.Request
}

func (s *scriptedCompleter) Complete(_ context.Context, req llm.Request) (string, error) {
	s.calls = append(s.calls, req)
	if s.err != nil {
		return "", s.err
	}
	if len(s.replies) == 0 {
		return "", llm.ErrEmptyResponse
	}
	reply := s.replies[0]
	if len(s.replies) > 1 {
		s.replies = s.replies[1:]
	}
	return reply, nil
}

func testSetup(screening, domain, behavioral, questions int) *interviewsetup.Setup {
	return &interviewsetup.Setup{
		ID:                           "setup-1",
		JobID:                        "job-1",
		RoleType:                     kernel.CategoryTech,
		Level:                        kernel.LevelMid,
		ScreeningPercentage:          screening,
		DomainPercentage:             domain,
		BehavioralAttitudePercentage: behavioral,
		NumberOfQuestions:            questions,
		EstimatedDuration:            10,
		InterviewDuration:            10,
		IsActive:                     true,
	}
}

func testRequest(setup *interviewsetup.Setup) interview.QuestionRequest {
	return interview.QuestionRequest{
		Setup: setup,
		Candidate: &resume.Result{
			ID:             "resume-1",
			CandidateName:  "Jane Doe",
			Classification: resume.Classification{Category: kernel.CategoryTech, Level: kernel.LevelMid},
			MatchingSkills: []string{"Go", "Postgres"},
		},
		Job: &job.Job{ID: "job-1", Role: "Backend Engineer", Description: "Build APIs"},
	}
}

func questionsJSON(cats ...interviewsetup.QuestionCategory) string {
	type q struct {
		ID       int    `json:"id"`
		Category string `json:"category"`
		Question string `json:"question"`
		Focus    string `json:"focus_area"`
	}
	var qs []q
	for i, c := range cats {
		qs = append(qs, q{ID: i + 1, Category: string(c), Question: fmt.Sprintf("Question %d?", i+1), Focus: "area"})
	}
	b, _ := json.Marshal(map[string]any{
		"questions":        qs,
		"interview_focus":  "Go services",
		"success_criteria": "Concrete examples",
	})
	return string(b)
}

func TestDefaultQuestionBank(t *testing.T) {
	bank := DefaultQuestionBank()
	assert.Len(t, bank[interviewsetup.QuestionScreening], 7)
	assert.Len(t, bank[interviewsetup.QuestionDomain], 8)
	assert.Len(t, bank[interviewsetup.QuestionBehavioral], 8)
	assert.Len(t, bank[interviewsetup.QuestionCommunication], 6)

	_, err := LoadQuestionBank([]byte("screening: [a]\n"))
	assert.Error(t, err)
}

func TestFallbackFollowsDistribution(t *testing.T) {
	bank := DefaultQuestionBank()
	dist := interviewsetup.Distribution{
		interviewsetup.QuestionScreening: 2,
		interviewsetup.QuestionDomain:    10,
	}

	set := bank.Fallback(kernel.CategorySemiTech, kernel.LevelSenior, dist)

	require.Len(t, set.Questions, 12)
	assert.Equal(t, 12, set.TotalQuestions)
	assert.Equal(t, 24, set.EstimatedDuration)
	assert.False(t, set.Generated)
	assert.Equal(t, 2, set.CountByCategory()[interviewsetup.QuestionScreening])
	assert.Equal(t, 10, set.CountByCategory()[interviewsetup.QuestionDomain])

	for i, q := range set.Questions {
		assert.Equal(t, i+1, q.ID)
		assert.Equal(t, 2, q.ExpectedDuration)
		assert.Equal(t, string(q.Category)+" assessment", q.Purpose)
		assert.NotContains(t, q.Question, "{role_type}")
	}
	assert.Equal(t, "Describe a challenging semi-tech project you've worked on recently.", set.Questions[2].Question)
	assert.Equal(t, "Additional domain question 9 - Please elaborate on your experience related to this domain area.", set.Questions[10].Question)
	assert.Equal(t, "Focused assessment on background verification, semi-tech expertise for senior semi-tech role", set.InterviewFocus)
}

func TestGenerateAcceptsExactDistribution(t *testing.T) {
	setup := testSetup(40, 40, 20, 5)
	completer := &scriptedCompleter{replies: []string{questionsJSON(
		interviewsetup.QuestionScreening, interviewsetup.QuestionScreening,
		interviewsetup.QuestionDomain, interviewsetup.QuestionDomain,
		interviewsetup.QuestionBehavioral,
	)}}

	set := NewLLMQuestionGenerator(completer, nil).Generate(context.Background(), testRequest(setup))

	assert.True(t, set.Generated)
	require.Len(t, set.Questions, 5)
	assert.Equal(t, "area", set.Questions[0].Purpose)
	assert.Equal(t, "mid", set.Questions[0].ExpectedDepth)
	assert.Equal(t, "Go services", set.InterviewFocus)
	assert.Equal(t, 10, set.EstimatedDuration)

	require.Len(t, completer.calls, 1)
	req := completer.calls[0]
	assert.Equal(t, 0.3, req.Temperature)
	assert.Contains(t, req.System, "exactly 5 questions")
	assert.Contains(t, req.User, "Generate exactly 2 screening questions")
	assert.Contains(t, req.User, "- Behavioral/Attitude: 20% (1 questions)")
	assert.NotContains(t, req.User, "communication questions (clarity")
}

func TestGenerateFallsBack(t *testing.T) {
	setup := testSetup(40, 40, 20, 5)
	tests := []struct {
		name      string
		completer *scriptedCompleter
	}{
		{"transport error", &scriptedCompleter{err: errors.New("timeout")}},
		{"garbage", &scriptedCompleter{replies: []string{"no json here"}}},
		{"wrong count", &scriptedCompleter{replies: []string{questionsJSON(
			interviewsetup.QuestionScreening, interviewsetup.QuestionDomain,
		)}}},
		{"wrong split", &scriptedCompleter{replies: []string{questionsJSON(
			interviewsetup.QuestionScreening, interviewsetup.QuestionDomain,
			interviewsetup.QuestionDomain, interviewsetup.QuestionDomain,
			interviewsetup.QuestionBehavioral,
		)}}},
		{"unknown category", &scriptedCompleter{replies: []string{questionsJSON(
			interviewsetup.QuestionScreening, interviewsetup.QuestionScreening,
			interviewsetup.QuestionDomain, interviewsetup.QuestionDomain,
			"culture",
		)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := NewLLMQuestionGenerator(tt.completer, nil).Generate(context.Background(), testRequest(setup))
			assert.False(t, set.Generated)
			require.Len(t, set.Questions, 5)
			assert.Equal(t, interviewsetup.Distribution{
				interviewsetup.QuestionScreening:     2,
				interviewsetup.QuestionDomain:        2,
				interviewsetup.QuestionBehavioral:    1,
				interviewsetup.QuestionCommunication: 0,
			}, set.Distribution)
		})
	}
}

func TestQuestionPromptTemplateSection(t *testing.T) {
	setup := testSetup(100, 0, 0, 3)
	setup.QuestionTemplate = "Focus on SQL tuning"
	completer := &scriptedCompleter{err: errors.New("down")}

	NewLLMQuestionGenerator(completer, nil).Generate(context.Background(), testRequest(setup))

	user := completer.calls[0].User
	assert.Contains(t, user, "CUSTOM QUESTION TEMPLATE/INSTRUCTIONS for tech mid:\nFocus on SQL tuning")
	assert.Contains(t, user, "IMPORTANT: Follow the custom question template")
	assert.Contains(t, user, `"matching_skills"`)
}

func TestBuildInterviewPrompt(t *testing.T) {
	set := DefaultQuestionBank().Fallback(kernel.CategoryTech, kernel.LevelEntry, interviewsetup.Distribution{
		interviewsetup.QuestionScreening:  1,
		interviewsetup.QuestionBehavioral: 1,
	})

	prompt := BuildInterviewPrompt(set, "Jane Doe", "Backend Engineer")

	assert.True(t, strings.HasPrefix(prompt, "You are conducting a professional video interview for a Backend Engineer position with Jane Doe."))
	assert.Contains(t, prompt, "YOUR 2 QUESTIONS:\n1. [SCREENING] Can you walk me through your professional background and experience?\n2. [BEHAVIORAL] ")
	assert.Contains(t, prompt, "aim for approximately 4 minutes total")
	assert.Contains(t, prompt, "INTERVIEW FOCUS: Focused assessment on background verification, behavioral assessment for entry tech role")
	assert.Contains(t, prompt, "tailored specifically for Jane Doe")
}
