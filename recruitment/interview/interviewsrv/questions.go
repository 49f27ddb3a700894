package interviewsrv

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/internal/ai/jsonrepair"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/internal/ai/llm"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/kernel"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/logx"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/interview"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/interviewsetup"
)

// minutes budgeted per question
const minutesPerQuestion = 2

//go:embed questionbank.yaml
var questionBankYAML []byte

// QuestionBank holds the fallback questions per category
type QuestionBank map[interviewsetup.QuestionCategory][]string

// LoadQuestionBank parses a YAML bank keyed by category
func LoadQuestionBank(data []byte) (QuestionBank, error) {
	var bank QuestionBank
	if err := yaml.Unmarshal(data, &bank); err != nil {
		return nil, fmt.Errorf("parse question bank: %w", err)
	}
	for _, cat := range interviewsetup.QuestionCategories {
		if len(bank[cat]) == 0 {
			return nil, fmt.Errorf("question bank has no %s questions", cat)
		}
	}
	return bank, nil
}

// DefaultQuestionBank is the embedded bank
func DefaultQuestionBank() QuestionBank {
	bank, err := LoadQuestionBank(questionBankYAML)
	if err != nil {
		panic(err)
	}
	return bank
}

// Fallback builds questions from the bank, following the distribution exactly
func (b QuestionBank) Fallback(roleType kernel.CandidateCategory, level kernel.ExperienceLevel, dist interviewsetup.Distribution) interview.QuestionSet {
	var questions []interview.Question
	id := 1
	for _, cat := range interviewsetup.QuestionCategories {
		pool := b[cat]
		for i := 0; i < dist[cat]; i++ {
			text := fmt.Sprintf("Additional %s question %d - Please elaborate on your experience related to this %s area.", cat, i+1, cat)
			if i < len(pool) {
				text = strings.ReplaceAll(pool[i], "{role_type}", string(roleType))
			}
			questions = append(questions, interview.Question{
				ID:               id,
				Category:         cat,
				Question:         text,
				Purpose:          fmt.Sprintf("%s assessment", cat),
				ExpectedDuration: minutesPerQuestion,
				ExpectedDepth:    string(level),
			})
			id++
		}
	}

	return interview.QuestionSet{
		Questions:         questions,
		Distribution:      dist,
		InterviewFocus:    InterviewFocus(roleType, level, dist),
		SuccessCriteria:   fmt.Sprintf("Clear communication, relevant experience, and %s-appropriate depth in allocated assessment areas", level),
		TotalQuestions:    len(questions),
		EstimatedDuration: len(questions) * minutesPerQuestion,
	}
}

// InterviewFocus names the assessment areas that received questions
func InterviewFocus(roleType kernel.CandidateCategory, level kernel.ExperienceLevel, dist interviewsetup.Distribution) string {
	var areas []string
	if dist[interviewsetup.QuestionScreening] > 0 {
		areas = append(areas, "background verification")
	}
	if dist[interviewsetup.QuestionDomain] > 0 {
		areas = append(areas, fmt.Sprintf("%s expertise", roleType))
	}
	if dist[interviewsetup.QuestionBehavioral] > 0 {
		areas = append(areas, "behavioral assessment")
	}
	if dist[interviewsetup.QuestionCommunication] > 0 {
		areas = append(areas, "communication skills")
	}
	return fmt.Sprintf("Focused assessment on %s for %s %s role", strings.Join(areas, ", "), level, roleType)
}

// ============================================================================
// Generated questions
// ============================================================================

const questionTemperature = 0.3

const questionSystemPrompt = "You are an expert interview designer with deep understanding of technical and behavioral assessment. You must respond with valid JSON only containing exactly %d questions distributed according to the specified criteria."

const questionPromptTemplate = `Generate exactly %d personalized interview questions for a %s %s candidate based on the following information:

JOB ANALYSIS:
%s

CANDIDATE RESUME ANALYSIS:
%s

EVALUATION CRITERIA (STRICT - DO NOT GENERATE QUESTIONS FOR 0%% CATEGORIES):
%s%s

REQUIREMENTS:
%s

IMPORTANT: If any category has 0 questions allocated, DO NOT generate any questions for that category. Only generate questions for categories with allocation > 0.

Respond with valid JSON in this exact format:
{
    "questions": [
        {
            "id": 1,
            "category": "screening|domain|behavioral|communication",
            "question": "Your personalized question here?",
            "purpose": "specific skill or area being evaluated",
            "expected_depth": "entry|mid|senior level expected response depth"
        }
    ],
    "interview_focus": "Overall focus areas for this interview",
    "success_criteria": "What makes a good response for this candidate profile"
}`

var categoryBriefs = map[interviewsetup.QuestionCategory]string{
	interviewsetup.QuestionScreening:     "screening questions (basic qualifications, experience verification)",
	interviewsetup.QuestionDomain:        "domain/technical questions (role-specific skills, technical depth)",
	interviewsetup.QuestionBehavioral:    "behavioral questions (attitude, teamwork, problem-solving approach)",
	interviewsetup.QuestionCommunication: "communication questions (clarity, presentation, explanation skills)",
}

var categoryLabels = map[interviewsetup.QuestionCategory]string{
	interviewsetup.QuestionScreening:     "Screening",
	interviewsetup.QuestionDomain:        "Domain/Technical",
	interviewsetup.QuestionBehavioral:    "Behavioral/Attitude",
	interviewsetup.QuestionCommunication: "Communication",
}

type questionReply struct {
	Questions []struct {
		ID            int                `json:"id"`
		Category      string             `json:"category"`
		Question      string             `json:"question"`
		Purpose       string             `json:"purpose"`
		FocusArea     string             `json:"focus_area"`
		ExpectedDepth kernel.LooseString `json:"expected_depth"`
	} `json:"questions"`
	InterviewFocus  string `json:"interview_focus"`
	SuccessCriteria string `json:"success_criteria"`
}

// LLMQuestionGenerator implements interview.QuestionGenerator
type LLMQuestionGenerator struct {
	llm  llm.Completer
	bank QuestionBank
}

var _ interview.QuestionGenerator = (*LLMQuestionGenerator)(nil)

func NewLLMQuestionGenerator(completer llm.Completer, bank QuestionBank) *LLMQuestionGenerator {
	if bank == nil {
		bank = DefaultQuestionBank()
	}
	return &LLMQuestionGenerator{llm: completer, bank: bank}
}

// Generate asks the model for personalised questions and accepts them only
// when the count and per-category split match the setup exactly
func (g *LLMQuestionGenerator) Generate(ctx context.Context, req interview.QuestionRequest) interview.QuestionSet {
	setup := req.Setup
	roleType, level := setup.RoleType, setup.Level
	total := setup.NumberOfQuestions
	dist := interviewsetup.DistributeQuestions(setup.Criteria(), total)

	reply, err := g.llm.Complete(ctx, llm.Request{
		System:      fmt.Sprintf(questionSystemPrompt, total),
		User:        buildQuestionPrompt(req, dist),
		Temperature: questionTemperature,
		JSON:        true,
	})
	if err != nil {
		logx.Warnf("Question generation failed, using question bank: %v", err)
		return g.bank.Fallback(roleType, level, dist)
	}

	var parsed questionReply
	if _, err := jsonrepair.Unmarshal(reply, &parsed); err != nil {
		logx.Warnf("Question generation reply unparseable, using question bank: %v", err)
		return g.bank.Fallback(roleType, level, dist)
	}

	set := interview.QuestionSet{
		Distribution:    dist,
		InterviewFocus:  parsed.InterviewFocus,
		SuccessCriteria: parsed.SuccessCriteria,
		Generated:       true,
	}
	for i, q := range parsed.Questions {
		purpose := q.Purpose
		if purpose == "" {
			purpose = q.FocusArea
		}
		depth := string(q.ExpectedDepth)
		if depth == "" {
			depth = string(level)
		}
		set.Questions = append(set.Questions, interview.Question{
			ID:               i + 1,
			Category:         interviewsetup.QuestionCategory(strings.ToLower(strings.TrimSpace(q.Category))),
			Question:         strings.TrimSpace(q.Question),
			Purpose:          purpose,
			ExpectedDuration: minutesPerQuestion,
			ExpectedDepth:    depth,
		})
	}

	if !matchesDistribution(set, dist, total) {
		logx.Warnf("Generated %d questions with distribution %v, required %v; using question bank",
			len(set.Questions), set.CountByCategory(), dist)
		return g.bank.Fallback(roleType, level, dist)
	}

	if set.InterviewFocus == "" {
		set.InterviewFocus = InterviewFocus(roleType, level, dist)
	}
	if set.SuccessCriteria == "" {
		set.SuccessCriteria = "Clear communication and relevant experience"
	}
	set.TotalQuestions = len(set.Questions)
	set.EstimatedDuration = len(set.Questions) * minutesPerQuestion
	logx.Infof("Generated %d personalised interview questions", set.TotalQuestions)
	return set
}

func matchesDistribution(set interview.QuestionSet, dist interviewsetup.Distribution, total int) bool {
	if len(set.Questions) != total {
		return false
	}
	got := set.CountByCategory()
	for _, q := range set.Questions {
		if q.Question == "" {
			return false
		}
	}
	for cat, n := range got {
		if dist[cat] != n {
			return false
		}
	}
	for cat, n := range dist {
		if got[cat] != n {
			return false
		}
	}
	return true
}

func buildQuestionPrompt(req interview.QuestionRequest, dist interviewsetup.Distribution) string {
	setup := req.Setup
	criteria := setup.Criteria()

	requirements := []string{fmt.Sprintf("Generate exactly %d personalized interview questions total", setup.NumberOfQuestions)}
	n := 1
	for _, cat := range interviewsetup.QuestionCategories {
		if dist[cat] > 0 {
			requirements = append(requirements, fmt.Sprintf("%d. Generate exactly %d %s", n, dist[cat], categoryBriefs[cat]))
			n++
		}
	}
	requirements = append(requirements,
		fmt.Sprintf("%d. Tailor questions to the candidate's background and the job requirements", n),
		fmt.Sprintf("%d. Make questions specific and relevant to both the role and candidate's experience", n+1),
		fmt.Sprintf("%d. Ensure questions are appropriate for %s level candidates", n+2, setup.Level),
		fmt.Sprintf("%d. STRICTLY follow the question distribution - do not generate questions for categories with 0 allocation", n+3),
	)

	template := strings.TrimSpace(setup.QuestionTemplate)
	templateSection := ""
	if template != "" {
		requirements = append(requirements, fmt.Sprintf("%d. IMPORTANT: Follow the custom question template/instructions provided below for this specific role and level combination", n+4))
		templateSection = fmt.Sprintf("\n\nCUSTOM QUESTION TEMPLATE/INSTRUCTIONS for %s %s:\n%s\n\nIMPORTANT: Integrate the above custom instructions into your question generation. This template should guide the style, focus areas, and specific topics to cover for this role and level combination.",
			setup.RoleType, setup.Level, template)
	}

	var criteriaLines []string
	for _, cat := range interviewsetup.QuestionCategories {
		criteriaLines = append(criteriaLines, fmt.Sprintf("- %s: %d%% (%d questions)", categoryLabels[cat], criteria.Percentage(cat), dist[cat]))
	}

	return fmt.Sprintf(questionPromptTemplate,
		setup.NumberOfQuestions, setup.RoleType, setup.Level,
		prettyJSON(jobProfile(req)),
		prettyJSON(candidateProfile(req)),
		strings.Join(criteriaLines, "\n"), templateSection,
		strings.Join(requirements, "\n"),
	)
}

func jobProfile(req interview.QuestionRequest) any {
	if req.Job == nil {
		return map[string]any{}
	}
	if req.Job.Analysis != nil {
		return req.Job.Analysis
	}
	return map[string]any{"job_role": req.Job.Role, "job_description": req.Job.Description}
}

func candidateProfile(req interview.QuestionRequest) any {
	c := req.Candidate
	if c == nil {
		return map[string]any{}
	}
	if len(c.DetailedAnalysis) > 0 {
		return c.DetailedAnalysis
	}
	return map[string]any{
		"candidate_name":    c.CandidateName,
		"classification":    c.Classification,
		"fit_score":         c.FitScore,
		"matching_skills":   c.MatchingSkills,
		"missing_skills":    c.MissingSkills,
		"detailed_feedback": c.DetailedFeedback,
	}
}

func prettyJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}

// ============================================================================
// Voice agent prompt
// ============================================================================

const interviewPromptTemplate = `You are conducting a professional video interview for a %[1]s position with %[2]s.

INTERVIEW STRUCTURE:
You have exactly %[3]d personalized questions to ask in sequence. Ask ONE question at a time and wait for the candidate's complete response before proceeding to the next question.

YOUR %[3]d QUESTIONS:
%[4]s

INTERVIEW GUIDELINES:
1. Start with a warm, professional greeting and brief introduction
2. Ask questions in the exact order listed above
3. Listen carefully to responses and provide brief encouraging feedback
4. Ask natural follow-up questions if responses are too brief or unclear
5. Keep the interview conversational but focused
6. Maintain a professional yet friendly tone throughout
7. After all %[3]d questions, provide a brief closing and thank the candidate
8. Keep track of time - aim for approximately %[5]d minutes total

INTERVIEW FOCUS: %[6]s

SUCCESS CRITERIA: %[7]s

Remember: This is a personalized interview tailored specifically for %[2]s. Make them feel comfortable while gathering comprehensive information about their qualifications and fit for the role.`

// BuildInterviewPrompt renders the system prompt handed to the voice agent
func BuildInterviewPrompt(set interview.QuestionSet, candidate kernel.CandidateName, role kernel.JobRole) string {
	lines := make([]string, 0, len(set.Questions))
	for _, q := range set.Questions {
		lines = append(lines, fmt.Sprintf("%d. [%s] %s", q.ID, strings.ToUpper(string(q.Category)), q.Question))
	}
	focus := set.InterviewFocus
	if focus == "" {
		focus = "Comprehensive assessment"
	}
	criteria := set.SuccessCriteria
	if criteria == "" {
		criteria = "Clear communication and relevant experience"
	}
	return fmt.Sprintf(interviewPromptTemplate,
		role, candidate, len(set.Questions), strings.Join(lines, "\n"),
		set.EstimatedDuration, focus, criteria)
}
