package resumesrv

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/internal/ai/jsonrepair"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/internal/ai/llm"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/internal/metrics"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/kernel"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/logx"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/resume"
)

const namePreviewLength = 1000

const nameSystemPrompt = "You are an expert at extracting candidate names from resumes. You must return ONLY the candidate's clean, properly formatted full name with no additional text, explanations, or formatting."

const namePromptTemplate = `Extract the candidate's full name from the following resume text.

RESUME TEXT:
%s

FILENAME (for reference): %s

INSTRUCTIONS:
1. Identify the candidate's full name (first name and last name)
2. Return ONLY the clean, properly formatted name
3. Remove any titles (Mr., Ms., Dr., etc.)
4. Remove any extra formatting or symbols
5. Capitalize properly (Title Case)
6. If multiple names appear, return the main candidate's name (usually at the top)
7. If no clear name is found, analyze the filename as backup

EXAMPLES:
- "NIKHIL PATEL" -> "Nikhil Patel"
- "chandan kumar gupta" -> "Chandan Kumar Gupta"
- "John Smith, MBA" -> "John Smith"
- "Dr. Sarah Johnson" -> "Sarah Johnson"

Return ONLY the extracted name, nothing else.`

const classifySystemPrompt = "You are an expert resume classifier with deep understanding of various industries and roles. IMPORTANT: You must respond with valid, well-formatted JSON only. Do not include any text before or after the JSON."

const classifyPromptTemplate = `Classify the following resume into appropriate categories:

RESUME:
%s

Provide classification in JSON format:
{
    "category": "tech/non-tech/semi-tech",
    "level": "entry/mid/senior",
    "confidence": 0.0-1.0,
    "reasoning": {
        "category_reasoning": "explanation for category classification",
        "level_reasoning": "explanation for level classification",
        "key_indicators": ["list of key indicators used for classification"]
    }
}

Category definitions:
- tech: Primarily technical roles (developers, engineers, data scientists, etc.)
- non-tech: Non-technical roles (HR, sales, marketing, operations, etc.)
- semi-tech: Mixed technical and non-technical (technical PM, business analyst, etc.)

Level definitions:
- entry: 0-2 years experience or fresh graduate
- mid: 3-7 years experience
- senior: 8+ years experience or leadership roles

Consider education, years of experience, job titles, skills, and responsibilities.`

const analyzeSystemPrompt = "You are an expert technical recruiter with deep understanding of skill assessment, resume analysis, and role-level matching. IMPORTANT: You must respond with valid, well-formatted JSON only. Do not include any text before or after the JSON. Ensure all strings are properly quoted and escaped, and all nested structures are complete."

const analyzePromptTemplate = `Analyze the following resume against the job requirements:

RESUME CLASSIFICATION:
- Category: %s
- Level: %s

JOB REQUIREMENTS:
%s

ORIGINAL JOB DESCRIPTION:
%s

RESUME:
%s

Provide analysis in this EXACT JSON format (no additional text, no markdown):
{
    "fit_score": 0-100,
    "matching_skills": ["skill1", "skill2", "skill3"],
    "missing_skills": ["missing1", "missing2"],
    "experience_score": 0-100,
    "education_match": "how well the education fits the requirements",
    "recommendation": "STRONG_FIT or GOOD_FIT or MODERATE_FIT or WEAK_FIT",
    "detailed_feedback": "Single paragraph comprehensive feedback"
}

Keep it simple and ensure valid JSON syntax.`

// LLMScreener implements resume.Screener on top of a chat completer
type LLMScreener struct {
	llm llm.Completer
}

var _ resume.Screener = (*LLMScreener)(nil)

func NewLLMScreener(completer llm.Completer) *LLMScreener {
	return &LLMScreener{llm: completer}
}

// ExtractName asks the model for the candidate name and falls back to the
// file name when the reply is unusable
func (s *LLMScreener) ExtractName(ctx context.Context, text, filename string) kernel.CandidateName {
	reply, err := s.llm.Complete(ctx, llm.Request{
		System:      nameSystemPrompt,
		User:        fmt.Sprintf(namePromptTemplate, truncate(text, namePreviewLength), filename),
		Temperature: 0.1,
	})
	if err != nil {
		logx.Errorf("Error extracting candidate name using LLM: %v", err)
		return nameFromFilename(filename)
	}

	name, ok := cleanModelName(reply)
	if !ok {
		logx.Warnf("Extracted name %q doesn't look valid, falling back to filename", reply)
		return nameFromFilename(filename)
	}
	return name
}

type classificationReply struct {
	Category   string   `json:"category"`
	Level      string   `json:"level"`
	Confidence *float64 `json:"confidence"`
}

// Classify never fails; unusable fields take their fallback values
func (s *LLMScreener) Classify(ctx context.Context, text string) resume.Classification {
	cls := s.classify(ctx, text)
	metrics.Classification.WithLabelValues(string(cls.Category), string(cls.Level)).Inc()
	return cls
}

func (s *LLMScreener) classify(ctx context.Context, text string) resume.Classification {
	fallback := resume.FallbackClassification()

	reply, err := s.llm.Complete(ctx, llm.Request{
		System:      classifySystemPrompt,
		User:        fmt.Sprintf(classifyPromptTemplate, text),
		Temperature: 0.1,
		JSON:        true,
	})
	if err != nil {
		logx.Errorf("Resume classification error: %v", err)
		return fallback
	}

	var parsed classificationReply
	if _, err := jsonrepair.Unmarshal(reply, &parsed); err != nil {
		logx.Warnf("Using fallback classification due to JSON parsing error: %v", err)
		return fallback
	}

	cls := fallback
	if category, ok := kernel.ParseCategory(parsed.Category); ok {
		cls.Category = category
	}
	if level, ok := kernel.ParseLevel(parsed.Level); ok {
		cls.Level = level
	}
	if parsed.Confidence != nil && *parsed.Confidence >= 0 && *parsed.Confidence <= 1 {
		cls.Confidence = *parsed.Confidence
	}
	return cls
}

// Analyze scores the resume against the job. Unparseable replies yield the
// fallback analysis; only transport errors are returned.
func (s *LLMScreener) Analyze(ctx context.Context, text string, jobAnalysis any, jobDescription string, cls resume.Classification) (*resume.Analysis, map[string]any, error) {
	requirements, err := json.MarshalIndent(jobAnalysis, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("marshal job analysis: %w", err)
	}

	reply, err := s.llm.Complete(ctx, llm.Request{
		System:      analyzeSystemPrompt,
		User:        fmt.Sprintf(analyzePromptTemplate, cls.Category, cls.Level, requirements, jobDescription, text),
		Temperature: 0.2,
		JSON:        true,
	})
	if err != nil {
		return nil, nil, err
	}

	var analysis resume.Analysis
	repaired, err := jsonrepair.Unmarshal(reply, &analysis)
	if err != nil {
		logx.Errorf("Analysis JSON decode error: %v", err)
		fallback := resume.FallbackAnalysis()
		return fallback, analysisMap(fallback), nil
	}
	if repaired {
		logx.Info("Successfully parsed repaired analysis JSON")
	}

	var detailed map[string]any
	if _, err := jsonrepair.Unmarshal(reply, &detailed); err != nil || detailed == nil {
		detailed = analysisMap(&analysis)
	}
	return &analysis, detailed, nil
}

func analysisMap(a *resume.Analysis) map[string]any {
	data, err := json.Marshal(a)
	if err != nil {
		return map[string]any{}
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return map[string]any{}
	}
	return m
}
