package jobsrv

import (
	"context"
	"fmt"

	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/internal/ai/jsonrepair"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/internal/ai/llm"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/logx"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/recruitment/job"
)

const analysisSystemPrompt = "You are an expert HR analyst specializing in job requirement extraction. You must respond with valid JSON only."

const analysisPromptTemplate = `Analyze the following job description and extract key information:

Job Role: %s
Required Experience: %s
Description: %s

Please provide a comprehensive analysis in JSON format with the following structure:
{
    "required_skills": {
        "technical": ["list of technical skills"],
        "soft": ["list of soft skills"],
        "domain": ["domain-specific skills"]
    },
    "nice_to_have_skills": ["optional skills"],
    "key_responsibilities": ["main responsibilities"],
    "required_qualifications": ["education, certifications, etc."],
    "experience_requirements": {
        "years": "extracted years of experience",
        "type": "type of experience needed"
    },
    "technology_stack": ["specific technologies mentioned"],
    "industry_domain": "identified industry/domain",
    "job_category": "tech/non-tech/semi-tech classification"
}

Be thorough and extract both explicit and implicit requirements.
Respond ONLY with valid JSON, no additional text or formatting.`

// LLMAnalyzer extracts a structured Analysis from a posting
type LLMAnalyzer struct {
	llm llm.Completer
}

func NewLLMAnalyzer(completer llm.Completer) *LLMAnalyzer {
	return &LLMAnalyzer{llm: completer}
}

// AnalyzeJob never fails on bad model output; it returns the fallback
// analysis instead. Only transport errors are returned.
func (a *LLMAnalyzer) AnalyzeJob(ctx context.Context, j *job.Job) (*job.Analysis, error) {
	raw, err := a.llm.Complete(ctx, llm.Request{
		System:      analysisSystemPrompt,
		User:        fmt.Sprintf(analysisPromptTemplate, j.Role, j.RequiredExperience, j.Description),
		Temperature: 0.1,
		JSON:        true,
	})
	if err != nil {
		return nil, err
	}

	return parseAnalysis(raw, j.RequiredExperience), nil
}

func parseAnalysis(raw, requiredExperience string) *job.Analysis {
	var analysis job.Analysis
	repaired, err := jsonrepair.Unmarshal(raw, &analysis)
	if err != nil {
		preview := raw
		if len(preview) > 500 {
			preview = preview[:500]
		}
		logx.Errorf("Job analysis JSON decode error: %v (response: %s...)", err, preview)
		return job.FallbackAnalysis(requiredExperience)
	}
	if repaired {
		logx.Warn("Job analysis JSON needed repair")
	}

	normalizeAnalysis(&analysis)
	return &analysis
}

// normalizeAnalysis replaces nil lists so the stored JSON always has arrays
func normalizeAnalysis(a *job.Analysis) {
	for _, list := range []*[]string{
		&a.RequiredSkills.Technical,
		&a.RequiredSkills.Soft,
		&a.RequiredSkills.Domain,
		&a.NiceToHaveSkills,
		&a.KeyResponsibilities,
		&a.RequiredQualifications,
		&a.TechnologyStack,
	} {
		if *list == nil {
			*list = []string{}
		}
	}
}
