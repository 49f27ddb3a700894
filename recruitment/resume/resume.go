package resume

import (
	"strings"
	"time"

	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/kernel"
)

// Recommendation is the screening verdict for a candidate
type Recommendation string

const (
	RecommendationStrongFit    Recommendation = "STRONG_FIT"
	RecommendationGoodFit      Recommendation = "GOOD_FIT"
	RecommendationModerateFit  Recommendation = "MODERATE_FIT"
	RecommendationWeakFit      Recommendation = "WEAK_FIT"
	RecommendationManualReview Recommendation = "MANUAL_REVIEW"
)

func (r Recommendation) IsValid() bool {
	switch r {
	case RecommendationStrongFit, RecommendationGoodFit, RecommendationModerateFit,
		RecommendationWeakFit, RecommendationManualReview:
		return true
	}
	return false
}

// RecommendationForScore buckets a fit score when the model gave no usable verdict
func RecommendationForScore(score int) Recommendation {
	switch {
	case score >= 80:
		return RecommendationStrongFit
	case score >= 65:
		return RecommendationGoodFit
	case score >= 50:
		return RecommendationModerateFit
	default:
		return RecommendationWeakFit
	}
}

// ResultStatus tells an analysed result from a fallback one
type ResultStatus string

const (
	ResultStatusAnalyzed ResultStatus = "analyzed"
	ResultStatusFallback ResultStatus = "fallback"
)

// Classification places a resume in the category/level grid
type Classification struct {
	Category   kernel.CandidateCategory `json:"category"`
	Level      kernel.ExperienceLevel   `json:"level"`
	Confidence float64                  `json:"confidence"`
}

// FallbackClassification is used when the classifier reply is unusable
func FallbackClassification() Classification {
	return Classification{Category: kernel.CategoryTech, Level: kernel.LevelMid, Confidence: 0.5}
}

// Analysis is the model's fit assessment of one resume
type Analysis struct {
	FitScore         float64            `json:"fit_score"`
	MatchingSkills   kernel.StringList  `json:"matching_skills"`
	MissingSkills    kernel.StringList  `json:"missing_skills"`
	ExperienceScore  float64            `json:"experience_score"`
	EducationMatch   kernel.LooseString `json:"education_match,omitempty"`
	Recommendation   Recommendation     `json:"recommendation"`
	DetailedFeedback string             `json:"detailed_feedback"`
}

// FallbackAnalysis is stored when the analysis reply cannot be parsed
func FallbackAnalysis() *Analysis {
	return &Analysis{
		FitScore:         50,
		MatchingSkills:   kernel.StringList{"Analysis failed"},
		MissingSkills:    kernel.StringList{"Manual review required"},
		ExperienceScore:  50,
		Recommendation:   RecommendationManualReview,
		DetailedFeedback: "Automatic analysis failed due to parsing error. Manual review recommended.",
	}
}

// Result is the scored match of one resume against one job
type Result struct {
	ID               kernel.ResumeID      `json:"resume_id"`
	JobID            kernel.JobID         `json:"job_id"`
	FileName         string               `json:"filename"`
	FilePath         string               `json:"file_path,omitempty"`
	CandidateName    kernel.CandidateName `json:"candidate_name"`
	Classification   Classification       `json:"classification"`
	FitScore         int                  `json:"fit_score"`
	MatchingSkills   []string             `json:"matching_skills"`
	MissingSkills    []string             `json:"missing_skills"`
	ExperienceScore  int                  `json:"experience_score"`
	EducationMatch   string               `json:"education_match,omitempty"`
	Recommendation   Recommendation       `json:"recommendation"`
	DetailedFeedback string               `json:"detailed_feedback"`
	DetailedAnalysis map[string]any       `json:"detailed_analysis"`
	Status           ResultStatus         `json:"status"`
	CreatedAt        time.Time            `json:"created_at"`
}

// NewResult builds an analysed result, clamping scores to 0..100
func NewResult(item BatchItem, jobID kernel.JobID, name kernel.CandidateName, cls Classification, a *Analysis, detailed map[string]any) *Result {
	fit := clampScore(a.FitScore)
	rec := Recommendation(strings.ToUpper(strings.TrimSpace(string(a.Recommendation))))
	if !rec.IsValid() {
		rec = RecommendationForScore(fit)
	}

	return &Result{
		ID:               item.ResumeID,
		JobID:            jobID,
		FileName:         item.FileName,
		FilePath:         item.FilePath,
		CandidateName:    name,
		Classification:   cls,
		FitScore:         fit,
		MatchingSkills:   nonNil(a.MatchingSkills),
		MissingSkills:    nonNil(a.MissingSkills),
		ExperienceScore:  clampScore(a.ExperienceScore),
		EducationMatch:   string(a.EducationMatch),
		Recommendation:   rec,
		DetailedFeedback: a.DetailedFeedback,
		DetailedAnalysis: detailed,
		Status:           ResultStatusAnalyzed,
		CreatedAt:        time.Now(),
	}
}

// NewFallbackResult records a resume whose processing failed
func NewFallbackResult(item BatchItem, jobID kernel.JobID, name kernel.CandidateName, cause error) *Result {
	return &Result{
		ID:               item.ResumeID,
		JobID:            jobID,
		FileName:         item.FileName,
		FilePath:         item.FilePath,
		CandidateName:    name,
		Classification:   FallbackClassification(),
		FitScore:         50,
		MatchingSkills:   []string{"Analysis failed - manual review required"},
		MissingSkills:    []string{"Could not analyze due to processing error"},
		ExperienceScore:  50,
		Recommendation:   RecommendationManualReview,
		DetailedFeedback: "Processing error: " + cause.Error(),
		DetailedAnalysis: map[string]any{
			"error":  cause.Error(),
			"status": "processing_failed",
			"note":   "This resume could not be automatically analyzed. Manual review recommended.",
		},
		Status:    ResultStatusFallback,
		CreatedAt: time.Now(),
	}
}

func (r *Result) IsFallback() bool { return r.Status == ResultStatusFallback }

func clampScore(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(v + 0.5)
}

func nonNil(l kernel.StringList) []string {
	if l == nil {
		return []string{}
	}
	return []string(l)
}
