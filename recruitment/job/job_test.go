package job

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/errx"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/kernel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validDescription = "We are looking for a backend engineer to build and operate Go services at scale."

func strPtr(s string) *string { return &s }

func TestCreateJobRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateJobRequest
		field   string
		wantErr bool
	}{
		{"valid", CreateJobRequest{"Backend Engineer", "3-5 years", validDescription}, "", false},
		{"empty role", CreateJobRequest{"  ", "3 years", validDescription}, "job_role", true},
		{"long role", CreateJobRequest{strings.Repeat("a", 256), "3 years", validDescription}, "job_role", true},
		{"empty experience", CreateJobRequest{"Engineer", "", validDescription}, "required_experience", true},
		{"long experience", CreateJobRequest{"Engineer", strings.Repeat("x", 101), validDescription}, "required_experience", true},
		{"short description", CreateJobRequest{"Engineer", "2 years", "too short"}, "description", true},
		{"few words", CreateJobRequest{"Engineer", "2 years", "one two three four five six seven"}, "description", true},
		{"huge description", CreateJobRequest{"Engineer", "2 years", strings.Repeat("word ", 2001)}, "description", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errx.IsCode(err, CodeInvalidJob))
			var e *errx.Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tt.field, e.Details["field"])
		})
	}
}

func TestUpdateJobRequestValidate(t *testing.T) {
	assert.NoError(t, UpdateJobRequest{}.Validate())
	assert.NoError(t, UpdateJobRequest{JobRole: strPtr("Designer")}.Validate())
	assert.Error(t, UpdateJobRequest{Description: strPtr("short")}.Validate())
	assert.Error(t, UpdateJobRequest{RequiredExperience: strPtr("")}.Validate())
}

func TestJobLifecycle(t *testing.T) {
	j := &Job{ID: "j1", Status: JobStatusActive}

	err := j.CanAcceptResumes()
	assert.True(t, errx.IsCode(err, CodeAnalysisPending))

	j.SetAnalysis(FallbackAnalysis("2 years"))
	assert.NoError(t, j.CanAcceptResumes())
	assert.NotNil(t, j.AnalyzedAt)

	require.NoError(t, j.Close())
	assert.True(t, errx.IsCode(j.CanAcceptResumes(), CodeJobClosed))
	assert.True(t, errx.IsCode(j.Close(), CodeJobAlreadyClosed))

	require.NoError(t, j.Reopen())
	assert.True(t, j.IsActive())
	assert.True(t, errx.IsCode(j.Reopen(), CodeJobNotClosed))

	j.ResetAnalysis()
	assert.False(t, j.IsAnalyzed())
	assert.Nil(t, j.AnalyzedAt)
}

func TestProgress(t *testing.T) {
	tests := []struct {
		name       string
		total      int
		processed  int
		pending    int
		completion float64
	}{
		{"no resumes", 0, 0, 0, 0},
		{"half", 10, 5, 5, 50},
		{"done", 4, 4, 0, 100},
		{"overcounted", 2, 3, 0, 150},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := &Job{ID: "j", TotalResumes: tt.total, ProcessedResumes: tt.processed}
			p := j.Progress()
			assert.Equal(t, tt.pending, p.PendingResumes)
			assert.InDelta(t, tt.completion, p.CompletionPercentage, 0.001)
		})
	}
}

func TestFallbackAnalysis(t *testing.T) {
	a := FallbackAnalysis("5+ years")
	assert.Equal(t, "tech", a.JobCategory)
	assert.Equal(t, "general", a.IndustryDomain)
	assert.Equal(t, kernel.LooseString("5+ years"), a.ExperienceRequirements.Years)
	assert.Equal(t, kernel.LooseString("general"), a.ExperienceRequirements.Type)
	assert.NotNil(t, a.TechnologyStack)
	assert.Empty(t, a.AllRequiredSkills())
	assert.True(t, a.Fallback)
}

func TestExperienceYearsAcceptsNumbers(t *testing.T) {
	var req ExperienceRequirements
	require.NoError(t, json.Unmarshal([]byte(`{"years": 5, "type": "backend"}`), &req))
	assert.Equal(t, kernel.LooseString("5"), req.Years)
	assert.Equal(t, kernel.LooseString("backend"), req.Type)

	require.NoError(t, json.Unmarshal([]byte(`{"years": null, "type": true}`), &req))
	assert.Equal(t, kernel.LooseString(""), req.Years)
	assert.Equal(t, kernel.LooseString("true"), req.Type)
}

func TestEmbeddingText(t *testing.T) {
	j := &Job{Role: "Data Engineer", RequiredExperience: "3 years", Description: "Pipelines"}
	j.Analysis = &Analysis{RequiredSkills: RequiredSkills{Technical: []string{"SQL", "Spark"}, Soft: []string{"Teamwork"}}}

	text := j.EmbeddingText()
	assert.Contains(t, text, "Data Engineer")
	assert.Contains(t, text, "SQL, Spark, Teamwork")
}
