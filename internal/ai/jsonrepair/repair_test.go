package jsonrepair

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"no fence", `  {"a":1} `, `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripFences(tt.in))
		})
	}
}

func TestRepairProducesValidJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"trailing comma", `{"a": [1, 2,], "b": 3,}`},
		{"truncated string", `{"fit_score": 80, "detailed_feedback": "Strong background in`},
		{"unclosed array and object", `{"skills": ["go", "sql"`},
		{"trailing prose", "Here you go: {\"a\": 1} hope this helps"},
		{"missing comma between pairs", `{"a": "x" "b": "y"}`},
		{"missing comma after object", `{"a": {"x": 1} "b": 2}`},
		{"missing comma after array", `{"a": [1] "b": 2}`},
		{"fenced and truncated", "```json\n{\"matching_skills\": [\"go\", \"k8s\"], \"fit_score\": 72,"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Repair(tt.in)
			var v map[string]any
			require.NoError(t, json.Unmarshal([]byte(out), &v), out)
		})
	}
}

func TestRepairKeepsValues(t *testing.T) {
	out := Repair(`{"skills": ["go", "sql"`)
	var v struct {
		Skills []string `json:"skills"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Equal(t, []string{"go", "sql"}, v.Skills)
}

func TestRepairKeepsFieldsAfterNestedObject(t *testing.T) {
	in := "```json\n" + `{"experience_requirements": {"years": 4}, "detailed_feedback": "Solid Go background", "matching_skills": ["go", "postg`

	var v struct {
		ExperienceRequirements struct {
			Years int `json:"years"`
		} `json:"experience_requirements"`
		DetailedFeedback string   `json:"detailed_feedback"`
		MatchingSkills   []string `json:"matching_skills"`
	}
	repaired, err := Unmarshal(in, &v)
	require.NoError(t, err)
	assert.True(t, repaired)
	assert.Equal(t, 4, v.ExperienceRequirements.Years)
	assert.Equal(t, "Solid Go background", v.DetailedFeedback)
	require.Len(t, v.MatchingSkills, 2)
	assert.Equal(t, "go", v.MatchingSkills[0])
}

func TestUnmarshal(t *testing.T) {
	var v struct {
		Score int `json:"score"`
	}

	repaired, err := Unmarshal("```json\n{\"score\": 90}\n```", &v)
	require.NoError(t, err)
	assert.False(t, repaired)
	assert.Equal(t, 90, v.Score)

	repaired, err = Unmarshal(`{"score": 70,}`, &v)
	require.NoError(t, err)
	assert.True(t, repaired)
	assert.Equal(t, 70, v.Score)

	_, err = Unmarshal("no json here", &v)
	assert.ErrorIs(t, err, ErrUnparseable)
}
