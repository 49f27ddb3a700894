package kernel

import "strings"

type JobRole string

type JobDescription string

type CandidateName string

type Embedding []float32

// CandidateCategory is the screening classification of a resume
type CandidateCategory string

const (
	CategoryTech     CandidateCategory = "tech"
	CategoryNonTech  CandidateCategory = "non-tech"
	CategorySemiTech CandidateCategory = "semi-tech"
)

var Categories = []CandidateCategory{CategoryTech, CategoryNonTech, CategorySemiTech}

func (c CandidateCategory) IsValid() bool {
	switch c {
	case CategoryTech, CategoryNonTech, CategorySemiTech:
		return true
	}
	return false
}

func (c CandidateCategory) String() string { return string(c) }

// ExperienceLevel is the seniority bucket of a resume
type ExperienceLevel string

const (
	LevelEntry  ExperienceLevel = "entry"
	LevelMid    ExperienceLevel = "mid"
	LevelSenior ExperienceLevel = "senior"
)

var Levels = []ExperienceLevel{LevelEntry, LevelMid, LevelSenior}

func (l ExperienceLevel) IsValid() bool {
	switch l {
	case LevelEntry, LevelMid, LevelSenior:
		return true
	}
	return false
}

func (l ExperienceLevel) String() string { return string(l) }

// ParseCategory normalises free text such as "Tech" or " non-tech "
func ParseCategory(s string) (CandidateCategory, bool) {
	c := CandidateCategory(strings.ToLower(strings.TrimSpace(s)))
	return c, c.IsValid()
}

func ParseLevel(s string) (ExperienceLevel, bool) {
	l := ExperienceLevel(strings.ToLower(strings.TrimSpace(s)))
	return l, l.IsValid()
}
