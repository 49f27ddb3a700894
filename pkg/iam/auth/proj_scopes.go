package auth

import "strings"

// ============================================================================
// DOMAIN-SPECIFIC SCOPES
// ============================================================================

const (
	ScopeAll = "*"

	// Job scopes
	ScopeJobsAll    = "jobs:*"
	ScopeJobsRead   = "jobs:read"
	ScopeJobsWrite  = "jobs:write"
	ScopeJobsDelete = "jobs:delete"

	// Screening scopes
	ScopeResumesAll    = "resumes:*"
	ScopeResumesRead   = "resumes:read"
	ScopeResumesWrite  = "resumes:write"
	ScopeResumesExport = "resumes:export"

	// Interview scopes
	ScopeInterviewsAll      = "interviews:*"
	ScopeInterviewsRead     = "interviews:read"
	ScopeInterviewsWrite    = "interviews:write"
	ScopeInterviewsSchedule = "interviews:schedule" // generate interview links
	ScopeInterviewsAnalyze  = "interviews:analyze"  // re-run transcript analysis

	// Recording scopes
	ScopeRecordingsUpload = "recordings:upload"
)

// DomainScopeGroups defines role groupings used when issuing tokens
var DomainScopeGroups = map[string][]string{
	"admin": {ScopeAll},
	"recruiter": {
		ScopeJobsAll,
		ScopeResumesAll,
		ScopeInterviewsAll,
	},
	"hiring_manager": {
		ScopeJobsRead,
		ScopeResumesRead,
		ScopeResumesExport,
		ScopeInterviewsRead,
		ScopeInterviewsSchedule,
	},
	"viewer": {
		ScopeJobsRead,
		ScopeResumesRead,
		ScopeInterviewsRead,
	},
}

// ScopesForRole expands a role name, returning nil for unknown roles
func ScopesForRole(role string) []string {
	return DomainScopeGroups[role]
}

// HasScope reports whether granted covers required, honoring "*" and "domain:*"
func HasScope(granted []string, required string) bool {
	domain, _, _ := strings.Cut(required, ":")
	for _, g := range granted {
		switch {
		case g == ScopeAll, g == required:
			return true
		case strings.HasSuffix(g, ":*") && strings.TrimSuffix(g, ":*") == domain:
			return true
		}
	}
	return false
}
