package resumesrv

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/kernel"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	maxNameLength    = 255
	unknownCandidate = kernel.CandidateName("Unknown Candidate")
)

var (
	namePrefixes = []string{"Name:", "Candidate:", "Full Name:", "The candidate is:", "The name is:"}

	filenameDelimiters = regexp.MustCompile(`[-_\s()[\]{}]+`)

	filenameStopwords = map[string]bool{
		"cv": true, "resume": true, "curriculum": true, "vitae": true,
		"updated": true, "new": true, "final": true, "latest": true,
	}

	titleCaser = cases.Title(language.Und)
)

// cleanModelName normalises the model's reply and reports whether it
// looks like a full name
func cleanModelName(reply string) (kernel.CandidateName, bool) {
	name := strings.TrimSpace(reply)
	name = strings.NewReplacer(`"`, "", "'", "", "`", "").Replace(name)
	name = strings.TrimSpace(name)

	for _, prefix := range namePrefixes {
		if len(name) >= len(prefix) && strings.EqualFold(name[:len(prefix)], prefix) {
			name = strings.TrimSpace(name[len(prefix):])
		}
	}

	name = titleName(name)
	if !isValidName(name) {
		return "", false
	}
	return kernel.CandidateName(truncate(name, maxNameLength)), true
}

// titleName title-cases every word and every segment after an apostrophe,
// so "o'brien" becomes "O'Brien"
func titleName(s string) string {
	segments := strings.Split(s, "'")
	for i, seg := range segments {
		segments[i] = titleCaser.String(seg)
	}
	return strings.Join(segments, "'")
}

func isValidName(name string) bool {
	parts := strings.Fields(name)
	if len(parts) < 2 {
		return false
	}
	for _, part := range parts {
		stripped := strings.NewReplacer("'", "", "-", "", ".", "").Replace(part)
		if stripped == "" || !isAlpha(stripped) {
			return false
		}
	}
	return true
}

// nameFromFilename guesses a name from the upload's file name
func nameFromFilename(filename string) kernel.CandidateName {
	base := filepath.Base(filename)
	if base == "" || base == "." {
		return unknownCandidate
	}
	if i := strings.Index(base, "."); i >= 0 {
		base = base[:i]
	}

	var parts []string
	for _, part := range filenameDelimiters.Split(strings.ToLower(base), -1) {
		if len([]rune(part)) > 1 && isAlpha(part) && !filenameStopwords[part] {
			parts = append(parts, titleName(part))
		}
		if len(parts) == 2 {
			break
		}
	}
	if len(parts) == 0 {
		return unknownCandidate
	}
	return kernel.CandidateName(truncate(strings.Join(parts, " "), maxNameLength))
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return s != ""
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
