package app

import (
	"strings"
	"unicode/utf8"

	"reviewflow/internal/domain"
)

// MinContentLength is the minimum review body, in characters, after trimming.
const MinContentLength = 50

// StepValidator holds the forward gates of the wizard. All checks are pure.
type StepValidator struct {
	// RequireAspectRating makes step 2 demand at least one rated aspect.
	RequireAspectRating bool
}

// CanAdvance reports whether the wizard may leave step forward.
// Step 3 is the submit gate; faulted is the draft store's outstanding
// unknown-field flag.
func (v StepValidator) CanAdvance(step int, d domain.Draft, faulted bool) bool {
	switch step {
	case 1:
		return basicsComplete(d)
	case 2:
		return !v.RequireAspectRating || d.RatedAspects() > 0
	case 3:
		return basicsComplete(d) && !faulted
	}
	return false
}

func basicsComplete(d domain.Draft) bool {
	return d.OverallRating > 0 &&
		strings.TrimSpace(d.Title) != "" &&
		utf8.RuneCountInString(strings.TrimSpace(d.Content)) >= MinContentLength
}
