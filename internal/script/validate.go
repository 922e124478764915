package script

import "strings"

// Validation is the proofreading verdict for a script. A tone mismatch is a
// warning, never a rejection.
type Validation struct {
	Valid   bool   `json:"valid"`
	Error   string `json:"error,omitempty"`
	Warning string `json:"warning,omitempty"`
}

func Validate(script, tone string) Validation {
	if strings.TrimSpace(script) == "" {
		return Validation{Error: "Script is empty"}
	}
	t, ok := LookupTone(tone)
	if ok && !t.Ending.MatchString(script) {
		return Validation{Valid: true, Warning: "Tone ending may not match requirements"}
	}
	return Validation{Valid: true}
}
