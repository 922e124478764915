package script

import (
	"math"
	"regexp"
)

const (
	// WordsPerSecond is the assumed narration pace.
	WordsPerSecond = 1.6
	// LengthBuffer pads the target so scripts do not come up short.
	LengthBuffer = 1.2
	// MaxTokenCap bounds the completion length regardless of duration.
	MaxTokenCap = 1000

	defaultEndingRule = "ends with gentle reassurance"
)

// Tone carries everything a tone changes about a script.
type Tone struct {
	Name string
	// RateMultiplier scales the spoken word rate; slower tones get fewer words.
	RateMultiplier float64
	EndingRule     string
	// Ending matches a closing that satisfies EndingRule.
	Ending *regexp.Regexp
}

var tones = map[string]Tone{
	"lullaby": {
		Name:           "lullaby",
		RateMultiplier: 0.7,
		EndingRule:     `must end with "good night" style line`,
		Ending:         regexp.MustCompile(`(?i)good night|sleep well|rest well`),
	},
	"cheerful": {
		Name:           "cheerful",
		RateMultiplier: 1,
		EndingRule:     `must end with "have a good day" style line`,
		Ending:         regexp.MustCompile(`(?i)good day|have a great|wonderful day`),
	},
	"calm": {
		Name:           "calm",
		RateMultiplier: 1,
		EndingRule:     defaultEndingRule,
		Ending:         regexp.MustCompile(`(?i)peace|calm|gentle|reassur`),
	},
	"motivational": {
		Name:           "motivational",
		RateMultiplier: 1,
		EndingRule:     "ends with confident encouragement",
		Ending:         regexp.MustCompile(`(?i)you can|you will|you've got|believe`),
	},
}

// Tones lists the known tone names in the order the UI offers them.
func Tones() []string {
	return []string{"cheerful", "lullaby", "calm", "motivational"}
}

// LookupTone returns the tone table entry. Unknown tones get the neutral
// rate, the default ending rule and no ending check.
func LookupTone(name string) (Tone, bool) {
	t, ok := tones[name]
	if !ok {
		return Tone{Name: name, RateMultiplier: 1, EndingRule: defaultEndingRule}, false
	}
	return t, true
}

// TargetWords is the word count aimed for in a script of durationSeconds.
func TargetWords(durationSeconds float64, tone string) int {
	t, _ := LookupTone(tone)
	return int(math.Round(durationSeconds * WordsPerSecond * LengthBuffer * t.RateMultiplier))
}

// MaxTokens is the completion budget for a target word count.
func MaxTokens(targetWords int) int {
	return min(targetWords*2, MaxTokenCap)
}
