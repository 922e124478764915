package tts

// DefaultVoice is used when a request names none.
const DefaultVoice = "alloy"

type Voice struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

var voices = []Voice{
	{"alloy", "warm neutral adult (gender-neutral)"},
	{"ash", "clear adult male"},
	{"ballad", "smooth adult male"},
	{"coral", "warm adult female"},
	{"echo", "calm adult male"},
	{"fable", "gentle young female"},
	{"onyx", "deep adult male"},
	{"nova", "bright young female"},
	{"sage", "calm adult male"},
	{"shimmer", "airy teen female"},
	{"verse", "expressive adult male"},
	{"marin", "fresh young female"},
	{"cedar", "warm adult male"},
}

// Voices returns the selectable voices in catalog order.
func Voices() []Voice {
	return append([]Voice(nil), voices...)
}

func LookupVoice(name string) (Voice, bool) {
	for _, v := range voices {
		if v.Name == name {
			return v, true
		}
	}
	return Voice{}, false
}
