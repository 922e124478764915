package script

// Language holds the instructions that steer the model's output language.
type Language struct {
	Code        string
	Instruction string
	EndingHint  string
}

var languages = map[string]Language{
	"en": {
		Code:        "en",
		Instruction: "Write the full script in English with warmth and support.",
		EndingHint:  "End naturally while following this requirement:",
	},
	"zh": {
		Code:        "zh",
		Instruction: "请用中文撰写完整的脚本，语言温暖、鼓励、治愈。",
		EndingHint:  "用中文自然地表达结尾要求：",
	},
	"ko": {
		Code:        "ko",
		Instruction: "전체 스크립트를 따뜻하고 위로가 되는 한국어로 작성하세요.",
		EndingHint:  "아래 끝맺음 요구를 한국어로 자연스럽게 표현하세요:",
	},
}

// LookupLanguage falls back to English for unknown or empty codes.
func LookupLanguage(code string) Language {
	if l, ok := languages[code]; ok {
		return l
	}
	return languages["en"]
}
