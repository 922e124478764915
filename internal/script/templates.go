package script

import "github.com/nikhilbhutani/listenloved/internal/prompt"

var affirmationTemplate = prompt.Template{
	Name: "affirmation-script",
	System: `You write second-person affirmation scripts spoken from a specified persona.

Rules:
- Begin most lines with "You".
- If a name is provided, include it gently and sparingly.
- Match the emotional style of the chosen persona.
- Follow tone rules and end with the required tone-specific closing.
- Use warm, simple, supportive language.
- No negativity, contrast words, metaphors, or trauma.
- Write one continuous flowing paragraph.
- Plain text only.`,
	User: `{{language_instruction}}

Write a continuous second-person affirmation script.

Persona: {{persona}}
Instructions: {{instructions}}
Tone: {{tone}}
Duration: {{duration}} seconds
Target word count: {{target_words}}
Optional name: {{name}}

Begin most lines with "You".
Use the name only where it feels gentle and meaningful.
{{ending_hint}}
{{ending_rule}}

One paragraph. No bullets or breaks.`,
}
