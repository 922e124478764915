package queue

const TypeAffirmationRender = "affirmation:render"

// RenderPayload carries everything the worker needs to go from a finished
// script to a saved gallery entry.
type RenderPayload struct {
	JobID        string `json:"job_id"`
	Owner        string `json:"owner"`
	Script       string `json:"script"`
	Voice        string `json:"voice"`
	Persona      string `json:"persona"`
	Tone         string `json:"tone"`
	Instructions string `json:"instructions"`
	Music        string `json:"music"`      // catalog label
	MusicFile    string `json:"music_file"` // empty for voice-only
	MusicVolume  int    `json:"music_volume"`
	Summary      string `json:"summary"`
}
