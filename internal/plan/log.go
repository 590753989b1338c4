package plan

import "time"

// ExerciseEntry is what a player recorded for one exercise. Both fields are free text.
type ExerciseEntry struct {
	Weight string `json:"weight,omitempty"`
	Note   string `json:"note,omitempty"`
}

// Entries maps exercise id to the recorded entry.
type Entries map[string]ExerciseEntry

// Clone returns a copy of the entries map.
func (e Entries) Clone() Entries {
	out := make(Entries, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// PlayerLog is the persisted set of entries for one LogKey.
type PlayerLog struct {
	ID        string    `json:"id"`
	Entries   Entries   `json:"entries"`
	UpdatedAt time.Time `json:"updatedAt"`
}
