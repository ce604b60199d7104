package game

import "time"

// Game is a single search hit returned to the caller.
// Fields absent from the store projection stay at their zero value.
type Game struct {
	ID               string     `json:"_id,omitempty"`
	Name             string     `json:"name,omitempty"`
	Summary          string     `json:"summary,omitempty"`
	Genres           []string   `json:"genres,omitempty"`
	Franchises       []string   `json:"franchises,omitempty"`
	FirstReleaseDate *time.Time `json:"first_release_date,omitempty"`
}
