package result

import "time"

// Manifest describes one stored run: which solution produced it and which
// seeds it was asked to cover.
type Manifest struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Command   string    `json:"command"`
	Scorer    string    `json:"scorer"`
	Revision  string    `json:"revision,omitempty"`
	Seeds     []int     `json:"seeds"`
	CreatedAt time.Time `json:"created_at"`
}

// RunInfo summarizes a stored run for listings.
type RunInfo struct {
	Dir        string
	Manifest   *Manifest
	Records    int
	IsLatest   bool
	IsBaseline bool
}
