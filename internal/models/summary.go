package models

import (
	"fmt"
	"time"
)

// RunSummary is the outcome of one pipeline run as reported to the user.
type RunSummary struct {
	RunID     string        `json:"runId"`
	State     string        `json:"state"`
	Retrieved int           `json:"retrieved"`
	Accepted  int           `json:"accepted"`
	Applied   int           `json:"applied"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
}

func (s RunSummary) Subject() string {
	if s.Error != "" {
		return fmt.Sprintf("wanted-applier run %s aborted", s.RunID)
	}
	return fmt.Sprintf("wanted-applier run %s: applied to %d listings", s.RunID, s.Applied)
}

func (s RunSummary) Text() string {
	text := fmt.Sprintf("Run %s finished in state %s after %s.\nRetrieved: %d\nAccepted: %d\nApplied: %d\n",
		s.RunID, s.State, s.Duration.Round(time.Second), s.Retrieved, s.Accepted, s.Applied)
	if s.Error != "" {
		text += "Error: " + s.Error + "\n"
	}
	return text
}
