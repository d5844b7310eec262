// internal/workers/listing/apply-listings/models.go
package applylistings

import (
	"encoding/json"

	"wanted-applier/internal/models"
)

type Input struct {
	RunID    string            `json:"runId"`
	Listings models.ListingSet `json:"listings"`
	Profile  *models.Profile   `json:"profile"`
}

type Output struct {
	Applied models.ListingSet `json:"applied"`
}

type initRequest struct {
	Email string           `json:"email"`
	JobID models.ListingID `json:"job_id"`
	Name  string           `json:"name"`
}

type initResponse struct {
	ID json.RawMessage `json:"id"`
}

// instanceID returns the application id, which the board sends either as a
// string or as a number.
func (r *initResponse) instanceID() string {
	var s string
	if err := json.Unmarshal(r.ID, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(r.ID, &n); err == nil {
		return n.String()
	}
	return ""
}

type resume struct {
	Key  string `json:"key"`
	Type string `json:"type"`
}

type submitRequest struct {
	Email   string   `json:"email"`
	Name    string   `json:"name"`
	Mobile  string   `json:"mobile"`
	Resumes []resume `json:"resumes"`
}

func newSubmitRequest(p *models.Profile) submitRequest {
	return submitRequest{
		Email:   p.Email,
		Name:    p.Name,
		Mobile:  p.Mobile,
		Resumes: []resume{{Key: p.ResumeID, Type: "pdf"}},
	}
}
