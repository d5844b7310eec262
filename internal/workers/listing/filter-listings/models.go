// internal/workers/listing/filter-listings/models.go
package filterlistings

import (
	"encoding/json"

	"wanted-applier/internal/models"
)

type Input struct {
	Listings models.ListingSet `json:"listings"`
}

type Output struct {
	Accepted       models.ListingSet `json:"accepted"`
	AlreadyApplied int               `json:"alreadyApplied"`
	Rejected       int               `json:"rejected"`
}

type Decision int

const (
	DecisionAccepted Decision = iota
	DecisionAlreadyApplied
	DecisionRejected
)

// detailResponse is the listing detail payload.
type detailResponse struct {
	Application json.RawMessage `json:"application"`
	Job         struct {
		IsBookmark bool `json:"is_bookmark"`
		Detail     struct {
			Requirements    string `json:"requirements"`
			MainTasks       string `json:"main_tasks"`
			Intro           string `json:"intro"`
			PreferredPoints string `json:"preferred_points"`
		} `json:"detail"`
	} `json:"job"`
}

func (r *detailResponse) toDetail(id models.ListingID) *models.ListingDetail {
	return &models.ListingDetail{
		ID:             id,
		HasApplication: truthy(r.Application),
		IsBookmark:     r.Job.IsBookmark,
		Requirements:   r.Job.Detail.Requirements,
		MainTasks:      r.Job.Detail.MainTasks,
		Intro:          r.Job.Detail.Intro,
		PreferredPoint: r.Job.Detail.PreferredPoints,
	}
}

// truthy reports whether raw holds a JSON value other than null, false, 0, "",
// {} or [].
func truthy(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case float64:
		return val != 0
	case string:
		return val != ""
	case map[string]interface{}:
		return len(val) > 0
	case []interface{}:
		return len(val) > 0
	default:
		return true
	}
}
