// internal/workers/listing/retrieve-listings/models.go
package retrievelistings

import "wanted-applier/internal/models"

type Input struct {
	Criteria []models.Criterion `json:"criteria"`
}

type Output struct {
	Listings models.ListingSet `json:"listings"`
}
