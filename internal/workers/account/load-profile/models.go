// internal/workers/account/load-profile/models.go
package loadprofile

import "wanted-applier/internal/models"

type Input struct{}

type Output struct {
	Profile *models.Profile `json:"profile"`
}

type meResponse struct {
	User struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		Mobile   struct {
			Number string `json:"number"`
		} `json:"mobile"`
	} `json:"user"`
}

type resumesResponse struct {
	Data []struct {
		Key string `json:"key"`
	} `json:"data"`
}
