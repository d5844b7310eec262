// Package board holds the job board's endpoint layout.
package board

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	apphttp "wanted-applier/internal/common/http"
	"wanted-applier/internal/models"
)

const (
	PageSize = 100
	Country  = "kr"
	SortKey  = "job.latest_order"
)

// ListingsURL is the first listings page for c, newest first.
func ListingsURL(baseURL string, c models.Criterion, now time.Time) string {
	q := url.Values{}
	q.Set("country", Country)
	q.Set("tag_type_id", c.Category)
	q.Set("job_sort", SortKey)
	q.Set("limit", strconv.Itoa(PageSize))
	q["years"] = []string{"0", strconv.Itoa(c.Years)}
	return apphttp.Stamp(baseURL+"/api/v4/jobs?"+q.Encode(), now)
}

// NextURL resolves the server's next-page path against baseURL.
func NextURL(baseURL, next string) string {
	return baseURL + next
}

func DetailURL(baseURL string, id models.ListingID) string {
	return fmt.Sprintf("%s/api/v4/jobs/%d", baseURL, id)
}

func ApplicationsURL(baseURL string, now time.Time) string {
	return apphttp.Stamp(baseURL+"/api/v3/applications", now)
}

func ApplicationURL(baseURL, instanceID string, now time.Time) string {
	return apphttp.Stamp(fmt.Sprintf("%s/api/v3/applications/%s", baseURL, url.PathEscape(instanceID)), now)
}

func BookmarkURL(baseURL string, id models.ListingID, now time.Time) string {
	return apphttp.Stamp(fmt.Sprintf("%s/api/chaos/bookmarks/v1/%d", baseURL, id), now)
}

func MeURL(idURL string) string {
	return idURL + "/v1/me"
}

func ResumesURL(baseURL string, now time.Time) string {
	return apphttp.Stamp(baseURL+"/api/chaos/resumes/v1", now)
}

type bookmarkResponse struct {
	Flag bool `json:"flag"`
}

// Bookmark marks listing id and returns the flag the board answered with.
func Bookmark(ctx context.Context, client *apphttp.Client, baseURL string, id models.ListingID, now time.Time) (bool, error) {
	var resp bookmarkResponse
	if err := client.Post(ctx, BookmarkURL(baseURL, id, now), nil, &resp); err != nil {
		return false, err
	}
	return resp.Flag, nil
}
