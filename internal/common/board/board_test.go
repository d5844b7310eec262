package board

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	apperrors "wanted-applier/internal/common/errors"
	apphttp "wanted-applier/internal/common/http"
	"wanted-applier/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Unix(1_700_000_000, 0)

func TestListingsURL(t *testing.T) {
	raw := ListingsURL("https://board.test", models.Criterion{Category: "899", Years: 2}, now)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "/api/v4/jobs", u.Path)

	q := u.Query()
	assert.Contains(t, q, "1700000000")
	assert.Equal(t, "kr", q.Get("country"))
	assert.Equal(t, "899", q.Get("tag_type_id"))
	assert.Equal(t, "job.latest_order", q.Get("job_sort"))
	assert.Equal(t, "100", q.Get("limit"))
	assert.Equal(t, []string{"0", "2"}, q["years"])
}

func TestURLs(t *testing.T) {
	assert.Equal(t, "https://board.test/api/v4/jobs?cursor=2", NextURL("https://board.test", "/api/v4/jobs?cursor=2"))
	assert.Equal(t, "https://board.test/api/v4/jobs/42", DetailURL("https://board.test", 42))
	assert.Equal(t, "https://board.test/api/v3/applications?1700000000", ApplicationsURL("https://board.test", now))
	assert.Equal(t, "https://board.test/api/v3/applications/abc?1700000000", ApplicationURL("https://board.test", "abc", now))
	assert.Equal(t, "https://board.test/api/chaos/bookmarks/v1/7?1700000000", BookmarkURL("https://board.test", 7, now))
	assert.Equal(t, "https://id.test/v1/me", MeURL("https://id.test"))
	assert.Equal(t, "https://board.test/api/chaos/resumes/v1?1700000000", ResumesURL("https://board.test", now))
}

func TestBookmark(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		switch r.URL.Path {
		case "/api/chaos/bookmarks/v1/7":
			w.Write([]byte(`{"flag": true}`))
		case "/api/chaos/bookmarks/v1/8":
			w.Write([]byte(`{"flag": false}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := apphttp.NewClient(5 * time.Second).WithToken("tok")

	flag, err := Bookmark(context.Background(), client, server.URL, 7, now)
	require.NoError(t, err)
	assert.True(t, flag)

	flag, err = Bookmark(context.Background(), client, server.URL, 8, now)
	require.NoError(t, err)
	assert.False(t, flag)

	_, err = Bookmark(context.Background(), client, server.URL, 9, now)
	assert.True(t, apperrors.IsRequestError(err))
}
