// internal/workers/listing/filter-listings/handler_test.go
package filterlistings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	apperrors "wanted-applier/internal/common/errors"
	apphttp "wanted-applier/internal/common/http"
	"wanted-applier/internal/common/logger"
	"wanted-applier/internal/common/progress"
	"wanted-applier/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeListing struct {
	Application interface{}
	IsBookmark  bool
	Text        string
	DetailCode  int
}

// fakeBoard serves listing details and records bookmark calls.
type fakeBoard struct {
	mu           sync.Mutex
	listings     map[int64]fakeListing
	bookmarks    map[int64]int
	bookmarkFlag bool
	bookmarkCode int
}

func newFakeBoard(listings map[int64]fakeListing) *fakeBoard {
	return &fakeBoard{
		listings:     listings,
		bookmarks:    make(map[int64]int),
		bookmarkFlag: true,
		bookmarkCode: http.StatusOK,
	}
}

func (b *fakeBoard) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var id int64
	switch {
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/api/v4/jobs/"):
		fmt.Sscanf(strings.TrimPrefix(r.URL.Path, "/api/v4/jobs/"), "%d", &id)
		l, ok := b.listings[id]
		if !ok || l.DetailCode != 0 {
			code := l.DetailCode
			if code == 0 {
				code = http.StatusNotFound
			}
			w.WriteHeader(code)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"application": l.Application,
			"job": map[string]interface{}{
				"is_bookmark": l.IsBookmark,
				"detail": map[string]interface{}{
					"requirements":     l.Text,
					"main_tasks":       "",
					"intro":            "",
					"preferred_points": "",
				},
			},
		})
	case r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, "/api/chaos/bookmarks/v1/"):
		fmt.Sscanf(strings.TrimPrefix(r.URL.Path, "/api/chaos/bookmarks/v1/"), "%d", &id)
		b.mu.Lock()
		b.bookmarks[id]++
		b.mu.Unlock()
		if b.bookmarkCode != http.StatusOK {
			w.WriteHeader(b.bookmarkCode)
			return
		}
		json.NewEncoder(w).Encode(map[string]bool{"flag": b.bookmarkFlag})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (b *fakeBoard) bookmarkCalls(id int64) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bookmarks[id]
}

func newTestHandler(t *testing.T, baseURL string, filterWords, requiredWords []string) (*Handler, *progress.ConsoleSink) {
	sink := progress.NewConsoleSink(&strings.Builder{})
	h := NewHandler(
		LoadConfig(baseURL, 4, filterWords, requiredWords),
		apphttp.NewClient(5*time.Second).WithToken("tok"),
		sink,
		logger.NewTestLogger(t),
	)
	return h, sink
}

func TestExecute_AppliedListingIsBookmarkedOnceAndExcluded(t *testing.T) {
	fb := newFakeBoard(map[int64]fakeListing{
		42: {Application: true, IsBookmark: false},
		43: {Application: map[string]interface{}{"id": 1}, IsBookmark: true},
		44: {Application: nil},
	})
	server := httptest.NewServer(fb)
	defer server.Close()

	h, sink := newTestHandler(t, server.URL, nil, nil)
	sink.Start(Stage, 3, 0)

	out, err := h.Execute(context.Background(), &Input{Listings: models.NewListingSet(42, 43, 44)})

	require.NoError(t, err)
	assert.Equal(t, []models.ListingID{44}, out.Accepted.Sorted())
	assert.Equal(t, 2, out.AlreadyApplied)
	assert.Equal(t, 1, fb.bookmarkCalls(42))
	assert.Equal(t, 0, fb.bookmarkCalls(43))
	assert.Equal(t, 0, fb.bookmarkCalls(44))
	assert.Equal(t, int64(3), sink.Count(Stage))
}

func TestExecute_UnconfirmedBookmarkFailsStage(t *testing.T) {
	fb := newFakeBoard(map[int64]fakeListing{
		42: {Application: true},
	})
	fb.bookmarkFlag = false
	server := httptest.NewServer(fb)
	defer server.Close()

	h, _ := newTestHandler(t, server.URL, nil, nil)

	out, err := h.Execute(context.Background(), &Input{Listings: models.NewListingSet(42)})

	require.Error(t, err)
	assert.Nil(t, out)
	assert.True(t, errors.Is(err, ErrFilterFailed))
	assert.True(t, apperrors.IsInvariantError(err))
	assert.Equal(t, 1, fb.bookmarkCalls(42))
}

func TestExecute_KeywordRules(t *testing.T) {
	fb := newFakeBoard(map[int64]fakeListing{
		1: {Text: "Go and Kubernetes"},
		2: {Text: "Java Spring"},
		3: {Text: "Go with PHP legacy"},
		4: {Text: "go lowercase"},
	})
	server := httptest.NewServer(fb)
	defer server.Close()

	tests := []struct {
		name     string
		filter   []string
		required []string
		want     []models.ListingID
	}{
		{"no rules accepts all", nil, nil, []models.ListingID{1, 2, 3, 4}},
		{"filter words reject", []string{"PHP"}, nil, []models.ListingID{1, 2, 4}},
		{"required words need a match", nil, []string{"Go"}, []models.ListingID{1, 3}},
		{"both rules", []string{"PHP"}, []string{"Go", "Spring"}, []models.ListingID{1, 2}},
		{"empty words are ignored", []string{""}, []string{""}, []models.ListingID{1, 2, 3, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestHandler(t, server.URL, tt.filter, tt.required)

			out, err := h.Execute(context.Background(), &Input{Listings: models.NewListingSet(1, 2, 3, 4)})

			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Accepted.Sorted())
			assert.Equal(t, 4-len(tt.want), out.Rejected)
		})
	}
}

func TestExecute_DetailFailureFailsStage(t *testing.T) {
	fb := newFakeBoard(map[int64]fakeListing{
		1: {},
		2: {DetailCode: http.StatusInternalServerError},
		3: {},
	})
	server := httptest.NewServer(fb)
	defer server.Close()

	h, _ := newTestHandler(t, server.URL, nil, nil)

	out, err := h.Execute(context.Background(), &Input{Listings: models.NewListingSet(1, 2, 3)})

	require.Error(t, err)
	assert.Nil(t, out)
	assert.True(t, errors.Is(err, ErrFilterFailed))

	var reqErr *apperrors.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusInternalServerError, reqErr.StatusCode)
}

func TestExecute_BookmarkFailureFailsStage(t *testing.T) {
	fb := newFakeBoard(map[int64]fakeListing{
		42: {Application: true},
	})
	fb.bookmarkCode = http.StatusForbidden
	server := httptest.NewServer(fb)
	defer server.Close()

	h, _ := newTestHandler(t, server.URL, nil, nil)

	_, err := h.Execute(context.Background(), &Input{Listings: models.NewListingSet(42)})

	assert.True(t, errors.Is(err, ErrFilterFailed))
	assert.True(t, apperrors.IsRequestError(err))
}

func TestExecute_OutputIsSubsetOfInput(t *testing.T) {
	listings := make(map[int64]fakeListing)
	input := models.NewListingSet()
	for id := int64(1); id <= 50; id++ {
		listings[id] = fakeListing{Application: id%3 == 0, IsBookmark: id%2 == 0}
		input.Add(models.ListingID(id))
	}
	server := httptest.NewServer(newFakeBoard(listings))
	defer server.Close()

	h, _ := newTestHandler(t, server.URL, nil, nil)

	out, err := h.Execute(context.Background(), &Input{Listings: input})

	require.NoError(t, err)
	for id := range out.Accepted {
		assert.True(t, input.Has(id))
		assert.NotZero(t, int64(id)%3)
	}
	assert.Equal(t, 34, out.Accepted.Len())
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{``, false},
		{`null`, false},
		{`false`, false},
		{`0`, false},
		{`""`, false},
		{`{}`, false},
		{`[]`, false},
		{`true`, true},
		{`1`, true},
		{`"applied"`, true},
		{`{"id": 3}`, true},
		{`[1]`, true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, truthy(json.RawMessage(tt.raw)))
		})
	}
}
