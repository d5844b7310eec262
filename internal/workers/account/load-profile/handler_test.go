// internal/workers/account/load-profile/handler_test.go
package loadprofile

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "wanted-applier/internal/common/errors"
	apphttp "wanted-applier/internal/common/http"
	"wanted-applier/internal/common/logger"
	"wanted-applier/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const meBody = `{"user": {"email": "me@example.com", "username": "Kim Dev", "mobile": {"number": "+82-10-0000-0000"}}}`

func newServer(t *testing.T, meStatus int, resumes string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(apphttp.TokenCookie); assert.NoError(t, err) {
			assert.Equal(t, "tok", cookie.Value)
		}
		switch r.URL.Path {
		case "/v1/me":
			w.WriteHeader(meStatus)
			w.Write([]byte(meBody))
		case "/api/chaos/resumes/v1":
			w.Write([]byte(resumes))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func newTestHandler(t *testing.T, url string) *Handler {
	return NewHandler(
		LoadConfig(url, url),
		apphttp.NewClient(5*time.Second).WithToken("tok"),
		logger.NewTestLogger(t),
	)
}

func TestExecute_Success(t *testing.T) {
	server := newServer(t, http.StatusOK, `{"data": [{"key": "resume-1"}, {"key": "resume-2"}]}`)
	defer server.Close()

	out, err := newTestHandler(t, server.URL).Execute(context.Background(), &Input{})

	require.NoError(t, err)
	assert.Equal(t, &models.Profile{
		Email:    "me@example.com",
		Name:     "Kim Dev",
		Mobile:   "+82-10-0000-0000",
		ResumeID: "resume-1",
	}, out.Profile)
}

func TestExecute_NoResumeIsInvariant(t *testing.T) {
	server := newServer(t, http.StatusOK, `{"data": []}`)
	defer server.Close()

	_, err := newTestHandler(t, server.URL).Execute(context.Background(), &Input{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProfileUnavailable))
	assert.True(t, apperrors.IsInvariantError(err))
}

func TestExecute_UnauthorizedIsRequestError(t *testing.T) {
	server := newServer(t, http.StatusUnauthorized, `{"data": []}`)
	defer server.Close()

	_, err := newTestHandler(t, server.URL).Execute(context.Background(), &Input{})

	assert.True(t, errors.Is(err, ErrProfileUnavailable))
	var reqErr *apperrors.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusUnauthorized, reqErr.StatusCode)
}
