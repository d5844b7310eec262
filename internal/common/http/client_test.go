package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "wanted-applier/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Get_SendsTokenCookie(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(TokenCookie); assert.NoError(t, err) {
			assert.Equal(t, "secret-token", cookie.Value)
		}
		assert.Equal(t, http.MethodGet, r.Method)
		w.Write([]byte(`{"flag": true}`))
	}))
	defer server.Close()

	client := NewClient(5 * time.Second).WithToken("secret-token")

	var out struct {
		Flag bool `json:"flag"`
	}
	err := client.Get(context.Background(), server.URL, &out)

	require.NoError(t, err)
	assert.True(t, out.Flag)
}

func TestClient_Post_WithoutTokenSendsNoCookie(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := r.Cookie(TokenCookie)
		assert.ErrorIs(t, err, http.ErrNoCookie)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "password", body["grant_type"])
		w.Write([]byte(`{"token": "abc", "expires": 1}`))
	}))
	defer server.Close()

	var out map[string]interface{}
	err := NewClient(5*time.Second).Post(context.Background(), server.URL, map[string]string{"grant_type": "password"}, &out)

	require.NoError(t, err)
	assert.Equal(t, "abc", out["token"])
}

func TestClient_NonOKStatusIsRequestError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message": "expired"}`))
	}))
	defer server.Close()

	err := NewClient(5*time.Second).Put(context.Background(), server.URL+"/api/v3/applications/abc", map[string]string{}, nil)

	require.Error(t, err)
	var reqErr *apperrors.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusUnauthorized, reqErr.StatusCode)
	assert.Equal(t, http.MethodPut, reqErr.Method)
	assert.Contains(t, reqErr.URL, "/api/v3/applications/abc")
	assert.Contains(t, reqErr.Body, "expired")
}

func TestClient_CreatedIsNotSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	err := NewClient(5*time.Second).Post(context.Background(), server.URL, nil, nil)
	assert.True(t, apperrors.IsRequestError(err))
}

func TestClient_TransportFailureIsRequestError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	err := NewClient(time.Second).Get(context.Background(), url, nil)

	var reqErr *apperrors.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, 0, reqErr.StatusCode)
}

func TestClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	err := NewClient(20*time.Millisecond).Get(context.Background(), server.URL, nil)
	assert.True(t, apperrors.IsRequestError(err))
}

func TestClient_InvalidJSONIsInvariantError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer server.Close()

	var out map[string]interface{}
	err := NewClient(5*time.Second).Get(context.Background(), server.URL, &out)
	assert.True(t, apperrors.IsInvariantError(err))
}

func TestStamp(t *testing.T) {
	now := time.Unix(1700000000, 0)

	assert.Equal(t, "https://example.test/api/v4/jobs/42?1700000000", Stamp("https://example.test/api/v4/jobs/42", now))
	assert.Equal(t,
		"https://example.test/api/v4/jobs?1700000000&country=kr&limit=100",
		Stamp("https://example.test/api/v4/jobs?country=kr&limit=100", now),
	)
}
