package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	var gotAgent string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("<html>listing</html>"))
	}))
	defer ts.Close()

	c := NewRestyClient(5 * time.Second)
	resp, err := c.Get(context.Background(), ts.URL, map[string]string{"User-Agent": "clipper-test"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, "<html>listing</html>", string(resp.Body()))
	assert.Equal(t, "clipper-test", gotAgent)
}

func TestGetReturnsNonOKStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("gone"))
	}))
	defer ts.Close()

	c := NewRestyClient(5 * time.Second)
	resp, err := c.Get(context.Background(), ts.URL, nil)
	require.NoError(t, err)

	// non-retryable statuses come back as a response, not an error
	assert.Equal(t, http.StatusNotFound, resp.StatusCode())
	assert.Equal(t, "gone", string(resp.Body()))
}

func TestGetRejectsInvalidURL(t *testing.T) {
	c := NewRestyClient(time.Second)

	_, err := c.Get(context.Background(), "not a url", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid url")
}
