package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStorage struct {
	pingErr error
	counts  map[string]int
}

func (s *stubStorage) Ping() error { return s.pingErr }

func (s *stubStorage) CountByClass() (map[string]int, error) {
	return s.counts, nil
}

func TestHealthz(t *testing.T) {
	h := NewHandler(&stubStorage{})
	srv := httptest.NewServer(h.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHealthzDatabaseDown(t *testing.T) {
	h := NewHandler(&stubStorage{pingErr: errors.New("closed")})
	srv := httptest.NewServer(h.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestStats(t *testing.T) {
	h := NewHandler(&stubStorage{counts: map[string]int{"5А": 12, "10П": 7}})
	srv := httptest.NewServer(h.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/stats")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Total   int            `json:"total"`
		Classes map[string]int `json:"classes"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 19, body.Total)
	assert.Equal(t, 12, body.Classes["5А"])
}
