package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPSender_Send(t *testing.T) {
	var got message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewHTTPSender(srv.URL, srv.Client())
	err := s.Send(context.Background(), "marta@example.com", "Confirmación", "<p>hola</p>")

	require.NoError(t, err)
	assert.Equal(t, "marta@example.com", got.To)
	assert.Equal(t, "Confirmación", got.Subject)
	assert.Equal(t, "<p>hola</p>", got.Body)
}

func TestHTTPSender_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	s := NewHTTPSender(srv.URL, srv.Client())
	err := s.Send(context.Background(), "marta@example.com", "x", "y")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestHTTPSender_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	s := NewHTTPSender(srv.URL, nil)
	err := s.Send(context.Background(), "marta@example.com", "x", "y")
	require.Error(t, err)
}
