package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/users/login", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "alice@example.com", body["email"])

		_ = json.NewEncoder(w).Encode(AuthResult{
			Token: "tok123",
			User:  User{ID: "u1", Email: "alice@example.com"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	result, err := c.Login(context.Background(), "alice@example.com", "pw")

	require.NoError(t, err)
	assert.Equal(t, "tok123", result.Token)
	assert.Equal(t, "u1", result.User.ID)
}

func TestListPasswordsSendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok123", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode([]Password{{ID: "p1", Service: "github"}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	items, err := c.ListPasswords(context.Background(), "tok123")

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "github", items[0].Service)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, want: ErrUnauthorized},
		{name: "not found", status: http.StatusNotFound, want: ErrNotFound},
		{name: "conflict", status: http.StatusConflict, want: ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "nope"})
			}))
			defer srv.Close()

			c := NewClient(srv.URL)
			_, err := c.GetPassword(context.Background(), "tok", "p1")

			assert.ErrorIs(t, err, tt.want)
			assert.ErrorContains(t, err, "nope")
		})
	}
}

func TestServerErrorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "internal server error"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	err := c.DeletePassword(context.Background(), "tok", "p1")

	require.Error(t, err)
	assert.ErrorContains(t, err, "internal server error")
}
