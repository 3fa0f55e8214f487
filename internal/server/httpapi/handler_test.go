package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/passvault/internal/logging"
	"github.com/dmitrijs2005/passvault/internal/server/auth"
	"github.com/dmitrijs2005/passvault/internal/server/config"
	"github.com/dmitrijs2005/passvault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/passvault/internal/server/services"
)

type apiFixture struct {
	srv    *httptest.Server
	secret []byte
	mock   sqlmock.Sqlmock
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := &config.Config{
		SecretKey:             "test-secret",
		TokenValidityDuration: time.Hour,
		CacheTTL:              10 * time.Minute,
	}

	rm := repomanager.NewInMemoryRepositoryManager()
	cache := services.NewListCache(cfg.CacheTTL)
	key := bytes.Repeat([]byte{0x42}, 32)

	users := services.NewUserService(db, rm, cache, cfg)
	vault := services.NewVaultService(db, rm, key, cache)
	resolver := services.NewResolverService(db, rm)

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(io.Discard, nil)))
	handler := NewHandler(users, vault, resolver, []byte(cfg.SecretKey), logger)

	srv := httptest.NewServer(handler.Routes())
	t.Cleanup(srv.Close)

	return &apiFixture{srv: srv, secret: []byte(cfg.SecretKey), mock: mock}
}

// do sends a JSON request and decodes the JSON response into out (if non-nil).
func (f *apiFixture) do(t *testing.T, method, path, token string, body any, out any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, f.srv.URL+path, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := f.srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

// register creates a user through the API and returns a login token and the user id.
func (f *apiFixture) register(t *testing.T, email, password string) (string, string) {
	t.Helper()

	var user userResponse
	resp := f.do(t, http.MethodPost, "/api/users", "", registerRequest{
		Name:     email,
		Email:    email,
		Password: password,
	}, &user)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var authResp authResponse
	resp = f.do(t, http.MethodPost, "/api/users/login", "", loginRequest{
		Email:    email,
		Password: password,
	}, &authResp)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	return authResp.Token, user.ID
}

func TestRegister(t *testing.T) {
	f := newAPIFixture(t)

	var user userResponse
	resp := f.do(t, http.MethodPost, "/api/users", "", registerRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "pw1",
	}, &user)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "alice@example.com", user.Email)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newAPIFixture(t)
	f.register(t, "alice@example.com", "pw1")

	resp := f.do(t, http.MethodPost, "/api/users", "", registerRequest{
		Name:     "Other",
		Email:    "alice@example.com",
		Password: "pw2",
	}, nil)

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestRegisterMissingFields(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.do(t, http.MethodPost, "/api/users", "", registerRequest{Name: "NoEmail"}, nil)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLoginWrongPassword(t *testing.T) {
	f := newAPIFixture(t)
	f.register(t, "alice@example.com", "pw1")

	resp := f.do(t, http.MethodPost, "/api/users/login", "", loginRequest{
		Email:    "alice@example.com",
		Password: "wrong",
	}, nil)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestGetUserSelf(t *testing.T) {
	f := newAPIFixture(t)
	token, id := f.register(t, "alice@example.com", "pw1")

	var user userResponse
	resp := f.do(t, http.MethodGet, "/api/users/"+id, token, nil, &user)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, id, user.ID)
	assert.Equal(t, "alice@example.com", user.Email)
}

func TestGetUserOtherIsNotFound(t *testing.T) {
	f := newAPIFixture(t)
	token, _ := f.register(t, "alice@example.com", "pw1")
	_, otherID := f.register(t, "bob@example.com", "pw2")

	resp := f.do(t, http.MethodGet, "/api/users/"+otherID, token, nil, nil)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteUserRemovesPasswords(t *testing.T) {
	f := newAPIFixture(t)
	token, id := f.register(t, "alice@example.com", "pw1")

	resp := f.do(t, http.MethodPost, "/api/passwords", token, passwordWriteRequest{
		Service:    "github",
		Credential: "alice",
		Password:   "hunter2",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Account removal runs in a transaction on the database handle.
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	resp = f.do(t, http.MethodDelete, "/api/users/"+id, token, nil, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	// The stale token resolves to a freshly provisioned owner with an
	// empty vault; the deleted entries are gone.
	var list []passwordResponse
	resp = f.do(t, http.MethodGet, "/api/passwords", token, nil, &list)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, list)
}

func TestPasswordLifecycle(t *testing.T) {
	f := newAPIFixture(t)
	token, _ := f.register(t, "alice@example.com", "pw1")

	var created passwordResponse
	resp := f.do(t, http.MethodPost, "/api/passwords", token, passwordWriteRequest{
		Service:    "github",
		Credential: "alice",
		Password:   "hunter2",
	}, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "hunter2", created.Password)

	var list []passwordResponse
	resp = f.do(t, http.MethodGet, "/api/passwords", token, nil, &list)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	var updated passwordResponse
	resp = f.do(t, http.MethodPut, "/api/passwords/"+created.ID, token, passwordWriteRequest{
		Service:    "gitlab",
		Credential: "alice2",
		Password:   "hunter3",
	}, &updated)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "gitlab", updated.Service)
	assert.Equal(t, "hunter3", updated.Password)

	resp = f.do(t, http.MethodDelete, "/api/passwords/"+created.ID, token, nil, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/passwords/"+created.ID, token, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPasswordOwnershipScoping(t *testing.T) {
	f := newAPIFixture(t)
	aliceToken, _ := f.register(t, "alice@example.com", "pw1")
	bobToken, _ := f.register(t, "bob@example.com", "pw2")

	var created passwordResponse
	resp := f.do(t, http.MethodPost, "/api/passwords", aliceToken, passwordWriteRequest{
		Service:    "github",
		Credential: "alice",
		Password:   "hunter2",
	}, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Another owner's entry is indistinguishable from a missing one.
	resp = f.do(t, http.MethodGet, "/api/passwords/"+created.ID, bobToken, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = f.do(t, http.MethodDelete, "/api/passwords/"+created.ID, bobToken, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var list []passwordResponse
	resp = f.do(t, http.MethodGet, "/api/passwords", bobToken, nil, &list)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, list)
}

func TestMissingToken(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.do(t, http.MethodGet, "/api/passwords", "", nil, nil)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestInvalidToken(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.do(t, http.MethodGet, "/api/passwords", "not.a.token", nil, nil)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestExpiredToken(t *testing.T) {
	f := newAPIFixture(t)
	_, id := f.register(t, "alice@example.com", "pw1")

	expired, err := auth.GenerateToken(id, "alice@example.com", f.secret, -time.Minute)
	require.NoError(t, err)

	resp := f.do(t, http.MethodGet, "/api/passwords", expired, nil, nil)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAutoProvisionedIdentity(t *testing.T) {
	f := newAPIFixture(t)

	// A token minted by a trusted issuer for an unknown subject creates a
	// local owner keyed by the email claim.
	token, err := auth.GenerateToken("external-subject", "carol@example.com", f.secret, time.Hour)
	require.NoError(t, err)

	var created passwordResponse
	resp := f.do(t, http.MethodPost, "/api/passwords", token, passwordWriteRequest{
		Service:    "github",
		Credential: "carol",
		Password:   "s3cret",
	}, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var list []passwordResponse
	resp = f.do(t, http.MethodGet, "/api/passwords", token, nil, &list)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, list, 1)
	assert.Equal(t, "github", list[0].Service)
}

func TestTokenWithoutEmailForUnknownSubject(t *testing.T) {
	f := newAPIFixture(t)

	token, err := auth.GenerateToken("unknown-subject", "", f.secret, time.Hour)
	require.NoError(t, err)

	resp := f.do(t, http.MethodGet, "/api/passwords", token, nil, nil)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCallerFromContextMissing(t *testing.T) {
	_, ok := CallerFromContext(context.Background())
	assert.False(t, ok)
}
