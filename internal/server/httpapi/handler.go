package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/logging"
	"github.com/dmitrijs2005/passvault/internal/server/services"
)

// Handler routes API requests to the vault services.
type Handler struct {
	users     *services.UserService
	vault     *services.VaultService
	resolver  *services.ResolverService
	jwtSecret []byte
	logger    logging.Logger
}

func NewHandler(users *services.UserService, vault *services.VaultService,
	resolver *services.ResolverService, jwtSecret []byte, logger logging.Logger) *Handler {
	return &Handler{
		users:     users,
		vault:     vault,
		resolver:  resolver,
		jwtSecret: jwtSecret,
		logger:    logger.With("module", "httpapi"),
	}
}

// Routes returns the API router with logging and panic recovery applied.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/users", h.handleRegister)
	mux.HandleFunc("POST /api/users/login", h.handleLogin)
	mux.Handle("GET /api/users/{id}", h.requireAuth(http.HandlerFunc(h.handleGetUser)))
	mux.Handle("DELETE /api/users/{id}", h.requireAuth(http.HandlerFunc(h.handleDeleteUser)))

	mux.Handle("POST /api/passwords", h.requireAuth(http.HandlerFunc(h.handleCreatePassword)))
	mux.Handle("GET /api/passwords", h.requireAuth(http.HandlerFunc(h.handleListPasswords)))
	mux.Handle("GET /api/passwords/{id}", h.requireAuth(http.HandlerFunc(h.handleGetPassword)))
	mux.Handle("PUT /api/passwords/{id}", h.requireAuth(http.HandlerFunc(h.handleUpdatePassword)))
	mux.Handle("DELETE /api/passwords/{id}", h.requireAuth(http.HandlerFunc(h.handleDeletePassword)))

	return loggingMiddleware(h.logger, recoveryMiddleware(h.logger, mux))
}

// writeServiceError maps service errors to API status codes. Unexpected errors
// are logged and reported as an opaque 500.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrEntryNotFound),
		errors.Is(err, common.ErrOwnerNotFound),
		errors.Is(err, common.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, common.ErrEmailTaken):
		writeError(w, http.StatusConflict, "email already registered")
	case errors.Is(err, common.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "invalid credentials")
	default:
		h.logger.Error(r.Context(), "request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := h.users.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, user, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{Token: token, User: toUserResponse(user)})
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFromContext(r.Context())
	id := r.PathValue("id")
	if id != caller.UserID {
		// Profiles of other users are indistinguishable from absent ones.
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	user, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *Handler) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFromContext(r.Context())
	id := r.PathValue("id")
	if id != caller.UserID {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	if err := h.users.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleCreatePassword(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFromContext(r.Context())

	var req passwordWriteRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Service == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "service and password are required")
		return
	}

	view, err := h.vault.Create(r.Context(), caller.UserID, req.Service, req.Credential, req.Password)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toPasswordResponse(view))
}

func (h *Handler) handleListPasswords(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFromContext(r.Context())

	views, err := h.vault.List(r.Context(), caller.UserID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	items := make([]passwordResponse, 0, len(views))
	for _, v := range views {
		items = append(items, toPasswordResponse(v))
	}

	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) handleGetPassword(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFromContext(r.Context())

	view, err := h.vault.Get(r.Context(), caller.UserID, r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toPasswordResponse(view))
}

func (h *Handler) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFromContext(r.Context())

	var req passwordWriteRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Service == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "service and password are required")
		return
	}

	view, err := h.vault.Update(r.Context(), caller.UserID, r.PathValue("id"), req.Service, req.Credential, req.Password)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toPasswordResponse(view))
}

func (h *Handler) handleDeletePassword(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFromContext(r.Context())

	if err := h.vault.Delete(r.Context(), caller.UserID, r.PathValue("id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
