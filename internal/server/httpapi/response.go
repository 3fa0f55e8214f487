package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/dmitrijs2005/passvault/internal/server/services"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// passwordWriteRequest is the body of both create and update.
type passwordWriteRequest struct {
	Service    string `json:"service"`
	Credential string `json:"credential"`
	Password   string `json:"password"`
}

type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

// passwordResponse carries the decrypted secret back to its owner. It never
// includes the owner id, nonce, or ciphertext.
type passwordResponse struct {
	ID         string `json:"id"`
	Service    string `json:"service"`
	Credential string `json:"credential"`
	Password   string `json:"password"`
}

func toUserResponse(v *services.UserView) userResponse {
	return userResponse{ID: v.ID, Name: v.Name, Email: v.Email}
}

func toPasswordResponse(v *services.EntryView) passwordResponse {
	return passwordResponse{
		ID:         v.ID,
		Service:    v.Service,
		Credential: v.Credential,
		Password:   v.Password,
	}
}
