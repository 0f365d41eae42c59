package api

import (
	"encoding/json"
	"net/http"

	"codecollab/internal/models"

	"golang.org/x/crypto/bcrypt"
)

// Auth handlers. These are the only unauthenticated endpoints besides the
// health check.

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var body models.UserRegister
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if body.Name == "" || body.Email == "" || body.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Name, email and password are required")
		return
	}

	if _, err := h.users.GetByEmail(r.Context(), body.Email); err == nil {
		writeMessage(w, http.StatusConflict, "Email already registered")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "Failed to hash password", http.StatusInternalServerError)
		return
	}

	user := &models.User{
		Name:         body.Name,
		Email:        body.Email,
		PasswordHash: string(hash),
	}
	if err := h.users.Create(r.Context(), user); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	token, err := h.verifier.Issue(user.ID, h.tokenTTL)
	if err != nil {
		http.Error(w, "Failed to issue token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"token": token,
		"user":  user,
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var body models.UserLogin
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.users.GetByEmail(r.Context(), body.Email)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := h.verifier.Issue(user.ID, h.tokenTTL)
	if err != nil {
		http.Error(w, "Failed to issue token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  user,
	})
}
