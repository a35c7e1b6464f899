package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lumakit/lights-core/internal/audit"
	"github.com/lumakit/lights-core/internal/auth"
)

type createUserRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	IsAdmin    bool   `json:"is_admin"`
	IsVerified bool   `json:"is_verified"`
}

type updateUserRequest struct {
	Username   *string `json:"username,omitempty"`
	IsAdmin    *bool   `json:"is_admin,omitempty"`
	IsVerified *bool   `json:"is_verified,omitempty"`
}

type setPasswordRequest struct {
	Password string `json:"password"`
}

// handleListUsers returns all user accounts.
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.List(r.Context())
	if err != nil {
		s.writeDomainError(w, err, "failed to list users")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"users": users,
		"count": len(users),
	})
}

// handleCreateUser creates a new user account.
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if err := s.credentials.ValidateUsername(r.Context(), req.Username); err != nil {
		s.writeDomainError(w, err, "failed to create user")
		return
	}

	user := &auth.User{
		Username:   req.Username,
		IsAdmin:    req.IsAdmin,
		IsVerified: req.IsVerified,
	}

	// SetPassword validates the plaintext and hashes it onto the record;
	// no ID yet, so persistence happens in Create below.
	if err := s.credentials.SetPassword(r.Context(), user, req.Password); err != nil {
		s.writeDomainError(w, err, "failed to create user")
		return
	}

	if err := s.users.Create(r.Context(), user); err != nil {
		s.writeDomainError(w, err, "failed to create user")
		return
	}

	actor := userFromContext(r.Context())
	s.logger.Info("user created", "user_id", user.ID, "username", user.Username, "created_by", actor.ID)
	s.recordAudit(r.Context(), &audit.Entry{
		Action:     audit.ActionCreate,
		EntityType: audit.EntityUser,
		EntityID:   user.ID,
		UserID:     actor.ID,
		Details:    map[string]any{"username": user.Username, "is_admin": user.IsAdmin},
	})

	writeJSON(w, http.StatusCreated, user)
}

// handleGetUser returns a single user by ID.
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, err, "failed to get user")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// handleUpdateUser modifies a user's mutable fields.
func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	actor := userFromContext(r.Context())

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	user, err := s.users.GetByID(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err, "failed to update user")
		return
	}

	// Self-protection: an admin cannot remove their own admin flag.
	if req.IsAdmin != nil && !*req.IsAdmin && id == actor.ID {
		writeForbidden(w, "cannot revoke your own admin access")
		return
	}

	if req.Username != nil {
		if err := s.credentials.ValidateUsername(r.Context(), *req.Username); err != nil {
			s.writeDomainError(w, err, "failed to update user")
			return
		}
		user.Username = *req.Username
	}
	if req.IsAdmin != nil {
		user.IsAdmin = *req.IsAdmin
	}
	if req.IsVerified != nil {
		user.IsVerified = *req.IsVerified
	}

	if err := s.users.Update(r.Context(), user); err != nil {
		s.writeDomainError(w, err, "failed to update user")
		return
	}

	s.logger.Info("user updated", "user_id", id, "updated_by", actor.ID)
	s.recordAudit(r.Context(), &audit.Entry{
		Action:     audit.ActionUpdate,
		EntityType: audit.EntityUser,
		EntityID:   id,
		UserID:     actor.ID,
	})

	writeJSON(w, http.StatusOK, user)
}

// handleDeleteUser removes a user account.
func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	actor := userFromContext(r.Context())

	if id == actor.ID {
		writeForbidden(w, "cannot delete your own account")
		return
	}

	user, err := s.users.GetByID(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err, "failed to delete user")
		return
	}

	if err := s.users.Delete(r.Context(), id); err != nil {
		s.writeDomainError(w, err, "failed to delete user")
		return
	}

	s.logger.Info("user deleted", "user_id", id, "deleted_by", actor.ID)
	s.recordAudit(r.Context(), &audit.Entry{
		Action:     audit.ActionDelete,
		EntityType: audit.EntityUser,
		EntityID:   id,
		UserID:     actor.ID,
		Details:    map[string]any{"username": user.Username},
	})

	w.WriteHeader(http.StatusNoContent)
}

// handleSetUserPassword sets another user's password (admin reset; no
// current-password proof required).
func (s *Server) handleSetUserPassword(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	actor := userFromContext(r.Context())

	var req setPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	user, err := s.users.GetByID(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err, "failed to set password")
		return
	}

	if err := s.credentials.SetPassword(r.Context(), user, req.Password); err != nil {
		s.writeDomainError(w, err, "failed to set password")
		return
	}

	s.logger.Info("user password reset", "user_id", id, "reset_by", actor.ID)
	s.recordAudit(r.Context(), &audit.Entry{
		Action:     audit.ActionPasswordChange,
		EntityType: audit.EntityUser,
		EntityID:   id,
		UserID:     actor.ID,
	})

	writeJSON(w, http.StatusOK, map[string]string{"status": "password_changed"})
}
