package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/lumakit/lights-core/internal/audit"
)

// loginRequest is the request body for POST /auth/login.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse is the response body for POST /auth/login.
type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// handleLogin authenticates a user and returns a signed token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeBadRequest(w, "username and password are required")
		return
	}

	user, err := s.users.GetByUsername(r.Context(), req.Username)
	if err != nil {
		// Same response whether the account is missing or the password
		// is wrong, so usernames can't be probed.
		s.recordAudit(r.Context(), &audit.Entry{
			Action:     audit.ActionLoginFailed,
			EntityType: audit.EntityUser,
			Details:    map[string]any{"username": req.Username},
		})
		writeUnauthorized(w, "invalid credentials")
		return
	}

	if err := s.credentials.VerifyPassword(r.Context(), user, req.Password); err != nil {
		s.recordAudit(r.Context(), &audit.Entry{
			Action:     audit.ActionLoginFailed,
			EntityType: audit.EntityUser,
			EntityID:   user.ID,
			Details:    map[string]any{"username": req.Username},
		})
		writeUnauthorized(w, "invalid credentials")
		return
	}

	ttl := time.Duration(s.secCfg.JWT.TokenTTL) * time.Second
	token, err := s.credentials.IssueToken(user, ttl)
	if err != nil {
		s.logger.Error("issuing token failed", "user_id", user.ID, "error", err)
		writeInternalError(w, "failed to issue token")
		return
	}

	s.recordAudit(r.Context(), &audit.Entry{
		Action:     audit.ActionLogin,
		EntityType: audit.EntityUser,
		EntityID:   user.ID,
		UserID:     user.ID,
	})

	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(ttl.Seconds()),
	})
}

// handleMe returns the authenticated user's own account.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userFromContext(r.Context()))
}

// handleChangeOwnPassword lets the authenticated user rotate their own
// password after proving they know the current one.
func (s *Server) handleChangeOwnPassword(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		writeBadRequest(w, "current_password and new_password are required")
		return
	}

	if err := s.credentials.VerifyPassword(r.Context(), user, req.CurrentPassword); err != nil {
		writeUnauthorized(w, "invalid credentials")
		return
	}

	if err := s.credentials.SetPassword(r.Context(), user, req.NewPassword); err != nil {
		s.writeDomainError(w, err, "failed to change password")
		return
	}

	s.recordAudit(r.Context(), &audit.Entry{
		Action:     audit.ActionPasswordChange,
		EntityType: audit.EntityUser,
		EntityID:   user.ID,
		UserID:     user.ID,
	})

	writeJSON(w, http.StatusOK, map[string]string{"status": "password_changed"})
}
