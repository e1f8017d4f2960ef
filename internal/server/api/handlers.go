package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/socialride/identity/internal/common"
	"github.com/socialride/identity/internal/server/models"
)

func decode(r *http.Request, into any) error {
	return json.NewDecoder(r.Body).Decode(into)
}

// handleAuthenticate verifies a local username/password pair and returns a
// token pair. Unknown usernames and wrong passwords produce the same denial.
func (s *Server) handleAuthenticate(w http.ResponseWriter, r *http.Request) {
	var req authenticateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeAuthenticationGeneric, "invalid request body")
		return
	}

	sess, err := s.identity.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			writeError(w, http.StatusBadRequest, codeInvalidAuthentication, "Username or password is incorrect")
			return
		}
		s.logger.Error(r.Context(), "authenticate failed", "error", err)
		writeError(w, http.StatusBadRequest, codeAuthenticationGeneric, "authentication failed")
		return
	}

	writeData(w, toSessionResponse(sess.User, sess.AccessToken, sess.RefreshToken))
}

// handleSocial logs in an already-verified federated identity, creating or
// merging the user record in one step.
func (s *Server) handleSocial(w http.ResponseWriter, r *http.Request) {
	var req socialRequest
	if err := decode(r, &req); err != nil || req.ID == "" {
		writeError(w, http.StatusBadRequest, codeAuthenticationGeneric, "invalid request body")
		return
	}

	ext := models.ExternalIdentity{
		ID:        req.ID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Prefix:    req.Prefix,
		Phone:     req.Phone,
		Avatar:    req.Avatar,
	}

	sess, err := s.identity.AuthenticateExternal(r.Context(), ext)
	if err != nil {
		s.logger.Error(r.Context(), "social login failed", "error", err)
		writeError(w, http.StatusBadRequest, codeAuthenticationGeneric, "authentication failed")
		return
	}

	writeData(w, toSessionResponse(sess.User, sess.AccessToken, sess.RefreshToken))
}

// handleRefresh redeems the bearer refresh token for a new access token.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	access, err := s.identity.Refresh(r.Context(), bearerToken(r))
	if err != nil {
		writeError(w, http.StatusUnauthorized, codeAuthenticationGeneric, "invalid refresh token")
		return
	}
	writeData(w, refreshResponse{Token: access})
}

func (s *Server) handleAvailability(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")

	free, err := s.identity.Available(r.Context(), username)
	if err != nil {
		s.logger.Error(r.Context(), "availability check failed", "error", err)
		writeError(w, http.StatusBadRequest, codeUsernameAvailability, "availability check failed")
		return
	}
	if !free {
		writeError(w, http.StatusBadRequest, codeUsernameAvailability,
			fmt.Sprintf("Username '%s' already exists.", username))
		return
	}
	writeData(w, nil)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(r, &req); err != nil || req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, codeRegistrationGeneric, "invalid request body")
		return
	}

	user := &models.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Prefix:    req.Prefix,
		Phone:     req.Phone,
		Gender:    req.Gender,
		BirthDate: req.BirthDate,
	}

	created, err := s.identity.Register(r.Context(), user, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrUsernameTaken) {
			writeError(w, http.StatusOK, codeRegistrationBypass,
				fmt.Sprintf("Username '%s' is already registered. Authentication needed.", req.Username))
			return
		}
		s.logger.Error(r.Context(), "registration failed", "error", err)
		writeError(w, http.StatusBadRequest, codeRegistrationGeneric, "registration failed")
		return
	}

	writeData(w, toUserDTO(created))
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	users, err := s.identity.List(r.Context())
	if err != nil {
		s.logger.Error(r.Context(), "list users failed", "error", err)
		writeError(w, http.StatusBadRequest, codeUserGetAll, "could not list users")
		return
	}
	writeData(w, toUserDTOs(users))
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	user, err := s.identity.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			writeError(w, http.StatusNotFound, codeUserGet, "user not found")
			return
		}
		s.logger.Error(r.Context(), "get user failed", "error", err)
		writeError(w, http.StatusBadRequest, codeUserGet, "could not load user")
		return
	}
	writeData(w, toUserDTO(user))
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req userDTO
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeUserUpdate, "invalid request body")
		return
	}

	updated, err := s.identity.Update(r.Context(), req.toModel(id))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			writeError(w, http.StatusNotFound, codeUserUpdate, "user not found")
			return
		}
		s.logger.Error(r.Context(), "update user failed", "error", err)
		writeError(w, http.StatusBadRequest, codeUserUpdate, "could not update user")
		return
	}
	writeData(w, toUserDTO(updated))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.identity.Delete(r.Context(), id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			writeError(w, http.StatusNotFound, codeUserDelete, "user not found")
			return
		}
		s.logger.Error(r.Context(), "delete user failed", "error", err)
		writeError(w, http.StatusBadRequest, codeUserDelete, "could not delete user")
		return
	}
	writeData(w, map[string]string{"message": "User deleted successfully"})
}

// handleAvatarUpload allocates a storage key with a presigned PUT URL and
// records the key on the user's profile. Only the user themselves or an
// admin may replace an avatar.
func (s *Server) handleAvatarUpload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	claims, ok := ClaimsFromContext(r.Context())
	if !ok || (claims.Subject != id && !claims.Admin) {
		writeError(w, http.StatusUnauthorized, codeAuthenticationGeneric, "authorization required")
		return
	}

	user, err := s.identity.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			writeError(w, http.StatusNotFound, codeUserGet, "user not found")
			return
		}
		s.logger.Error(r.Context(), "get user failed", "error", err)
		writeError(w, http.StatusBadRequest, codeUserGet, "could not load user")
		return
	}

	key, url, err := s.avatars.UploadURL(r.Context())
	if err != nil {
		s.logger.Error(r.Context(), "presign upload failed", "error", err)
		writeError(w, http.StatusBadRequest, codeUserUpdate, "could not prepare upload")
		return
	}

	user.Avatar = key
	if _, err := s.identity.Update(r.Context(), user); err != nil {
		s.logger.Error(r.Context(), "store avatar key failed", "error", err)
		writeError(w, http.StatusBadRequest, codeUserUpdate, "could not update user")
		return
	}

	writeData(w, avatarUploadResponse{Key: key, UploadURL: url})
}

func (s *Server) handleAvatarDownload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	user, err := s.identity.GetByID(r.Context(), id)
	if err != nil || user.Avatar == "" {
		writeError(w, http.StatusNotFound, codeUserGet, "avatar not found")
		return
	}

	url, err := s.avatars.DownloadURL(r.Context(), user.Avatar)
	if err != nil {
		s.logger.Error(r.Context(), "presign download failed", "error", err)
		writeError(w, http.StatusBadRequest, codeUserGet, "could not prepare download")
		return
	}

	writeData(w, avatarDownloadResponse{URL: url})
}
