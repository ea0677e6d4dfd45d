package handlers

import (
	"context"
	"net/http"

	"recipe-service/models"
	"recipe-service/store"
	"recipe-service/validation"

	"go.uber.org/zap"
)

// UserHandler handles signup, token exchange and the caller's own profile
type UserHandler struct {
	store    *store.Store
	validate *validation.Validator
}

// NewUserHandler creates a new user handler
func NewUserHandler(s *store.Store, v *validation.Validator) *UserHandler {
	return &UserHandler{
		store:    s,
		validate: v,
	}
}

// CreateUser handles POST /api/user/create/ - signup
func (h *UserHandler) CreateUser(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalidJSON(ctx, w, err)
		return
	}
	if err := h.validate.Validate(req); err != nil {
		writeError(ctx, w, err)
		return
	}

	logRequest(ctx, "info", "Creating user", zap.String("email", req.Email))

	user, err := h.store.CreateUser(ctx, req.Email, req.Password, req.Name)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	logRequest(ctx, "info", "User created successfully", zap.Int("user_id", user.ID))
	writeJSON(w, http.StatusCreated, user)
}

// CreateToken handles POST /api/user/token/ - exchanges credentials for the user's token
func (h *UserHandler) CreateToken(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	var req models.TokenRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalidJSON(ctx, w, err)
		return
	}
	if err := h.validate.Validate(req); err != nil {
		writeError(ctx, w, err)
		return
	}

	logRequest(ctx, "info", "Token request", zap.String("email", req.Email))

	user, err := h.store.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	key, err := h.store.IssueToken(ctx, user.ID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	logRequest(ctx, "info", "Token issued", zap.Int("user_id", user.ID))
	writeJSON(w, http.StatusOK, models.TokenResponse{Token: key})
}

// GetMe handles GET /api/user/me/
func (h *UserHandler) GetMe(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(ctx)
	if !ok {
		writeUnauthenticated(w)
		return
	}

	user, err := h.store.GetUser(ctx, userID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	logRequest(ctx, "info", "Profile retrieved")
	writeJSON(w, http.StatusOK, user)
}

// UpdateMe handles PUT /api/user/me/ - email, name and password all required
func (h *UserHandler) UpdateMe(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	var req models.ReplaceUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalidJSON(ctx, w, err)
		return
	}
	if err := h.validate.Validate(req); err != nil {
		writeError(ctx, w, err)
		return
	}

	h.applyProfile(ctx, w, models.UserPatch{
		Email:    &req.Email,
		Password: &req.Password,
		Name:     &req.Name,
	})
}

// PatchMe handles PATCH /api/user/me/ - only supplied fields change
func (h *UserHandler) PatchMe(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	var req models.PatchUserRequest
	if err := decodePatch(r, &req); err != nil {
		writeInvalidJSON(ctx, w, err)
		return
	}
	if err := h.validate.Validate(req); err != nil {
		writeError(ctx, w, err)
		return
	}

	h.applyProfile(ctx, w, models.UserPatch{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
}

func (h *UserHandler) applyProfile(ctx context.Context, w http.ResponseWriter, patch models.UserPatch) {
	userID, ok := currentUserID(ctx)
	if !ok {
		writeUnauthenticated(w)
		return
	}

	logRequest(ctx, "info", "Updating profile")

	user, err := h.store.UpdateUser(ctx, userID, patch)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	logRequest(ctx, "info", "Profile updated successfully")
	writeJSON(w, http.StatusOK, user)
}
