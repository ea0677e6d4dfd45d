package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"recipe-service/images"
	"recipe-service/routing"
	"recipe-service/store"
	"recipe-service/validation"

	"github.com/gorilla/mux"
	"github.com/umakantv/go-utils/errs"
	"github.com/umakantv/go-utils/httpserver"
	logger "github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

// logRequest logs message as "timestamp - route - method - path - client - message".
// Authenticated requests also carry the caller's user id.
func logRequest(ctx context.Context, level string, message string, fields ...zap.Field) {
	logMsg, allFields := requestLogEntry(ctx, message, fields)

	switch level {
	case "error":
		logger.Error(logMsg, allFields...)
	case "debug":
		logger.Debug(logMsg, allFields...)
	default:
		logger.Info(logMsg, allFields...)
	}
}

func requestLogEntry(ctx context.Context, message string, fields []zap.Field) (string, []zap.Field) {
	routeName := httpserver.GetRouteName(ctx)
	method := httpserver.GetRouteMethod(ctx)
	path := httpserver.GetRoutePath(ctx)

	parts := []string{time.Now().Format(time.DateTime), routeName, method, path}
	entry := []zap.Field{
		zap.String("route", routeName),
		zap.String("method", method),
		zap.String("path", path),
	}
	if auth := httpserver.GetRequestAuth(ctx); auth != nil {
		parts = append(parts, "client:"+auth.Client)
	}
	if userID, ok := routing.UserID(ctx); ok {
		entry = append(entry, zap.Int("user_id", userID))
	}
	if message != "" {
		parts = append(parts, message)
	}

	return strings.Join(parts, " - "), append(entry, fields...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto status codes and errs bodies
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	var fieldErrs validation.FieldErrors
	var storeErr *store.ValidationError

	switch {
	case errors.As(err, &fieldErrs):
		logRequest(ctx, "info", "Validation failed", zap.String("detail", fieldErrs.Error()))
		writeJSON(w, http.StatusBadRequest, errs.NewValidationError(fieldErrs.Error()))
	case errors.As(err, &storeErr):
		logRequest(ctx, "info", "Validation failed", zap.String("detail", storeErr.Error()))
		writeJSON(w, http.StatusBadRequest, errs.NewValidationError(storeErr.Error()))
	case errors.Is(err, store.ErrEmailTaken), errors.Is(err, store.ErrInvalidCredentials), errors.Is(err, images.ErrNotImage), errors.Is(err, images.ErrTooLarge):
		logRequest(ctx, "info", "Rejected request", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, errs.NewValidationError(err.Error()))
	case errors.Is(err, store.ErrNotFound):
		logRequest(ctx, "info", "Not found")
		writeJSON(w, http.StatusNotFound, errs.NewNotFoundError("Not found."))
	default:
		logRequest(ctx, "error", "Request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Server error"))
	}
}

func writeInvalidJSON(ctx context.Context, w http.ResponseWriter, err error) {
	logRequest(ctx, "error", "Invalid request body", zap.Error(err))
	writeJSON(w, http.StatusBadRequest, errs.NewValidationError("Invalid JSON: "+err.Error()))
}

// decodeJSON reads the body into dst; unknown fields (such as an owner id) are ignored
func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

// decodePatch is decodeJSON for partial updates, where an empty body changes nothing
func decodePatch(r *http.Request, dst any) error {
	if err := decodeJSON(r, dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// currentUserID is the authenticated caller's id
func currentUserID(ctx context.Context) (int, bool) {
	return routing.UserID(ctx)
}

func writeUnauthenticated(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, errs.NewAuthenticationError("Authentication credentials were not provided."))
}

// requestTarget resolves the caller and the {id} path variable, writing the error response itself
func requestTarget(ctx context.Context, w http.ResponseWriter, r *http.Request) (userID, id int, ok bool) {
	userID, ok = currentUserID(ctx)
	if !ok {
		writeUnauthenticated(w)
		return 0, 0, false
	}
	id, err := pathID(r)
	if err != nil {
		writeError(ctx, w, store.ErrNotFound)
		return 0, 0, false
	}
	return userID, id, true
}

// pathID parses the {id} route variable
func pathID(r *http.Request) (int, error) {
	idStr := mux.Vars(r)["id"]
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", idStr)
	}
	return id, nil
}

// queryFlag reads a 0/1 style query parameter; absent means false
func queryFlag(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be an integer", name)
	}
	return n != 0, nil
}

// queryIDs reads a comma separated id list such as ?tags=1,2
func queryIDs(r *http.Request, name string) ([]int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	var ids []int
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("%s must be a comma separated list of ids", name)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
