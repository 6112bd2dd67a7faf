package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"familytree/internal/familytree"
	"familytree/internal/models"
	"familytree/internal/security"
	"familytree/internal/service"
	"familytree/internal/validation"
)

type errorResponse struct {
	Error string `json:"error"`
}

func respondWithJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// respondWithError writes userMsg as a JSON error body. err is logged, not shown.
func respondWithError(w http.ResponseWriter, logger *zap.Logger, status int, userMsg string, err error) {
	if err != nil {
		logger.Error(userMsg, zap.Int("status", status), zap.Error(err))
	}
	respondWithJSON(w, status, errorResponse{Error: userMsg})
}

// respondWithServiceError maps an error returned by a service to a status code
func respondWithServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		respondWithError(w, logger, status, ErrInternalServerError, err)
		return
	}
	respondWithJSON(w, status, errorResponse{Error: err.Error()})
}

var (
	badRequestErrors = []error{
		familytree.ErrInvalidArgument,
		service.ErrInvalidFamilyName,
		models.ErrInvalidMemberName,
		models.ErrInvalidMemberRole,
		models.ErrInvalidMemberStatus,
		models.ErrInvalidRelationshipType,
		models.ErrSelfRelationship,
		models.ErrUnexpectedCustomLabel,
	}
	unauthorizedErrors = []error{
		security.ErrInvalidToken,
		service.ErrInvalidCredentials,
	}
	forbiddenErrors = []error{
		service.ErrNotFamilyMember,
		service.ErrInsufficientRole,
		service.ErrCannotModifyHigherRole,
	}
	notFoundErrors = []error{
		familytree.ErrFamilyNotFound,
		familytree.ErrMemberNotFound,
		service.ErrUserNotFound,
		service.ErrRelationshipNotFound,
		service.ErrJoinRequestNotFound,
	}
	conflictErrors = []error{
		service.ErrEmailTaken,
		service.ErrRelationshipExists,
		service.ErrJoinRequestPending,
		service.ErrAlreadyMember,
		service.ErrJoinRequestReviewed,
	}
)

func statusFor(err error) int {
	var validationErr validation.ValidationError
	switch {
	case errors.As(err, &validationErr), isAny(err, badRequestErrors):
		return http.StatusBadRequest
	case isAny(err, unauthorizedErrors):
		return http.StatusUnauthorized
	case isAny(err, forbiddenErrors):
		return http.StatusForbidden
	case isAny(err, notFoundErrors):
		return http.StatusNotFound
	case isAny(err, conflictErrors):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
