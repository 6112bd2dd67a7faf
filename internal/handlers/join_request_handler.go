package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"familytree/internal/models"
)

// JoinRequestService is the join request API the handler needs
type JoinRequestService interface {
	RequestToJoin(ctx context.Context, userID, familyID int64, message string) (*models.JoinRequest, error)
	ListPending(ctx context.Context, userID, familyID int64) ([]models.JoinRequest, error)
	Approve(ctx context.Context, reviewerID, familyID, requestID int64) (*models.Member, error)
	Reject(ctx context.Context, reviewerID, familyID, requestID int64) error
}

// JoinRequestHandler handles requests to join a family and their review
type JoinRequestHandler struct {
	joinService JoinRequestService
	logger      *zap.Logger
}

// NewJoinRequestHandler creates a new join request handler
func NewJoinRequestHandler(joinService JoinRequestService, logger *zap.Logger) *JoinRequestHandler {
	return &JoinRequestHandler{
		joinService: joinService,
		logger:      logger,
	}
}

type joinRequestRequest struct {
	Message string `json:"message" validate:"max=1000"`
}

func (h *JoinRequestHandler) RequestToJoin(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	familyID, err := pathID(r, "familyID")
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	var req joinRequestRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	created, err := h.joinService.RequestToJoin(r.Context(), user.ID, familyID, req.Message)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, newJoinRequestView(*created))
}

func (h *JoinRequestHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	familyID, err := pathID(r, "familyID")
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	requests, err := h.joinService.ListPending(r.Context(), user.ID, familyID)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	views := make([]JoinRequestView, 0, len(requests))
	for _, req := range requests {
		views = append(views, newJoinRequestView(req))
	}
	respondWithJSON(w, http.StatusOK, views)
}

// Approve accepts a request and returns the new member
func (h *JoinRequestHandler) Approve(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	familyID, requestID, err := h.requestPath(r)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	member, err := h.joinService.Approve(r.Context(), user.ID, familyID, requestID)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newMemberView(*member))
}

func (h *JoinRequestHandler) Reject(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	familyID, requestID, err := h.requestPath(r)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	if err := h.joinService.Reject(r.Context(), user.ID, familyID, requestID); err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *JoinRequestHandler) requestPath(r *http.Request) (int64, int64, error) {
	familyID, err := pathID(r, "familyID")
	if err != nil {
		return 0, 0, err
	}
	requestID, err := pathID(r, "requestID")
	if err != nil {
		return 0, 0, err
	}
	return familyID, requestID, nil
}
