package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"familytree/internal/familytree"
)

// TreeService builds family trees for a viewer
type TreeService interface {
	GetTree(ctx context.Context, userID, familyID int64, centerMemberID *int64, maxGenerations *int) (*familytree.FamilyTree, error)
}

// TreeHandler serves generation-organized family trees
type TreeHandler struct {
	treeService TreeService
	logger      *zap.Logger
}

// NewTreeHandler creates a new tree handler
func NewTreeHandler(treeService TreeService, logger *zap.Logger) *TreeHandler {
	return &TreeHandler{
		treeService: treeService,
		logger:      logger,
	}
}

// GetTree handles GET /api/families/{familyID}/tree?centerMemberId=&maxGenerations=
func (h *TreeHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	familyID, err := pathID(r, "familyID")
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	centerMemberID, err := queryInt64(r, "centerMemberId")
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	maxGenerations, err := queryInt(r, "maxGenerations")
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	tree, err := h.treeService.GetTree(r.Context(), user.ID, familyID, centerMemberID, maxGenerations)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newTreeView(tree))
}
