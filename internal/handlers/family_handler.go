package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"familytree/internal/familytree"
	"familytree/internal/models"
)

const birthdayLayout = "2006-01-02"

// FamilyService is the family, member and relationship API the family handler needs
type FamilyService interface {
	CreateFamily(ctx context.Context, userID int64, name, description string) (*models.Family, error)
	GetUserFamilies(ctx context.Context, userID int64) ([]models.Family, error)
	GetFamily(ctx context.Context, userID, familyID int64) (*models.Family, error)
	ListMembers(ctx context.Context, userID, familyID int64) ([]models.Member, error)
	AddMember(ctx context.Context, userID, familyID int64, name string, role models.MemberRole, birthday *time.Time) (*models.Member, error)
	UpdateMemberStatus(ctx context.Context, userID, familyID, memberID int64, status models.MemberStatus) (*models.Member, error)
	ListRelationships(ctx context.Context, userID, familyID int64) ([]models.Relationship, error)
	CreateRelationship(ctx context.Context, userID, familyID, fromMemberID, toMemberID int64, relType models.RelationshipType, customLabel, description *string) (*models.Relationship, error)
	DeleteRelationship(ctx context.Context, userID, familyID, relationshipID int64) error
}

// FamilyHandler handles families, their members and relationships
type FamilyHandler struct {
	familyService FamilyService
	logger        *zap.Logger
}

// NewFamilyHandler creates a new family handler
func NewFamilyHandler(familyService FamilyService, logger *zap.Logger) *FamilyHandler {
	return &FamilyHandler{
		familyService: familyService,
		logger:        logger,
	}
}

type createFamilyRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"max=2000"`
}

type addMemberRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Role     string `json:"role" validate:"omitempty,oneof=viewer member admin owner"`
	Birthday string `json:"birthday" validate:"omitempty,datetime=2006-01-02"`
}

type updateMemberStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active suspended banned"`
}

type createRelationshipRequest struct {
	FromMemberID int64   `json:"fromMemberId" validate:"gt=0"`
	ToMemberID   int64   `json:"toMemberId" validate:"gt=0"`
	Type         string  `json:"type" validate:"required"`
	CustomLabel  *string `json:"customLabel" validate:"omitempty,max=100"`
	Description  *string `json:"description" validate:"omitempty,max=500"`
}

// CreateFamily creates a family owned by the current user
func (h *FamilyHandler) CreateFamily(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	var req createFamilyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	family, err := h.familyService.CreateFamily(r.Context(), user.ID, req.Name, req.Description)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, newFamilyView(*family))
}

// ListFamilies lists the families of the current user
func (h *FamilyHandler) ListFamilies(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	families, err := h.familyService.GetUserFamilies(r.Context(), user.ID)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newFamilyViews(families))
}

func (h *FamilyHandler) GetFamily(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	familyID, err := pathID(r, "familyID")
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	family, err := h.familyService.GetFamily(r.Context(), user.ID, familyID)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newFamilyView(*family))
}

func (h *FamilyHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	familyID, err := pathID(r, "familyID")
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	members, err := h.familyService.ListMembers(r.Context(), user.ID, familyID)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newMemberViews(members))
}

// AddMember adds a person who has no account of their own
func (h *FamilyHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	familyID, err := pathID(r, "familyID")
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	var req addMemberRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	role := models.RoleMember
	if req.Role != "" {
		role = models.MemberRole(req.Role)
	}

	var birthday *time.Time
	if req.Birthday != "" {
		t, err := time.Parse(birthdayLayout, req.Birthday)
		if err != nil {
			respondWithServiceError(w, h.logger, fmt.Errorf("%w: birthday must be YYYY-MM-DD", familytree.ErrInvalidArgument))
			return
		}
		birthday = &t
	}

	member, err := h.familyService.AddMember(r.Context(), user.ID, familyID, req.Name, role, birthday)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, newMemberView(*member))
}

func (h *FamilyHandler) UpdateMemberStatus(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	familyID, err := pathID(r, "familyID")
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	memberID, err := pathID(r, "memberID")
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	var req updateMemberStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	member, err := h.familyService.UpdateMemberStatus(r.Context(), user.ID, familyID, memberID, models.MemberStatus(req.Status))
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newMemberView(*member))
}

func (h *FamilyHandler) ListRelationships(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	familyID, err := pathID(r, "familyID")
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	relationships, err := h.familyService.ListRelationships(r.Context(), user.ID, familyID)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newRelationshipViews(relationships))
}

// CreateRelationship records that fromMemberId is type of toMemberId
func (h *FamilyHandler) CreateRelationship(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	familyID, err := pathID(r, "familyID")
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	var req createRelationshipRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	relType, err := models.ParseRelationshipType(req.Type)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	rel, err := h.familyService.CreateRelationship(r.Context(), user.ID, familyID, req.FromMemberID, req.ToMemberID, relType, req.CustomLabel, req.Description)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, newRelationshipView(*rel))
}

func (h *FamilyHandler) DeleteRelationship(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	familyID, err := pathID(r, "familyID")
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	relationshipID, err := pathID(r, "relationshipID")
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	if err := h.familyService.DeleteRelationship(r.Context(), user.ID, familyID, relationshipID); err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
