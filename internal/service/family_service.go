package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"familytree/internal/familytree"
	"familytree/internal/models"
	"familytree/internal/repository"
)

var (
	ErrFamilyNotFound         = familytree.ErrFamilyNotFound
	ErrMemberNotFound         = familytree.ErrMemberNotFound
	ErrUserNotFound           = errors.New("user not found")
	ErrNotFamilyMember        = errors.New("user is not an active member of this family")
	ErrInsufficientRole       = errors.New("insufficient role for this action")
	ErrRelationshipNotFound   = errors.New("relationship not found")
	ErrRelationshipExists     = errors.New("relationship already exists")
	ErrInvalidFamilyName      = errors.New("family name is required")
	ErrCannotModifyHigherRole = errors.New("cannot modify a member with a higher role")
)

// FamilyService handles families, their members and relationships, and access to them
type FamilyService struct {
	familyRepo       *repository.FamilyRepository
	memberRepo       *repository.MemberRepository
	relationshipRepo *repository.RelationshipRepository
	userRepo         *repository.UserRepository
	logger           *zap.Logger
}

// NewFamilyService creates a new family service
func NewFamilyService(
	familyRepo *repository.FamilyRepository,
	memberRepo *repository.MemberRepository,
	relationshipRepo *repository.RelationshipRepository,
	userRepo *repository.UserRepository,
	logger *zap.Logger,
) *FamilyService {
	return &FamilyService{
		familyRepo:       familyRepo,
		memberRepo:       memberRepo,
		relationshipRepo: relationshipRepo,
		userRepo:         userRepo,
		logger:           logger,
	}
}

// CreateFamily creates a new family with the user as its owner member
func (s *FamilyService) CreateFamily(ctx context.Context, userID int64, name, description string) (*models.Family, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidFamilyName
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	family, owner, err := s.familyRepo.CreateFamily(ctx, name, strings.TrimSpace(description), user)
	if err != nil {
		return nil, fmt.Errorf("failed to create family: %w", err)
	}

	s.logger.Info("family created",
		zap.Int64("family_id", family.ID),
		zap.Int64("owner_member_id", owner.ID),
		zap.Int64("user_id", userID))
	return family, nil
}

// GetUserFamilies retrieves the families a user is an active member of
func (s *FamilyService) GetUserFamilies(ctx context.Context, userID int64) ([]models.Family, error) {
	families, err := s.familyRepo.GetUserFamilies(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user families: %w", err)
	}
	return families, nil
}

// GetFamily retrieves a family the user may view
func (s *FamilyService) GetFamily(ctx context.Context, userID, familyID int64) (*models.Family, error) {
	family, _, err := s.authorize(ctx, userID, familyID, models.RoleViewer)
	return family, err
}

// Authorize returns the user's member record in the family if it is active and holds
// at least minRole.
func (s *FamilyService) Authorize(ctx context.Context, userID, familyID int64, minRole models.MemberRole) (*models.Member, error) {
	_, member, err := s.authorize(ctx, userID, familyID, minRole)
	return member, err
}

func (s *FamilyService) authorize(ctx context.Context, userID, familyID int64, minRole models.MemberRole) (*models.Family, *models.Member, error) {
	family, err := s.familyRepo.GetFamilyByID(ctx, familyID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get family: %w", err)
	}
	if family == nil {
		return nil, nil, ErrFamilyNotFound
	}

	member, err := s.memberRepo.GetMemberByUserAndFamily(ctx, userID, familyID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to verify family access: %w", err)
	}
	if member == nil || !member.IsActive() {
		return nil, nil, ErrNotFamilyMember
	}
	if !member.Role.AtLeast(minRole) {
		return nil, nil, ErrInsufficientRole
	}
	return family, member, nil
}

// ListMembers retrieves the active members of a family
func (s *FamilyService) ListMembers(ctx context.Context, userID, familyID int64) ([]models.Member, error) {
	if _, err := s.Authorize(ctx, userID, familyID, models.RoleViewer); err != nil {
		return nil, err
	}
	members, err := s.memberRepo.GetActiveMembers(ctx, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get family members: %w", err)
	}
	return members, nil
}

// AddMember adds a person to a family. Admins cannot grant a role above their own.
func (s *FamilyService) AddMember(ctx context.Context, userID, familyID int64, name string, role models.MemberRole, birthday *time.Time) (*models.Member, error) {
	actor, err := s.Authorize(ctx, userID, familyID, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if !actor.Role.AtLeast(role) {
		return nil, ErrInsufficientRole
	}

	member, err := models.NewMember(familyID, name, nil, role, birthday)
	if err != nil {
		return nil, err
	}

	created, err := s.memberRepo.CreateMember(ctx, member)
	if err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	s.logger.Info("member added",
		zap.Int64("family_id", familyID),
		zap.Int64("member_id", created.ID),
		zap.String("role", string(role)))
	return created, nil
}

// UpdateMemberStatus changes the lifecycle status of a member of the family
func (s *FamilyService) UpdateMemberStatus(ctx context.Context, userID, familyID, memberID int64, status models.MemberStatus) (*models.Member, error) {
	actor, err := s.Authorize(ctx, userID, familyID, models.RoleAdmin)
	if err != nil {
		return nil, err
	}

	member, err := s.memberRepo.GetMemberByID(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	if member == nil || member.FamilyID != familyID {
		return nil, ErrMemberNotFound
	}
	if member.ID != actor.ID && !actor.Role.AtLeast(member.Role) {
		return nil, ErrCannotModifyHigherRole
	}

	if err := s.memberRepo.UpdateMemberStatus(ctx, memberID, status); err != nil {
		return nil, fmt.Errorf("failed to update member: %w", err)
	}
	member.Status = status

	s.logger.Info("member status updated",
		zap.Int64("family_id", familyID),
		zap.Int64("member_id", memberID),
		zap.String("status", string(status)))
	return member, nil
}

// ListRelationships retrieves every relationship of a family
func (s *FamilyService) ListRelationships(ctx context.Context, userID, familyID int64) ([]models.Relationship, error) {
	if _, err := s.Authorize(ctx, userID, familyID, models.RoleViewer); err != nil {
		return nil, err
	}
	relationships, err := s.relationshipRepo.GetFamilyRelationships(ctx, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get relationships: %w", err)
	}
	return relationships, nil
}

// CreateRelationship records that fromMemberID is relType of toMemberID.
// Both members must belong to the family.
func (s *FamilyService) CreateRelationship(ctx context.Context, userID, familyID, fromMemberID, toMemberID int64, relType models.RelationshipType, customLabel, description *string) (*models.Relationship, error) {
	if _, err := s.Authorize(ctx, userID, familyID, models.RoleAdmin); err != nil {
		return nil, err
	}

	rel, err := models.NewRelationship(familyID, fromMemberID, toMemberID, relType, customLabel, description)
	if err != nil {
		return nil, err
	}

	for _, id := range []int64{fromMemberID, toMemberID} {
		member, err := s.memberRepo.GetMemberByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to get member: %w", err)
		}
		if member == nil || member.FamilyID != familyID {
			return nil, fmt.Errorf("%w: %d", ErrMemberNotFound, id)
		}
	}

	existing, err := s.relationshipRepo.GetFamilyRelationships(ctx, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get relationships: %w", err)
	}
	for _, e := range existing {
		if e.FromMemberID == fromMemberID && e.ToMemberID == toMemberID && e.Type == relType {
			return nil, ErrRelationshipExists
		}
	}

	created, err := s.relationshipRepo.CreateRelationship(ctx, rel)
	if err != nil {
		return nil, fmt.Errorf("failed to create relationship: %w", err)
	}

	s.logger.Info("relationship created",
		zap.Int64("family_id", familyID),
		zap.Int64("relationship_id", created.ID),
		zap.String("type", string(relType)))
	return created, nil
}

// DeleteRelationship removes a relationship of the family
func (s *FamilyService) DeleteRelationship(ctx context.Context, userID, familyID, relationshipID int64) error {
	if _, err := s.Authorize(ctx, userID, familyID, models.RoleAdmin); err != nil {
		return err
	}

	rel, err := s.relationshipRepo.GetRelationshipByID(ctx, relationshipID)
	if err != nil {
		return fmt.Errorf("failed to get relationship: %w", err)
	}
	if rel == nil || rel.FamilyID != familyID {
		return ErrRelationshipNotFound
	}

	if err := s.relationshipRepo.DeleteRelationship(ctx, relationshipID); err != nil {
		return fmt.Errorf("failed to delete relationship: %w", err)
	}

	s.logger.Info("relationship deleted",
		zap.Int64("family_id", familyID),
		zap.Int64("relationship_id", relationshipID))
	return nil
}
