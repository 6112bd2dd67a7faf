package service

import (
	"context"

	"go.uber.org/zap"

	"familytree/internal/familytree"
	"familytree/internal/models"
	"familytree/internal/repository"
)

// repositoryLoader serves tree snapshots straight from the repositories
type repositoryLoader struct {
	families      *repository.FamilyRepository
	members       *repository.MemberRepository
	relationships *repository.RelationshipRepository
}

// NewRepositoryLoader returns a familytree.Loader backed by the SQL repositories
func NewRepositoryLoader(families *repository.FamilyRepository, members *repository.MemberRepository, relationships *repository.RelationshipRepository) familytree.Loader {
	return &repositoryLoader{families: families, members: members, relationships: relationships}
}

func (l *repositoryLoader) FindFamily(ctx context.Context, familyID int64) (*models.Family, error) {
	return l.families.GetFamilyByID(ctx, familyID)
}

func (l *repositoryLoader) FindActiveMembers(ctx context.Context, familyID int64) ([]models.Member, error) {
	return l.members.GetActiveMembers(ctx, familyID)
}

func (l *repositoryLoader) FindRelationships(ctx context.Context, familyID int64) ([]models.Relationship, error) {
	return l.relationships.GetFamilyRelationships(ctx, familyID)
}

func (l *repositoryLoader) FindMember(ctx context.Context, memberID int64) (*models.Member, error) {
	return l.members.GetMemberByID(ctx, memberID)
}

// TreeService builds family trees for users allowed to view them
type TreeService struct {
	families *FamilyService
	builder  *familytree.Builder
	logger   *zap.Logger
}

// NewTreeService creates a new tree service
func NewTreeService(families *FamilyService, loader familytree.Loader, logger *zap.Logger) *TreeService {
	return &TreeService{
		families: families,
		builder:  familytree.NewBuilder(loader, familytree.WithLogger(logger)),
		logger:   logger,
	}
}

// GetTree builds the tree of a family as seen by userID. A nil centerMemberID centers
// the tree on the lowest member ID; a nil maxGenerations uses the default depth.
func (s *TreeService) GetTree(ctx context.Context, userID, familyID int64, centerMemberID *int64, maxGenerations *int) (*familytree.FamilyTree, error) {
	req, err := familytree.NewTreeRequest(familyID, centerMemberID, maxGenerations, &userID)
	if err != nil {
		return nil, err
	}

	if _, err := s.families.Authorize(ctx, userID, familyID, models.RoleViewer); err != nil {
		return nil, err
	}

	return s.builder.Build(ctx, req)
}
