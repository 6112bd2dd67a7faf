package familytree

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"familytree/internal/models"
)

// Builder assembles family trees from the snapshots a Loader returns
type Builder struct {
	loader Loader
	nodes  *NodeBuilder
	logger *zap.Logger
	now    func() time.Time
}

// Option configures a Builder
type Option func(*Builder)

// WithLogger sets the logger used for build diagnostics
func WithLogger(logger *zap.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// WithClock sets the clock ages are computed against
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		b.now = now
	}
}

// NewBuilder creates a tree builder reading from loader
func NewBuilder(loader Loader, opts ...Option) *Builder {
	b := &Builder{
		loader: loader,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.nodes = NewNodeBuilder(b.now)
	return b
}

// Build loads the family named by req and assembles its tree.
//
// It returns ErrInvalidArgument for a request out of bounds, ErrFamilyNotFound when the
// family does not exist and ErrMemberNotFound when an explicit center is not an active
// member of the family. A family without active members yields EmptyTree. Loader errors
// are returned wrapped.
func (b *Builder) Build(ctx context.Context, req TreeRequest) (tree *FamilyTree, err error) {
	start := time.Now()
	defer func() {
		observeBuild(start, tree, err)
	}()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	family, err := b.loader.FindFamily(ctx, req.FamilyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load family %d: %w", req.FamilyID, err)
	}
	if family == nil {
		return nil, fmt.Errorf("%w: %d", ErrFamilyNotFound, req.FamilyID)
	}

	loaded, err := b.loader.FindActiveMembers(ctx, family.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load members of family %d: %w", family.ID, err)
	}
	if len(loaded) == 0 {
		b.logger.Debug("family has no active members", zap.Int64("family_id", family.ID))
		return EmptyTree(family.ID), nil
	}
	members := sortMembers(loaded)

	center, err := b.resolveCenter(ctx, family.ID, req.CenterMemberID, members)
	if err != nil {
		return nil, err
	}

	loadedRels, err := b.loader.FindRelationships(ctx, family.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load relationships of family %d: %w", family.ID, err)
	}
	relationships := sortRelationships(loadedRels)

	assigned := AssignGenerations(center.ID, members, relationships, req.MaxGenerations)
	outgoing := outgoingByMember(relationships)

	nodes := make([]TreeNode, 0, len(assigned))
	var centerNode TreeNode
	for _, member := range members {
		generation, ok := assigned[member.ID]
		if !ok {
			continue
		}
		node := b.nodes.Build(member, generation, req.ViewerUserID, outgoing[member.ID], assigned)
		if member.ID == center.ID {
			centerNode = node
		}
		nodes = append(nodes, node)
	}

	buckets := GroupByGeneration(nodes)
	metadata, err := ComputeMetadata(nodes, buckets)
	if err != nil {
		return nil, err
	}

	b.logger.Debug("family tree built",
		zap.Int64("family_id", family.ID),
		zap.Int64("center_member_id", center.ID),
		zap.Int("max_generations", req.MaxGenerations),
		zap.Int("members_loaded", len(members)),
		zap.Int("relationships_loaded", len(relationships)),
		zap.Int("members_placed", len(nodes)),
		zap.Int("generations", len(buckets)))

	return newFamilyTree(family.ID, centerNode, buckets, metadata), nil
}

// resolveCenter picks the requested center or, without one, the member with the lowest ID.
// members must already be sorted.
func (b *Builder) resolveCenter(ctx context.Context, familyID int64, centerID *int64, members []models.Member) (models.Member, error) {
	if centerID == nil {
		return members[0], nil
	}
	for _, member := range members {
		if member.ID == *centerID {
			return member, nil
		}
	}

	// Only used to say why the member is missing.
	member, err := b.loader.FindMember(ctx, *centerID)
	if err != nil {
		return models.Member{}, fmt.Errorf("failed to load member %d: %w", *centerID, err)
	}
	if member == nil {
		return models.Member{}, fmt.Errorf("%w: %d", ErrMemberNotFound, *centerID)
	}
	return models.Member{}, fmt.Errorf("%w: member %d is not an active member of family %d", ErrMemberNotFound, *centerID, familyID)
}

// sortMembers returns a copy ordered by ascending ID without duplicate IDs
func sortMembers(members []models.Member) []models.Member {
	sorted := make([]models.Member, 0, len(members))
	seen := make(map[int64]bool, len(members))
	for _, m := range members {
		if seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		sorted = append(sorted, m)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}
