package familytree

import (
	"context"

	"familytree/internal/models"
)

// Loader supplies the snapshot a tree is built from.
//
// Find* methods return (nil, nil) when the record does not exist. FindActiveMembers
// returns members ordered by ascending ID; the first of them is the default center.
type Loader interface {
	FindFamily(ctx context.Context, familyID int64) (*models.Family, error)
	FindActiveMembers(ctx context.Context, familyID int64) ([]models.Member, error)
	FindRelationships(ctx context.Context, familyID int64) ([]models.Relationship, error)
	FindMember(ctx context.Context, memberID int64) (*models.Member, error)
}
