package familytree

import "familytree/internal/models"

// FamilyTree is the assembled result for one family. Accessors return copies, so a tree
// can be handed to several readers.
type FamilyTree struct {
	familyID    int64
	center      TreeNode
	generations []GenerationBucket
	metadata    TreeMetadata
}

func newFamilyTree(familyID int64, center TreeNode, generations []GenerationBucket, metadata TreeMetadata) *FamilyTree {
	return &FamilyTree{
		familyID:    familyID,
		center:      center,
		generations: generations,
		metadata:    metadata,
	}
}

// EmptyTree is the result for a family without active members: a placeholder center node,
// no buckets and zeroed metadata.
func EmptyTree(familyID int64) *FamilyTree {
	placeholder := TreeNode{
		Member:     models.Member{FamilyID: familyID},
		Generation: BaseGeneration,
	}
	return newFamilyTree(familyID, placeholder, nil, TreeMetadata{})
}

func (t *FamilyTree) FamilyID() int64 {
	return t.familyID
}

// Center returns the center node, or the placeholder of an empty tree
func (t *FamilyTree) Center() TreeNode {
	return t.center.clone()
}

// Generations returns the buckets in ascending level order
func (t *FamilyTree) Generations() []GenerationBucket {
	buckets := make([]GenerationBucket, len(t.generations))
	for i, bucket := range t.generations {
		buckets[i] = bucket.clone()
	}
	return buckets
}

func (t *FamilyTree) Metadata() TreeMetadata {
	return t.metadata
}

// IsEmpty reports whether the tree has no members
func (t *FamilyTree) IsEmpty() bool {
	return len(t.generations) == 0
}

// AllMembers flattens the buckets in level order
func (t *FamilyTree) AllMembers() []TreeNode {
	nodes := make([]TreeNode, 0, t.metadata.TotalMembers)
	for _, bucket := range t.generations {
		for _, node := range bucket.Members {
			nodes = append(nodes, node.clone())
		}
	}
	return nodes
}

// FindMember looks up the node of a member
func (t *FamilyTree) FindMember(memberID int64) (TreeNode, bool) {
	for _, bucket := range t.generations {
		for _, node := range bucket.Members {
			if node.Member.ID == memberID {
				return node.clone(), true
			}
		}
	}
	return TreeNode{}, false
}
