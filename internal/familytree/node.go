package familytree

import (
	"strings"
	"time"

	"familytree/internal/models"
)

// CustomRelationFallbackLabel labels a custom relationship that carries no label of its own
const CustomRelationFallbackLabel = "Relative"

// TreeRelation is an outgoing relationship of a node whose target is also in the tree
type TreeRelation struct {
	RelationshipID int64
	ToMemberID     int64
	Type           models.RelationshipType
	Label          string
	Description    *string
}

// TreeNode is one member as shown in a tree
type TreeNode struct {
	Member     models.Member
	Age        *int
	IsViewer   bool
	Generation int
	Relations  []TreeRelation
}

func (n TreeNode) clone() TreeNode {
	if n.Relations != nil {
		relations := make([]TreeRelation, len(n.Relations))
		copy(relations, n.Relations)
		n.Relations = relations
	}
	return n
}

// NodeBuilder turns assigned members into tree nodes
type NodeBuilder struct {
	now func() time.Time
}

// NewNodeBuilder creates a node builder. A nil clock means time.Now.
func NewNodeBuilder(now func() time.Time) *NodeBuilder {
	if now == nil {
		now = time.Now
	}
	return &NodeBuilder{now: now}
}

// Build creates the node for member at the given generation. Only relationships in outgoing
// whose target is a key of assigned are attached.
func (b *NodeBuilder) Build(member models.Member, generation int, viewerUserID *int64, outgoing []models.Relationship, assigned map[int64]int) TreeNode {
	var relations []TreeRelation
	for _, rel := range outgoing {
		if _, inTree := assigned[rel.ToMemberID]; !inTree {
			continue
		}
		relations = append(relations, TreeRelation{
			RelationshipID: rel.ID,
			ToMemberID:     rel.ToMemberID,
			Type:           rel.Type,
			Label:          RelationLabel(rel),
			Description:    rel.Description,
		})
	}

	return TreeNode{
		Member:     member,
		Age:        AgeAt(member.Birthday, b.now()),
		IsViewer:   member.IsLinkedTo(viewerUserID),
		Generation: generation,
		Relations:  relations,
	}
}

// AgeAt returns the age in whole years on the given day, or nil without a birthday
func AgeAt(birthday *time.Time, now time.Time) *int {
	if birthday == nil {
		return nil
	}
	now = now.In(birthday.Location())

	age := now.Year() - birthday.Year()
	if now.Month() < birthday.Month() || (now.Month() == birthday.Month() && now.Day() < birthday.Day()) {
		age--
	}
	return &age
}

// RelationLabel returns the display label of a relationship
func RelationLabel(rel models.Relationship) string {
	if rel.Type != models.RelCustom {
		return rel.Type.Label()
	}
	if rel.CustomLabel != nil {
		if label := strings.TrimSpace(*rel.CustomLabel); label != "" {
			return label
		}
	}
	return CustomRelationFallbackLabel
}
