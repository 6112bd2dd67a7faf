package handlers

import (
	"time"

	"familytree/internal/familytree"
	"familytree/internal/models"
)

type UserView struct {
	ID      int64  `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	IsAdmin bool   `json:"isAdmin"`
}

type TokenView struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      UserView  `json:"user"`
}

type FamilyView struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedBy   int64     `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

type MemberView struct {
	ID       int64      `json:"id"`
	FamilyID int64      `json:"familyId"`
	Name     string     `json:"name"`
	UserID   *int64     `json:"userId,omitempty"`
	Role     string     `json:"role"`
	Status   string     `json:"status"`
	Birthday *time.Time `json:"birthday,omitempty"`
}

type RelationshipView struct {
	ID           int64   `json:"id"`
	FamilyID     int64   `json:"familyId"`
	FromMemberID int64   `json:"fromMemberId"`
	ToMemberID   int64   `json:"toMemberId"`
	Type         string  `json:"type"`
	Label        string  `json:"label"`
	CustomLabel  *string `json:"customLabel,omitempty"`
	Description  *string `json:"description,omitempty"`
}

type JoinRequestView struct {
	ID        int64     `json:"id"`
	FamilyID  int64     `json:"familyId"`
	UserID    int64     `json:"userId"`
	Name      string    `json:"name,omitempty"`
	Email     string    `json:"email,omitempty"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

type TreeRelationView struct {
	RelationshipID int64   `json:"relationshipId"`
	ToMemberID     int64   `json:"toMemberId"`
	Type           string  `json:"type"`
	Label          string  `json:"label"`
	Description    *string `json:"description,omitempty"`
}

type TreeNodeView struct {
	MemberView
	Age        *int               `json:"age,omitempty"`
	IsViewer   bool               `json:"isViewer"`
	Generation int                `json:"generation"`
	Relations  []TreeRelationView `json:"relations"`
}

type GenerationView struct {
	Level   int            `json:"level"`
	Label   string         `json:"label"`
	Members []TreeNodeView `json:"members"`
}

type TreeMetadataView struct {
	TotalMembers      int  `json:"totalMembers"`
	ActiveMembers     int  `json:"activeMembers"`
	GenerationCount   int  `json:"generationCount"`
	MaxGenerationSpan int  `json:"maxGenerationSpan"`
	Complete          bool `json:"complete"`
}

type TreeView struct {
	FamilyID    int64            `json:"familyId"`
	Center      *TreeNodeView    `json:"center"`
	Generations []GenerationView `json:"generations"`
	Metadata    TreeMetadataView `json:"metadata"`
}

func newUserView(u *models.User) UserView {
	return UserView{ID: u.ID, Email: u.Email, Name: u.Name, IsAdmin: u.IsAdmin}
}

func newFamilyView(f models.Family) FamilyView {
	return FamilyView{
		ID:          f.ID,
		Name:        f.Name,
		Description: f.Description,
		CreatedBy:   f.CreatedBy,
		CreatedAt:   f.CreatedAt,
	}
}

func newFamilyViews(families []models.Family) []FamilyView {
	views := make([]FamilyView, 0, len(families))
	for _, f := range families {
		views = append(views, newFamilyView(f))
	}
	return views
}

func newMemberView(m models.Member) MemberView {
	return MemberView{
		ID:       m.ID,
		FamilyID: m.FamilyID,
		Name:     m.Name,
		UserID:   m.UserID,
		Role:     string(m.Role),
		Status:   string(m.Status),
		Birthday: m.Birthday,
	}
}

func newMemberViews(members []models.Member) []MemberView {
	views := make([]MemberView, 0, len(members))
	for _, m := range members {
		views = append(views, newMemberView(m))
	}
	return views
}

func newRelationshipView(r models.Relationship) RelationshipView {
	return RelationshipView{
		ID:           r.ID,
		FamilyID:     r.FamilyID,
		FromMemberID: r.FromMemberID,
		ToMemberID:   r.ToMemberID,
		Type:         string(r.Type),
		Label:        familytree.RelationLabel(r),
		CustomLabel:  r.CustomLabel,
		Description:  r.Description,
	}
}

func newRelationshipViews(relationships []models.Relationship) []RelationshipView {
	views := make([]RelationshipView, 0, len(relationships))
	for _, r := range relationships {
		views = append(views, newRelationshipView(r))
	}
	return views
}

func newJoinRequestView(j models.JoinRequest) JoinRequestView {
	return JoinRequestView{
		ID:        j.ID,
		FamilyID:  j.FamilyID,
		UserID:    j.UserID,
		Name:      j.RequestName,
		Email:     j.RequestMail,
		Message:   j.Message,
		Status:    string(j.Status),
		CreatedAt: j.CreatedAt,
	}
}

func newTreeNodeView(n familytree.TreeNode) TreeNodeView {
	relations := make([]TreeRelationView, 0, len(n.Relations))
	for _, rel := range n.Relations {
		relations = append(relations, TreeRelationView{
			RelationshipID: rel.RelationshipID,
			ToMemberID:     rel.ToMemberID,
			Type:           string(rel.Type),
			Label:          rel.Label,
			Description:    rel.Description,
		})
	}
	return TreeNodeView{
		MemberView: newMemberView(n.Member),
		Age:        n.Age,
		IsViewer:   n.IsViewer,
		Generation: n.Generation,
		Relations:  relations,
	}
}

// newTreeView renders a tree. An empty tree has a null center and no generations.
func newTreeView(tree *familytree.FamilyTree) TreeView {
	meta := tree.Metadata()
	view := TreeView{
		FamilyID:    tree.FamilyID(),
		Generations: []GenerationView{},
		Metadata: TreeMetadataView{
			TotalMembers:      meta.TotalMembers,
			ActiveMembers:     meta.ActiveMembers,
			GenerationCount:   meta.GenerationCount,
			MaxGenerationSpan: meta.MaxGenerationSpan,
			Complete:          meta.Complete,
		},
	}
	if tree.IsEmpty() {
		return view
	}

	center := newTreeNodeView(tree.Center())
	view.Center = &center
	for _, bucket := range tree.Generations() {
		members := make([]TreeNodeView, 0, len(bucket.Members))
		for _, node := range bucket.Members {
			members = append(members, newTreeNodeView(node))
		}
		view.Generations = append(view.Generations, GenerationView{
			Level:   bucket.Level,
			Label:   bucket.Label,
			Members: members,
		})
	}
	return view
}
