package familytree

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"familytree/internal/models"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestAgeAt(t *testing.T) {
	now := date(2024, time.June, 15)

	tests := []struct {
		name     string
		birthday time.Time
		want     int
	}{
		{name: "birthday already passed", birthday: date(1990, time.January, 10), want: 34},
		{name: "birthday today", birthday: date(1990, time.June, 15), want: 34},
		{name: "birthday tomorrow", birthday: date(1990, time.June, 16), want: 33},
		{name: "birthday later this year", birthday: date(1990, time.December, 1), want: 33},
		{name: "born this year", birthday: date(2024, time.February, 1), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			birthday := tt.birthday
			age := AgeAt(&birthday, now)
			require.NotNil(t, age)
			assert.Equal(t, tt.want, *age)
		})
	}

	assert.Nil(t, AgeAt(nil, now))
}

func TestRelationLabel(t *testing.T) {
	godmother := "Godmother"
	blank := "   "

	tests := []struct {
		name string
		rel  models.Relationship
		want string
	}{
		{name: "canonical label", rel: models.Relationship{Type: models.RelGrandmother}, want: "Grandmother"},
		{name: "custom with label", rel: models.Relationship{Type: models.RelCustom, CustomLabel: &godmother}, want: "Godmother"},
		{name: "custom without label", rel: models.Relationship{Type: models.RelCustom}, want: CustomRelationFallbackLabel},
		{name: "custom with blank label", rel: models.Relationship{Type: models.RelCustom, CustomLabel: &blank}, want: CustomRelationFallbackLabel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RelationLabel(tt.rel))
		})
	}
}

func TestNodeBuilderBuild(t *testing.T) {
	now := date(2024, time.June, 15)
	builder := NewNodeBuilder(func() time.Time { return now })

	viewer := int64(500)
	birthday := date(2000, time.July, 1)
	m := member(1, "A")
	m.UserID = &viewer
	m.Birthday = &birthday

	description := "since 1999"
	outgoing := []models.Relationship{
		rel(1, 1, 2, models.RelFather),
		rel(2, 1, 3, models.RelSon), // 3 is not in the tree
		{ID: 3, FamilyID: 1, FromMemberID: 1, ToMemberID: 4, Type: models.RelCustom, Description: &description},
	}
	assigned := map[int64]int{1: 1, 2: 0, 4: 1}

	node := builder.Build(m, 1, &viewer, outgoing, assigned)

	assert.Equal(t, int64(1), node.Member.ID)
	assert.Equal(t, 1, node.Generation)
	assert.True(t, node.IsViewer)
	require.NotNil(t, node.Age)
	assert.Equal(t, 23, *node.Age)

	require.Len(t, node.Relations, 2)
	assert.Equal(t, TreeRelation{RelationshipID: 1, ToMemberID: 2, Type: models.RelFather, Label: "Father"}, node.Relations[0])
	assert.Equal(t, int64(4), node.Relations[1].ToMemberID)
	assert.Equal(t, CustomRelationFallbackLabel, node.Relations[1].Label)
	assert.Equal(t, &description, node.Relations[1].Description)
}

func TestNodeBuilderViewerFlag(t *testing.T) {
	builder := NewNodeBuilder(nil)
	linked, other := int64(5), int64(6)

	withAccount := member(1, "A")
	withAccount.UserID = &linked

	assert.True(t, builder.Build(withAccount, 1, &linked, nil, nil).IsViewer)
	assert.False(t, builder.Build(withAccount, 1, &other, nil, nil).IsViewer)
	assert.False(t, builder.Build(withAccount, 1, nil, nil, nil).IsViewer)
	assert.False(t, builder.Build(member(2, "B"), 1, &linked, nil, nil).IsViewer)
	assert.Nil(t, builder.Build(member(2, "B"), 1, nil, nil, nil).Age)
}
