package familytree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"familytree/internal/models"
)

func node(id int64, generation int, status models.MemberStatus) TreeNode {
	m := member(id, "m")
	m.Status = status
	return TreeNode{Member: m, Generation: generation}
}

func TestGenerationLabel(t *testing.T) {
	tests := []struct {
		level int
		want  string
	}{
		{0, "Grandparents"},
		{1, "Parents"},
		{2, "Children"},
		{3, "Grandchildren"},
		{4, "Great-grandchildren"},
		{5, "5th generation"},
		{9, "9th generation"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, GenerationLabel(tt.level))
	}
}

func TestGroupByGeneration(t *testing.T) {
	nodes := []TreeNode{
		node(9, 2, models.StatusActive),
		node(3, 0, models.StatusActive),
		node(5, 2, models.StatusActive),
		node(1, 1, models.StatusActive),
	}

	buckets := GroupByGeneration(nodes)

	require.Len(t, buckets, 3)
	assert.Equal(t, 0, buckets[0].Level)
	assert.Equal(t, "Grandparents", buckets[0].Label)
	assert.Equal(t, 1, buckets[1].Level)
	assert.Equal(t, 2, buckets[2].Level)
	require.Len(t, buckets[2].Members, 2)
	assert.Equal(t, int64(5), buckets[2].Members[0].Member.ID)
	assert.Equal(t, int64(9), buckets[2].Members[1].Member.ID)
}

func TestGroupByGenerationSkipsEmptyLevels(t *testing.T) {
	buckets := GroupByGeneration([]TreeNode{node(1, 1, models.StatusActive), node(2, 4, models.StatusActive)})

	require.Len(t, buckets, 2)
	assert.Equal(t, 1, buckets[0].Level)
	assert.Equal(t, 4, buckets[1].Level)
	for _, bucket := range buckets {
		assert.NotEmpty(t, bucket.Members)
	}

	assert.Empty(t, GroupByGeneration(nil))
}
