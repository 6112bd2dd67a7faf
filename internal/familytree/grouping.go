package familytree

import (
	"fmt"
	"sort"
)

// GenerationBucket holds the nodes that share one generation level
type GenerationBucket struct {
	Level   int
	Label   string
	Members []TreeNode
}

var generationLabels = map[int]string{
	0: "Grandparents",
	1: "Parents",
	2: "Children",
	3: "Grandchildren",
	4: "Great-grandchildren",
}

// GenerationLabel returns the display label of a generation level
func GenerationLabel(level int) string {
	if label, ok := generationLabels[level]; ok {
		return label
	}
	return fmt.Sprintf("%dth generation", level)
}

// GroupByGeneration buckets nodes by level. Buckets are sorted by ascending level and nodes
// inside a bucket by member ID. Levels without nodes get no bucket.
func GroupByGeneration(nodes []TreeNode) []GenerationBucket {
	byLevel := make(map[int][]TreeNode)
	for _, node := range nodes {
		byLevel[node.Generation] = append(byLevel[node.Generation], node)
	}

	levels := make([]int, 0, len(byLevel))
	for level := range byLevel {
		levels = append(levels, level)
	}
	sort.Ints(levels)

	buckets := make([]GenerationBucket, 0, len(levels))
	for _, level := range levels {
		members := byLevel[level]
		sort.SliceStable(members, func(i, j int) bool {
			return members[i].Member.ID < members[j].Member.ID
		})
		buckets = append(buckets, GenerationBucket{
			Level:   level,
			Label:   GenerationLabel(level),
			Members: members,
		})
	}
	return buckets
}

func (b GenerationBucket) clone() GenerationBucket {
	members := make([]TreeNode, len(b.Members))
	for i, node := range b.Members {
		members[i] = node.clone()
	}
	b.Members = members
	return b
}
