package familytree

import "fmt"

// TreeMetadata summarizes a built tree
type TreeMetadata struct {
	TotalMembers      int
	ActiveMembers     int
	GenerationCount   int
	MaxGenerationSpan int
	// Complete is true when there is at least one bucket and every bucket has an active member
	Complete bool
}

// NewTreeMetadata validates the counts. Negative counts or more active than total members
// mean a bug upstream and return ErrInvalidMetadata.
func NewTreeMetadata(total, active, generations, maxSpan int, complete bool) (TreeMetadata, error) {
	if total < 0 || active < 0 || generations < 0 || maxSpan < 0 {
		return TreeMetadata{}, fmt.Errorf("%w: negative count", ErrInvalidMetadata)
	}
	if active > total {
		return TreeMetadata{}, fmt.Errorf("%w: %d active members exceed %d total", ErrInvalidMetadata, active, total)
	}
	return TreeMetadata{
		TotalMembers:      total,
		ActiveMembers:     active,
		GenerationCount:   generations,
		MaxGenerationSpan: maxSpan,
		Complete:          complete,
	}, nil
}

// ComputeMetadata aggregates nodes and their buckets
func ComputeMetadata(nodes []TreeNode, buckets []GenerationBucket) (TreeMetadata, error) {
	active := 0
	for _, node := range nodes {
		if node.Member.IsActive() {
			active++
		}
	}

	maxSpan := 0
	complete := len(buckets) > 0
	for _, bucket := range buckets {
		if bucket.Level+1 > maxSpan {
			maxSpan = bucket.Level + 1
		}
		if !hasActiveMember(bucket) {
			complete = false
		}
	}

	return NewTreeMetadata(len(nodes), active, len(buckets), maxSpan, complete)
}

func hasActiveMember(bucket GenerationBucket) bool {
	for _, node := range bucket.Members {
		if node.Member.IsActive() {
			return true
		}
	}
	return false
}
