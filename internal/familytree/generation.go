package familytree

import (
	"sort"

	"familytree/internal/models"
)

// BaseGeneration is the level of the center member, so that level 0 is one generation up
// and level 2 one generation down. The center keeps this level whatever the depth bound.
const BaseGeneration = 1

// AssignGenerations walks outgoing relationships breadth-first from the center member and
// returns the generation level of every member it reaches.
//
// A target is recorded the first time it is reached with a level in [0, maxDepth) and
// fewer than maxDepth hops from the center. It is never revisited or re-leveled, even if a
// shorter path turns up later. Relationships are expanded in ascending ID order, which
// makes the result independent of the order the caller passes them in. Targets that are
// not in members are ignored. If the center is not in members the result is empty.
func AssignGenerations(centerID int64, members []models.Member, relationships []models.Relationship, maxDepth int) map[int64]int {
	// Dense slots back the visited and level tables.
	slots := make(map[int64]int, len(members))
	ids := make([]int64, 0, len(members))
	for _, m := range members {
		if _, seen := slots[m.ID]; seen {
			continue
		}
		slots[m.ID] = len(ids)
		ids = append(ids, m.ID)
	}

	centerSlot, ok := slots[centerID]
	if !ok {
		return map[int64]int{}
	}

	outgoing := make([][]models.Relationship, len(ids))
	for _, rel := range sortRelationships(relationships) {
		if from, ok := slots[rel.FromMemberID]; ok {
			outgoing[from] = append(outgoing[from], rel)
		}
	}

	levels := make([]int, len(ids))
	hops := make([]int, len(ids))
	assigned := make([]bool, len(ids))
	assigned[centerSlot] = true
	levels[centerSlot] = BaseGeneration

	queue := []int{centerSlot}
	for len(queue) > 0 {
		slot := queue[0]
		queue = queue[1:]
		if hops[slot]+1 >= maxDepth {
			continue
		}

		for _, rel := range outgoing[slot] {
			target, ok := slots[rel.ToMemberID]
			if !ok || assigned[target] {
				continue
			}
			candidate := levels[slot] + rel.Type.GenerationDelta()
			if candidate < 0 || candidate >= maxDepth {
				continue
			}
			assigned[target] = true
			levels[target] = candidate
			hops[target] = hops[slot] + 1
			queue = append(queue, target)
		}
	}

	result := make(map[int64]int, len(ids))
	for slot, id := range ids {
		if assigned[slot] {
			result[id] = levels[slot]
		}
	}
	return result
}

// sortRelationships returns a copy ordered by ascending ID. Equal IDs keep their input order.
func sortRelationships(relationships []models.Relationship) []models.Relationship {
	sorted := make([]models.Relationship, len(relationships))
	copy(sorted, relationships)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}

// outgoingByMember indexes relationships by source member, preserving their order
func outgoingByMember(relationships []models.Relationship) map[int64][]models.Relationship {
	index := make(map[int64][]models.Relationship)
	for _, rel := range relationships {
		index[rel.FromMemberID] = append(index[rel.FromMemberID], rel)
	}
	return index
}
