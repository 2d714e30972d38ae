package service

import (
	"sort"
	"time"

	"github.com/devmatch/rotation-api/internal/models"
)

// orderPool reorders an eligible pool for fairness. When a rotation cursor
// exists and its last developer is present, iteration restarts immediately
// after that developer (wrap-around). Otherwise developers whose most
// recent response is oldest surface first; no history sorts as epoch zero,
// ties break on fewer recent accepts. Length and membership are unchanged.
func orderPool(pool []models.PoolCandidate, cursor *models.RotationCursor) []models.PoolCandidate {
	if len(pool) <= 1 {
		return pool
	}

	if cursor != nil {
		for i := range pool {
			if pool[i].DeveloperID == cursor.LastDeveloperID {
				rotated := make([]models.PoolCandidate, 0, len(pool))
				rotated = append(rotated, pool[i+1:]...)
				rotated = append(rotated, pool[:i+1]...)
				return rotated
			}
		}
	}

	sorted := make([]models.PoolCandidate, len(pool))
	copy(sorted, pool)
	sort.SliceStable(sorted, func(i, j int) bool {
		ti := lastResponse(sorted[i])
		tj := lastResponse(sorted[j])
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return sorted[i].RecentAcceptCount < sorted[j].RecentAcceptCount
	})
	return sorted
}

func lastResponse(c models.PoolCandidate) time.Time {
	if c.LastRespondedAt == nil {
		return time.Time{}
	}
	return *c.LastRespondedAt
}

// dedupePool merges developers that matched under multiple skills. The
// first occurrence survives; the matched skill ids are unioned and the
// higher-priority level wins if occurrences disagree.
func dedupePool(raw []models.PoolCandidate) []models.PoolCandidate {
	index := make(map[string]int, len(raw))
	merged := make([]models.PoolCandidate, 0, len(raw))
	for _, cand := range raw {
		pos, seen := index[cand.DeveloperID]
		if !seen {
			cand.SkillIDs = append([]string(nil), cand.SkillIDs...)
			index[cand.DeveloperID] = len(merged)
			merged = append(merged, cand)
			continue
		}
		existing := &merged[pos]
		for _, skillID := range cand.SkillIDs {
			if !containsString(existing.SkillIDs, skillID) {
				existing.SkillIDs = append(existing.SkillIDs, skillID)
			}
		}
		if cand.Level.Priority() > existing.Level.Priority() {
			existing.Level = cand.Level
		}
	}
	return merged
}

// rebalanceLevels caps each level at its quota and fills shortfalls from
// lower levels only: Expert borrows from Mid then Fresher, Mid borrows from
// Fresher. No level ever borrows upward. Output order is
// Fresher+Mid+Expert.
func rebalanceLevels(pool []models.PoolCandidate, quotas models.Quotas) []models.PoolCandidate {
	byLevel := make(map[models.DeveloperLevel][]models.PoolCandidate, 3)
	for _, cand := range pool {
		byLevel[cand.Level] = append(byLevel[cand.Level], cand)
	}

	fresher, fresherLeft := split(byLevel[models.LevelFresher], quotas.Fresher)
	mid, midLeft := split(byLevel[models.LevelMid], quotas.Mid)
	expert, _ := split(byLevel[models.LevelExpert], quotas.Expert)

	if need := quotas.Mid - len(mid); need > 0 {
		var borrowed []models.PoolCandidate
		borrowed, fresherLeft = split(fresherLeft, need)
		mid = append(mid, borrowed...)
	}
	if need := quotas.Expert - len(expert); need > 0 {
		var borrowed []models.PoolCandidate
		borrowed, midLeft = split(midLeft, need)
		expert = append(expert, borrowed...)
	}
	if need := quotas.Expert - len(expert); need > 0 {
		borrowed, _ := split(fresherLeft, need)
		expert = append(expert, borrowed...)
	}

	result := make([]models.PoolCandidate, 0, len(fresher)+len(mid)+len(expert))
	result = append(result, fresher...)
	result = append(result, mid...)
	result = append(result, expert...)
	return result
}

func split(pool []models.PoolCandidate, n int) (taken, rest []models.PoolCandidate) {
	if n <= 0 {
		return nil, pool
	}
	if len(pool) <= n {
		return pool, nil
	}
	return pool[:n], pool[n:]
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
