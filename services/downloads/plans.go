// Package downloads decides whether a user may download another video this
// billing cycle and records downloads exactly once per (user, video).
package downloads

import "github.com/lac-hong-legacy/footage_api/shared"

type PlanDefinition struct {
	ID                   string
	Rank                 int
	MonthlyDownloadLimit int
}

// Ranks order plans for upgrade/downgrade detection.
var planTable = map[string]PlanDefinition{
	shared.PlanFree:     {ID: shared.PlanFree, Rank: 0, MonthlyDownloadLimit: 3},
	shared.PlanStandard: {ID: shared.PlanStandard, Rank: 1, MonthlyDownloadLimit: 15},
	shared.PlanPro:      {ID: shared.PlanPro, Rank: 2, MonthlyDownloadLimit: 50},
	shared.PlanBusiness: {ID: shared.PlanBusiness, Rank: 3, MonthlyDownloadLimit: 200},
}

// LookupPlan falls back to the free plan for unknown ids so a bad billing
// record never grants more than the minimum.
func LookupPlan(planID string) PlanDefinition {
	if plan, ok := planTable[planID]; ok {
		return plan
	}
	return planTable[shared.PlanFree]
}

func IsKnownPlan(planID string) bool {
	_, ok := planTable[planID]
	return ok
}

func IsUpgrade(fromPlanID, toPlanID string) bool {
	return LookupPlan(toPlanID).Rank > LookupPlan(fromPlanID).Rank
}
