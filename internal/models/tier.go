package models

import "time"

// SyncTier is a named cadence bucket grouping data classes synced at the
// same frequency. The zero value is not a valid tier.
type SyncTier int

const (
	TierHigh SyncTier = iota + 1
	TierMedium
	TierLow
	TierFull
)

const (
	SyncCampaignsStatus = "campaigns_status"
	SyncBudgets         = "budgets"
	SyncAdGroups        = "ad_groups"
	SyncKeywords        = "keywords"
	SyncTargets         = "targets"
	SyncFull            = "full_sync"
)

type tierSpec struct {
	name        string
	interval    time.Duration
	description string
	syncTypes   []string
}

// Обе low и full содержат full_sync — так ведёт себя продукт, не менять без владельца
var tierSpecs = map[SyncTier]tierSpec{
	TierHigh: {
		name:        "high",
		interval:    15 * time.Minute,
		description: "Campaign states and budgets that operators watch in near real time",
		syncTypes:   []string{SyncCampaignsStatus, SyncBudgets},
	},
	TierMedium: {
		name:        "medium",
		interval:    time.Hour,
		description: "Ad groups and keywords, the working set of the decision engine",
		syncTypes:   []string{SyncAdGroups, SyncKeywords},
	},
	TierLow: {
		name:        "low",
		interval:    24 * time.Hour,
		description: "Product targets and the nightly catch-all pass",
		syncTypes:   []string{SyncTargets, SyncFull},
	},
	TierFull: {
		name:        "full",
		interval:    12 * time.Hour,
		description: "Complete resynchronization of every data class",
		syncTypes:   []string{SyncFull},
	},
}

// AllTiers returns tiers in evaluation order.
func AllTiers() []SyncTier {
	return []SyncTier{TierHigh, TierMedium, TierLow, TierFull}
}

func (t SyncTier) Valid() bool {
	_, ok := tierSpecs[t]
	return ok
}

func (t SyncTier) String() string {
	if spec, ok := tierSpecs[t]; ok {
		return spec.name
	}
	return "unknown"
}

func (t SyncTier) Interval() time.Duration {
	return tierSpecs[t].interval
}

func (t SyncTier) Description() string {
	return tierSpecs[t].description
}

// SyncTypes returns a copy of the tier's data classes in sync order.
func (t SyncTier) SyncTypes() []string {
	spec := tierSpecs[t]
	out := make([]string, len(spec.syncTypes))
	copy(out, spec.syncTypes)
	return out
}

// HasKeywordData reports whether a tier run touches keyword state. Runs of
// such tiers must not interleave with the keyword decision engine.
func (t SyncTier) HasKeywordData() bool {
	for _, st := range tierSpecs[t].syncTypes {
		if st == SyncKeywords || st == SyncFull {
			return true
		}
	}
	return false
}
