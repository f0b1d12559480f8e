package models

import "time"

// Entity classes tracked by the reconciliation validator, in report order.
var EntityTypes = []string{
	"sp_campaigns",
	"sb_campaigns",
	"sd_campaigns",
	"ad_groups",
	"keywords",
	"product_targets",
}

// EntityCheck compares local and remote counts for one entity class.
type EntityCheck struct {
	EntityType  string `json:"entity_type"`
	LocalCount  int64  `json:"local_count"`
	RemoteCount int64  `json:"remote_count"`
	Status      string `json:"status"` // match, mismatch, error
	Error       string `json:"error,omitempty"`
}

// ValidationResult is the outcome of one reconciliation pass. It reports,
// it does not repair.
type ValidationResult struct {
	AccountID   string        `json:"account_id"`
	Results     []EntityCheck `json:"results"`
	TotalDiff   int64         `json:"total_diff"`
	ValidatedAt time.Time     `json:"validated_at"`
}

// MismatchCount returns how many entity classes disagree with the remote.
func (v *ValidationResult) MismatchCount() int {
	n := 0
	for _, r := range v.Results {
		if r.Status == CheckStatusMismatch {
			n++
		}
	}
	return n
}
